package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/tasklist/taskboard/internal/task"
)

// TasksPath is the base path of the task API.
const TasksPath = "/api/tasks"

// TaskService is the HTTP client of the task backend. It implements task.Service.
type TaskService struct {
	Client *retryablehttp.Client
	URL    string
}

func NewTaskService(url string, timeout time.Duration) TaskService {
	return TaskService{
		Client: NewRetryableClient(timeout),
		URL:    url,
	}
}

// ErrorResponse is the error body returned by the task backend.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (c *TaskService) List(ctx context.Context) ([]task.Task, error) {
	var tasks []task.Task
	err := c.do(ctx, http.MethodGet, c.tasksURL(), nil, http.StatusOK, &tasks)
	return tasks, err
}

func (c *TaskService) Create(ctx context.Context, text string) (task.Task, error) {
	if strings.TrimSpace(text) == "" {
		return task.Task{}, task.ErrEmptyText
	}

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return task.Task{}, err
	}

	var t task.Task
	err = c.do(ctx, http.MethodPost, c.tasksURL(), body, http.StatusCreated, &t)
	return t, err
}

func (c *TaskService) Toggle(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	err := c.do(ctx, http.MethodPost, c.tasksURL(url.PathEscape(id), "toggle"), nil, http.StatusOK, &t)
	return t, err
}

func (c *TaskService) Remove(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.tasksURL(url.PathEscape(id)), nil, http.StatusNoContent, nil)
}

func (c *TaskService) tasksURL(elem ...string) string {
	parts := append([]string{strings.TrimRight(c.URL, "/") + TasksPath}, elem...)
	return strings.Join(parts, "/")
}

func (c *TaskService) do(ctx context.Context, method, url string, body []byte, wantStatus int, v interface{}) error {
	var rawBody interface{}
	if body != nil {
		rawBody = body
	}
	req, err := NewRetryableRequestWithContext(ctx, method, url, rawBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func statusError(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return task.ErrNotFound
	case resp.StatusCode >= 500:
		return ErrServerError
	}

	var er ErrorResponse
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &er)
	if er.Error == task.ErrEmptyText.Error() {
		return task.ErrEmptyText
	}
	return fmt.Errorf("%w: %d, msg: '%s'", ErrUnexpectedStatus, resp.StatusCode, er.Error)
}
