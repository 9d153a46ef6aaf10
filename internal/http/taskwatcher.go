package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tasklist/taskboard/internal/retry"
	"github.com/tasklist/taskboard/internal/task"
	"github.com/tasklist/taskboard/internal/version"
)

// WatchPath is the path of the task change push channel.
const WatchPath = TasksPath + "/watch"

// TaskWatcher subscribes to the push channel of the task backend.
type TaskWatcher struct {
	URL    string
	Dialer *websocket.Dialer
	Retry  retry.Options
}

func NewTaskWatcher(url string) TaskWatcher {
	return TaskWatcher{
		URL: url,
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		Retry: retry.CreateOptions().
			WithMaxCount(0).
			WithExponent(2).
			WithMaxElapsed(0),
	}
}

// Watch delivers task list events to fn until ctx is done. The connection is re-established whenever it drops.
// Every (re)connect is announced with a task.EventResync, since events may have been missed in between.
func (w *TaskWatcher) Watch(ctx context.Context, fn func(task.Event)) error {
	for {
		conn, err := retry.Do(ctx, func() (*websocket.Conn, error) {
			return w.dial(ctx)
		}, w.Retry)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to subscribe to task changes: %w", err)
		}

		fn(task.Event{Kind: task.EventResync})

		err = w.read(ctx, conn, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug().Err(err).Msg("Task watch connection lost, reconnecting.")
	}
}

func (w *TaskWatcher) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	header.Set("User-Agent", "taskboard/"+version.Version)

	conn, _, err := w.Dialer.DialContext(ctx, wsURL(w.URL)+WatchPath, header)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to connect to task watch channel.")
		return nil, err
	}
	return conn, nil
}

func (w *TaskWatcher) read(ctx context.Context, conn *websocket.Conn, fn func(task.Event)) error {
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()
	defer conn.Close()

	for {
		var ev task.Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		fn(ev)
	}
}

// wsURL converts an http(s) base URL into its ws(s) counterpart.
func wsURL(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}
