package task

import (
	"context"
	"errors"
	"time"

	"github.com/tasklist/taskboard/internal/msg"
)

var (
	// ErrNotFound is returned when the task does not exist, e.g. because its identifier is stale.
	ErrNotFound = errors.New(msg.TaskNotFound)
	// ErrEmptyText is returned when a task is created without text.
	ErrEmptyText = errors.New(msg.EmptyTaskText)
)

// Task represents a single entry of the task list.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service is the interface for managing tasks.
type Service interface {
	// List returns all tasks, newest first.
	List(ctx context.Context) ([]Task, error)
	// Create adds a new, uncompleted task.
	Create(ctx context.Context, text string) (Task, error)
	// Toggle flips the completed flag of the task with the given id.
	Toggle(ctx context.Context, id string) (Task, error)
	// Remove deletes the task with the given id. Removing an unknown task is not an error.
	Remove(ctx context.Context, id string) error
}

// EventKind describes what happened to the task list.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventToggled EventKind = "toggled"
	EventRemoved EventKind = "removed"
	// EventResync asks subscribers to reload the full list, e.g. after a reconnect.
	EventResync EventKind = "resync"
)

// Event announces a change of the task list to subscribers.
type Event struct {
	Kind   EventKind `json:"kind"`
	TaskID string    `json:"taskId,omitempty"`
}
