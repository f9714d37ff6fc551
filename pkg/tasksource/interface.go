package tasksource

import (
	"context"
	"time"

	"github.com/teampulse/backend/pkg/enum"
)

type TaskStatus string

var (
	TaskCompleted  = enum.New(TaskStatus("completed"))
	TaskInProgress = enum.New(TaskStatus("in_progress"))
	TaskBlocked    = enum.New(TaskStatus("blocked"))
	TaskTodo       = enum.New(TaskStatus("todo"))
)

// Sprint is a work period tracked by the external task source.
type Sprint struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
}

// Task is a single tracked task, normalized to a canonical status. The
// external source mixes boolean flags and status strings; nothing outside
// this package ever sees the raw shapes.
type Task struct {
	ExternalUserID string
	Status         TaskStatus
}

type IEndpoint interface {
	ListSprints(ctx context.Context) ([]Sprint, error)
	GetSprintTasks(ctx context.Context, sprintID string) ([]Task, error)
}
