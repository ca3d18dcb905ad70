package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// CreateTaskInput carries the data for a new task; the owner is the caller.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      bool
}

// ListTasksInput carries all parameters for the list endpoint.
type ListTasksInput struct {
	Search string
	Status *bool
	Range  domain.DateRange
	Sort   string // field name, "-" prefix for descending
	Page   int
	Limit  int
}

// TaskService defines use-case operations for tasks. Every operation on an
// existing task passes the authorization guard with the task's owner.
type TaskService interface {
	Create(ctx context.Context, caller Caller, input CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, caller Caller, id string) (*domain.Task, error)
	Update(ctx context.Context, caller Caller, id string, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, caller Caller, id string) (*domain.Task, error)
	List(ctx context.Context, caller Caller, input ListTasksInput) (*Page[*domain.Task], error)
	Stats(ctx context.Context, caller Caller) (domain.TaskStats, error)
}
