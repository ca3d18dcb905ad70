package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is always set by the service layer from the caller's roles.
type ListTasksFilter struct {
	OwnerID  string    // empty = no filter (admin); non-empty = scoped to owner
	Search   string    // optional: case-insensitive match on title or description
	Status   *bool     // optional: completed / pending
	DateFrom time.Time // optional: created_at >= DateFrom
	DateTo   time.Time // optional: created_at < DateTo
	SortBy   string    // one of the whitelisted task fields; empty = insertion order
	SortDesc bool
	Page     int // 1-based
	Limit    int // max rows per page (capped at 100 by service)
}

// TaskUpdate carries the mutable task fields. Nil means unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *bool
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
	// List returns a page of tasks matching filter and the total count.
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
	// Stats counts tasks; an empty ownerID counts every task.
	Stats(ctx context.Context, ownerID string) (domain.TaskStats, error)
}
