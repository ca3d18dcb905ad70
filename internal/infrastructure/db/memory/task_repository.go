package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var _ ports.TaskRepository = (*TaskRepository)(nil)

type TaskRepository struct {
	mu    sync.RWMutex
	seq   int
	tasks map[string]*domain.Task
	order []string
	now   func() time.Time
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]*domain.Task), now: time.Now}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	stored := cloneTask(t)
	stored.ID = "t" + strconv.Itoa(r.seq)
	r.tasks[stored.ID] = stored
	r.order = append(r.order, stored.ID)
	return cloneTask(stored), nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *TaskRepository) Update(_ context.Context, id string, update ports.TaskUpdate) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.DueDate != nil {
		due := *update.DueDate
		t.DueDate = &due
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	t.UpdatedAt = r.now().UTC()
	return cloneTask(t), nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *TaskRepository) List(_ context.Context, filter ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []*domain.Task
	for _, id := range r.order {
		t := r.tasks[id]
		if filter.OwnerID != "" && t.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if !filter.DateFrom.IsZero() && t.CreatedAt.Before(filter.DateFrom) {
			continue
		}
		if !filter.DateTo.IsZero() && !t.CreatedAt.Before(filter.DateTo) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		matched = append(matched, cloneTask(t))
	}

	if filter.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			if filter.SortDesc {
				return lessTask(matched[j], matched[i], filter.SortBy)
			}
			return lessTask(matched[i], matched[j], filter.SortBy)
		})
	}
	return paginate(matched, filter.Page, filter.Limit), int64(len(matched)), nil
}

func (r *TaskRepository) Stats(_ context.Context, ownerID string) (domain.TaskStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.TaskStats
	for _, t := range r.tasks {
		if ownerID != "" && t.OwnerID != ownerID {
			continue
		}
		stats.TotalTasks++
		if t.Status {
			stats.CompletedTasks++
		}
	}
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks
	return stats, nil
}

func lessTask(a, b *domain.Task, field string) bool {
	switch field {
	case "title":
		return a.Title < b.Title
	case "description":
		return a.Description < b.Description
	case "status":
		return !a.Status && b.Status
	case "due_date":
		return dueUnix(a) < dueUnix(b)
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func dueUnix(t *domain.Task) int64 {
	if t.DueDate == nil {
		return 0
	}
	return t.DueDate.Unix()
}
