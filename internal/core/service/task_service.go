package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const defaultTaskPageLimit = 5

// sortableTaskFields maps the sort keys accepted from clients to stored
// field names.
var sortableTaskFields = map[string]string{
	"title":       "title",
	"description": "description",
	"dueDate":     "due_date",
	"status":      "status",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

// TaskService implements task use cases. Tasks are owned resources: read,
// update and delete all pass the same guard with the task's owner.
type TaskService struct {
	repo   ports.TaskRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskService(repo ports.TaskRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, logger: logger, now: time.Now}
}

func (s *TaskService) Create(ctx context.Context, caller ports.Caller, input ports.CreateTaskInput) (*domain.Task, error) {
	if caller.ID == "" {
		return nil, domain.ErrIdentityUnresolved
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.Task{
		Title:       title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Status:      input.Status,
		OwnerID:     caller.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, err
	}

	metrics.TasksCreatedTotal.Inc()
	s.logger.Info().Str("task_id", created.ID).Str("owner_id", caller.ID).Msg("task created")
	return created, nil
}

func (s *TaskService) Get(ctx context.Context, caller ports.Caller, id string) (*domain.Task, error) {
	return s.owned(ctx, caller, id)
}

func (s *TaskService) Update(ctx context.Context, caller ports.Caller, id string, update ports.TaskUpdate) (*domain.Task, error) {
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		update.Title = &trimmed
	}
	if _, err := s.owned(ctx, caller, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, update)
}

func (s *TaskService) Delete(ctx context.Context, caller ports.Caller, id string) (*domain.Task, error) {
	task, err := s.owned(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.logger.Info().Str("task_id", id).Str("deleted_by", caller.ID).Msg("task deleted")
	return task, nil
}

// List returns a page of tasks. Admins see every task, everyone else only
// the tasks they created.
func (s *TaskService) List(ctx context.Context, caller ports.Caller, input ports.ListTasksInput) (*ports.Page[*domain.Task], error) {
	if caller.ID == "" {
		return nil, domain.ErrIdentityUnresolved
	}

	filter := ports.ListTasksFilter{
		Search: strings.TrimSpace(input.Search),
		Status: input.Status,
	}
	if !caller.Effective().IsAdmin() {
		filter.OwnerID = caller.ID
	}

	if input.Range != "" {
		from, to, ok := input.Range.Bounds(s.now().UTC())
		if !ok {
			return nil, fmt.Errorf("%w: unknown range %q", domain.ErrValidation, input.Range)
		}
		filter.DateFrom, filter.DateTo = from, to
	}

	if input.Sort != "" {
		key := strings.TrimPrefix(input.Sort, "-")
		field, ok := sortableTaskFields[key]
		if !ok {
			return nil, fmt.Errorf("%w: cannot sort by %q", domain.ErrValidation, key)
		}
		filter.SortBy = field
		filter.SortDesc = strings.HasPrefix(input.Sort, "-")
	}

	filter.Page, filter.Limit = normalizePaging(input.Page, input.Limit, defaultTaskPageLimit)

	tasks, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(tasks, total, filter.Page, filter.Limit), nil
}

func (s *TaskService) Stats(ctx context.Context, caller ports.Caller) (domain.TaskStats, error) {
	if caller.ID == "" {
		return domain.TaskStats{}, domain.ErrIdentityUnresolved
	}
	return s.repo.Stats(ctx, statsOwner(caller.ID, caller.Effective()))
}

// owned loads a task and applies the guard with its owner.
func (s *TaskService) owned(ctx context.Context, caller ports.Caller, id string) (*domain.Task, error) {
	if caller.ID == "" {
		return nil, domain.ErrIdentityUnresolved
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(s.logger, caller, domain.OwnedResourcePolicy, task.OwnerID); err != nil {
		return nil, err
	}
	return task, nil
}
