// Package memory provides process-local implementations of the storage
// ports. They back the "memory" store driver used for local development and
// the service and HTTP tests.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	mu     sync.RWMutex
	seq    int
	byID   map[string]*domain.User
	emails map[string]string
	now    func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:   make(map[string]*domain.User),
		emails: make(map[string]string),
		now:    time.Now,
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Roles = append([]domain.Role(nil), u.Roles...)
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := r.emails[email]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	stored := cloneUser(user)
	stored.ID = "u" + strconv.Itoa(r.seq)
	stored.Email = email
	r.byID[stored.ID] = stored
	r.emails[email] = stored.ID
	return cloneUser(stored), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = r.now().UTC()
	return nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	u.UpdatedAt = r.now().UTC()
	return cloneUser(u), nil
}

func (r *UserRepository) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.emails, u.Email)
	delete(r.byID, id)
	return nil
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
