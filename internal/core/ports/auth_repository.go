package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// UserRepository is the credential store. Implementations must bound every
// call with a timeout and report I/O failures wrapped in
// domain.ErrStoreUnavailable.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail looks a user up by contact handle; callers pass the
	// normalized (lower-cased) form.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdatePasswordHash atomically replaces the stored hash.
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
	Delete(ctx context.Context, id string) error
}

// LoginThrottle counts failed logins per contact handle.
type LoginThrottle interface {
	// Blocked reports whether the handle has exhausted its attempts.
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// RefreshDenylist records refresh-token ids revoked before their expiry.
type RefreshDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
