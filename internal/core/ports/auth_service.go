package ports

import (
	"context"
	"time"

	"github.com/taskmanager/task-api/internal/core/domain"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Roles    []string
}

// Session is the token pair minted at login or rotation. RefreshToken must
// only ever leave the server inside the protected cookie.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Session
	User      *domain.User
	TaskStats domain.TaskStats
}

// AuthService covers signup and the session lifecycle.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, refreshToken string) error
}

// UpdateOwnProfileInput carries a caller's edits to their own account.
// Setting NewPassword requires CurrentPassword.
type UpdateOwnProfileInput struct {
	Name            *string
	Avatar          *string
	CurrentPassword string
	NewPassword     string
}

// UserService covers account management behind the authorization guard.
type UserService interface {
	Profile(ctx context.Context, caller Caller) (*domain.User, error)
	UpdateOwnProfile(ctx context.Context, caller Caller, input UpdateOwnProfileInput) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller Caller, userID string, update domain.ProfileUpdate) (*domain.User, error)
	List(ctx context.Context, caller Caller, page, limit int) (*Page[*domain.User], error)
	Delete(ctx context.Context, caller Caller, userID string) error
}

// Caller is the authenticated identity of a request, resolved from the
// access token by the auth middleware.
type Caller struct {
	ID    string
	Roles []string
}

// Effective resolves the caller's effective role set.
func (c Caller) Effective() domain.RoleSet {
	return domain.ResolveRoles(c.Roles)
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}
