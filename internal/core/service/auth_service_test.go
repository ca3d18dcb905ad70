package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
	"github.com/taskmanager/task-api/internal/infrastructure/db/memory"
	"github.com/taskmanager/task-api/internal/infrastructure/security"
)

// plainHasher stands in for bcrypt; stored hashes are "hashed:" + plaintext.
type plainHasher struct{ err error }

func (h plainHasher) Hash(_ context.Context, plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plaintext, nil
}

func (h plainHasher) Compare(_ context.Context, plaintext, hash string) (bool, error) {
	if h.err != nil {
		return false, h.err
	}
	if !strings.HasPrefix(hash, "hashed:") {
		return false, nil
	}
	return hash == "hashed:"+plaintext, nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

type authFixture struct {
	svc    *AuthService
	users  *memory.UserRepository
	tasks  *memory.TaskRepository
	tokens *security.TokenManager
	clock  *testClock
}

func newAuthFixture(t *testing.T, opts ...AuthOption) *authFixture {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)}
	f := &authFixture{
		users: memory.NewUserRepository(),
		tasks: memory.NewTaskRepository(),
		clock: clock,
		tokens: security.NewTokenManager(security.TokenConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		}, security.WithClock(clock.Now)),
	}
	f.svc = NewAuthService(f.users, f.tasks, plainHasher{}, f.tokens, zerolog.Nop(), opts...)
	return f
}

func (f *authFixture) signup(t *testing.T, email string, roles ...string) *domain.User {
	t.Helper()
	u, err := f.svc.Signup(context.Background(), ports.SignupInput{
		Name: "Test", Email: email, Password: "secret1", Roles: roles,
	})
	if err != nil {
		t.Fatalf("signup %s: %v", email, err)
	}
	return u
}

func TestAuthService_Signup_Success(t *testing.T) {
	f := newAuthFixture(t)

	user := f.signup(t, "  Alice@Example.com ")
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if len(user.Roles) != 1 || user.Roles[0] != domain.RoleUser {
		t.Fatalf("expected default role user, got %v", user.Roles)
	}
}

func TestAuthService_Signup_Validation(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []ports.SignupInput{
		{Name: "", Email: "a@x.com", Password: "secret1"},
		{Name: "A", Email: "", Password: "secret1"},
		{Name: "A", Email: "a@x.com", Password: "short"},
		{Name: "A", Email: "a@x.com", Password: "secret1", Roles: []string{"superuser"}},
	}
	for _, in := range cases {
		if _, err := f.svc.Signup(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("input %+v: expected ErrValidation, got %v", in, err)
		}
	}
}

func TestAuthService_Signup_Duplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "bob@example.com")

	_, err := f.svc.Signup(context.Background(), ports.SignupInput{Name: "B", Email: "BOB@example.com", Password: "secret2"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Signup_HashFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.hasher = plainHasher{err: errors.New("pool closed")}

	_, err := f.svc.Signup(context.Background(), ports.SignupInput{Name: "C", Email: "c@x.com", Password: "secret1"})
	if err == nil || errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signup(t, "carol@example.com", "editor", "viewer")

	res, err := f.svc.Login(context.Background(), "Carol@example.com", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", res.Session)
	}
	if res.User.ID != user.ID {
		t.Fatalf("unexpected user: %+v", res.User)
	}

	claims, err := f.tokens.VerifyAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if !claims.Caller().Effective().IsAdmin() {
		t.Fatalf("editor+viewer should resolve to admin, got %v", claims.Roles)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "dave@example.com")
	ctx := context.Background()

	if _, err := f.svc.Login(ctx, "", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "ghost@example.com", "secret1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "dave@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_CorruptedHashIsMismatch(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signup(t, "eve@example.com")
	if err := f.users.UpdatePasswordHash(context.Background(), user.ID, "garbage"); err != nil {
		t.Fatalf("update hash: %v", err)
	}

	if _, err := f.svc.Login(context.Background(), "eve@example.com", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.throttle = memory.NewLoginThrottle(2, time.Minute, memory.WithClock(f.clock.Now))
	f.signup(t, "frank@example.com")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Login(ctx, "frank@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := f.svc.Login(ctx, "frank@example.com", "secret1"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_TaskStatsScope(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner@example.com")
	f.signup(t, "viewer@example.com", "viewer")

	for _, status := range []bool{true, false, false} {
		if _, err := f.tasks.Create(ctx, &domain.Task{Title: "t", OwnerID: owner.ID, Status: status}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if _, err := f.tasks.Create(ctx, &domain.Task{Title: "other", OwnerID: "someone-else"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	res, err := f.svc.Login(ctx, "owner@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if want := (domain.TaskStats{TotalTasks: 3, CompletedTasks: 1, PendingTasks: 2}); res.TaskStats != want {
		t.Fatalf("owner stats: want %+v, got %+v", want, res.TaskStats)
	}

	res, err = f.svc.Login(ctx, "viewer@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.TaskStats.TotalTasks != 4 {
		t.Fatalf("viewer should see all tasks, got %+v", res.TaskStats)
	}
}

func TestAuthService_Refresh_RotatesAndPreservesSubject(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signup(t, "gina@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "gina@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.t = f.clock.t.Add(20 * time.Minute)
	if _, err := f.tokens.VerifyAccess(res.AccessToken); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected access token to be expired, got %v", err)
	}

	session, err := f.svc.Refresh(ctx, res.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := f.tokens.VerifyAccess(session.AccessToken)
	if err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if session.RefreshToken == "" || session.RefreshToken == res.RefreshToken {
		t.Fatalf("expected a rotated refresh token")
	}
}

func TestAuthService_Refresh_Rejections(t *testing.T) {
	f := newAuthFixture(t)
	user := f.signup(t, "hank@example.com")
	ctx := context.Background()

	if _, err := f.svc.Refresh(ctx, ""); !errors.Is(err, domain.ErrRefreshMissing) {
		t.Fatalf("expected ErrRefreshMissing, got %v", err)
	}
	if _, err := f.svc.Refresh(ctx, "not.a.token"); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("expected ErrRefreshRejected for garbage, got %v", err)
	}

	res, err := f.svc.Login(ctx, "hank@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, res.AccessToken); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("access token must not refresh, got %v", err)
	}

	f.clock.t = res.RefreshExpiresAt
	if _, err := f.svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("expected ErrRefreshRejected for expired token, got %v", err)
	}

	f.clock.t = res.RefreshExpiresAt.Add(-time.Hour)
	if err := f.users.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("deleted user must not refresh, got %v", err)
	}
}

func TestAuthService_LogoutRevokesWithDenylist(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.denylist = memory.NewRefreshDenylist(memory.WithClock(f.clock.Now))
	f.signup(t, "ivy@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "ivy@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.svc.Logout(ctx, res.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestAuthService_RotatedTokenCannotBeReplayedWithDenylist(t *testing.T) {
	f := newAuthFixture(t)
	f.svc.denylist = memory.NewRefreshDenylist(memory.WithClock(f.clock.Now))
	f.signup(t, "jack@example.com")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, "jack@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, res.RefreshToken); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if _, err := f.svc.Refresh(ctx, res.RefreshToken); !errors.Is(err, domain.ErrRefreshRejected) {
		t.Fatalf("expected replay to be rejected, got %v", err)
	}
}

func TestAuthService_LogoutAlwaysSucceeds(t *testing.T) {
	f := newAuthFixture(t)
	if err := f.svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("logout without denylist: %v", err)
	}

	f = newAuthFixture(t, WithRefreshDenylist(memory.NewRefreshDenylist()))
	if err := f.svc.Logout(context.Background(), "garbage"); err != nil {
		t.Fatalf("logout with denylist: %v", err)
	}
}
