package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/api/metrics"
	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements signup and the login / refresh / logout lifecycle.
type AuthService struct {
	users    ports.UserRepository
	tasks    ports.TaskRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	throttle ports.LoginThrottle
	denylist ports.RefreshDenylist
	logger   zerolog.Logger
	now      func() time.Time
}

// AuthOption enables optional collaborators.
type AuthOption func(*AuthService)

// WithLoginThrottle limits failed logins per email.
func WithLoginThrottle(t ports.LoginThrottle) AuthOption {
	return func(s *AuthService) { s.throttle = t }
}

// WithRefreshDenylist makes logout and rotation revoke the presented
// refresh token until it expires.
func WithRefreshDenylist(d ports.RefreshDenylist) AuthOption {
	return func(s *AuthService) { s.denylist = d }
}

func NewAuthService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	logger zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:  users,
		tasks:  tasks,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" || len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: name, email and a password of at least %d characters are required", domain.ErrValidation, minPasswordLength)
	}
	for _, label := range input.Roles {
		if _, ok := domain.ParseRole(label); !ok {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, label)
		}
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Roles:        domain.NormalizeRoles(input.Roles),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Strs("roles", created.RoleLabels()).Msg("user signed up")
	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
		} else if blocked {
			metrics.LoginsTotal.WithLabelValues("throttled").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			metrics.LoginsTotal.WithLabelValues("not_found").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(ctx, password, user.PasswordHash)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("comparing password: %w", err)
	}
	if !ok {
		s.recordFailure(ctx, email)
		metrics.LoginsTotal.WithLabelValues("mismatch").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}

	session, err := s.mint(user)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.LoginResult{
		Session:   *session,
		User:      user,
		TaskStats: s.loginStats(ctx, user),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token and a new
// refresh token. Every verification failure collapses into
// domain.ErrRefreshRejected so the caller re-authenticates.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrRefreshMissing
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrRefreshRejected, err)
	}

	if s.denylist != nil && claims.TokenID != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			metrics.RefreshesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		if revoked {
			metrics.RefreshesTotal.WithLabelValues("revoked").Inc()
			return nil, fmt.Errorf("%w: token revoked", domain.ErrRefreshRejected)
		}
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.RefreshesTotal.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: %w", domain.ErrRefreshRejected, err)
		}
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	session, err := s.mint(user)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	s.revoke(ctx, claims)
	metrics.RefreshesTotal.WithLabelValues("rotated").Inc()
	s.logger.Debug().Str("user_id", user.ID).Msg("refresh token rotated")
	return session, nil
}

// Logout never fails. Without a denylist the caller only drops the cookie;
// with one, a still-valid refresh token is revoked until its expiry.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if s.denylist == nil || refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}
	s.revoke(ctx, claims)
	return nil
}

func (s *AuthService) mint(user *domain.User) (*ports.Session, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user.ID, user.RoleLabels())
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}
	return &ports.Session{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (s *AuthService) revoke(ctx context.Context, claims *ports.TokenClaims) {
	if s.denylist == nil || claims.TokenID == "" {
		return
	}
	if err := s.denylist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		s.logger.Warn().Err(err).Str("user_id", claims.Subject).Msg("failed to revoke refresh token")
	}
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

// loginStats counts every task for elevated roles and the caller's own tasks
// otherwise. A store failure degrades to zero counts rather than failing the
// login.
func (s *AuthService) loginStats(ctx context.Context, user *domain.User) domain.TaskStats {
	if s.tasks == nil {
		return domain.TaskStats{}
	}
	stats, err := s.tasks.Stats(ctx, statsOwner(user.ID, user.EffectiveRoles()))
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to load task stats at login")
		return domain.TaskStats{}
	}
	return stats
}
