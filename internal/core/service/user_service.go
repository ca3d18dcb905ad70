package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

const defaultUserPageLimit = 10

var adminOnly = []domain.Role{domain.RoleAdmin}

// UserService manages accounts. Every operation passes the authorization
// guard; the account id is the owner of its own profile.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, logger zerolog.Logger) *UserService {
	return &UserService{repo: repo, hasher: hasher, logger: logger}
}

func (s *UserService) Profile(ctx context.Context, caller ports.Caller) (*domain.User, error) {
	if caller.ID == "" {
		return nil, domain.ErrIdentityUnresolved
	}
	return s.repo.FindByID(ctx, caller.ID)
}

// UpdateOwnProfile edits the caller's name and avatar and, when NewPassword
// is set, replaces the password after checking CurrentPassword.
func (s *UserService) UpdateOwnProfile(ctx context.Context, caller ports.Caller, input ports.UpdateOwnProfileInput) (*domain.User, error) {
	if caller.ID == "" {
		return nil, domain.ErrIdentityUnresolved
	}
	if err := validateProfile(domain.ProfileUpdate{Name: input.Name, Avatar: input.Avatar}); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	// The new hash is computed up front and stored only after the profile
	// write succeeds, so a failed request never changes the password alone.
	var newHash string
	if input.NewPassword != "" {
		if input.CurrentPassword == "" {
			return nil, fmt.Errorf("%w: current password is required to set a new one", domain.ErrValidation)
		}
		if len(input.NewPassword) < minPasswordLength {
			return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
		}
		ok, err := s.hasher.Compare(ctx, input.CurrentPassword, user.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("comparing password: %w", err)
		}
		if !ok {
			return nil, domain.ErrInvalidCredentials
		}
		if newHash, err = s.hasher.Hash(ctx, input.NewPassword); err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
	}

	updated := user
	if input.Name != nil || input.Avatar != nil {
		if updated, err = s.repo.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Name: input.Name, Avatar: input.Avatar}); err != nil {
			return nil, err
		}
	}

	if newHash != "" {
		if err := s.repo.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
			return nil, err
		}
		updated.PasswordHash = newHash
		s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	}
	return updated, nil
}

// UpdateProfile edits another account's name or avatar. Admins may edit any
// account, everyone else only their own.
func (s *UserService) UpdateProfile(ctx context.Context, caller ports.Caller, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	if err := authorize(s.logger, caller, domain.OwnedResourcePolicy, userID); err != nil {
		return nil, err
	}
	if err := validateProfile(update); err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, userID, update)
}

func (s *UserService) List(ctx context.Context, caller ports.Caller, page, limit int) (*ports.Page[*domain.User], error) {
	if err := authorize(s.logger, caller, adminOnly, ""); err != nil {
		return nil, err
	}
	page, limit = normalizePaging(page, limit, defaultUserPageLimit)

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return newPage(users, total, page, limit), nil
}

func (s *UserService) Delete(ctx context.Context, caller ports.Caller, userID string) error {
	if err := authorize(s.logger, caller, adminOnly, ""); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID).Str("deleted_by", caller.ID).Msg("user deleted")
	return nil
}

func validateProfile(update domain.ProfileUpdate) error {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	}
	return nil
}
