package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/study-tracker/internal"
	coreuser "github.com/frahmantamala/study-tracker/internal/core/user"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
	GrantPermission(ctx context.Context, userID int64, permission string, grantedBy *int64) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetByID loads the user together with its permissions.
func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	perms, err := s.repo.GetPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}
	u.Permissions = perms

	return u, nil
}

// GrantAdmin gives an existing account the admin permission. Unknown emails are skipped.
func (s *Service) GrantAdmin(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.InfoContext(ctx, "admin grant skipped, no account yet", "email", email)
			return false, nil
		}
		return false, err
	}

	if err := s.repo.GrantPermission(ctx, u.ID, coreuser.PermissionAdmin, nil); err != nil {
		return false, fmt.Errorf("failed to grant admin to %s: %w", email, err)
	}
	s.logger.InfoContext(ctx, "admin permission granted", "user_id", u.ID, "email", email)
	return true, nil
}

// DisplayName is used by notifications that only know the user id.
func (s *Service) DisplayName(ctx context.Context, userID int64) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}
