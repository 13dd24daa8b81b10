package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// UserService manages accounts on behalf of administrators
type UserService struct {
	*BaseService[models.User, *models.User]
	users *repositories.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(users *repositories.UserRepository, logger zerolog.Logger) *UserService {
	return &UserService{
		BaseService: NewBaseService[models.User, *models.User](users.Store, "user", true, logger.With().Str("service", "user").Logger()),
		users:       users,
	}
}

// ListUsers returns a page of accounts
func (s *UserService) ListUsers(ctx context.Context, opts query.Options) (*query.Result[*models.User], error) {
	return s.FindAll(ctx, opts)
}

// Deactivate disables an account. Admins cannot disable themselves.
func (s *UserService) Deactivate(ctx context.Context, actorID, id string) (*models.User, error) {
	if actorID == id {
		return nil, apperrors.NewBadRequestError("you cannot deactivate your own account")
	}
	return s.Update(ctx, id, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
}
