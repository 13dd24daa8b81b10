package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	appModels "github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	appRepos "github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	appServices "github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
)

// AdminAccount is the account created when no administrator exists yet
type AdminAccount struct {
	Email    string
	Password string
}

// CreateDefaultAdmin creates the configured admin account unless an admin
// already exists. An empty email or password disables seeding.
func CreateDefaultAdmin(ctx context.Context, users *appRepos.UserRepository, authService *appServices.AuthService, account AdminAccount, lgr zerolog.Logger) error {
	if account.Email == "" || account.Password == "" {
		lgr.Debug().Msg("No default admin configured, skipping seed")
		return nil
	}

	exists, err := users.Exists(ctx, "role", string(appModels.RoleAdmin))
	if err != nil {
		return fmt.Errorf("error checking for admin accounts: %w", err)
	}
	if exists {
		lgr.Debug().Msg("Admin account present, skipping seed")
		return nil
	}

	hashed, err := auth.HashPassword(account.Password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	admin := &appModels.User{
		Email:      account.Email,
		Password:   hashed,
		FirstName:  "System",
		LastName:   "Administrator",
		Role:       appModels.RoleAdmin,
		EmployeeID: "ADMIN-001",
		Department: "Administration",
		IsActive:   true,
	}
	if err := authService.CreateUser(ctx, admin); err != nil {
		// another instance may have seeded concurrently
		if errors.Is(err, apperrors.ErrConflict) {
			lgr.Info().Str("email", account.Email).Msg("Default admin already exists")
			return nil
		}
		return fmt.Errorf("error creating default admin: %w", err)
	}

	lgr.Info().Str("email", admin.Email).Str("userId", admin.ID.Hex()).Msg("Default admin account created")
	return nil
}
