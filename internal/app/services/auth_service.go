package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
)

const revokedTokenPrefix = "auth:revoked:"

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	users      *repositories.UserRepository
	jwtService *auth.JWTService
	cache      cache.Cache
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users *repositories.UserRepository, jwtService *auth.JWTService, c cache.Cache, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		cache:      c,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account and signs a token for it
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, *auth.Token, error) {
	checks := []struct {
		field, value, message string
	}{
		{"email", req.Email, "user with this email already exists"},
		{"studentId", req.StudentID, "user with this student ID already exists"},
		{"employeeId", req.EmployeeID, "user with this employee ID already exists"},
	}
	for _, c := range checks {
		exists, err := s.users.Exists(ctx, c.field, normalizeIdentity(c.field, c.value))
		if err != nil {
			return nil, nil, fmt.Errorf("error checking %s: %w", c.field, err)
		}
		if exists {
			return nil, nil, apperrors.NewConflictError(c.message)
		}
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:      req.Email,
		Password:   hashed,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       models.Role(req.Role),
		StudentID:  req.StudentID,
		EmployeeID: req.EmployeeID,
		Department: req.Department,
		IsActive:   true,
		LastLogin:  &now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return nil, nil, err
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("userId", user.ID.Hex()).Str("role", string(user.Role)).Msg("User registered")
	return user, token, nil
}

// CreateUser validates and stores an account whose password is already hashed
func (s *AuthService) CreateUser(ctx context.Context, user *models.User) error {
	user.SetID(primitive.NewObjectID())
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return err
	}
	return s.users.Insert(ctx, user)
}

// Login checks credentials, stamps lastLogin and signs a token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *auth.Token, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("userId", user.ID.Hex()).Msg("Failed to update last login")
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Authenticate validates a bearer token and loads its active user
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*auth.Claims, *models.User, error) {
	claims, err := s.jwtService.ValidateToken(tokenString)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if revoked {
		return nil, nil, apperrors.ErrTokenRevoked
	}

	id, err := ParseID(claims.UserID)
	if err != nil {
		return nil, nil, apperrors.ErrTokenInvalid
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil, apperrors.ErrTokenInvalid
		}
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}
	return claims, user, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return apperrors.ErrTokenInvalid
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedTokenPrefix+claims.ID, claims.UserID, ttl)
}

// IsRevoked reports whether the token id was logged out
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.cache.Exists(ctx, revokedTokenPrefix+jti)
}

// Profile returns the account of userID
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, err := ParseID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the name or department of an account
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	user.Touch(s.now())
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		return apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "current password is incorrect")
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	user.Password = hashed
	user.Touch(s.now())
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Str("userId", userID).Msg("Password changed")
	return nil
}

func normalizeIdentity(field, value string) string {
	value = strings.TrimSpace(value)
	if field == "email" {
		return strings.ToLower(value)
	}
	return value
}
