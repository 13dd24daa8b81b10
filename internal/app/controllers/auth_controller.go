// Package controllers handles HTTP request handling
package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
)

// AuthController handles authentication related operations
type AuthController struct {
	authService *services.AuthService
	logger      zerolog.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(authService *services.AuthService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

func authResponse(user *models.User, token *auth.Token) dto.AuthResponse {
	return dto.AuthResponse{
		User: user,
		Token: dto.TokenResponse{
			AccessToken: token.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   token.ExpiresIn,
			ExpiresAt:   token.ExpiresAt,
		},
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Creates a student, instructor or admin account and signs an access token for it.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration information"
// @Success 201 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request format"
// @Failure 409 {object} dto.ErrorResponse "Email, student ID or employee ID already exists"
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	ac.logger.Debug().Msg("Register endpoint called")

	var req dto.RegisterRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, token, err := ac.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, authResponse(user, token), "User registered successfully")
}

// Login handles user login
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.APIResponse{data=dto.AuthResponse}
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Account deactivated"
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	user, token, err := ac.authService.Login(c.Request.Context(), &req)
	if err != nil {
		ac.logger.Info().Str("email", req.Email).Err(err).Msg("Login failed")
		respondError(c, err)
		return
	}
	respondOK(c, authResponse(user, token), "Login successful")
}

func (ac *AuthController) callerID(c *gin.Context) (string, error) {
	actor := middleware.ActorFrom(c)
	if actor == nil {
		return "", apperrors.ErrUnauthorized
	}
	return actor.ID.Hex(), nil
}

// GetProfile returns the caller's account
func (ac *AuthController) GetProfile(c *gin.Context) {
	id, err := ac.callerID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	user, err := ac.authService.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user, "Profile retrieved successfully")
}

// UpdateProfile changes the caller's name or department
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	id, err := ac.callerID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	user, err := ac.authService.UpdateProfile(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, user, "Profile updated successfully")
}

// ChangePassword godoc
// @Summary Change the caller's password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} dto.APIResponse
// @Failure 401 {object} dto.ErrorResponse "Current password is wrong"
// @Router /auth/change-password [put]
func (ac *AuthController) ChangePassword(c *gin.Context) {
	id, err := ac.callerID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	if err := ac.authService.ChangePassword(c.Request.Context(), id, &req); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil, "Password changed successfully")
}

// Logout revokes the bearer token of the request
func (ac *AuthController) Logout(c *gin.Context) {
	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := ac.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil, "Logged out successfully")
}
