package dto

import "time"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a self-registration. Students must supply a
// studentId, instructors and admins an employeeId.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8,strongpassword"`
	FirstName  string `json:"firstName" binding:"required,max=50"`
	LastName   string `json:"lastName" binding:"required,max=50"`
	Role       string `json:"role" binding:"required,oneof=student instructor admin"`
	StudentID  string `json:"studentId" binding:"required_if=Role student"`
	EmployeeID string `json:"employeeId" binding:"required_if=Role instructor,required_if=Role admin"`
	Department string `json:"department" binding:"required"`
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName  *string `json:"firstName" binding:"omitempty,min=1,max=50"`
	LastName   *string `json:"lastName" binding:"omitempty,min=1,max=50"`
	Department *string `json:"department" binding:"omitempty,min=1"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,strongpassword"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType" example:"Bearer"`
	ExpiresIn   int64     `json:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	User  interface{}   `json:"user"`
	Token TokenResponse `json:"token"`
}
