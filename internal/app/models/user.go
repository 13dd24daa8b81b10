package models

import (
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account of the platform
type User struct {
	ID         primitive.ObjectID `json:"_id"`
	Email      string             `json:"email"`
	Password   string             `json:"-"` // bcrypt hash
	FirstName  string             `json:"firstName"`
	LastName   string             `json:"lastName"`
	Role       Role               `json:"role"`
	StudentID  string             `json:"studentId,omitempty"`
	EmployeeID string             `json:"employeeId,omitempty"`
	Department string             `json:"department"`
	IsActive   bool               `json:"isActive"`
	LastLogin  *time.Time         `json:"lastLogin,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// FullName joins first and last name
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// MarshalJSON adds the derived fullName field
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return marshalWith(plain(u), map[string]interface{}{"fullName": u.FullName()})
}

// Profile returns the populated owner view of the user
func (u User) Profile() *OwnerProfile {
	return &OwnerProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
	}
}

// GetID returns the user id
func (u User) GetID() primitive.ObjectID { return u.ID }

// SetID sets the user id
func (u *User) SetID(id primitive.ObjectID) { u.ID = id }

// Touch maintains the timestamps
func (u *User) Touch(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// Validate normalizes and checks the account fields
func (u *User) Validate() error {
	errs := fieldErrors{}

	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.StudentID = strings.TrimSpace(u.StudentID)
	u.EmployeeID = strings.TrimSpace(u.EmployeeID)
	u.Department = strings.TrimSpace(u.Department)

	errs.required("email", u.Email)
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			errs.add("email", "please enter a valid email")
		}
	}
	errs.required("password", u.Password)
	errs.required("firstName", u.FirstName)
	errs.maxLen("firstName", u.FirstName, 50)
	errs.required("lastName", u.LastName)
	errs.maxLen("lastName", u.LastName, 50)
	errs.required("department", u.Department)

	if u.Role == "" {
		u.Role = RoleStudent
	}
	if !u.Role.Valid() {
		errs.add("role", "role must be one of student, instructor, admin")
	}

	return errs.err("User")
}
