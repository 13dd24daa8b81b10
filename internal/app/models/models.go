package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
)

// Role defines the user role type
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// Entity is anything the generic stores and services persist
type Entity interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
	// Touch sets createdAt when still zero and always refreshes updatedAt
	Touch(now time.Time)
	Validate() error
}

// EntityPtr constrains a type parameter to a pointer to E implementing Entity
type EntityPtr[E any] interface {
	*E
	Entity
}

// Content is an entity owned by a user with public/private visibility and counters
type Content interface {
	Entity
	OwnerID() primitive.ObjectID
	OwnerName() string
	Public() bool
	// AssignOwner sets the owner reference and the denormalized owner name
	AssignOwner(id primitive.ObjectID, name string)
	// PopulateOwner replaces the owner reference with the owner's profile
	PopulateOwner(p *OwnerProfile)
	DisplayTitle() string
}

// ContentPtr constrains a type parameter to a pointer to E implementing Content
type ContentPtr[E any] interface {
	*E
	Content
}

// OwnerProfile is the populated view of an owner reference
type OwnerProfile struct {
	ID        primitive.ObjectID `json:"_id"`
	FirstName string             `json:"firstName"`
	LastName  string             `json:"lastName"`
	FullName  string             `json:"fullName"`
}

// OwnerRef references the owning user. It serializes as the bare id, or as the
// profile object once populated.
type OwnerRef struct {
	ID      primitive.ObjectID
	Profile *OwnerProfile
}

// MarshalJSON implements json.Marshaler
func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if o.Profile != nil {
		return json.Marshal(o.Profile)
	}
	return json.Marshal(o.ID.Hex())
}

// UnmarshalJSON accepts either form written by MarshalJSON
func (o *OwnerRef) UnmarshalJSON(b []byte) error {
	var hex string
	if err := json.Unmarshal(b, &hex); err == nil {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return err
		}
		o.ID, o.Profile = id, nil
		return nil
	}
	var p OwnerProfile
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	o.ID, o.Profile = p.ID, &p
	return nil
}

// ContentMeta holds the fields shared by every content kind
type ContentMeta struct {
	ID         primitive.ObjectID `json:"_id"`
	Subject    string             `json:"subject"`
	Course     string             `json:"course"`
	Department string             `json:"department"`
	Tags       []string           `json:"tags"`
	IsPublic   bool               `json:"isPublic"`
	Views      int64              `json:"views"`
	Downloads  int64              `json:"downloads"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// GetID returns the entity id
func (m ContentMeta) GetID() primitive.ObjectID { return m.ID }

// SetID sets the entity id
func (m *ContentMeta) SetID(id primitive.ObjectID) { m.ID = id }

// Public reports the visibility flag
func (m ContentMeta) Public() bool { return m.IsPublic }

// Touch maintains the timestamps
func (m *ContentMeta) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

func (m *ContentMeta) validate(errs fieldErrors, requireCourse bool) {
	m.Subject = strings.TrimSpace(m.Subject)
	m.Course = strings.TrimSpace(m.Course)
	m.Department = strings.TrimSpace(m.Department)
	m.Tags = NormalizeTags(m.Tags)

	if requireCourse {
		errs.required("subject", m.Subject)
		errs.required("course", m.Course)
	}
	errs.required("department", m.Department)
	if m.Views < 0 {
		errs.add("views", "views cannot be negative")
	}
	if m.Downloads < 0 {
		errs.add("downloads", "downloads cannot be negative")
	}
}

// NormalizeTags trims, lowercases and drops empty tags
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// fieldErrors collects per-field validation messages
type fieldErrors map[string]interface{}

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		f.add(field, fmt.Sprintf("%s is required", field))
	}
}

func (f fieldErrors) maxLen(field, value string, max int) {
	if len([]rune(value)) > max {
		f.add(field, fmt.Sprintf("%s cannot exceed %d characters", field, max))
	}
}

func (f fieldErrors) url(field, value string) {
	u, err := url.ParseRequestURI(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		f.add(field, fmt.Sprintf("%s must be a valid URL", field))
	}
}

func (f fieldErrors) err(entity string) error {
	if len(f) == 0 {
		return nil
	}
	return apperrors.NewValidationError(entity+" validation failed", map[string]interface{}(f))
}

// Excerpt returns the first n characters of s followed by "..." when truncated
func Excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// marshalWith encodes v and merges extra top-level keys into the resulting object
func marshalWith(v interface{}, extra map[string]interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, x := range extra {
		raw, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}
