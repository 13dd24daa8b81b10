package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
)

const MaxAssignmentDescriptionLength = 10000

// SubmissionFormats lists the accepted file extensions for submissions
var SubmissionFormats = []string{"pdf", "doc", "docx", "txt", "zip", "ppt", "pptx"}

// Assignment statuses derived at read time
const (
	AssignmentStatusActive   = "Active"
	AssignmentStatusExpired  = "Expired"
	AssignmentStatusInactive = "Inactive"
)

// Assignment is coursework published by an instructor
type Assignment struct {
	ContentMeta
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	DueDate          time.Time `json:"dueDate"`
	MaxMarks         int       `json:"maxMarks"`
	Instructions     []string  `json:"instructions"`
	SubmissionFormat []string  `json:"submissionFormat"`
	IsActive         bool      `json:"isActive"`
	Instructor       OwnerRef  `json:"instructor"`
	InstructorName   string    `json:"instructorName"`
}

// OwnerID returns the instructor id
func (a Assignment) OwnerID() primitive.ObjectID { return a.Instructor.ID }

// OwnerName returns the denormalized instructor name
func (a Assignment) OwnerName() string { return a.InstructorName }

// AssignOwner sets the instructor
func (a *Assignment) AssignOwner(id primitive.ObjectID, name string) {
	a.Instructor = OwnerRef{ID: id}
	a.InstructorName = name
}

// PopulateOwner attaches the instructor's profile
func (a *Assignment) PopulateOwner(p *OwnerProfile) { a.Instructor.Profile = p }

// DisplayTitle returns the assignment title
func (a Assignment) DisplayTitle() string { return a.Title }

// StatusAt returns Inactive, Expired or Active as of now
func (a Assignment) StatusAt(now time.Time) string {
	switch {
	case !a.IsActive:
		return AssignmentStatusInactive
	case a.DueDate.Before(now):
		return AssignmentStatusExpired
	default:
		return AssignmentStatusActive
	}
}

// MarshalJSON adds the derived status and timeRemaining fields
func (a Assignment) MarshalJSON() ([]byte, error) {
	type plain Assignment
	now := time.Now()
	return marshalWith(plain(a), map[string]interface{}{
		"status":        a.StatusAt(now),
		"timeRemaining": helpers.HumanizeRemaining(a.DueDate.Sub(now)),
	})
}

// Validate normalizes and checks the assignment. The future due date rule is
// enforced on creation by the service, since stored assignments legitimately expire.
func (a *Assignment) Validate() error {
	errs := fieldErrors{}
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)

	errs.required("title", a.Title)
	errs.maxLen("title", a.Title, MaxTitleLength)
	errs.required("description", a.Description)
	errs.maxLen("description", a.Description, MaxAssignmentDescriptionLength)
	a.ContentMeta.validate(errs, true)

	if a.DueDate.IsZero() {
		errs.add("dueDate", "dueDate is required")
	}
	if a.MaxMarks < 1 {
		errs.add("maxMarks", "maximum marks must be at least 1")
	}

	instructions := make([]string, 0, len(a.Instructions))
	for _, step := range a.Instructions {
		if step = strings.TrimSpace(step); step != "" {
			instructions = append(instructions, step)
		}
	}
	a.Instructions = instructions

	formats := make([]string, 0, len(a.SubmissionFormat))
	for _, f := range a.SubmissionFormat {
		f = strings.ToLower(strings.TrimSpace(f))
		if !IsSubmissionFormat(f) {
			errs.add("submissionFormat", "submission format must be one of "+strings.Join(SubmissionFormats, ", "))
		}
		formats = append(formats, f)
	}
	a.SubmissionFormat = formats

	if a.Instructor.ID.IsZero() {
		errs.add("instructor", "instructor is required")
	}
	errs.required("instructorName", a.InstructorName)

	return errs.err("Assignment")
}

// IsSubmissionFormat reports whether f is an accepted submission format
func IsSubmissionFormat(f string) bool {
	for _, s := range SubmissionFormats {
		if s == f {
			return true
		}
	}
	return false
}
