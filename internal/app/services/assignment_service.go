package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// AssignmentService manages assignments and their expiry
type AssignmentService struct {
	*ContentService[models.Assignment, *models.Assignment]
}

// NewAssignmentService creates an AssignmentService
func NewAssignmentService(store repositories.Store[models.Assignment], users UserDirectory, publisher events.Publisher, logger zerolog.Logger) *AssignmentService {
	return &AssignmentService{
		ContentService: NewContentService[models.Assignment, *models.Assignment](store, ContentConfig[models.Assignment]{
			Entity:      "assignment",
			Kind:        events.KindAssignment,
			OwnerField:  "instructor",
			Body:        assignmentBody,
			CheckCreate: checkDueDate,
		}, users, publisher, logger),
	}
}

func assignmentBody(a *models.Assignment) string {
	return fmt.Sprintf("Assignment: %s\n\nDescription:\n%s\n\nDue Date: %s\nMax Marks: %d",
		a.Title, a.Description, a.DueDate.Format(time.RFC3339), a.MaxMarks)
}

func checkDueDate(a *models.Assignment, now time.Time) error {
	if !a.DueDate.After(now) {
		return apperrors.NewValidationError("Assignment validation failed", map[string]interface{}{
			"dueDate": "due date must be in the future",
		})
	}
	return nil
}

// FindActive lists active assignments
func (s *AssignmentService) FindActive(ctx context.Context, opts query.Options) (*query.Result[*models.Assignment], error) {
	return s.findWhere(ctx, opts, query.Eq("isActive", true))
}

// FindExpired lists assignments past their due date that are still active
func (s *AssignmentService) FindExpired(ctx context.Context, opts query.Options) (*query.Result[*models.Assignment], error) {
	opts.Filter = opts.Filter.Without("dueDate").And(query.Lt("dueDate", s.Now()))
	return s.FindActive(ctx, opts)
}

// FindUpcoming lists active assignments due within the next days days, soonest first
func (s *AssignmentService) FindUpcoming(ctx context.Context, days int, opts query.Options) (*query.Result[*models.Assignment], error) {
	if days < 1 {
		days = 7
	}
	now := s.Now()
	opts.Filter = opts.Filter.Without("dueDate").And(
		query.Gte("dueDate", now),
		query.Lte("dueDate", now.AddDate(0, 0, days)),
	)
	if len(opts.Sort) == 0 {
		opts.Sort = []query.SortField{{Field: "dueDate"}}
	}
	return s.FindActive(ctx, opts)
}

// DeactivateExpired marks every active assignment past its due date as
// inactive and returns how many changed. Running it again is a no-op.
func (s *AssignmentService) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := s.Store().UpdateMany(ctx,
		query.Filter{query.Lt("dueDate", s.Now()), query.Eq("isActive", true)},
		map[string]interface{}{"isActive": false},
	)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("count", n).Msg("Deactivated expired assignments")
	}
	return n, nil
}
