package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

var _ = Describe("AssignmentService", func() {
	var (
		ctx         context.Context
		repos       *repositories.Repositories
		assignments *services.AssignmentService
		instructor  *auth.Actor
		now         time.Time
	)

	draft := func(title string, due time.Time) *models.Assignment {
		return &models.Assignment{
			ContentMeta: models.ContentMeta{
				Subject:    "Computer Science",
				Course:     "CS201",
				Department: "Engineering",
				IsPublic:   true,
			},
			Title:            title,
			Description:      "Implement " + title,
			DueDate:          due,
			MaxMarks:         100,
			Instructions:     []string{"  read the brief ", " "},
			SubmissionFormat: []string{"PDF", "zip"},
			IsActive:         true,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repos = repositories.NewMemoryRepositories()
		assignments = services.NewAssignmentService(repos.Assignments, repos.Users, nil, testLogger)
		instructor = newActor(models.RoleInstructor, "Barbara Liskov")
		now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		assignments.SetClock(fixedClock(now))
	})

	create := func(title string, due time.Time) *models.Assignment {
		a, err := assignments.CreateAs(ctx, instructor, draft(title, due))
		Expect(err).To(BeNil())
		return a
	}

	Describe("CreateAs", func() {
		Specify("normalizes instructions and formats", func() {
			a := create("Linked lists", now.Add(48*time.Hour))
			Expect(a.Instructions).To(Equal([]string{"read the brief"}))
			Expect(a.SubmissionFormat).To(Equal([]string{"pdf", "zip"}))
			Expect(a.InstructorName).To(Equal("Barbara Liskov"))
		})

		Specify("a due date in the past is rejected", func() {
			_, err := assignments.CreateAs(ctx, instructor, draft("Late", now.Add(-time.Minute)))
			Expect(err).To(MatchAppError(apperrors.ErrValidationFailed))
			Expect(apperrors.DetailsOf(err)).To(HaveKey("dueDate"))
		})

		Specify("unknown submission formats and bad marks are rejected", func() {
			a := draft("Formats", now.Add(time.Hour))
			a.SubmissionFormat = []string{"exe"}
			a.MaxMarks = 0

			_, err := assignments.CreateAs(ctx, instructor, a)
			Expect(err).To(MatchAppError(apperrors.ErrValidationFailed))
			Expect(apperrors.DetailsOf(err)).To(HaveKey("submissionFormat"))
			Expect(apperrors.DetailsOf(err)).To(HaveKey("maxMarks"))
		})
	})

	Describe("time windows", func() {
		BeforeEach(func() {
			assignments.SetClock(fixedClock(now.Add(-30 * 24 * time.Hour)))
			create("Already due", now.Add(-24*time.Hour))
			create("Due tomorrow", now.Add(24*time.Hour))
			create("Due in three days", now.Add(72*time.Hour))
			create("Due next month", now.Add(30*24*time.Hour))
			assignments.SetClock(fixedClock(now))
		})

		Specify("FindExpired lists active assignments past their due date", func() {
			res, err := assignments.FindExpired(ctx, query.Options{})
			Expect(err).To(BeNil())
			Expect(res.Items).To(HaveLen(1))
			Expect(res.Items[0].Title).To(Equal("Already due"))
			Expect(res.Items[0].StatusAt(now)).To(Equal(models.AssignmentStatusExpired))
		})

		Specify("FindUpcoming lists the window soonest first", func() {
			res, err := assignments.FindUpcoming(ctx, 7, query.Options{})
			Expect(err).To(BeNil())
			Expect(res.Items).To(HaveLen(2))
			Expect(res.Items[0].Title).To(Equal("Due tomorrow"))
			Expect(res.Items[1].Title).To(Equal("Due in three days"))
		})

		Specify("FindUpcoming defaults to a week", func() {
			res, err := assignments.FindUpcoming(ctx, 0, query.Options{})
			Expect(err).To(BeNil())
			Expect(res.Total).To(BeEquivalentTo(2))
		})

		Specify("DeactivateExpired is idempotent", func() {
			n, err := assignments.DeactivateExpired(ctx)
			Expect(err).To(BeNil())
			Expect(n).To(BeEquivalentTo(1))

			n, err = assignments.DeactivateExpired(ctx)
			Expect(err).To(BeNil())
			Expect(n).To(BeZero())

			expired, err := assignments.FindExpired(ctx, query.Options{})
			Expect(err).To(BeNil())
			Expect(expired.Items).To(BeEmpty())

			active, err := assignments.FindActive(ctx, query.Options{})
			Expect(err).To(BeNil())
			Expect(active.Total).To(BeEquivalentTo(3))
		})
	})
})
