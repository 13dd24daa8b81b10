package services_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/scheduler"
)

var _ = Describe("AdminService", func() {
	var (
		ctx   context.Context
		repos *repositories.Repositories
		c     *cache.MemoryCache
	)

	BeforeEach(func() {
		ctx = context.Background()
		repos = repositories.NewMemoryRepositories()
		c = cache.NewMemoryCache(0)
	})

	Describe("Dashboard", func() {
		BeforeEach(func() {
			notes := services.NewNoteService(repos.Notes, repos.Users, nil, testLogger)
			author := newActor(models.RoleInstructor, "Ada Lovelace")
			for _, public := range []bool{true, true, false} {
				_, err := notes.CreateAs(ctx, author, noteDraft("Stats", public))
				Expect(err).To(BeNil())
			}
			users := services.NewUserService(repos.Users, testLogger)
			for i, role := range []models.Role{models.RoleStudent, models.RoleInstructor} {
				_, err := users.Create(ctx, &models.User{
					Email: string(rune('a'+i)) + "@example.com", Password: "hash",
					FirstName: "F", LastName: "L", Role: role, Department: "D", IsActive: true,
				})
				Expect(err).To(BeNil())
			}
		})

		Specify("counts every kind and caches the result", func() {
			admin := services.NewAdminService(repos, c, nil, nil, "test", testLogger)

			d, err := admin.Dashboard(ctx)
			Expect(err).To(BeNil())
			Expect(d.Users.Total).To(BeEquivalentTo(2))
			Expect(d.Notes.Total).To(BeEquivalentTo(3))
			Expect(*d.Notes.Public).To(BeEquivalentTo(2))
			Expect(d.Assignments.Total).To(BeZero())
			Expect(d.UsersByRole["student"].Total).To(BeEquivalentTo(1))
			Expect(d.UsersByRole["admin"].Total).To(BeZero())

			notes := services.NewNoteService(repos.Notes, repos.Users, nil, testLogger)
			_, err = notes.CreateAs(ctx, newActor(models.RoleInstructor, "Late"), noteDraft("Later", true))
			Expect(err).To(BeNil())

			cached, err := admin.Dashboard(ctx)
			Expect(err).To(BeNil())
			Expect(cached.Notes.Total).To(BeEquivalentTo(3))
		})
	})

	Describe("Health", func() {
		Specify("is healthy when every component answers", func() {
			admin := services.NewAdminService(repos, c, map[string]services.Pinger{
				"database": services.PingFunc(func(context.Context) error { return nil }),
			}, nil, "1.2.3", testLogger)

			h := admin.Health(ctx)
			Expect(h.Status).To(Equal("healthy"))
			Expect(h.Version).To(Equal("1.2.3"))
			Expect(h.Components["database"].Status).To(Equal("up"))
		})

		Specify("is degraded when a component fails", func() {
			admin := services.NewAdminService(repos, c, map[string]services.Pinger{
				"database": services.PingFunc(func(context.Context) error { return nil }),
				"cache":    services.PingFunc(func(context.Context) error { return errors.New("connection refused") }),
			}, nil, "1.2.3", testLogger)

			h := admin.Health(ctx)
			Expect(h.Status).To(Equal("degraded"))
			Expect(h.Components["cache"].Status).To(Equal("down"))
			Expect(h.Components["cache"].Error).To(Equal("connection refused"))
		})

		Specify("reports job statuses", func() {
			jobs := scheduler.NewCronManager(testLogger)
			Expect(jobs.Register(scheduler.Job{
				Name:     "noop",
				Schedule: "@every 1h",
				Run:      func(context.Context) (string, error) { return "ok", nil },
			})).To(Succeed())

			admin := services.NewAdminService(repos, c, nil, jobs, "1.2.3", testLogger)
			h := admin.Health(ctx)
			statuses, ok := h.Jobs.([]scheduler.JobStatus)
			Expect(ok).To(BeTrue())
			Expect(statuses).To(HaveLen(1))
			Expect(statuses[0].Status).To(Equal("scheduled"))
		})
	})
})
