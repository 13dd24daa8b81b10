package scheduler_test

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/scheduler"
)

var _ = Describe("CronManager", func() {
	var m *scheduler.CronManager

	BeforeEach(func() {
		m = scheduler.NewCronManager(zerolog.Nop())
	})

	Specify("rejects invalid jobs", func() {
		Expect(m.Register(scheduler.Job{Name: "x", Schedule: "@every 1h"})).NotTo(Succeed())
		Expect(m.Register(scheduler.Job{
			Name: "x", Schedule: "every now and then",
			Run: func(context.Context) (string, error) { return "", nil },
		})).NotTo(Succeed())
	})

	Specify("RunNow records the outcome", func() {
		Expect(m.Register(scheduler.Job{
			Name: "hello", Schedule: "0 3 * * *",
			Run: func(context.Context) (string, error) { return "done", nil },
		})).To(Succeed())
		Expect(m.Statuses()[0].Status).To(Equal("scheduled"))

		Expect(m.RunNow(context.Background(), "hello")).To(Succeed())
		s := m.Statuses()[0]
		Expect(s.Status).To(Equal("completed"))
		Expect(s.Message).To(Equal("done"))
		Expect(s.CompletedAt.IsZero()).To(BeFalse())
	})

	Specify("panics are turned into failures", func() {
		Expect(m.Register(scheduler.Job{
			Name: "boom", Schedule: "@every 1h",
			Run: func(context.Context) (string, error) { panic("kaboom") },
		})).To(Succeed())

		err := m.RunNow(context.Background(), "boom")
		Expect(err).To(MatchError(ContainSubstring("kaboom")))
		Expect(m.Statuses()[0].Status).To(Equal("failed"))
	})

	Specify("the job timeout bounds the context", func() {
		Expect(m.Register(scheduler.Job{
			Name: "slow", Schedule: "@every 1h", Timeout: 10 * time.Millisecond,
			Run: func(ctx context.Context) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
		})).To(Succeed())

		Expect(m.RunNow(context.Background(), "slow")).To(MatchError(context.DeadlineExceeded))
	})

	Specify("unknown jobs fail", func() {
		Expect(m.RunNow(context.Background(), "nope")).NotTo(Succeed())
	})

	Specify("started jobs run on schedule and stop cleanly", func() {
		var runs int32
		Expect(m.Register(scheduler.Job{
			Name: "tick", Schedule: "@every 1s",
			Run: func(context.Context) (string, error) {
				atomic.AddInt32(&runs, 1)
				return "", nil
			},
		})).To(Succeed())

		Expect(m.Start()).To(Succeed())
		Eventually(func() int32 { return atomic.LoadInt32(&runs) }, 3*time.Second).Should(BeNumerically(">=", 1))
		m.Stop()
	})
})
