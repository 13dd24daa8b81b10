package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/metrics"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/scheduler"
)

// SweepJobName is the scheduler name of the expired-assignment sweep
const SweepJobName = "deactivate-expired-assignments"

// Deactivator is the part of the assignment service the sweep needs
type Deactivator interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// AssignmentSweep builds the job that deactivates assignments past their due date
func AssignmentSweep(svc Deactivator, schedule string) scheduler.Job {
	return scheduler.Job{
		Name:     SweepJobName,
		Schedule: schedule,
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context) (string, error) {
			n, err := svc.DeactivateExpired(ctx)
			metrics.SweepRuns.WithLabelValues(metrics.Result(err)).Inc()
			if err != nil {
				return "", err
			}
			metrics.SweepDeactivated.Add(float64(n))
			return fmt.Sprintf("deactivated %d assignments", n), nil
		},
	}
}

// RegisterAll adds every maintenance job to the manager
func RegisterAll(m *scheduler.CronManager, assignments Deactivator, sweepSchedule string) error {
	return m.Register(AssignmentSweep(assignments, sweepSchedule))
}
