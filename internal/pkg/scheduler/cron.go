// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a named unit of periodic work
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) (string, error)
}

// JobStatus is the outcome of a job's most recent run
type JobStatus struct {
	Name        string    `json:"name"`
	Schedule    string    `json:"schedule"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

// CronManager manages all scheduled jobs
type CronManager struct {
	cron   *cron.Cron
	logger zerolog.Logger
	jobs   []Job

	mu     sync.RWMutex
	status map[string]*JobStatus
}

// NewCronManager creates a manager. Schedules use the standard five-field
// syntax plus descriptors such as "@every 24h".
func NewCronManager(logger zerolog.Logger) *CronManager {
	return &CronManager{
		cron:   cron.New(),
		logger: logger,
		status: make(map[string]*JobStatus),
	}
}

// Register adds a job; must be called before Start
func (m *CronManager) Register(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("job must have a name and a run function")
	}
	if _, err := cron.ParseStandard(job.Schedule); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", job.Schedule, job.Name, err)
	}
	m.jobs = append(m.jobs, job)

	m.mu.Lock()
	m.status[job.Name] = &JobStatus{Name: job.Name, Schedule: job.Schedule, Status: "scheduled"}
	m.mu.Unlock()
	return nil
}

// Start schedules every registered job
func (m *CronManager) Start() error {
	m.logger.Info().Int("jobs", len(m.jobs)).Msg("Starting cron jobs...")

	for _, job := range m.jobs {
		job := job
		if _, err := m.cron.AddFunc(job.Schedule, func() { m.RunNow(context.Background(), job.Name) }); err != nil {
			return err
		}
	}
	m.cron.Start()

	m.logger.Info().Msg("Cron jobs started successfully")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (m *CronManager) Stop() {
	m.logger.Info().Msg("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info().Msg("Cron jobs stopped")
}

// RunNow executes a job synchronously, recording its outcome
func (m *CronManager) RunNow(ctx context.Context, name string) error {
	var job *Job
	for i := range m.jobs {
		if m.jobs[i].Name == name {
			job = &m.jobs[i]
			break
		}
	}
	if job == nil {
		return fmt.Errorf("unknown job %s", name)
	}

	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	m.logJobStart(job.Name)
	message, err := func() (msg string, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panic: %v", r)
			}
		}()
		return job.Run(ctx)
	}()
	if err != nil {
		m.logJobError(job.Name, err)
		return err
	}
	m.logJobComplete(job.Name, message)
	return nil
}

// Statuses returns a snapshot of every job's last outcome
func (m *CronManager) Statuses() []JobStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]JobStatus, 0, len(m.jobs))
	for _, job := range m.jobs {
		if s, ok := m.status[job.Name]; ok {
			out = append(out, *s)
		}
	}
	return out
}

func (m *CronManager) logJobStart(name string) {
	m.logger.Info().Str("job", name).Msg("Starting job")

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status[name]
	s.Status = "running"
	s.StartedAt = time.Now()
	s.Error = ""
	s.Message = ""
}

func (m *CronManager) logJobComplete(name, message string) {
	m.logger.Info().Str("job", name).Str("result", message).Msg("Completed job")

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status[name]
	s.Status = "completed"
	s.Message = message
	s.CompletedAt = time.Now()
}

func (m *CronManager) logJobError(name string, err error) {
	m.logger.Error().Err(err).Str("job", name).Msg("Error in job")

	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.status[name]
	s.Status = "failed"
	s.Error = err.Error()
	s.CompletedAt = time.Now()
}
