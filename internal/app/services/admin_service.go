package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/scheduler"
)

const (
	dashboardCacheKey = "admin:dashboard"
	dashboardCacheTTL = 60 * time.Second
)

// Pinger is a dependency whose liveness the health endpoint reports
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function into a Pinger
type PingFunc func(ctx context.Context) error

// Ping calls f
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// AdminService computes platform statistics and health
type AdminService struct {
	repos      *repositories.Repositories
	cache      cache.Cache
	components map[string]Pinger
	jobs       *scheduler.CronManager
	version    string
	startedAt  time.Time
	logger     zerolog.Logger
}

// NewAdminService creates an AdminService. jobs may be nil.
func NewAdminService(repos *repositories.Repositories, c cache.Cache, components map[string]Pinger, jobs *scheduler.CronManager, version string, logger zerolog.Logger) *AdminService {
	return &AdminService{
		repos:      repos,
		cache:      c,
		components: components,
		jobs:       jobs,
		version:    version,
		startedAt:  time.Now(),
		logger:     logger.With().Str("service", "admin").Logger(),
	}
}

type counter interface {
	Count(ctx context.Context, filter query.Filter, search string) (int64, error)
}

// Dashboard counts every entity kind concurrently. A failing count is reported
// in its own entry and never fails the others. Results are cached briefly.
func (s *AdminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	var cached dto.DashboardResponse
	if err := cache.GetJSON(ctx, s.cache, dashboardCacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn().Err(err).Msg("Dashboard cache read failed")
	}

	out := &dto.DashboardResponse{
		UsersByRole: make(map[string]dto.DashboardStat, 3),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	var mu sync.Mutex

	stat := func(ctx context.Context, c counter, withPublic bool) dto.DashboardStat {
		var st dto.DashboardStat
		total, err := c.Count(ctx, nil, "")
		if err != nil {
			st.Error = err.Error()
			return st
		}
		st.Total = total
		if withPublic {
			public, err := c.Count(ctx, query.Filter{query.Eq("isPublic", true)}, "")
			if err != nil {
				st.Error = err.Error()
				return st
			}
			st.Public = &public
		}
		return st
	}

	// errors are folded into the entries, so the group never fails
	var g errgroup.Group
	g.Go(func() error { out.Users = stat(ctx, s.repos.Users, false); return nil })
	g.Go(func() error { out.Notes = stat(ctx, s.repos.Notes, true); return nil })
	g.Go(func() error { out.Assignments = stat(ctx, s.repos.Assignments, true); return nil })
	g.Go(func() error { out.Resources = stat(ctx, s.repos.Resources, true); return nil })
	g.Go(func() error { out.DriveFiles = stat(ctx, s.repos.DriveFiles, true); return nil })
	for _, role := range []models.Role{models.RoleStudent, models.RoleInstructor, models.RoleAdmin} {
		role := role
		g.Go(func() error {
			var st dto.DashboardStat
			n, err := s.repos.Users.Count(ctx, query.Filter{query.Eq("role", role)}, "")
			if err != nil {
				st.Error = err.Error()
			}
			st.Total = n
			mu.Lock()
			out.UsersByRole[string(role)] = st
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := cache.SetJSON(ctx, s.cache, dashboardCacheKey, out, dashboardCacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Dashboard cache write failed")
	}
	return out, nil
}

// Health pings every registered component
func (s *AdminService) Health(ctx context.Context) *dto.SystemHealthResponse {
	out := &dto.SystemHealthResponse{
		Status:     "healthy",
		Uptime:     time.Since(s.startedAt).Round(time.Second).String(),
		Version:    s.version,
		Components: make(map[string]dto.ComponentHealth, len(s.components)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, p := range s.components {
		name, p := name, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()

			h := dto.ComponentHealth{Status: "up"}
			if err := p.Ping(pctx); err != nil {
				h = dto.ComponentHealth{Status: "down", Error: err.Error()}
			}
			mu.Lock()
			out.Components[name] = h
			if h.Status != "up" {
				out.Status = "degraded"
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if s.jobs != nil {
		out.Jobs = s.jobs.Statuses()
	}
	return out
}
