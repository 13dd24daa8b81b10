package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/Kamal-Wagle/mucsitbackend/internal/app/controllers"
	appJobs "github.com/Kamal-Wagle/mucsitbackend/internal/app/jobs"
	appMigrations "github.com/Kamal-Wagle/mucsitbackend/internal/app/migrations"
	appRepos "github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	appRoutes "github.com/Kamal-Wagle/mucsitbackend/internal/app/routes"
	appServices "github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/config"
	"github.com/Kamal-Wagle/mucsitbackend/internal/db"
	appMiddleware "github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	pkgAuth "github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/drive"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/logger"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/metrics"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/scheduler"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/validation"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/websocket"
	"github.com/Kamal-Wagle/mucsitbackend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config *config.Config
	Logger zerolog.Logger

	Database *db.PostgresDB // nil with the memory driver
	Repos    *appRepos.Repositories
	Cache    cache.Cache
	Drive    drive.Client
	Bus      *events.Bus
	AMQP     *events.AMQPForwarder // nil unless configured
	Hub      *websocket.Hub
	Cron     *scheduler.CronManager

	JWTService        *pkgAuth.JWTService
	AuthService       *appServices.AuthService
	UserService       *appServices.UserService
	NoteService       *appServices.NoteService
	AssignmentService *appServices.AssignmentService
	ResourceService   *appServices.ResourceService
	DriveFileService  *appServices.DriveFileService
	AdminService      *appServices.AdminService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers

	stopHub context.CancelFunc
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.ConfigFrom(cfg.Logging.Level, cfg.Logging.Format))

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies migrations, or builds the
// in-memory repositories when the memory driver is selected.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, *appRepos.Repositories, error) {
	if cfg.Database.Driver == config.DatabaseDriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return nil, appRepos.NewMemoryRepositories(), nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); errors.Is(err, os.ErrNotExist) {
		database.Close()
		return nil, nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, appRepos.NewRepositories(database.Pool), nil
}

// SetupCache builds the configured cache backend
func SetupCache(cfg *config.Config, lgr zerolog.Logger) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case config.CacheDriverRedis:
		c, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		lgr.Info().Msg("Redis cache connected")
		return c, nil
	default:
		return cache.NewMemoryCache(helpers.ParseDuration(cfg.Cache.CleanupInterval, time.Minute)), nil
	}
}

// SetupDrive builds the configured drive backend, instrumented for metrics
func SetupDrive(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (drive.Client, error) {
	var (
		client drive.Client
		err    error
	)
	switch cfg.Drive.Provider {
	case config.DriveProviderGoogle:
		client, err = drive.NewGoogleClient(ctx, cfg.Drive.CredentialsPath, cfg.Drive.FolderID, logger.Component("drive"))
	case config.DriveProviderS3:
		client, err = drive.NewS3Client(drive.S3Config{
			AccessKey:  cfg.Drive.S3AccessKey,
			SecretKey:  cfg.Drive.S3SecretKey,
			Bucket:     cfg.Drive.S3Bucket,
			Region:     cfg.Drive.S3Region,
			Endpoint:   cfg.Drive.S3Endpoint,
			PresignTTL: helpers.ParseDuration(cfg.Drive.PresignTTL, 24*time.Hour),
		}, logger.Component("drive"))
	default:
		client, err = drive.NewLocalClient(cfg.Drive.LocalPath, cfg.Drive.LocalBaseURL)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s drive: %w", cfg.Drive.Provider, err)
	}
	lgr.Info().Str("provider", cfg.Drive.Provider).Msg("Drive backend initialized")
	return drive.Instrument(client, cfg.Drive.Provider), nil
}

// BuildDependencies initializes storage, services, background workers and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (_ *Dependencies, err error) {
	deps := &Dependencies{Config: cfg, Logger: lgr}
	defer func() {
		if err != nil {
			deps.Close(context.Background())
		}
	}()

	if deps.Database, deps.Repos, err = SetupDatabase(ctx, cfg, lgr); err != nil {
		return nil, err
	}
	if deps.Cache, err = SetupCache(cfg, lgr); err != nil {
		return nil, err
	}
	if deps.Drive, err = SetupDrive(ctx, cfg, lgr); err != nil {
		return nil, err
	}

	// Event bus and its subscribers
	deps.Bus = events.NewBus(logger.Component("events"), 30*time.Second)
	deps.Hub = websocket.NewHub(logger.Component("feed"))
	hubCtx, stopHub := context.WithCancel(context.Background())
	deps.stopHub = stopHub
	go deps.Hub.Run(hubCtx)
	deps.Bus.Subscribe(deps.Hub)

	if cfg.Drive.AutoBackup {
		deps.Bus.Subscribe(appJobs.NewDriveBackup(deps.Drive, logger.Component("backup")))
	}
	if cfg.Events.AMQPURL != "" {
		deps.AMQP, err = events.NewAMQPForwarder(cfg.Events.AMQPURL, cfg.Events.Exchange, logger.Component("amqp"))
		if err != nil {
			// the broker is optional
			lgr.Warn().Err(err).Msg("AMQP forwarder disabled")
			err = nil
		} else {
			deps.Bus.Subscribe(deps.AMQP)
		}
	}

	// Services
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenExp:    cfg.JWTExpiration(),
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.AuthService = appServices.NewAuthService(deps.Repos.Users, deps.JWTService, deps.Cache, logger.Component("auth"))
	deps.UserService = appServices.NewUserService(deps.Repos.Users, logger.Component("users"))
	deps.NoteService = appServices.NewNoteService(deps.Repos.Notes, deps.Repos.Users, deps.Bus, logger.Component("notes"))
	deps.AssignmentService = appServices.NewAssignmentService(deps.Repos.Assignments, deps.Repos.Users, deps.Bus, logger.Component("assignments"))
	deps.ResourceService = appServices.NewResourceService(deps.Repos.Resources, deps.Repos.Users, deps.Bus, logger.Component("resources"))
	deps.DriveFileService = appServices.NewDriveFileService(deps.Repos.DriveFiles, deps.Drive, deps.Repos.Users, deps.Bus, logger.Component("drive"))

	// Scheduled jobs
	deps.Cron = scheduler.NewCronManager(logger.Component("scheduler"))
	if err = appJobs.RegisterAll(deps.Cron, deps.AssignmentService, cfg.Jobs.SweepSchedule); err != nil {
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	components := map[string]appServices.Pinger{}
	if deps.Database != nil {
		components["database"] = deps.Database
	}
	if rc, ok := deps.Cache.(*cache.RedisCache); ok {
		components["cache"] = rc
	}
	deps.AdminService = appServices.NewAdminService(deps.Repos, deps.Cache, components, deps.Cron, cfg.Server.Version, logger.Component("admin"))

	if err = seed.CreateDefaultAdmin(ctx, deps.Repos.Users, deps.AuthService, seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
		err = nil
	}

	// HTTP layer
	if err = validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, logger.Component("auth")),
		Notes:      appControllers.NewNoteController(deps.NoteService),
		Assignment: appControllers.NewAssignmentController(deps.AssignmentService),
		Resources: appControllers.NewResourceController(deps.ResourceService, deps.Cache,
			helpers.ParseDuration(cfg.Cache.DefaultTTL, 5*time.Minute)),
		Drive:  appControllers.NewDriveController(deps.DriveFileService, int64(cfg.Server.MaxUploadMB)<<20),
		Admin:  appControllers.NewAdminController(deps.AdminService, deps.UserService),
		Health: appControllers.NewHealthController(cfg.Server.Version),
		Feed:   websocket.NewHandler(deps.Hub, feedIdentity, logger.Component("feed")),
	}

	return deps, nil
}

func feedIdentity(c *gin.Context) (string, bool) {
	actor := appMiddleware.ActorFrom(c)
	if actor == nil {
		return "", false
	}
	return actor.ID.Hex(), actor.IsAdmin()
}

// StartWorkers starts the scheduler and runs the startup sweep when enabled
func (d *Dependencies) StartWorkers(ctx context.Context) error {
	if err := d.Cron.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	if d.Config.Jobs.SweepOnStart {
		if err := d.Cron.RunNow(ctx, appJobs.SweepJobName); err != nil {
			d.Logger.Error().Err(err).Msg("Startup sweep failed")
		}
	}
	return nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.Component("http")),
		appMiddleware.SecurityHeaders(),
		metrics.Middleware(),
		appMiddleware.NewTokenBucket(cfg.RateLimit.MaxRequests, cfg.RateLimitWindow()).GinMiddleware(),
		appMiddleware.MaxBodySize(int64(cfg.Server.MaxUploadMB)<<20),
	)

	authLimiter := appMiddleware.NewTokenBucket(cfg.RateLimit.AuthMaxRequests, cfg.RateLimitWindow()).GinMiddleware()
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, authLimiter)

	if cfg.Drive.Provider == config.DriveProviderLocal {
		setupStaticFileServing(router, cfg, lgr)
	}

	return router
}

// setupStaticFileServing serves the local drive directory
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Drive.LocalPath
	if err := os.MkdirAll(uploadPath, 0o755); err != nil {
		lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
		return
	}
	router.Static(cfg.Drive.LocalBaseURL, uploadPath)
	lgr.Info().Str("path", uploadPath).Str("url", cfg.Drive.LocalBaseURL).Msg("Static file serving configured for uploads directory")
}

// Close stops background workers and releases connections in dependency order
func (d *Dependencies) Close(ctx context.Context) {
	if d.Cron != nil {
		d.Cron.Stop()
	}
	if d.stopHub != nil {
		d.stopHub()
	}
	if d.Bus != nil {
		done := make(chan struct{})
		go func() {
			d.Bus.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			d.Logger.Warn().Msg("Event deliveries still in flight at shutdown")
		}
	}
	if d.AMQP != nil {
		if err := d.AMQP.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close AMQP connection")
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close cache")
		}
	}
	if d.Database != nil {
		d.Database.Close()
	}
}
