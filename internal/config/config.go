package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
)

// Supported storage, cache and drive backends
const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverMemory   = "memory"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"

	DriveProviderGoogle = "google"
	DriveProviderS3     = "s3"
	DriveProviderLocal  = "local"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"PORT"`
		Mode         string `yaml:"mode" env:"NODE_ENV"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		MaxUploadMB  int    `yaml:"max_upload_mb" env:"MAX_UPLOAD_MB"`
		Version      string `yaml:"version" env:"API_VERSION"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret     string `yaml:"secret" env:"JWT_SECRET"`
		Expiration string `yaml:"expiration" env:"JWT_EXPIRES_IN"`
		Issuer     string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	RateLimit struct {
		Window          string `yaml:"window" env:"RATE_LIMIT_WINDOW"`
		MaxRequests     int    `yaml:"max_requests" env:"RATE_LIMIT_MAX_REQUESTS"`
		AuthMaxRequests int    `yaml:"auth_max_requests" env:"RATE_LIMIT_AUTH_MAX_REQUESTS"`
	} `yaml:"rate_limit"`

	Cache struct {
		Driver          string `yaml:"driver" env:"CACHE_DRIVER"`
		RedisURL        string `yaml:"redis_url" env:"REDIS_URL"`
		DefaultTTL      string `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL"`
		CleanupInterval string `yaml:"cleanup_interval" env:"CACHE_CLEANUP_INTERVAL"`
	} `yaml:"cache"`

	Drive struct {
		Provider        string `yaml:"provider" env:"DRIVE_PROVIDER"`
		CredentialsPath string `yaml:"credentials_path" env:"GOOGLE_DRIVE_CREDENTIALS_PATH"`
		FolderID        string `yaml:"folder_id" env:"UNIVERSITY_DRIVE_FOLDER_ID"`
		LocalPath       string `yaml:"local_path" env:"DRIVE_LOCAL_PATH"`
		LocalBaseURL    string `yaml:"local_base_url" env:"DRIVE_LOCAL_BASE_URL"`
		S3Bucket        string `yaml:"s3_bucket" env:"S3_BUCKET"`
		S3Region        string `yaml:"s3_region" env:"S3_REGION"`
		S3Endpoint      string `yaml:"s3_endpoint" env:"S3_ENDPOINT"`
		S3AccessKey     string `yaml:"s3_access_key" env:"S3_ACCESS_KEY"`
		S3SecretKey     string `yaml:"s3_secret_key" env:"S3_SECRET_KEY"`
		PresignTTL      string `yaml:"presign_ttl" env:"S3_PRESIGN_TTL"`
		AutoBackup      bool   `yaml:"auto_backup" env:"DRIVE_AUTO_BACKUP"`
	} `yaml:"drive"`

	Jobs struct {
		SweepSchedule string `yaml:"sweep_schedule" env:"JOBS_SWEEP_SCHEDULE"`
		SweepOnStart  bool   `yaml:"sweep_on_start" env:"JOBS_SWEEP_ON_START"`
	} `yaml:"jobs"`

	Events struct {
		AMQPURL  string `yaml:"amqp_url" env:"AMQP_URL"`
		Exchange string `yaml:"exchange" env:"AMQP_EXCHANGE"`
	} `yaml:"events"`

	Seed struct {
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file and environment variables.
// A .env file in the working directory is loaded first when present; variables
// already set in the process environment win over it.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "60s"
	config.Server.MaxUploadMB = 100
	config.Server.Version = "1.0.0"

	// Database defaults
	config.Database.Driver = DatabaseDriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "mucsit"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	// JWT defaults
	config.JWT.Expiration = "7d"
	config.JWT.Issuer = "mucsit-backend"

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Rate limit defaults (100 requests per 15 minutes, 5 for auth)
	config.RateLimit.Window = "15m"
	config.RateLimit.MaxRequests = 100
	config.RateLimit.AuthMaxRequests = 5

	// Cache defaults
	config.Cache.Driver = CacheDriverMemory
	config.Cache.DefaultTTL = "5m"
	config.Cache.CleanupInterval = "1m"

	// Drive defaults
	config.Drive.Provider = DriveProviderLocal
	config.Drive.LocalPath = "./uploads"
	config.Drive.LocalBaseURL = "/uploads"
	config.Drive.PresignTTL = "24h"
	config.Drive.AutoBackup = true

	// Jobs defaults
	config.Jobs.SweepSchedule = "@every 24h"
	config.Jobs.SweepOnStart = true

	config.Events.Exchange = "content.events"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DatabaseDriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DatabaseDriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := helpers.ParseDurationStrict(config.JWT.Expiration); err != nil {
		return fmt.Errorf("invalid JWT expiration format: %w", err)
	}

	if _, err := helpers.ParseDurationStrict(config.RateLimit.Window); err != nil {
		return fmt.Errorf("invalid rate limit window: %w", err)
	}
	if config.RateLimit.MaxRequests <= 0 || config.RateLimit.AuthMaxRequests <= 0 {
		return fmt.Errorf("rate limit request counts must be positive")
	}

	switch config.Cache.Driver {
	case CacheDriverMemory:
	case CacheDriverRedis:
		if config.Cache.RedisURL == "" {
			return fmt.Errorf("redis url is required for the redis cache driver")
		}
	default:
		return fmt.Errorf("unsupported cache driver %q", config.Cache.Driver)
	}

	switch config.Drive.Provider {
	case DriveProviderGoogle:
		if config.Drive.CredentialsPath == "" {
			return fmt.Errorf("google drive credentials path is required")
		}
	case DriveProviderS3:
		if config.Drive.S3Bucket == "" {
			return fmt.Errorf("s3 bucket is required")
		}
	case DriveProviderLocal:
		if config.Drive.LocalPath == "" {
			return fmt.Errorf("local drive path is required")
		}
	default:
		return fmt.Errorf("unsupported drive provider %q", config.Drive.Provider)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// JWTExpiration returns the parsed token lifetime
func (c *Config) JWTExpiration() time.Duration {
	return helpers.ParseDuration(c.JWT.Expiration, 7*24*time.Hour)
}

// RateLimitWindow returns the parsed rate limit window
func (c *Config) RateLimitWindow() time.Duration {
	return helpers.ParseDuration(c.RateLimit.Window, 15*time.Minute)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
