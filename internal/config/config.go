// Package config loads the process configuration from the environment.
// Load is called once at startup and the resulting *Config is passed to
// every constructor that needs a setting.
package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	envconfig "portal-content/pkg/config"
)

// MinJWTSecretLength is the minimum HS256 secret length (256 bits).
const MinJWTSecretLength = 32

var weakSecrets = []string{"secret", "password", "test", "admin", "default"}

// Config is the full process configuration.
type Config struct {
	// HTTPAddr is the listen address of the API server. Default ":8080".
	HTTPAddr string
	// Version is reported by /health and attached to traces.
	Version string
	// LogLevel is one of debug, info, warn, error. Default "info".
	LogLevel string

	Database  DatabaseConfig
	Tier      TierConfig
	Ownership OwnershipConfig
	Comments  CommentsConfig
	Banners   BannersConfig
	Snapshot  SnapshotConfig
	Auth      AuthConfig
}

// DatabaseConfig holds connection and pool settings.
type DatabaseConfig struct {
	// Driver is "pgx" or "sqlite". Default "pgx".
	Driver string
	// URL is the DSN passed to the driver.
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// BreakerEnabled wraps the handle in a circuit breaker. Default true.
	BreakerEnabled bool
	// AutoMigrate applies the schema at startup. Default false.
	AutoMigrate bool
}

// TierConfig configures the tiered query executor.
type TierConfig struct {
	// Timeout bounds every tier attempt. Default 2s.
	Timeout time.Duration
}

// OwnershipConfig configures the ownership resolver.
type OwnershipConfig struct {
	// OnLookupFailure is "assume_local" (default) or "propagate".
	OnLookupFailure string
}

// CommentsConfig configures comment pagination and writes.
type CommentsConfig struct {
	DefaultPageSize   int
	MaxPageSize       int
	MaxCreateAttempts int
	// WriteRPS is the per-identity write rate. Zero disables the limiter.
	WriteRPS   float64
	WriteBurst int
	// WriteCleanupInterval is how often idle limiter buckets are evicted.
	WriteCleanupInterval time.Duration
}

// BannersConfig configures banner selection.
type BannersConfig struct {
	// WeightBase is the odds multiplier per priority step. Default 1.1.
	WeightBase float64
}

// SnapshotConfig locates the fallback snapshot.
type SnapshotConfig struct {
	// Path is the YAML snapshot file. Empty uses the embedded dataset.
	Path string
}

// AuthConfig configures bearer-token verification.
type AuthConfig struct {
	JWTSecret string
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr: envconfig.GetEnvString("HTTP_ADDR", ":8080"),
		Version:  envconfig.GetEnvString("VERSION", "dev"),
		LogLevel: strings.ToLower(envconfig.GetEnvString("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			Driver:          envconfig.GetEnvString("DATABASE_DRIVER", "pgx"),
			URL:             envconfig.GetEnvString("DATABASE_URL", ""),
			MaxOpenConns:    envconfig.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envconfig.GetEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: envconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: envconfig.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
			BreakerEnabled:  envconfig.GetEnvBool("DB_BREAKER_ENABLED", true),
			AutoMigrate:     envconfig.GetEnvBool("AUTO_MIGRATE", false),
		},
		Tier: TierConfig{
			Timeout: envconfig.GetEnvDuration("TIER_TIMEOUT", 2*time.Second),
		},
		Ownership: OwnershipConfig{
			OnLookupFailure: envconfig.GetEnvString("OWNERSHIP_ON_LOOKUP_FAILURE", "assume_local"),
		},
		Comments: CommentsConfig{
			DefaultPageSize:      envconfig.GetEnvInt("COMMENTS_DEFAULT_PAGE_SIZE", 10),
			MaxPageSize:          envconfig.GetEnvInt("COMMENTS_MAX_PAGE_SIZE", 50),
			MaxCreateAttempts:    envconfig.GetEnvInt("COMMENTS_MAX_CREATE_ATTEMPTS", 5),
			WriteRPS:             envconfig.GetEnvFloat("COMMENTS_WRITE_RPS", 1),
			WriteBurst:           envconfig.GetEnvInt("COMMENTS_WRITE_BURST", 5),
			WriteCleanupInterval: envconfig.GetEnvDuration("COMMENTS_WRITE_CLEANUP_INTERVAL", 5*time.Minute),
		},
		Banners: BannersConfig{
			WeightBase: envconfig.GetEnvFloat("BANNER_WEIGHT_BASE", 1.1),
		},
		Snapshot: SnapshotConfig{
			Path: envconfig.GetEnvString("SNAPSHOT_PATH", ""),
		},
		Auth: AuthConfig{
			JWTSecret: envconfig.GetEnvString("JWT_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness and returns the first problem found.
func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR cannot be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if err := c.Database.validate(); err != nil {
		return err
	}

	if err := envconfig.ValidateDurationRange(c.Tier.Timeout, 10*time.Millisecond, time.Minute); err != nil {
		return fmt.Errorf("TIER_TIMEOUT: %w", err)
	}

	switch c.Ownership.OnLookupFailure {
	case "assume_local", "propagate":
	default:
		return fmt.Errorf("OWNERSHIP_ON_LOOKUP_FAILURE must be assume_local or propagate")
	}

	if err := c.Comments.validate(); err != nil {
		return err
	}

	if c.Banners.WeightBase < 1 {
		return fmt.Errorf("BANNER_WEIGHT_BASE must be at least 1.0")
	}

	return c.Auth.validate()
}

func (d DatabaseConfig) validate() error {
	if d.Driver != "pgx" && d.Driver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be pgx or sqlite")
	}
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if d.MaxIdleConns < 0 || d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS")
	}
	if err := envconfig.ValidateNonNegativeDuration(d.ConnMaxLifetime); err != nil {
		return fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
	}
	if err := envconfig.ValidateNonNegativeDuration(d.ConnMaxIdleTime); err != nil {
		return fmt.Errorf("DB_CONN_MAX_IDLE_TIME: %w", err)
	}
	return nil
}

func (c CommentsConfig) validate() error {
	if c.MaxPageSize <= 0 || c.MaxPageSize > 500 {
		return fmt.Errorf("COMMENTS_MAX_PAGE_SIZE must be between 1 and 500")
	}
	if c.DefaultPageSize <= 0 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("COMMENTS_DEFAULT_PAGE_SIZE must be between 1 and COMMENTS_MAX_PAGE_SIZE")
	}
	if c.MaxCreateAttempts <= 0 || c.MaxCreateAttempts > 20 {
		return fmt.Errorf("COMMENTS_MAX_CREATE_ATTEMPTS must be between 1 and 20")
	}
	if c.WriteRPS < 0 {
		return fmt.Errorf("COMMENTS_WRITE_RPS must not be negative")
	}
	if c.WriteRPS > 0 && c.WriteBurst <= 0 {
		return fmt.Errorf("COMMENTS_WRITE_BURST must be positive when COMMENTS_WRITE_RPS is set")
	}
	if err := envconfig.ValidatePositiveDuration(c.WriteCleanupInterval); err != nil {
		return fmt.Errorf("COMMENTS_WRITE_CLEANUP_INTERVAL: %w", err)
	}
	return nil
}

func (a AuthConfig) validate() error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if len(a.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength)
	}
	// Reject padding tricks such as "passwordpasswordpasswordpassword".
	lower := strings.ToLower(a.JWTSecret)
	if slices.ContainsFunc(weakSecrets, func(w string) bool { return strings.ReplaceAll(lower, w, "") == "" }) {
		return fmt.Errorf("JWT_SECRET must not be a common weak value")
	}
	return nil
}
