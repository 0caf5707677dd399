package config

import (
	"fmt"
	"os"

	"github.com/robfig/cron/v3"

	envconfig "portal-content/pkg/config"
)

// DefaultSnapshotSchedule exports a fresh snapshot every day at 03:15.
const DefaultSnapshotSchedule = "15 3 * * *"

// LoadResult is the outcome of loading a value that falls back to its default
// when validation fails.
type LoadResult[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// LoadWithFallback reads envKey and validates it. An unset variable yields
// defaultValue silently; an invalid one yields defaultValue with a warning.
//
// Warning format:
//
//	"Invalid {envKey}='{value}': {error}, falling back to default '{default}'"
func LoadWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult[string] {
	value := os.Getenv(envKey)
	if value == "" {
		return LoadResult[string]{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return LoadResult[string]{
				Value:           defaultValue,
				Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%s'", envKey, value, err, defaultValue)},
				FallbackApplied: true,
			}
		}
	}
	return LoadResult[string]{Value: value}
}

// ValidateCronSchedule checks a five-field cron expression ("minute hour dom month dow").
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return fmt.Errorf("invalid cron schedule: cannot be empty")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}
	return nil
}

// ExportConfig configures the snapshot exporter.
type ExportConfig struct {
	Database DatabaseConfig
	// OutPath is where the snapshot is written. Defaults to SNAPSHOT_PATH.
	OutPath string
	// Schedule is the cron expression from SNAPSHOT_CRON.
	Schedule string
	Version  string
	LogLevel string
}

// LoadExport reads the exporter configuration. Invalid schedules fall back to
// DefaultSnapshotSchedule and are reported in warnings and on metrics.
func LoadExport(metrics *ConfigMetrics) (*ExportConfig, []string, error) {
	schedule := LoadWithFallback("SNAPSHOT_CRON", DefaultSnapshotSchedule, ValidateCronSchedule)

	cfg := &ExportConfig{
		Database: DatabaseConfig{
			Driver:          envconfig.GetEnvString("DATABASE_DRIVER", "pgx"),
			URL:             envconfig.GetEnvString("DATABASE_URL", ""),
			MaxOpenConns:    envconfig.GetEnvInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns:    envconfig.GetEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envconfig.GetEnvDuration("DB_CONN_MAX_LIFETIME", 0),
			ConnMaxIdleTime: envconfig.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 0),
		},
		OutPath:  envconfig.GetEnvString("SNAPSHOT_PATH", "snapshot.yaml"),
		Schedule: schedule.Value,
		Version:  envconfig.GetEnvString("VERSION", "dev"),
		LogLevel: envconfig.GetEnvString("LOG_LEVEL", "info"),
	}

	if metrics != nil {
		metrics.RecordLoadTimestamp()
		if schedule.FallbackApplied {
			metrics.RecordValidationError("snapshot_cron")
			metrics.RecordFallback("snapshot_cron")
		}
		metrics.SetFallbackActive(schedule.FallbackApplied)
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, schedule.Warnings, fmt.Errorf("invalid export configuration: %w", err)
	}
	return cfg, schedule.Warnings, nil
}
