// Package db opens the relational store and manages its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported values for Config.Driver.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// ErrUnsupportedDriver is returned for a driver other than pgx or sqlite.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,               // Maximum number of open connections
		MaxIdleConns:    10,               // Maximum number of idle connections
		ConnMaxLifetime: 1 * time.Hour,    // Maximum lifetime of a connection
		ConnMaxIdleTime: 30 * time.Minute, // Maximum idle time of a connection
	}
}

// Config selects the driver, the data source and the pool settings.
type Config struct {
	Driver      string
	DSN         string
	Pool        ConnectionConfig
	PingTimeout time.Duration
}

// Open creates and configures a new database connection pool and verifies it with a ping.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is empty")
	}
	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	pool := cfg.Pool
	if cfg.Driver == DriverSQLite {
		// One long-lived connection: writers are serialised and ":memory:" databases
		// live only as long as their connection.
		pool = ConnectionConfig{MaxOpenConns: 1, MaxIdleConns: 1}
	}
	ApplyPool(db, pool)

	logger.Info("database connection pool configured",
		slog.String("driver", cfg.Driver),
		slog.Int("max_open_conns", pool.MaxOpenConns),
		slog.Int("max_idle_conns", pool.MaxIdleConns),
		slog.Duration("conn_max_lifetime", pool.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", pool.ConnMaxIdleTime))

	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		// The pool stays usable: reads degrade to the snapshot until the server answers.
		logger.Warn("database ping failed, continuing in degraded mode", slog.Any("error", err))
		return db, nil
	}

	logger.Info("database connection established successfully")
	return db, nil
}

// ApplyPool applies connection pool settings, ignoring non-positive values.
func ApplyPool(db *sql.DB, cfg ConnectionConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
}
