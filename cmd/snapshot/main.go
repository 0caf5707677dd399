// Command snapshot exports live content into the fallback snapshot format,
// once or on a cron schedule.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"portal-content/internal/config"
	"portal-content/internal/handler/http/respond"
	pgRepo "portal-content/internal/infra/adapter/persistence/postgres"
	sqliteRepo "portal-content/internal/infra/adapter/persistence/sqlite"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/logging"
	"portal-content/internal/observability/metrics"
)

const exportTimeout = 5 * time.Minute

func main() {
	out := flag.String("out", "", "output path (default SNAPSHOT_PATH or snapshot.yaml)")
	schedule := flag.Bool("schedule", false, "run on SNAPSHOT_CRON instead of once")
	flag.Parse()

	cfg, warnings, err := config.LoadExport(config.NewConfigMetrics("snapshot"))
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if *out != "" {
		cfg.OutPath = *out
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	database, err := db.Open(ctx, db.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.URL,
		Pool: db.ConnectionConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	exp := newExporter(cfg.Database.Driver, database, cfg.Version)

	if !*schedule {
		if err := runExport(ctx, logger, exp, cfg.OutPath); err != nil {
			os.Exit(1)
		}
		return
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(cfg.Schedule, func() {
		_ = runExport(ctx, logger, exp, cfg.OutPath)
	}); err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("snapshot exporter started",
		slog.String("schedule", cfg.Schedule),
		slog.String("out", cfg.OutPath))

	<-ctx.Done()
	logger.Info("shutting down snapshot exporter...")
	<-c.Stop().Done()
}

func newExporter(driver string, q db.Querier, version string) *exporter {
	if driver == db.DriverSQLite {
		return &exporter{
			entities:  sqliteRepo.NewEntityRepo(q),
			ownership: sqliteRepo.NewOwnershipRepo(q),
			banners:   sqliteRepo.NewBannerRepo(q),
			version:   version,
		}
	}
	return &exporter{
		entities:  pgRepo.NewEntityRepo(q),
		ownership: pgRepo.NewOwnershipRepo(q),
		banners:   pgRepo.NewBannerRepo(q),
		version:   version,
	}
}

// runExport builds and writes one snapshot, recording the outcome.
func runExport(ctx context.Context, logger *slog.Logger, exp *exporter, path string) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	ds, err := exp.Build(ctx)
	if err == nil {
		err = writeAtomic(path, ds)
	}
	if err != nil {
		metrics.RecordSnapshotExport(false)
		logger.Error("snapshot export failed", slog.String("error", respond.SanitizeError(err)))
		return err
	}

	metrics.RecordSnapshotExport(true)
	attrs := []any{
		slog.String("version", ds.Version),
		slog.String("out", path),
		slog.Int("banners", len(ds.Banners)),
		slog.Duration("duration", time.Since(start)),
	}
	for kind, items := range ds.Entities {
		attrs = append(attrs, slog.Int(string(kind), len(items)))
	}
	logger.Info("snapshot exported", attrs...)
	return nil
}
