package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portal-content/internal/common/pagination"
	"portal-content/internal/config"
	"portal-content/internal/domain/entity"
	pgRepo "portal-content/internal/infra/adapter/persistence/postgres"
	sqliteRepo "portal-content/internal/infra/adapter/persistence/sqlite"
	"portal-content/internal/infra/db"
	"portal-content/internal/infra/snapshot"
	"portal-content/internal/observability/logging"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/observability/tracing"
	"portal-content/internal/repository"
	"portal-content/internal/resilience/circuitbreaker"
	"portal-content/internal/resilience/tier"

	bannerUC "portal-content/internal/usecase/banner"
	commentUC "portal-content/internal/usecase/comment"
	contentUC "portal-content/internal/usecase/content"
	"portal-content/internal/usecase/ownership"

	hhttp "portal-content/internal/handler/http"
	hauth "portal-content/internal/handler/http/auth"
	hbanner "portal-content/internal/handler/http/banner"
	hcomment "portal-content/internal/handler/http/comment"
	hcontent "portal-content/internal/handler/http/content"
	"portal-content/internal/handler/http/middleware"
	"portal-content/internal/handler/http/requestid"
)

const (
	requestTimeout      = 15 * time.Second
	maxRequestBody      = 1 << 20
	shutdownTimeout     = 10 * time.Second
	readHeaderTimeout   = 10 * time.Second
	databaseOpenTimeout = 10 * time.Second
	databasePingTimeout = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := initLogger(cfg.LogLevel)
	tp := tracing.NewProvider(cfg.Version)

	database := initDatabase(logger, cfg.Database)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	snap := loadSnapshot(logger, cfg.Snapshot.Path)
	components := setupServer(logger, cfg, database, snap)

	runServer(logger, cfg, components)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logger.Error("tracer shutdown failed", slog.Any("error", err))
	}
}

// initLogger builds the JSON logger and installs it as the default.
func initLogger(level string) *slog.Logger {
	logger := logging.NewLogger(level)
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the pool and applies the schema when AUTO_MIGRATE is set.
// An unreachable server is not fatal: reads fall back to the snapshot.
func initDatabase(logger *slog.Logger, cfg config.DatabaseConfig) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), databaseOpenTimeout)
	defer cancel()

	database, err := db.Open(ctx, db.Config{
		Driver: cfg.Driver,
		DSN:    cfg.URL,
		Pool: db.ConnectionConfig{
			MaxOpenConns:    cfg.MaxOpenConns,
			MaxIdleConns:    cfg.MaxIdleConns,
			ConnMaxLifetime: cfg.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		},
		PingTimeout: databasePingTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.AutoMigrate {
		if err := db.MigrateUp(database, cfg.Driver); err != nil {
			// Missing tables are served from the snapshot, so keep going.
			logger.Error("failed to migrate database", slog.Any("error", err))
		} else {
			logger.Info("database schema is up to date")
		}
	}
	return database
}

// loadSnapshot loads the configured fallback dataset, falling back to the
// one compiled into the binary.
func loadSnapshot(logger *slog.Logger, path string) *snapshot.Store {
	snap, err := snapshot.Open(path)
	if err != nil {
		logger.Warn("fallback snapshot unavailable, using embedded default", slog.String("path", path), slog.Any("error", err))
		snap, err = snapshot.Default()
		if err != nil {
			logger.Error("embedded snapshot is invalid", slog.Any("error", err))
			os.Exit(1)
		}
	}
	for kind, n := range snap.Counts() {
		metrics.UpdateSnapshotEntities(string(kind), n)
	}
	logger.Info("fallback snapshot loaded",
		slog.String("version", snap.Version()),
		slog.Time("generated_at", snap.GeneratedAt()))
	return snap
}

// repositories groups the storage adapters for one driver.
type repositories struct {
	entities  repository.EntityRepository
	ownership repository.OwnershipRepository
	comments  repository.CommentRepository
	banners   repository.BannerRepository
}

func newRepositories(driver string, q db.Querier) repositories {
	if driver == db.DriverSQLite {
		return repositories{
			entities:  sqliteRepo.NewEntityRepo(q),
			ownership: sqliteRepo.NewOwnershipRepo(q),
			comments:  sqliteRepo.NewCommentRepo(q),
			banners:   sqliteRepo.NewBannerRepo(q),
		}
	}
	return repositories{
		entities:  pgRepo.NewEntityRepo(q),
		ownership: pgRepo.NewOwnershipRepo(q),
		comments:  pgRepo.NewCommentRepo(q),
		banners:   pgRepo.NewBannerRepo(q),
	}
}

// ServerComponents holds components needed for server operation and cleanup.
type ServerComponents struct {
	Handler      http.Handler
	WriteLimiter *middleware.WriteLimiter
}

// setupServer wires repositories, use cases and routes.
func setupServer(logger *slog.Logger, cfg *config.Config, database *sql.DB, snap *snapshot.Store) *ServerComponents {
	var (
		q       db.Querier      = database
		checker hhttp.DBChecker = database
		breaker hhttp.BreakerReporter
	)
	if cfg.Database.BreakerEnabled {
		cb := circuitbreaker.NewDBCircuitBreaker(database)
		q, checker, breaker = cb, cb, cb
		logger.Info("database circuit breaker enabled")
	}

	policy, err := ownership.ParsePolicy(cfg.Ownership.OnLookupFailure)
	if err != nil {
		logger.Error("invalid ownership policy", slog.Any("error", err))
		os.Exit(1)
	}

	repos := newRepositories(cfg.Database.Driver, q)
	executor := tier.NewExecutor(tier.Config{Timeout: cfg.Tier.Timeout}, logger)

	contentSvc := contentUC.NewService(repos.entities, snap, executor)
	resolver := ownership.NewResolver(contentSvc, repos.ownership, snap, executor, policy)
	commentSvc := commentUC.NewService(repos.comments, executor, commentUC.Config{
		DefaultPageSize:   cfg.Comments.DefaultPageSize,
		MaxPageSize:       cfg.Comments.MaxPageSize,
		MaxCreateAttempts: cfg.Comments.MaxCreateAttempts,
	})
	bannerSvc := bannerUC.NewService(repos.banners, snap, executor, bannerUC.NewSelector(cfg.Banners.WeightBase, nil))

	limiter := middleware.NewWriteLimiter(cfg.Comments.WriteRPS, cfg.Comments.WriteBurst)

	mux := http.NewServeMux()
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: checker, Breaker: breaker, Snapshot: snap, Version: cfg.Version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: checker, Snapshot: snap})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	hcontent.Register(mux, contentSvc, resolver)
	hcomment.Register(mux, commentSvc, pagination.Config{
		DefaultLimit: cfg.Comments.DefaultPageSize,
		MaxLimit:     cfg.Comments.MaxPageSize,
	}, limiter.Middleware)
	hbanner.Register(mux, bannerSvc)

	logger.Info("services initialized",
		slog.String("driver", cfg.Database.Driver),
		slog.Duration("tier_timeout", cfg.Tier.Timeout),
		slog.String("ownership_policy", policy.String()),
		slog.Float64("banner_weight_base", cfg.Banners.WeightBase),
		slog.Float64("comment_write_rps", cfg.Comments.WriteRPS),
		slog.Any("kinds", entity.Kinds()))

	return &ServerComponents{
		Handler:      applyMiddleware(logger, mux, hauth.NewVerifier(cfg.Auth.JWTSecret)),
		WriteLimiter: limiter,
	}
}

// applyMiddleware wraps the mux with the middleware chain, outermost first:
// request ID, tracing, logging, recovery, metrics, input validation, body
// limit, timeout, authentication.
func applyMiddleware(logger *slog.Logger, handler http.Handler, verifier *hauth.Verifier) http.Handler {
	return hhttp.Chain(handler,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.MetricsMiddleware,
		hhttp.InputValidation(),
		hhttp.LimitRequestBody(maxRequestBody),
		hhttp.Timeout(requestTimeout),
		verifier.Authenticate,
	)
}

// runServer starts the HTTP server and blocks until SIGINT or SIGTERM.
func runServer(logger *slog.Logger, cfg *config.Config, components *ServerComponents) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go runLimiterCleanup(ctx, logger, components.WriteLimiter, cfg.Comments.WriteCleanupInterval)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           components.Handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

// runLimiterCleanup evicts idle write-limiter buckets until ctx is done.
func runLimiterCleanup(ctx context.Context, logger *slog.Logger, limiter *middleware.WriteLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Cleanup(); n > 0 {
				logger.Debug("write limiter cleanup", slog.Int("evicted", n), slog.Int("active", limiter.Len()))
			}
		}
	}
}
