// Package observability groups the logging, metrics and tracing packages used
// by the API server and the snapshot exporter.
//
// logging builds the JSON slog handler and carries request-scoped loggers in
// the context. metrics owns every Prometheus collector the service exports,
// including the per-tier served and failure counters. tracing configures the
// OpenTelemetry provider and the HTTP span middleware.
//
// Binaries wire the three together once at startup:
//
//	logger := logging.NewLogger(cfg.LogLevel)
//	tp := tracing.NewProvider(cfg.Version)
//	defer tracing.Shutdown(ctx, tp)
package observability
