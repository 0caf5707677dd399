// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package with helper functions
// for common logging patterns used throughout the application.
//
// Loggers are JSON, leveled by LOG_LEVEL, and travel in the request context
// so that use cases log with the request ID of the call that reached them.
//
// Example usage:
//
//	import "portal-content/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger("info")
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, logging.FromContext(ctx))
//	    logger.Info("processing request")
//	}
package logging
