package pagination

import (
	"log/slog"
	"time"
)

// LogRequest logs a pagination request with structured fields.
func LogRequest(logger *slog.Logger, requestID string, params Params) {
	logger.Debug("paginated request",
		"request_id", requestID,
		"limit", params.Limit,
		"offset", params.Offset)
}

// LogResponse logs a pagination response with duration and status.
func LogResponse(logger *slog.Logger, requestID string, params Params, returnedCount int, duration time.Duration, statusCode int) {
	logger.Info("paginated response",
		"request_id", requestID,
		"limit", params.Limit,
		"offset", params.Offset,
		"returned_count", returnedCount,
		"duration_ms", duration.Milliseconds(),
		"status", statusCode)
}
