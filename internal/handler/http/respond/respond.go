// Package respond provides utilities for sending HTTP responses in JSON format.
// Domain errors are mapped onto status codes here; 5xx details never reach the client.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"portal-content/internal/domain/entity"
	"portal-content/internal/resilience/tier"
)

const (
	// TierHeader names the query tier that produced a read response.
	TierHeader = "X-Content-Tier"
	// DegradedHeader is "true" when a read fell back past its first tier.
	DegradedHeader = "X-Content-Degraded"
)

// JSON writes a JSON response with the given status code and data.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent.
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Error writes a JSON error body {"error": msg}.
func Error(w http.ResponseWriter, code int, err error) {
	JSON(w, code, map[string]string{"error": err.Error()})
}

// SafeError writes err for 4xx codes and a generic message for 5xx codes,
// logging the sanitized internal error.
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}
	if code < http.StatusInternalServerError {
		JSON(w, code, map[string]string{"error": err.Error()})
		return
	}
	slog.Default().Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": strings.ToLower(http.StatusText(code))})
}

// StatusFor maps a use-case error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, entity.ErrNotProvisioned):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// DomainError writes the response for a use-case error.
// Validation messages are returned verbatim; every other class gets a fixed message.
func DomainError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	switch code {
	case http.StatusBadRequest:
		JSON(w, code, map[string]string{"error": err.Error()})
	case http.StatusNotFound:
		JSON(w, code, map[string]string{"error": "not found"})
	case http.StatusForbidden:
		JSON(w, code, map[string]string{"error": "forbidden"})
	case http.StatusConflict:
		JSON(w, code, map[string]string{"error": "concurrent write conflict, retry later"})
	case http.StatusServiceUnavailable:
		JSON(w, code, map[string]string{"error": "feature not available"})
	default:
		SafeError(w, code, err)
	}
}

// Tier sets the tier headers for a read outcome.
func Tier(w http.ResponseWriter, out tier.Outcome) {
	if out.Tier == "" {
		return
	}
	w.Header().Set(TierHeader, out.Tier)
	if out.Degraded || out.Exhausted {
		w.Header().Set(DegradedHeader, "true")
	}
}
