// Package http provides the HTTP handlers and middleware of the content API:
// health probes, request logging, panic recovery, metrics and request limits.
// Resource handlers live in the content, comment and banner subpackages.
package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"portal-content/internal/domain/entity"
	"portal-content/internal/observability/metrics"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// DBChecker is satisfied by *sql.DB and the circuit-breaker wrapper.
type DBChecker interface {
	PingContext(ctx context.Context) error
	Stats() sql.DBStats
}

// BreakerReporter exposes a circuit breaker's state.
type BreakerReporter interface {
	State() gobreaker.State
}

// SnapshotReporter describes the loaded fallback snapshot.
type SnapshotReporter interface {
	Version() string
	GeneratedAt() time.Time
	Counts() map[entity.Kind]int
}

// HealthHandler reports database, breaker and snapshot status.
//
// Reads keep working from the snapshot while the database is down, so a
// failed database check with a loaded snapshot is "degraded" (200), and
// only the loss of both is "unhealthy" (503).
type HealthHandler struct {
	DB       DBChecker
	Breaker  BreakerReporter  // optional
	Snapshot SnapshotReporter // optional
	Version  string
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)

	dbCheck := CheckStatus{Status: statusUnhealthy, Message: "not configured"}
	if h.DB != nil {
		dbCheck = h.checkDatabase(ctx)
	}
	checks["database"] = dbCheck

	if h.Breaker != nil {
		checks["circuit_breaker"] = h.checkBreaker()
	}

	snapCheck := CheckStatus{Status: statusUnhealthy, Message: "not loaded"}
	if h.Snapshot != nil {
		snapCheck = h.checkSnapshot()
	}
	checks["snapshot"] = snapCheck

	status := statusHealthy
	statusCode := http.StatusOK
	switch {
	case dbCheck.Status == statusUnhealthy && snapCheck.Status == statusUnhealthy:
		status = statusUnhealthy
		statusCode = http.StatusServiceUnavailable
	case dbCheck.Status != statusHealthy || checks["circuit_breaker"].Status == statusDegraded:
		status = statusDegraded
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Default().Error("health: failed to encode response", slog.Any("error", err))
	}
}

// checkDatabase pings the database and reports pool statistics.
func (h *HealthHandler) checkDatabase(ctx context.Context) CheckStatus {
	if err := h.DB.PingContext(ctx); err != nil {
		return CheckStatus{Status: statusUnhealthy, Message: "database unreachable"}
	}

	stats := h.DB.Stats()
	metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	details := map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections) * 100
		details["utilization_percent"] = utilization
		if utilization >= 80.0 {
			return CheckStatus{Status: statusDegraded, Message: "connection pool utilization above 80%", Details: details}
		}
	}
	return CheckStatus{Status: statusHealthy, Details: details}
}

func (h *HealthHandler) checkBreaker() CheckStatus {
	state := h.Breaker.State()
	check := CheckStatus{Status: statusHealthy, Details: map[string]any{"state": state.String()}}
	if state != gobreaker.StateClosed {
		check.Status = statusDegraded
		check.Message = "database circuit breaker is " + state.String()
	}
	return check
}

func (h *HealthHandler) checkSnapshot() CheckStatus {
	counts := make(map[string]int)
	for kind, n := range h.Snapshot.Counts() {
		counts[string(kind)] = n
	}
	return CheckStatus{
		Status: statusHealthy,
		Details: map[string]any{
			"version":      h.Snapshot.Version(),
			"generated_at": h.Snapshot.GeneratedAt().UTC().Format(time.RFC3339),
			"entities":     counts,
		},
	}
}

// ReadyHandler reports whether the process can serve reads.
// It is ready when the database answers or a snapshot is loaded.
type ReadyHandler struct {
	DB       DBChecker
	Snapshot SnapshotReporter
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbReady := h.DB != nil && h.DB.PingContext(ctx) == nil
	if !dbReady && h.Snapshot == nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	body := "ready"
	if !dbReady {
		body = "ready (snapshot)"
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// LiveHandler answers liveness probes.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
