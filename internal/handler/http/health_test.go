package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-content/internal/domain/entity"
)

type stubDB struct {
	pingErr error
	stats   sql.DBStats
}

func (s stubDB) PingContext(context.Context) error { return s.pingErr }
func (s stubDB) Stats() sql.DBStats                { return s.stats }

type stubBreaker gobreaker.State

func (s stubBreaker) State() gobreaker.State { return gobreaker.State(s) }

type stubSnapshot struct{}

func (stubSnapshot) Version() string { return "2026-10-01" }
func (stubSnapshot) GeneratedAt() time.Time {
	return time.Date(2026, 10, 1, 3, 15, 0, 0, time.UTC)
}
func (stubSnapshot) Counts() map[entity.Kind]int {
	return map[entity.Kind]int{entity.KindCompany: 3, entity.KindEvent: 2}
}

func serveHealth(t *testing.T, h http.Handler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	return rec.Code, resp
}

func TestHealthHandler(t *testing.T) {
	healthyPool := sql.DBStats{MaxOpenConnections: 25, OpenConnections: 3, InUse: 1, Idle: 2}

	tests := []struct {
		name       string
		handler    *HealthHandler
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			handler:    &HealthHandler{DB: stubDB{stats: healthyPool}, Breaker: stubBreaker(gobreaker.StateClosed), Snapshot: stubSnapshot{}, Version: "1.2.3"},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "healthy", "circuit_breaker": "healthy", "snapshot": "healthy"},
		},
		{
			name:       "database down with snapshot is degraded",
			handler:    &HealthHandler{DB: stubDB{pingErr: errors.New("connection refused")}, Breaker: stubBreaker(gobreaker.StateOpen), Snapshot: stubSnapshot{}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "unhealthy", "circuit_breaker": "degraded", "snapshot": "healthy"},
		},
		{
			name:       "half-open breaker is degraded",
			handler:    &HealthHandler{DB: stubDB{stats: healthyPool}, Breaker: stubBreaker(gobreaker.StateHalfOpen), Snapshot: stubSnapshot{}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "healthy", "circuit_breaker": "degraded"},
		},
		{
			name:       "pool near capacity is degraded",
			handler:    &HealthHandler{DB: stubDB{stats: sql.DBStats{MaxOpenConnections: 10, InUse: 9}}, Snapshot: stubSnapshot{}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "degraded"},
		},
		{
			name:       "database down without snapshot is unhealthy",
			handler:    &HealthHandler{DB: stubDB{pingErr: errors.New("connection refused")}},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"database": "unhealthy", "snapshot": "unhealthy"},
		},
		{
			name:       "no database configured but snapshot loaded",
			handler:    &HealthHandler{Snapshot: stubSnapshot{}},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
			wantChecks: map[string]string{"database": "unhealthy", "snapshot": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serveHealth(t, tt.handler)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			for name, status := range tt.wantChecks {
				assert.Equal(t, status, resp.Checks[name].Status, "check %s", name)
			}
		})
	}
}

func TestHealthHandler_SnapshotDetails(t *testing.T) {
	_, resp := serveHealth(t, &HealthHandler{DB: stubDB{stats: sql.DBStats{MaxOpenConnections: 1}}, Snapshot: stubSnapshot{}, Version: "1.2.3"})

	assert.Equal(t, "1.2.3", resp.Version)
	details := resp.Checks["snapshot"].Details
	assert.Equal(t, "2026-10-01", details["version"])
	assert.Equal(t, "2026-10-01T03:15:00Z", details["generated_at"])
	assert.Equal(t, map[string]any{"company": float64(3), "event": float64(2)}, details["entities"])
}

func TestHealthHandler_DoesNotLeakPingError(t *testing.T) {
	_, resp := serveHealth(t, &HealthHandler{DB: stubDB{pingErr: errors.New("dial postgres://u:secret@db")}})
	assert.NotContains(t, resp.Checks["database"].Message, "secret")
}

func TestReadyHandler(t *testing.T) {
	tests := []struct {
		name     string
		handler  *ReadyHandler
		wantCode int
		wantBody string
	}{
		{name: "database up", handler: &ReadyHandler{DB: stubDB{}}, wantCode: http.StatusOK, wantBody: "ready"},
		{name: "snapshot only", handler: &ReadyHandler{DB: stubDB{pingErr: errors.New("down")}, Snapshot: stubSnapshot{}}, wantCode: http.StatusOK, wantBody: "ready (snapshot)"},
		{name: "nothing", handler: &ReadyHandler{DB: stubDB{pingErr: errors.New("down")}}, wantCode: http.StatusServiceUnavailable},
		{name: "not configured", handler: &ReadyHandler{}, wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LiveHandler{}.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", rec.Body.String())
}
