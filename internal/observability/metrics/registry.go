// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Business metrics track content resolution and degraded reads
var (
	// TierServedTotal counts reads by the query tier that answered them.
	// tier is the strategy name, or "exhausted" when every tier failed.
	TierServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_tier_served_total",
			Help: "Total number of reads answered per query tier",
		},
		[]string{"operation", "tier"},
	)

	// TierFailuresTotal counts failed tier attempts by failure class
	TierFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_tier_failures_total",
			Help: "Total number of failed query tier attempts",
		},
		[]string{"operation", "tier", "class"},
	)

	// TierDuration measures the time spent in a single tier attempt
	TierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_tier_duration_seconds",
			Help:    "Duration of a single query tier attempt",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"operation", "tier"},
	)

	// OwnershipResolutionsTotal counts ownership resolutions by status
	OwnershipResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_ownership_resolutions_total",
			Help: "Total number of ownership resolutions",
		},
		[]string{"kind", "status"}, // status: not_found, local, elsewhere, assumed_local
	)

	// CommentsWrittenTotal counts comment writes by action and result
	CommentsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_comments_written_total",
			Help: "Total number of comment create and delete operations",
		},
		[]string{"action", "result"},
	)

	// CommentSerialConflictsTotal counts serial allocation races lost to a concurrent writer
	CommentSerialConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portal_comment_serial_conflicts_total",
			Help: "Total number of comment serial allocation conflicts",
		},
	)

	// BannersServedTotal counts banners handed out per placement
	BannersServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_banners_served_total",
			Help: "Total number of banners served",
		},
		[]string{"placement"},
	)

	// SnapshotEntities tracks the number of entities per kind in the loaded snapshot
	SnapshotEntities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "portal_snapshot_entities",
			Help: "Number of entities per kind in the fallback snapshot",
		},
		[]string{"kind"},
	)

	// SnapshotExportsTotal counts snapshot export runs by result
	SnapshotExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_snapshot_exports_total",
			Help: "Total number of snapshot export runs",
		},
		[]string{"result"},
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// CircuitBreakerState reports breaker state per name: 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}
