package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts paginated requests.
	// Labels: status (HTTP status code), offset_range (offset bucket: 0, 1-50, 51-500, 500+)
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_pagination_requests_total",
			Help: "Total number of pagination requests",
		},
		[]string{"status", "offset_range"},
	)

	// DurationSeconds tracks request duration distribution.
	DurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portal_pagination_duration_seconds",
			Help:    "Request duration distribution",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)

	// ErrorsTotal counts pagination errors by type.
	// Labels: type (validation, database)
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_pagination_errors_total",
			Help: "Total number of pagination errors",
		},
		[]string{"type"},
	)
)

// RecordRequest records a pagination request metric.
func RecordRequest(statusCode int, offset int) {
	RequestsTotal.WithLabelValues(strconv.Itoa(statusCode), offsetRangeBucket(offset)).Inc()
}

// RecordDuration records operation duration in seconds.
func RecordDuration(operation string, duration float64) {
	DurationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordError records an error metric.
func RecordError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}

func offsetRangeBucket(offset int) string {
	switch {
	case offset <= 0:
		return "0"
	case offset <= 50:
		return "1-50"
	case offset <= 500:
		return "51-500"
	default:
		return "500+"
	}
}
