package metrics

import (
	"time"
)

// RecordTierServed records which tier answered a read.
func RecordTierServed(operation, tier string) {
	TierServedTotal.WithLabelValues(operation, tier).Inc()
}

// RecordTierFailure records a failed tier attempt.
// class should be the failure classification label (e.g. "connectivity").
func RecordTierFailure(operation, tier, class string) {
	TierFailuresTotal.WithLabelValues(operation, tier, class).Inc()
}

// RecordTierDuration records how long a single tier attempt took, successful or not.
func RecordTierDuration(operation, tier string, duration time.Duration) {
	TierDuration.WithLabelValues(operation, tier).Observe(duration.Seconds())
}

// RecordOwnershipResolution records the outcome of resolving a content entity for a portal.
func RecordOwnershipResolution(kind, status string) {
	OwnershipResolutionsTotal.WithLabelValues(kind, status).Inc()
}

// RecordCommentWrite records a comment create or delete.
// Result should be either "success" or "failure".
func RecordCommentWrite(action string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	CommentsWrittenTotal.WithLabelValues(action, result).Inc()
}

// RecordCommentSerialConflict records a lost serial allocation race.
func RecordCommentSerialConflict() {
	CommentSerialConflictsTotal.Inc()
}

// RecordBannersServed records the number of banners returned for a placement.
func RecordBannersServed(placement string, count int) {
	if count <= 0 {
		return
	}
	BannersServedTotal.WithLabelValues(placement).Add(float64(count))
}

// UpdateSnapshotEntities sets the entity count for a kind in the loaded snapshot.
func UpdateSnapshotEntities(kind string, count int) {
	SnapshotEntities.WithLabelValues(kind).Set(float64(count))
}

// RecordSnapshotExport records the result of a snapshot export run.
func RecordSnapshotExport(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	SnapshotExportsTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "list_companies", "insert_comment").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// SetCircuitBreakerState records the state of a named circuit breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
