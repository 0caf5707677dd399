// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto at
// package init. Callers never touch them directly; they go through the
// Record*, Update* and Set* helpers so label sets stay consistent:
//
//	metrics.RecordTierServed("list_company", "simple")
//	metrics.RecordTierFailure("list_company", "enriched", "schema_missing")
//	metrics.UpdateSnapshotEntities("company", 42)
//
// Tier labels are the strategy names from package tier plus "exhausted".
package metrics
