// Package resilience provides reliability and fault tolerance patterns for the application.
//
// Subpackages:
//   - faultclass: maps storage failures onto the fallback taxonomy
//   - tier: runs reads through an ordered cascade of query strategies
//   - circuitbreaker: gobreaker-backed protection around the database handle
//   - retry: exponential backoff with jitter and pluggable retry predicates
//
// Usage Example:
//
//	items, outcome, err := tier.List(ctx, executor, "list_company",
//	    tier.Strategy[[]entity.Entity]{Name: tier.Enriched, Run: enriched},
//	    tier.Strategy[[]entity.Entity]{Name: tier.Snapshot, Run: fromSnapshot},
//	)
//
//	err := retry.WithBackoff(ctx, retry.ConflictConfig(5), func() error {
//	    return insertComment()
//	})
package resilience
