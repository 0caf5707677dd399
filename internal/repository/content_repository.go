package repository

import (
	"context"

	"portal-content/internal/domain/entity"
)

// EntityRepository reads portal-scoped content entities.
// The Enriched and Simple variants are alternative query tiers over the same data:
// Enriched joins parent names and reads every column, Simple reads base columns only
// so it keeps working against a partially migrated schema.
type EntityRepository interface {
	// ListEnriched returns the entities of kind owned by portal, newest first.
	ListEnriched(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error)
	// ListSimple is the base-column variant of ListEnriched. It still joins ownership.
	ListSimple(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error)
	// GetEnriched returns a single entity regardless of portal.
	// Returns entity.ErrNotFound if no row exists.
	GetEnriched(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, error)
	// GetSimple is the base-column variant of GetEnriched.
	GetSimple(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, error)
	// ListAll returns every entity of kind with all columns, used to export snapshots.
	ListAll(ctx context.Context, kind entity.Kind) ([]entity.Entity, error)
}

// OwnershipRepository reads entity-to-portal ownership records.
type OwnershipRepository interface {
	// PortalsOf returns the portals owning the entity in ascending order.
	// An entity without ownership records yields an empty slice, not an error.
	PortalsOf(ctx context.Context, kind entity.Kind, id string) ([]entity.PortalID, error)
	// PortalsOfMany batches PortalsOf. Entities without records are absent from the map.
	PortalsOfMany(ctx context.Context, kind entity.Kind, ids []string) (map[string][]entity.PortalID, error)
}
