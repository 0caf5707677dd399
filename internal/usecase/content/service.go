// Package content provides the portal-scoped listing and lookup use cases.
// Every read runs through the tier executor: an enriched join, then a
// base-column query, then the fallback snapshot.
package content

import (
	"context"
	"fmt"

	"portal-content/internal/domain/entity"
	"portal-content/internal/repository"
	"portal-content/internal/resilience/tier"
)

// SnapshotReader is the part of the fallback snapshot store used for content reads.
type SnapshotReader interface {
	ListByPortal(kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error)
	Get(kind entity.Kind, id string) (*entity.Entity, error)
}

// Service provides content listing and lookup.
type Service struct {
	Repo     repository.EntityRepository
	Snapshot SnapshotReader // optional; without it the cascade ends at the simple tier
	Executor *tier.Executor
}

// NewService creates a content service.
func NewService(repo repository.EntityRepository, snap SnapshotReader, ex *tier.Executor) *Service {
	return &Service{Repo: repo, Snapshot: snap, Executor: ex}
}

// List returns the entities of kind owned by portal, newest first.
// Infrastructure failures degrade to a smaller (possibly empty) list, never an error.
func (s *Service) List(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, tier.Outcome, error) {
	if !kind.IsValid() {
		return nil, tier.Outcome{}, &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("invalid kind %q", kind)}
	}
	if !portal.IsValid() {
		return nil, tier.Outcome{}, &entity.ValidationError{Field: "portal", Message: "portal must be a positive integer"}
	}

	strategies := []tier.Strategy[[]entity.Entity]{
		{Name: tier.Enriched, Run: func(ctx context.Context) ([]entity.Entity, error) {
			return s.Repo.ListEnriched(ctx, kind, portal)
		}},
		{Name: tier.Simple, Run: func(ctx context.Context) ([]entity.Entity, error) {
			return s.Repo.ListSimple(ctx, kind, portal)
		}},
	}
	if s.Snapshot != nil {
		strategies = append(strategies, tier.Strategy[[]entity.Entity]{Name: tier.Snapshot, Run: func(context.Context) ([]entity.Entity, error) {
			return s.Snapshot.ListByPortal(kind, portal)
		}})
	}

	return tier.List(ctx, s.Executor, "list_"+string(kind), strategies...)
}

// Get returns a single entity regardless of portal.
// A tier that answers "no such row" ends the cascade with entity.ErrNotFound.
func (s *Service) Get(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, tier.Outcome, error) {
	if !kind.IsValid() {
		return nil, tier.Outcome{}, &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("invalid kind %q", kind)}
	}
	if err := entity.ValidateEntityID("id", id); err != nil {
		return nil, tier.Outcome{}, err
	}

	strategies := []tier.Strategy[*entity.Entity]{
		{Name: tier.Enriched, Run: func(ctx context.Context) (*entity.Entity, error) {
			return s.Repo.GetEnriched(ctx, kind, id)
		}},
		{Name: tier.Simple, Run: func(ctx context.Context) (*entity.Entity, error) {
			return s.Repo.GetSimple(ctx, kind, id)
		}},
	}
	if s.Snapshot != nil {
		strategies = append(strategies, tier.Strategy[*entity.Entity]{Name: tier.Snapshot, Run: func(context.Context) (*entity.Entity, error) {
			return s.Snapshot.Get(kind, id)
		}})
	}

	return tier.One(ctx, s.Executor, "get_"+string(kind), strategies...)
}
