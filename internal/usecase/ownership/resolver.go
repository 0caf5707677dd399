package ownership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"portal-content/internal/domain/entity"
	"portal-content/internal/observability/logging"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
	"portal-content/internal/resilience/tier"
)

// Status is the three-way answer of Resolve.
type Status string

const (
	StatusNotFound       Status = "not_found"
	StatusOwnedLocally   Status = "local"
	StatusOwnedElsewhere Status = "elsewhere"
)

// Policy decides what Resolve does when the ownership lookup itself fails
// with an infrastructure error.
type Policy int

const (
	// AssumeLocal serves the entity on the requesting portal and flags the result as assumed.
	AssumeLocal Policy = iota
	// Propagate returns the lookup failure to the caller.
	Propagate
)

// String returns the configuration spelling of the policy.
func (p Policy) String() string {
	switch p {
	case AssumeLocal:
		return "assume_local"
	case Propagate:
		return "propagate"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts a configuration value into a Policy.
func ParsePolicy(raw string) (Policy, error) {
	switch raw {
	case "", "assume_local":
		return AssumeLocal, nil
	case "propagate":
		return Propagate, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, raw)
}

// Resolution is the result of Resolve.
type Resolution struct {
	Status Status
	// Entity is set unless Status is StatusNotFound.
	Entity *entity.Entity
	// Portal is the owning portal: the requester for StatusOwnedLocally,
	// the lowest other owner for StatusOwnedElsewhere.
	Portal entity.PortalID
	// Assumed is true when ownership could not be read and AssumeLocal applied.
	Assumed bool
	// Tier reports which query tier answered the entity lookup.
	Tier tier.Outcome
}

// EntityGetter fetches an entity independently of any portal.
type EntityGetter interface {
	Get(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, tier.Outcome, error)
}

// SnapshotReader is the part of the fallback snapshot store that carries owners.
type SnapshotReader interface {
	Get(kind entity.Kind, id string) (*entity.Entity, error)
}

// Resolver implements the ownership decision for company, product and event pages.
type Resolver struct {
	Content   EntityGetter
	Ownership repository.OwnershipRepository
	Snapshot  SnapshotReader // optional
	Executor  *tier.Executor
	OnFailure Policy
}

// NewResolver creates a resolver.
func NewResolver(content EntityGetter, own repository.OwnershipRepository, snap SnapshotReader, ex *tier.Executor, onFailure Policy) *Resolver {
	return &Resolver{Content: content, Ownership: own, Snapshot: snap, Executor: ex, OnFailure: onFailure}
}

// Resolve decides whether the entity is served locally, redirected, or reported missing.
// An entity without any ownership record is treated exactly like a missing one.
func (r *Resolver) Resolve(ctx context.Context, kind entity.Kind, id string, requester entity.PortalID) (Resolution, error) {
	if !kind.Resolvable() {
		return Resolution{}, &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("kind %q is not resolvable", kind)}
	}
	if !requester.IsValid() {
		return Resolution{}, &entity.ValidationError{Field: "portal", Message: "portal must be a positive integer"}
	}

	e, outcome, err := r.Content.Get(ctx, kind, id)
	if errors.Is(err, entity.ErrNotFound) {
		return r.record(kind, Resolution{Status: StatusNotFound, Tier: outcome}), nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve %s %s: %w", kind, id, err)
	}

	strategies := []tier.Strategy[[]entity.PortalID]{
		{Name: tier.Live, Run: func(ctx context.Context) ([]entity.PortalID, error) {
			return r.Ownership.PortalsOf(ctx, kind, id)
		}},
	}
	if outcome.Tier == tier.Snapshot || r.Snapshot != nil {
		strategies = append(strategies, tier.Strategy[[]entity.PortalID]{Name: tier.Snapshot, Run: func(context.Context) ([]entity.PortalID, error) {
			return r.snapshotOwners(kind, id, e, outcome)
		}})
	}

	portals, lookup, err := tier.Run(ctx, r.Executor, "ownership_"+string(kind), strategies...)
	if lookup.Exhausted {
		if r.OnFailure == Propagate {
			return Resolution{}, fmt.Errorf("resolve %s %s: ownership lookup: %w", kind, id, err)
		}
		logging.WithRequestID(ctx, logging.FromContext(ctx)).Warn("ownership unreadable, assuming local",
			slog.String("kind", string(kind)),
			slog.String("id", id),
			slog.Int64("portal", int64(requester)),
			slog.Any("error", err))
		return r.record(kind, Resolution{Status: StatusOwnedLocally, Entity: e, Portal: requester, Assumed: true, Tier: outcome}), nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("resolve %s %s: ownership lookup: %w", kind, id, err)
	}

	return r.record(kind, decide(e, portals, requester, outcome)), nil
}

// snapshotOwners reads owners from the fallback dataset. An entity the snapshot
// served already carries them; anything else is looked up by id.
func (r *Resolver) snapshotOwners(kind entity.Kind, id string, e *entity.Entity, outcome tier.Outcome) ([]entity.PortalID, error) {
	if outcome.Tier == tier.Snapshot {
		return slices.Clone(e.Portals), nil
	}
	se, err := r.Snapshot.Get(kind, id)
	if errors.Is(err, entity.ErrNotFound) {
		// Newer than the snapshot: ownership is unknown, not absent.
		return nil, errNotInSnapshot
	}
	if err != nil {
		return nil, err
	}
	return se.Portals, nil
}

// decide applies the ownership rules to a successfully read set of owners.
func decide(e *entity.Entity, portals []entity.PortalID, requester entity.PortalID, outcome tier.Outcome) Resolution {
	if len(portals) == 0 {
		return Resolution{Status: StatusNotFound, Tier: outcome}
	}

	var elsewhere entity.PortalID
	for _, p := range portals {
		if p == requester {
			return Resolution{Status: StatusOwnedLocally, Entity: e, Portal: requester, Tier: outcome}
		}
		if elsewhere == 0 || p < elsewhere {
			elsewhere = p
		}
	}
	return Resolution{Status: StatusOwnedElsewhere, Entity: e, Portal: elsewhere, Tier: outcome}
}

func (r *Resolver) record(kind entity.Kind, res Resolution) Resolution {
	status := string(res.Status)
	if res.Assumed {
		status += "_assumed"
	}
	metrics.RecordOwnershipResolution(string(kind), status)
	return res
}
