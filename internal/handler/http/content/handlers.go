// Package content serves portal-scoped entity listings and entity pages.
package content

import (
	"context"
	"log/slog"
	"net/http"

	"portal-content/internal/domain/entity"
	"portal-content/internal/handler/http/auth"
	"portal-content/internal/handler/http/respond"
	"portal-content/internal/observability/logging"
	"portal-content/internal/resilience/tier"
	"portal-content/internal/usecase/ownership"
)

// Lister lists a portal's entities of one kind.
type Lister interface {
	List(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, tier.Outcome, error)
}

// Getter fetches an entity regardless of portal.
type Getter interface {
	Get(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, tier.Outcome, error)
}

// Resolver decides where an entity page is served.
type Resolver interface {
	Resolve(ctx context.Context, kind entity.Kind, id string, requester entity.PortalID) (ownership.Resolution, error)
}

// ListHandler serves GET /portals/{portal}/{kind}.
type ListHandler struct{ Svc Lister }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	portal, err := entity.ParsePortalID(r.PathValue("portal"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	kind, err := entity.ParseKind(r.PathValue("kind"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	items, outcome, err := h.Svc.List(r.Context(), kind, portal)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	out := ListResponse{
		Portal: int64(portal),
		Kind:   string(kind),
		Items:  make([]DTO, 0, len(items)),
		Count:  len(items),
	}
	for i := range items {
		out.Items = append(out.Items, toDTO(&items[i]))
	}
	respond.Tier(w, outcome)
	respond.JSON(w, http.StatusOK, out)
}

// ResolveHandler serves the page of a company, product or event.
// The requesting portal comes from the token's portal claim or the X-Portal-ID header.
type ResolveHandler struct {
	Resolver Resolver
	Kind     entity.Kind
}

func (h ResolveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	requester, err := auth.RequestingPortal(r)
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	res, err := h.Resolver.Resolve(r.Context(), h.Kind, id, requester)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Tier(w, res.Tier)

	if res.Status == ownership.StatusNotFound {
		respond.DomainError(w, entity.ErrNotFound)
		return
	}
	if res.Status == ownership.StatusOwnedElsewhere {
		logging.FromContext(r.Context()).Debug("entity owned by another portal",
			slog.String("kind", string(h.Kind)),
			slog.String("id", id),
			slog.Int64("requester", int64(requester)),
			slog.Int64("owner", int64(res.Portal)))
	}
	respond.JSON(w, http.StatusOK, toResolveResponse(h.Kind, id, res))
}

// GetHandler serves an entity that is never redirected, such as an article.
type GetHandler struct {
	Svc  Getter
	Kind entity.Kind
}

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e, outcome, err := h.Svc.Get(r.Context(), h.Kind, r.PathValue("id"))
	respond.Tier(w, outcome)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, toDTO(e))
}
