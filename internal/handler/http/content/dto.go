package content

import (
	"time"

	"portal-content/internal/domain/entity"
	"portal-content/internal/usecase/ownership"
)

// DTO is the wire form of a content entity.
type DTO struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary,omitempty"`
	URL        string     `json:"url,omitempty"`
	ParentID   string     `json:"parent_id,omitempty"`
	ParentName string     `json:"parent_name,omitempty"`
	StartsAt   *time.Time `json:"starts_at,omitempty"`
	Location   string     `json:"location,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ListResponse is returned by the portal listing endpoint.
type ListResponse struct {
	Portal int64  `json:"portal"`
	Kind   string `json:"kind"`
	Items  []DTO  `json:"items"`
	Count  int    `json:"count"`
}

// ResolveResponse is returned by the entity page endpoint.
// Entity is set for "local"; Portal and Redirect for "elsewhere".
type ResolveResponse struct {
	Status   string `json:"status"`
	Entity   *DTO   `json:"entity,omitempty"`
	Portal   int64  `json:"portal,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Assumed  bool   `json:"assumed,omitempty"`
}

func toDTO(e *entity.Entity) DTO {
	return DTO{
		ID:         e.ID,
		Kind:       string(e.Kind),
		Title:      e.Title,
		Summary:    e.Summary,
		URL:        e.URL,
		ParentID:   e.ParentID,
		ParentName: e.ParentName,
		StartsAt:   e.StartsAt,
		Location:   e.Location,
		CreatedAt:  e.CreatedAt,
	}
}

func toResolveResponse(kind entity.Kind, id string, res ownership.Resolution) ResolveResponse {
	out := ResolveResponse{Status: string(res.Status), Assumed: res.Assumed}
	switch res.Status {
	case ownership.StatusOwnedLocally:
		d := toDTO(res.Entity)
		out.Entity = &d
	case ownership.StatusOwnedElsewhere:
		out.Portal = int64(res.Portal)
		out.Redirect = EntityPath(kind, id)
	}
	return out
}

// EntityPath returns the canonical page path of an entity. The path is the
// same on every portal; a redirect pairs it with the owning portal.
func EntityPath(kind entity.Kind, id string) string {
	return "/" + plural(kind) + "/" + id
}

func plural(kind entity.Kind) string {
	switch kind {
	case entity.KindCompany:
		return "companies"
	case entity.KindProduct:
		return "products"
	case entity.KindEvent:
		return "events"
	case entity.KindArticle:
		return "articles"
	}
	return string(kind)
}
