// Package banner serves weighted banner picks.
package banner

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"portal-content/internal/domain/entity"
	"portal-content/internal/handler/http/respond"
	"portal-content/internal/resilience/tier"
)

// MaxPick bounds the n query parameter.
const MaxPick = 10

// Picker chooses banners for a placement.
type Picker interface {
	PickBanner(ctx context.Context, placement entity.Placement) (entity.Banner, bool, tier.Outcome, error)
	PickBanners(ctx context.Context, placement entity.Placement, n int) ([]entity.Banner, tier.Outcome, error)
}

// DTO is the wire form of a banner.
type DTO struct {
	ID             int64  `json:"id"`
	Placement      string `json:"placement_type"`
	CreativeSource string `json:"creative_source"`
	TargetRoute    string `json:"target_route"`
}

// ListResponse is returned when n is given.
type ListResponse struct {
	Items []DTO `json:"items"`
}

func toDTO(b entity.Banner) DTO {
	return DTO{
		ID:             b.ID,
		Placement:      string(b.Placement),
		CreativeSource: b.CreativeSource,
		TargetRoute:    b.TargetRoute,
	}
}

// Handler serves GET /banners/{placement}[?n=N].
// It answers 204 when the placement has no banner to show.
type Handler struct{ Svc Picker }

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	placement, err := entity.ParsePlacement(r.PathValue("placement"))
	if err != nil {
		respond.DomainError(w, err)
		return
	}

	raw := r.URL.Query().Get("n")
	if raw == "" {
		b, ok, outcome, err := h.Svc.PickBanner(r.Context(), placement)
		if err != nil {
			respond.DomainError(w, err)
			return
		}
		respond.Tier(w, outcome)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respond.JSON(w, http.StatusOK, toDTO(b))
		return
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxPick {
		respond.DomainError(w, &entity.ValidationError{Field: "n", Message: fmt.Sprintf("n must be an integer between 1 and %d", MaxPick)})
		return
	}
	banners, outcome, err := h.Svc.PickBanners(r.Context(), placement, n)
	if err != nil {
		respond.DomainError(w, err)
		return
	}
	respond.Tier(w, outcome)
	if len(banners) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	out := ListResponse{Items: make([]DTO, 0, len(banners))}
	for _, b := range banners {
		out.Items = append(out.Items, toDTO(b))
	}
	respond.JSON(w, http.StatusOK, out)
}

// Register registers the banner route with the given mux.
func Register(mux *http.ServeMux, svc Picker) {
	mux.Handle("GET /banners/{placement}", Handler{Svc: svc})
}
