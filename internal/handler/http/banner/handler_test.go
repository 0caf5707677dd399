package banner_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"portal-content/internal/domain/entity"
	"portal-content/internal/handler/http/banner"
	"portal-content/internal/handler/http/respond"
	"portal-content/internal/resilience/tier"
)

type stubPicker struct {
	one     entity.Banner
	found   bool
	many    []entity.Banner
	outcome tier.Outcome
	err     error

	gotPlacement entity.Placement
	gotN         int
}

func (s *stubPicker) PickBanner(_ context.Context, p entity.Placement) (entity.Banner, bool, tier.Outcome, error) {
	s.gotPlacement = p
	return s.one, s.found, s.outcome, s.err
}

func (s *stubPicker) PickBanners(_ context.Context, p entity.Placement, n int) ([]entity.Banner, tier.Outcome, error) {
	s.gotPlacement, s.gotN = p, n
	return s.many, s.outcome, s.err
}

func serve(svc *stubPicker, url string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	banner.Register(mux, svc)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

var (
	topA = entity.Banner{ID: 1, Placement: entity.PlacementTop, CreativeSource: "/img/a.png", TargetRoute: "/events/e-1", Priority: 3}
	topB = entity.Banner{ID: 2, Placement: entity.PlacementTop, CreativeSource: "/img/b.png", TargetRoute: "/companies/c-9", Priority: 0}
)

func TestHandler_PickOne(t *testing.T) {
	svc := &stubPicker{one: topA, found: true, outcome: tier.Outcome{Tier: tier.Enriched}}
	rec := serve(svc, "/banners/top")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, entity.PlacementTop, svc.gotPlacement)
	assert.Equal(t, tier.Enriched, rec.Header().Get(respond.TierHeader))
	assert.JSONEq(t, `{"id":1,"placement_type":"top","creative_source":"/img/a.png","target_route":"/events/e-1"}`, rec.Body.String())
}

func TestHandler_NoneIsNoContent(t *testing.T) {
	rec := serve(&stubPicker{outcome: tier.Outcome{Tier: "exhausted", Index: -1, Degraded: true, Exhausted: true}}, "/banners/right")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "true", rec.Header().Get(respond.DegradedHeader))
}

func TestHandler_PickN(t *testing.T) {
	svc := &stubPicker{many: []entity.Banner{topB, topA}, outcome: tier.Outcome{Tier: tier.Snapshot, Index: 2, Degraded: true}}
	rec := serve(svc, "/banners/top?n=3")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, svc.gotN)
	assert.Equal(t, tier.Snapshot, rec.Header().Get(respond.TierHeader))
	assert.JSONEq(t, `{"items":[
		{"id":2,"placement_type":"top","creative_source":"/img/b.png","target_route":"/companies/c-9"},
		{"id":1,"placement_type":"top","creative_source":"/img/a.png","target_route":"/events/e-1"}
	]}`, rec.Body.String())
}

func TestHandler_PickNEmpty(t *testing.T) {
	rec := serve(&stubPicker{many: []entity.Banner{}}, "/banners/medium?n=2")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_BadInput(t *testing.T) {
	for _, url := range []string{
		"/banners/sidebar",
		"/banners/top?n=0",
		"/banners/top?n=11",
		"/banners/top?n=two",
	} {
		svc := &stubPicker{}
		rec := serve(svc, url)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
		assert.Zero(t, svc.gotN, url)
	}
}

func TestHandler_UnknownError(t *testing.T) {
	rec := serve(&stubPicker{err: errors.New("boom")}, "/banners/top")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
