package banner_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/snapshot"
	"portal-content/internal/resilience/tier"
	"portal-content/internal/usecase/banner"
)

type stubRepo struct {
	activeErr, placementErr error
	active, byPlacement     []entity.Banner
	now                     time.Time
}

func (s *stubRepo) ListActive(_ context.Context, _ entity.Placement, now time.Time) ([]entity.Banner, error) {
	s.now = now
	return s.active, s.activeErr
}

func (s *stubRepo) ListByPlacement(context.Context, entity.Placement) ([]entity.Banner, error) {
	return s.byPlacement, s.placementErr
}

func (s *stubRepo) ListAll(context.Context) ([]entity.Banner, error) {
	return append(s.active, s.byPlacement...), nil
}

var (
	errMissingColumn = &pgconn.PgError{Code: "42703", Message: `column "starts_at" does not exist`}
	errMissingTable  = &pgconn.PgError{Code: "42P01"}
)

func newService(t *testing.T, repo *stubRepo) *banner.Service {
	t.Helper()
	snap, err := snapshot.Default()
	require.NoError(t, err)
	svc := banner.NewService(repo, snap, tier.NewExecutor(tier.Config{Timeout: time.Second}, nil), banner.NewSelector(0, &fixedSource{values: []float64{0}}))
	return svc
}

func TestService_PickBanner_Enriched(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubRepo{active: []entity.Banner{{ID: 11, Placement: entity.PlacementTop}}}
	svc := newService(t, repo)
	svc.Now = func() time.Time { return now }

	b, ok, out, err := svc.PickBanner(context.Background(), entity.PlacementTop)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(11), b.ID)
	assert.Equal(t, tier.Enriched, out.Tier)
	assert.False(t, out.Degraded)
	assert.Equal(t, now, repo.now)
}

func TestService_PickBanner_FallsBackToSimple(t *testing.T) {
	repo := &stubRepo{
		activeErr:   errMissingColumn,
		byPlacement: []entity.Banner{{ID: 21, Placement: entity.PlacementMedium}},
	}

	b, ok, out, err := newService(t, repo).PickBanner(context.Background(), entity.PlacementMedium)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(21), b.ID)
	assert.Equal(t, tier.Simple, out.Tier)
	assert.True(t, out.Degraded)
}

func TestService_PickBanner_FallsBackToSnapshot(t *testing.T) {
	repo := &stubRepo{activeErr: errMissingTable, placementErr: sql.ErrConnDone}

	b, ok, out, err := newService(t, repo).PickBanner(context.Background(), entity.PlacementRight)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entity.PlacementRight, b.Placement)
	assert.Equal(t, tier.Snapshot, out.Tier)
}

func TestService_PickBanner_NoneAvailable(t *testing.T) {
	repo := &stubRepo{active: []entity.Banner{}}

	_, ok, out, err := newService(t, repo).PickBanner(context.Background(), entity.PlacementTop)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, tier.Enriched, out.Tier)
}

func TestService_PickBanner_ExhaustedIsEmpty(t *testing.T) {
	repo := &stubRepo{activeErr: errMissingTable, placementErr: errMissingTable}
	svc := banner.NewService(repo, nil, nil, nil)

	_, ok, out, err := svc.PickBanner(context.Background(), entity.PlacementTop)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, out.Exhausted)
}

func TestService_PickBanner_InvalidPlacement(t *testing.T) {
	_, _, _, err := newService(t, &stubRepo{}).PickBanner(context.Background(), entity.Placement("footer"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrInvalidInput))
}

func TestService_PickBanners(t *testing.T) {
	repo := &stubRepo{active: []entity.Banner{
		{ID: 1, Placement: entity.PlacementTop, Priority: 1},
		{ID: 2, Placement: entity.PlacementTop, Priority: 2},
	}}

	got, out, err := newService(t, repo).PickBanners(context.Background(), entity.PlacementTop, 3)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, tier.Enriched, out.Tier)
}

func TestService_PickBanners_UnknownErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	repo := &stubRepo{activeErr: boom}

	_, _, err := newService(t, repo).PickBanners(context.Background(), entity.PlacementTop, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
