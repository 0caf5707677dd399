package banner

import (
	"context"
	"fmt"
	"time"

	"portal-content/internal/domain/entity"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
	"portal-content/internal/resilience/tier"
)

// SnapshotReader is the part of the fallback snapshot store used for banners.
type SnapshotReader interface {
	Banners(placement entity.Placement) ([]entity.Banner, error)
}

// Service serves banners for placement slots.
type Service struct {
	Repo     repository.BannerRepository
	Snapshot SnapshotReader // optional
	Executor *tier.Executor
	Selector *Selector
	// Now is the clock for schedule windows. Nil means time.Now.
	Now func() time.Time
}

// NewService creates a banner service.
func NewService(repo repository.BannerRepository, snap SnapshotReader, ex *tier.Executor, sel *Selector) *Service {
	return &Service{Repo: repo, Snapshot: snap, Executor: ex, Selector: sel}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// candidates reads the pool for a placement: scheduled active banners first,
// then every banner of the placement, then the snapshot.
func (s *Service) candidates(ctx context.Context, placement entity.Placement) ([]entity.Banner, tier.Outcome, error) {
	if !placement.IsValid() {
		return nil, tier.Outcome{}, &entity.ValidationError{Field: "placement", Message: fmt.Sprintf("invalid placement %q", placement)}
	}

	strategies := []tier.Strategy[[]entity.Banner]{
		{Name: tier.Enriched, Run: func(ctx context.Context) ([]entity.Banner, error) {
			return s.Repo.ListActive(ctx, placement, s.now())
		}},
		{Name: tier.Simple, Run: func(ctx context.Context) ([]entity.Banner, error) {
			return s.Repo.ListByPlacement(ctx, placement)
		}},
	}
	if s.Snapshot != nil {
		strategies = append(strategies, tier.Strategy[[]entity.Banner]{Name: tier.Snapshot, Run: func(context.Context) ([]entity.Banner, error) {
			return s.Snapshot.Banners(placement)
		}})
	}
	return tier.List(ctx, s.Executor, "banners_"+string(placement), strategies...)
}

// PickBanner returns one weighted-random banner for placement.
// It reports false when no banner is available; that is never an error.
func (s *Service) PickBanner(ctx context.Context, placement entity.Placement) (entity.Banner, bool, tier.Outcome, error) {
	pool, outcome, err := s.candidates(ctx, placement)
	if err != nil {
		return entity.Banner{}, false, outcome, err
	}
	b, ok := s.Selector.Pick(pool)
	if ok {
		metrics.RecordBannersServed(string(placement), 1)
	}
	return b, ok, outcome, nil
}

// PickBanners returns up to n distinct weighted-random banners for placement.
func (s *Service) PickBanners(ctx context.Context, placement entity.Placement, n int) ([]entity.Banner, tier.Outcome, error) {
	pool, outcome, err := s.candidates(ctx, placement)
	if err != nil {
		return nil, outcome, err
	}
	picked := s.Selector.PickN(pool, n)
	metrics.RecordBannersServed(string(placement), len(picked))
	return picked, outcome, nil
}
