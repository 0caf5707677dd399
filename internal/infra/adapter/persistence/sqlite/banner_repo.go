package sqlite

import (
	"context"
	"fmt"
	"time"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
)

// BannerRepo implements the BannerRepository interface using SQLite.
type BannerRepo struct{ db db.Querier }

// NewBannerRepo creates a new SQLite-backed banner repository.
func NewBannerRepo(q db.Querier) repository.BannerRepository {
	return &BannerRepo{db: q}
}

// ListActive retrieves active banners whose schedule window contains now.
func (repo *BannerRepo) ListActive(ctx context.Context, placement entity.Placement, now time.Time) ([]entity.Banner, error) {
	now = now.UTC()
	return repo.list(ctx, "BannerListActive", `
SELECT id, placement_type, creative_source, target_route, priority
FROM banners
WHERE placement_type = ?
  AND active = 1
  AND (starts_at IS NULL OR starts_at <= ?)
  AND (ends_at IS NULL OR ends_at > ?)
ORDER BY priority DESC, id`, string(placement), now, now)
}

// ListByPlacement retrieves every banner for placement regardless of schedule.
func (repo *BannerRepo) ListByPlacement(ctx context.Context, placement entity.Placement) ([]entity.Banner, error) {
	return repo.list(ctx, "BannerListByPlacement", `
SELECT id, placement_type, creative_source, target_route, priority
FROM banners
WHERE placement_type = ?
ORDER BY priority DESC, id`, string(placement))
}

// ListAll retrieves every banner.
func (repo *BannerRepo) ListAll(ctx context.Context) ([]entity.Banner, error) {
	return repo.list(ctx, "BannerListAll", `
SELECT id, placement_type, creative_source, target_route, priority
FROM banners
ORDER BY placement_type, priority DESC, id`)
}

func (repo *BannerRepo) list(ctx context.Context, op, query string, args ...any) ([]entity.Banner, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: QueryContext: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	banners := make([]entity.Banner, 0, 8)
	for rows.Next() {
		var b entity.Banner
		if err := rows.Scan(&b.ID, &b.Placement, &b.CreativeSource, &b.TargetRoute, &b.Priority); err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows.Err: %w", op, err)
	}
	return banners, nil
}
