package postgres

import (
	"context"
	"fmt"
	"time"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
)

type BannerRepo struct {
	db db.Querier
}

func NewBannerRepo(q db.Querier) repository.BannerRepository {
	return &BannerRepo{db: q}
}

func (repo *BannerRepo) ListActive(ctx context.Context, placement entity.Placement, now time.Time) ([]entity.Banner, error) {
	const query = `
SELECT id, placement_type, creative_source, target_route, priority
FROM banners
WHERE placement_type = $1
  AND active = TRUE
  AND (starts_at IS NULL OR starts_at <= $2)
  AND (ends_at IS NULL OR ends_at > $2)
ORDER BY priority DESC, id`
	return repo.list(ctx, "BannerListActive", query, string(placement), now)
}

func (repo *BannerRepo) ListByPlacement(ctx context.Context, placement entity.Placement) ([]entity.Banner, error) {
	const query = `
SELECT id, placement_type, creative_source, target_route, priority
FROM banners
WHERE placement_type = $1
ORDER BY priority DESC, id`
	return repo.list(ctx, "BannerListByPlacement", query, string(placement))
}

func (repo *BannerRepo) ListAll(ctx context.Context) ([]entity.Banner, error) {
	const query = `
SELECT id, placement_type, creative_source, target_route, priority
FROM banners
ORDER BY placement_type, priority DESC, id`
	return repo.list(ctx, "BannerListAll", query)
}

func (repo *BannerRepo) list(ctx context.Context, op, query string, args ...any) ([]entity.Banner, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
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
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return banners, nil
}
