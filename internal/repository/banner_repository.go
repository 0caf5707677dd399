package repository

import (
	"context"
	"time"

	"portal-content/internal/domain/entity"
)

type BannerRepository interface {
	// ListActive returns active banners for placement whose schedule window contains now.
	ListActive(ctx context.Context, placement entity.Placement, now time.Time) ([]entity.Banner, error)
	// ListByPlacement reads base columns only and ignores activation and schedule.
	ListByPlacement(ctx context.Context, placement entity.Placement) ([]entity.Banner, error)
	// ListAll returns every banner, used to export snapshots.
	ListAll(ctx context.Context) ([]entity.Banner, error)
}
