package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"portal-content/internal/domain/entity"
	pg "portal-content/internal/infra/adapter/persistence/postgres"
)

var bannerCols = []string{"id", "placement_type", "creative_source", "target_route", "priority"}

func TestBannerRepo_ListActive(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("AND (ends_at IS NULL OR ends_at > $2)")).
		WithArgs("top", now).
		WillReturnRows(sqlmock.NewRows(bannerCols).
			AddRow(int64(1), "top", "https://cdn.example/a.png", "/promo/a", 2).
			AddRow(int64(2), "top", "https://cdn.example/b.png", "/promo/b", 0))

	got, err := pg.NewBannerRepo(db).ListActive(context.Background(), entity.PlacementTop, now)
	if err != nil {
		t.Fatalf("ListActive err=%v", err)
	}
	want := []entity.Banner{
		{ID: 1, Placement: entity.PlacementTop, CreativeSource: "https://cdn.example/a.png", TargetRoute: "/promo/a", Priority: 2},
		{ID: 2, Placement: entity.PlacementTop, CreativeSource: "https://cdn.example/b.png", TargetRoute: "/promo/b", Priority: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBannerRepo_ListByPlacement_IgnoresSchedule(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM banners").
		WithArgs("right").
		WillReturnRows(sqlmock.NewRows(bannerCols))

	got, err := pg.NewBannerRepo(db).ListByPlacement(context.Background(), entity.PlacementRight)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBannerRepo_ListAll(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY placement_type, priority DESC, id")).
		WillReturnRows(sqlmock.NewRows(bannerCols).
			AddRow(int64(3), "medium", "s", "/r", 1))

	got, err := pg.NewBannerRepo(db).ListAll(context.Background())
	if err != nil || len(got) != 1 || got[0].Placement != entity.PlacementMedium {
		t.Fatalf("got %v, %v", got, err)
	}
}
