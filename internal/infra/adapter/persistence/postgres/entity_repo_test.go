package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"

	"portal-content/internal/domain/entity"
	pg "portal-content/internal/infra/adapter/persistence/postgres"
	"portal-content/internal/resilience/faultclass"
)

/* ─────────────────────────── helpers ─────────────────────────── */

var enrichedCols = []string{
	"id", "title", "summary", "url", "company_id", "parent_title", "starts_at", "location", "created_at",
}

func ptrTime(t time.Time) *time.Time { return &t }

/* ─────────────────────────── 1. ListEnriched ─────────────────────────── */

func TestEntityRepo_ListEnriched(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	starts := time.Date(2026, 6, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INNER JOIN event_portal o ON o.id_event = e.id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(enrichedCols).
			AddRow("offshore-wind-forum", "Offshore Wind Forum", "Annual forum", nil,
				"northwind-energy", "Northwind Energy", starts, "Aberdeen", created))

	repo := pg.NewEntityRepo(db)
	got, err := repo.ListEnriched(context.Background(), entity.KindEvent, 7)
	if err != nil {
		t.Fatalf("ListEnriched err=%v", err)
	}

	want := []entity.Entity{{
		ID: "offshore-wind-forum", Kind: entity.KindEvent, Title: "Offshore Wind Forum",
		Summary: "Annual forum", ParentID: "northwind-energy", ParentName: "Northwind Energy",
		StartsAt: ptrTime(starts), Location: "Aberdeen", CreatedAt: created,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEntityRepo_ListEnriched_EmptyIsNotNil(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM companies e").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(enrichedCols))

	got, err := pg.NewEntityRepo(db).ListEnriched(context.Background(), entity.KindCompany, 1)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", got)
	}
}

/* ─────────────────────────── 2. error classification survives wrapping ─────────────────────────── */

func TestEntityRepo_ListEnriched_MissingTable(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM products e").
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "product_portal" does not exist`})

	_, err := pg.NewEntityRepo(db).ListEnriched(context.Background(), entity.KindProduct, 1)
	if got := faultclass.Classify(err); got != faultclass.SchemaMissing {
		t.Fatalf("Classify=%v, want SchemaMissing (err=%v)", got, err)
	}
}

/* ─────────────────────────── 3. ListSimple ─────────────────────────── */

func TestEntityRepo_ListSimple(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT e.id, e.title, e.created_at")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at"}).
			AddRow("acme-robotics", "Acme Robotics", created))

	got, err := pg.NewEntityRepo(db).ListSimple(context.Background(), entity.KindCompany, 1)
	if err != nil {
		t.Fatalf("ListSimple err=%v", err)
	}
	want := []entity.Entity{{ID: "acme-robotics", Kind: entity.KindCompany, Title: "Acme Robotics", CreatedAt: created}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

/* ─────────────────────────── 4. Get ─────────────────────────── */

func TestEntityRepo_GetEnriched(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	created := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).
		WithArgs("acme-cobot-x2").
		WillReturnRows(sqlmock.NewRows(enrichedCols).
			AddRow("acme-cobot-x2", "Cobot X2", nil, "https://acme.example/x2",
				"acme-robotics", "Acme Robotics", nil, nil, created))

	got, err := pg.NewEntityRepo(db).GetEnriched(context.Background(), entity.KindProduct, "acme-cobot-x2")
	if err != nil {
		t.Fatalf("GetEnriched err=%v", err)
	}
	want := &entity.Entity{
		ID: "acme-cobot-x2", Kind: entity.KindProduct, Title: "Cobot X2",
		URL: "https://acme.example/x2", ParentID: "acme-robotics", ParentName: "Acme Robotics",
		CreatedAt: created,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEntityRepo_Get_NotFound(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM companies e").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at"}))

	_, err := pg.NewEntityRepo(db).GetSimple(context.Background(), entity.KindCompany, "ghost")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestEntityRepo_InvalidKind(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	_, err := pg.NewEntityRepo(db).ListAll(context.Background(), entity.Kind("venue"))
	if !errors.Is(err, entity.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

/* ─────────────────────────── 5. Ownership ─────────────────────────── */

func TestOwnershipRepo_PortalsOf(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM company_portal")).
		WithArgs("acme-robotics").
		WillReturnRows(sqlmock.NewRows([]string{"id_portal"}).AddRow(int64(1)).AddRow(int64(7)))

	got, err := pg.NewOwnershipRepo(db).PortalsOf(context.Background(), entity.KindCompany, "acme-robotics")
	if err != nil {
		t.Fatalf("PortalsOf err=%v", err)
	}
	if diff := cmp.Diff([]entity.PortalID{1, 7}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOwnershipRepo_PortalsOf_NoRecords(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM product_portal").
		WillReturnRows(sqlmock.NewRows([]string{"id_portal"}))

	got, err := pg.NewOwnershipRepo(db).PortalsOf(context.Background(), entity.KindProduct, "orphan")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("want empty slice and nil error, got %v, %v", got, err)
	}
}

func TestOwnershipRepo_PortalsOfMany(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id_article = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id_article", "id_portal"}).
			AddRow("art-42", int64(1)).
			AddRow("art-57", int64(1)).
			AddRow("art-57", int64(7)))

	got, err := pg.NewOwnershipRepo(db).PortalsOfMany(context.Background(), entity.KindArticle,
		[]string{"art-42", "art-57", "art-99"})
	if err != nil {
		t.Fatalf("PortalsOfMany err=%v", err)
	}
	want := map[string][]entity.PortalID{"art-42": {1}, "art-57": {1, 7}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOwnershipRepo_PortalsOfMany_EmptyInputSkipsQuery(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	got, err := pg.NewOwnershipRepo(db).PortalsOfMany(context.Background(), entity.KindArticle, nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestOwnershipRepo_ConnectionLost(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM event_portal").WillReturnError(sql.ErrConnDone)

	_, err := pg.NewOwnershipRepo(db).PortalsOf(context.Background(), entity.KindEvent, "x")
	if got := faultclass.Classify(err); got != faultclass.ConnectivityFailure {
		t.Fatalf("Classify=%v, want ConnectivityFailure", got)
	}
}
