package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
)

type EntityRepo struct {
	db           db.Querier
	queryBuilder *EntityQueryBuilder
}

func NewEntityRepo(q db.Querier) repository.EntityRepository {
	return &EntityRepo{
		db:           q,
		queryBuilder: NewEntityQueryBuilder(),
	}
}

// rowScanner is implemented by *sql.Rows and *sql.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnriched(s rowScanner, kind entity.Kind) (entity.Entity, error) {
	var (
		e                                          entity.Entity
		summary, url, parentID, parentName, locate sql.NullString
		startsAt                                   sql.NullTime
	)
	if err := s.Scan(&e.ID, &e.Title, &summary, &url, &parentID, &parentName,
		&startsAt, &locate, &e.CreatedAt); err != nil {
		return entity.Entity{}, err
	}
	e.Kind = kind
	e.Summary = summary.String
	e.URL = url.String
	e.ParentID = parentID.String
	e.ParentName = parentName.String
	e.Location = locate.String
	if startsAt.Valid {
		t := startsAt.Time
		e.StartsAt = &t
	}
	return e, nil
}

func scanSimple(s rowScanner, kind entity.Kind) (entity.Entity, error) {
	var e entity.Entity
	if err := s.Scan(&e.ID, &e.Title, &e.CreatedAt); err != nil {
		return entity.Entity{}, err
	}
	e.Kind = kind
	return e, nil
}

type scanFunc func(rowScanner, entity.Kind) (entity.Entity, error)

// queryList runs query and scans every row. Result is never nil.
func (repo *EntityRepo) queryList(ctx context.Context, op string, kind entity.Kind, scan scanFunc, query string, args ...any) ([]entity.Entity, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.Entity, 0, 32)
	for rows.Next() {
		e, err := scan(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// queryOne runs query and scans a single row; no row yields entity.ErrNotFound.
func (repo *EntityRepo) queryOne(ctx context.Context, op string, kind entity.Kind, scan scanFunc, query string, args ...any) (*entity.Entity, error) {
	list, err := repo.queryList(ctx, op, kind, scan, query, args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrNotFound)
	}
	return &list[0], nil
}

func (repo *EntityRepo) ListEnriched(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error) {
	query, err := repo.queryBuilder.ListEnriched(kind)
	if err != nil {
		return nil, err
	}
	return repo.queryList(ctx, "ListEnriched", kind, scanEnriched, query, int64(portal))
}

func (repo *EntityRepo) ListSimple(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error) {
	query, err := repo.queryBuilder.ListSimple(kind)
	if err != nil {
		return nil, err
	}
	return repo.queryList(ctx, "ListSimple", kind, scanSimple, query, int64(portal))
}

func (repo *EntityRepo) GetEnriched(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, error) {
	query, err := repo.queryBuilder.GetEnriched(kind)
	if err != nil {
		return nil, err
	}
	return repo.queryOne(ctx, "GetEnriched", kind, scanEnriched, query, id)
}

func (repo *EntityRepo) GetSimple(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, error) {
	query, err := repo.queryBuilder.GetSimple(kind)
	if err != nil {
		return nil, err
	}
	return repo.queryOne(ctx, "GetSimple", kind, scanSimple, query, id)
}

func (repo *EntityRepo) ListAll(ctx context.Context, kind entity.Kind) ([]entity.Entity, error) {
	query, err := repo.queryBuilder.ListAll(kind)
	if err != nil {
		return nil, err
	}
	return repo.queryList(ctx, "ListAll", kind, scanEnriched, query)
}

type OwnershipRepo struct {
	db           db.Querier
	queryBuilder *EntityQueryBuilder
}

func NewOwnershipRepo(q db.Querier) repository.OwnershipRepository {
	return &OwnershipRepo{
		db:           q,
		queryBuilder: NewEntityQueryBuilder(),
	}
}

func (repo *OwnershipRepo) PortalsOf(ctx context.Context, kind entity.Kind, id string) ([]entity.PortalID, error) {
	query, err := repo.queryBuilder.PortalsOf(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("PortalsOf", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("PortalsOf: %w", err)
	}
	defer func() { _ = rows.Close() }()

	portals := make([]entity.PortalID, 0, 2)
	for rows.Next() {
		var p int64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("PortalsOf: Scan: %w", err)
		}
		portals = append(portals, entity.PortalID(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PortalsOf: %w", err)
	}
	return portals, nil
}

func (repo *OwnershipRepo) PortalsOfMany(ctx context.Context, kind entity.Kind, ids []string) (map[string][]entity.PortalID, error) {
	result := make(map[string][]entity.PortalID, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, err := repo.queryBuilder.PortalsOfMany(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("PortalsOfMany", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("PortalsOfMany: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			id string
			p  int64
		)
		if err := rows.Scan(&id, &p); err != nil {
			return nil, fmt.Errorf("PortalsOfMany: Scan: %w", err)
		}
		result[id] = append(result[id], entity.PortalID(p))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PortalsOfMany: %w", err)
	}
	return result, nil
}
