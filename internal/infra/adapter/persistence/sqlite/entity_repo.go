package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"portal-content/internal/domain/entity"
	"portal-content/internal/infra/db"
	"portal-content/internal/observability/metrics"
	"portal-content/internal/repository"
)

// EntityRepo implements the EntityRepository interface using SQLite.
type EntityRepo struct {
	db           db.Querier
	queryBuilder *EntityQueryBuilder
}

// NewEntityRepo creates a new SQLite-backed entity repository.
func NewEntityRepo(q db.Querier) repository.EntityRepository {
	return &EntityRepo{db: q, queryBuilder: NewEntityQueryBuilder()}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEnriched(s rowScanner, kind entity.Kind) (entity.Entity, error) {
	var (
		e                                            entity.Entity
		summary, url, parentID, parentName, location sql.NullString
		startsAt                                     sql.NullTime
	)
	if err := s.Scan(&e.ID, &e.Title, &summary, &url, &parentID, &parentName,
		&startsAt, &location, &e.CreatedAt); err != nil {
		return entity.Entity{}, err
	}
	e.Kind = kind
	e.Summary = summary.String
	e.URL = url.String
	e.ParentID = parentID.String
	e.ParentName = parentName.String
	e.Location = location.String
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

func (repo *EntityRepo) query(ctx context.Context, op string, kind entity.Kind,
	scan func(rowScanner, entity.Kind) (entity.Entity, error), query string, args ...any) ([]entity.Entity, error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: QueryContext: %w", op, err)
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
		return nil, fmt.Errorf("%s: rows.Err: %w", op, err)
	}
	return result, nil
}

// ListEnriched retrieves the kind's entities owned by portal with parent names joined.
func (repo *EntityRepo) ListEnriched(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error) {
	q, err := repo.queryBuilder.ListEnriched(kind)
	if err != nil {
		return nil, err
	}
	return repo.query(ctx, "ListEnriched", kind, scanEnriched, q, int64(portal))
}

// ListSimple retrieves base columns of the kind's entities owned by portal.
func (repo *EntityRepo) ListSimple(ctx context.Context, kind entity.Kind, portal entity.PortalID) ([]entity.Entity, error) {
	q, err := repo.queryBuilder.ListSimple(kind)
	if err != nil {
		return nil, err
	}
	return repo.query(ctx, "ListSimple", kind, scanSimple, q, int64(portal))
}

// GetEnriched retrieves a single entity with every column.
func (repo *EntityRepo) GetEnriched(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, error) {
	q, err := repo.queryBuilder.GetEnriched(kind)
	if err != nil {
		return nil, err
	}
	return first(repo.query(ctx, "GetEnriched", kind, scanEnriched, q, id))
}

// GetSimple retrieves base columns of a single entity.
func (repo *EntityRepo) GetSimple(ctx context.Context, kind entity.Kind, id string) (*entity.Entity, error) {
	q, err := repo.queryBuilder.GetSimple(kind)
	if err != nil {
		return nil, err
	}
	return first(repo.query(ctx, "GetSimple", kind, scanSimple, q, id))
}

// ListAll retrieves every entity of the kind.
func (repo *EntityRepo) ListAll(ctx context.Context, kind entity.Kind) ([]entity.Entity, error) {
	q, err := repo.queryBuilder.ListAll(kind)
	if err != nil {
		return nil, err
	}
	return repo.query(ctx, "ListAll", kind, scanEnriched, q)
}

func first(list []entity.Entity, err error) (*entity.Entity, error) {
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, entity.ErrNotFound
	}
	return &list[0], nil
}

// OwnershipRepo implements the OwnershipRepository interface using SQLite.
type OwnershipRepo struct {
	db           db.Querier
	queryBuilder *EntityQueryBuilder
}

// NewOwnershipRepo creates a new SQLite-backed ownership repository.
func NewOwnershipRepo(q db.Querier) repository.OwnershipRepository {
	return &OwnershipRepo{db: q, queryBuilder: NewEntityQueryBuilder()}
}

// PortalsOf returns the portals owning the entity in ascending order.
func (repo *OwnershipRepo) PortalsOf(ctx context.Context, kind entity.Kind, id string) ([]entity.PortalID, error) {
	q, err := repo.queryBuilder.PortalsOf(kind)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("PortalsOf", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("PortalsOf: QueryContext: %w", err)
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
		return nil, fmt.Errorf("PortalsOf: rows.Err: %w", err)
	}
	return portals, nil
}

// PortalsOfMany batches PortalsOf in a single query.
func (repo *OwnershipRepo) PortalsOfMany(ctx context.Context, kind entity.Kind, ids []string) (map[string][]entity.PortalID, error) {
	result := make(map[string][]entity.PortalID, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q, err := repo.queryBuilder.PortalsOfMany(kind, len(ids))
	if err != nil {
		return nil, err
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("PortalsOfMany", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("PortalsOfMany: QueryContext: %w", err)
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
		return nil, fmt.Errorf("PortalsOfMany: rows.Err: %w", err)
	}
	return result, nil
}
