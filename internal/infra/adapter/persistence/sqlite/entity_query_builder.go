// Package sqlite provides SQLite implementations of repository interfaces.
// It backs local development and single-node deployments (DATABASE_DRIVER=sqlite).
package sqlite

import (
	"fmt"
	"strings"

	"portal-content/internal/domain/entity"
)

type kindTable struct {
	table     string
	ownTable  string
	ownColumn string
	hasParent bool
	isEvent   bool
}

var kindTables = map[entity.Kind]kindTable{
	entity.KindCompany: {table: "companies", ownTable: "company_portal", ownColumn: "id_company"},
	entity.KindProduct: {table: "products", ownTable: "product_portal", ownColumn: "id_product", hasParent: true},
	entity.KindEvent:   {table: "events", ownTable: "event_portal", ownColumn: "id_event", hasParent: true, isEvent: true},
	entity.KindArticle: {table: "articles", ownTable: "article_portal", ownColumn: "id_article"},
}

func lookupKind(kind entity.Kind) (kindTable, error) {
	kt, ok := kindTables[kind]
	if !ok {
		return kindTable{}, &entity.ValidationError{Field: "kind", Message: fmt.Sprintf("invalid kind %q", kind)}
	}
	return kt, nil
}

// EntityQueryBuilder builds the per-kind SELECT statements for SQLite.
// Column order matches the PostgreSQL builder; SQLite-specific: untyped NULL
// literals and ? placeholders.
type EntityQueryBuilder struct{}

// NewEntityQueryBuilder creates a new query builder instance.
func NewEntityQueryBuilder() *EntityQueryBuilder {
	return &EntityQueryBuilder{}
}

func (qb *EntityQueryBuilder) enrichedSelect(kt kindTable) string {
	parentID, parentName := "NULL", "NULL"
	if kt.hasParent {
		parentID, parentName = "e.company_id", "parent.title"
	}
	startsAt, location := "NULL", "NULL"
	if kt.isEvent {
		startsAt, location = "e.starts_at", "e.location"
	}
	from := kt.table + " e"
	if kt.hasParent {
		from += "\nLEFT JOIN companies parent ON parent.id = e.company_id"
	}
	return fmt.Sprintf("SELECT e.id, e.title, e.summary, e.url, %s, %s, %s, %s, e.created_at\nFROM %s",
		parentID, parentName, startsAt, location, from)
}

// ListEnriched selects every column of the kind's entities owned by a portal (?).
func (qb *EntityQueryBuilder) ListEnriched(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
%s
INNER JOIN %s o ON o.%s = e.id
WHERE o.id_portal = ?
ORDER BY e.created_at DESC, e.id`, qb.enrichedSelect(kt), kt.ownTable, kt.ownColumn), nil
}

// ListSimple selects base columns of the kind's entities owned by a portal (?).
func (qb *EntityQueryBuilder) ListSimple(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT e.id, e.title, e.created_at
FROM %s e
INNER JOIN %s o ON o.%s = e.id
WHERE o.id_portal = ?
ORDER BY e.created_at DESC, e.id`, kt.table, kt.ownTable, kt.ownColumn), nil
}

// GetEnriched selects every column of a single entity by id (?).
func (qb *EntityQueryBuilder) GetEnriched(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
%s
WHERE e.id = ?
LIMIT 1`, qb.enrichedSelect(kt)), nil
}

// GetSimple selects base columns of a single entity by id (?).
func (qb *EntityQueryBuilder) GetSimple(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT e.id, e.title, e.created_at
FROM %s e
WHERE e.id = ?
LIMIT 1`, kt.table), nil
}

// ListAll selects every column of every entity of the kind.
func (qb *EntityQueryBuilder) ListAll(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
%s
ORDER BY e.created_at DESC, e.id`, qb.enrichedSelect(kt)), nil
}

// PortalsOf selects the ownership records of one entity (?).
func (qb *EntityQueryBuilder) PortalsOf(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT id_portal
FROM %s
WHERE %s = ?
ORDER BY id_portal`, kt.ownTable, kt.ownColumn), nil
}

// PortalsOfMany selects the ownership records of n entities.
// SQLite has no array parameters, so the IN list carries one placeholder per id.
func (qb *EntityQueryBuilder) PortalsOfMany(kind entity.Kind, n int) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	if n <= 0 {
		return "", &entity.ValidationError{Field: "ids", Message: "at least one id is required"}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
	return fmt.Sprintf(`
SELECT %s, id_portal
FROM %s
WHERE %s IN (%s)
ORDER BY %s, id_portal`, kt.ownColumn, kt.ownTable, kt.ownColumn, placeholders, kt.ownColumn), nil
}
