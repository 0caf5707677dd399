// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"fmt"

	"portal-content/internal/domain/entity"
)

// kindTable describes where a content kind is stored.
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

// EntityQueryBuilder builds the per-kind SELECT statements for PostgreSQL.
// Enriched statements return nine columns in a fixed order so that every kind
// scans through the same code path; columns a kind lacks are typed NULL literals.
// Simple statements read id, title and created_at only.
type EntityQueryBuilder struct{}

// NewEntityQueryBuilder creates a new query builder instance.
func NewEntityQueryBuilder() *EntityQueryBuilder {
	return &EntityQueryBuilder{}
}

func (qb *EntityQueryBuilder) enrichedColumns(kt kindTable) string {
	parentID, parentName := "NULL::text", "NULL::text"
	if kt.hasParent {
		parentID, parentName = "e.company_id", "parent.title"
	}
	startsAt, location := "NULL::timestamptz", "NULL::text"
	if kt.isEvent {
		startsAt, location = "e.starts_at", "e.location"
	}
	return fmt.Sprintf("e.id, e.title, e.summary, e.url, %s, %s, %s, %s, e.created_at",
		parentID, parentName, startsAt, location)
}

func (qb *EntityQueryBuilder) enrichedFrom(kt kindTable) string {
	from := kt.table + " e"
	if kt.hasParent {
		from += "\nLEFT JOIN companies parent ON parent.id = e.company_id"
	}
	return from
}

// ListEnriched selects every column of the kind's entities owned by portal ($1).
func (qb *EntityQueryBuilder) ListEnriched(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT %s
FROM %s
INNER JOIN %s o ON o.%s = e.id
WHERE o.id_portal = $1
ORDER BY e.created_at DESC, e.id`,
		qb.enrichedColumns(kt), qb.enrichedFrom(kt), kt.ownTable, kt.ownColumn), nil
}

// ListSimple selects base columns of the kind's entities owned by portal ($1).
func (qb *EntityQueryBuilder) ListSimple(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT e.id, e.title, e.created_at
FROM %s e
INNER JOIN %s o ON o.%s = e.id
WHERE o.id_portal = $1
ORDER BY e.created_at DESC, e.id`, kt.table, kt.ownTable, kt.ownColumn), nil
}

// GetEnriched selects every column of a single entity by id ($1).
func (qb *EntityQueryBuilder) GetEnriched(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT %s
FROM %s
WHERE e.id = $1
LIMIT 1`, qb.enrichedColumns(kt), qb.enrichedFrom(kt)), nil
}

// GetSimple selects base columns of a single entity by id ($1).
func (qb *EntityQueryBuilder) GetSimple(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT e.id, e.title, e.created_at
FROM %s e
WHERE e.id = $1
LIMIT 1`, kt.table), nil
}

// ListAll selects every column of every entity of the kind.
func (qb *EntityQueryBuilder) ListAll(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT %s
FROM %s
ORDER BY e.created_at DESC, e.id`, qb.enrichedColumns(kt), qb.enrichedFrom(kt)), nil
}

// PortalsOf selects the ownership records of one entity ($1).
func (qb *EntityQueryBuilder) PortalsOf(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT id_portal
FROM %s
WHERE %s = $1
ORDER BY id_portal`, kt.ownTable, kt.ownColumn), nil
}

// PortalsOfMany selects the ownership records of a batch of entities ($1 text array).
func (qb *EntityQueryBuilder) PortalsOfMany(kind entity.Kind) (string, error) {
	kt, err := lookupKind(kind)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`
SELECT %s, id_portal
FROM %s
WHERE %s = ANY($1)
ORDER BY %s, id_portal`, kt.ownColumn, kt.ownTable, kt.ownColumn, kt.ownColumn), nil
}
