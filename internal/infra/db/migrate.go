package db

import (
	"database/sql"
	"fmt"
)

// ownershipTables maps each content table to its ownership join table and key column.
var ownershipTables = []struct {
	content string
	table   string
	column  string
}{
	{"companies", "company_portal", "id_company"},
	{"products", "product_portal", "id_product"},
	{"events", "event_portal", "id_event"},
	{"articles", "article_portal", "id_article"},
}

// dialect carries the column types that differ between PostgreSQL and SQLite.
type dialect struct {
	timestamp string
	now       string
	serialPK  string
	boolean   string
	trueLit   string
	portalID  string
}

var dialects = map[string]dialect{
	DriverPostgres: {
		timestamp: "TIMESTAMPTZ",
		now:       "now()",
		serialPK:  "BIGSERIAL PRIMARY KEY",
		boolean:   "BOOLEAN",
		trueLit:   "TRUE",
		portalID:  "BIGINT",
	},
	DriverSQLite: {
		timestamp: "DATETIME",
		now:       "CURRENT_TIMESTAMP",
		serialPK:  "INTEGER PRIMARY KEY AUTOINCREMENT",
		boolean:   "INTEGER",
		trueLit:   "1",
		portalID:  "INTEGER",
	},
}

func lookupDialect(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// contentStatements creates the content tables, ownership tables and their indexes.
func contentStatements(d dialect) []string {
	stmts := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS companies (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    summary     TEXT,
    url         TEXT,
    created_at  %s NOT NULL DEFAULT %s
)`, d.timestamp, d.now),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS products (
    id          TEXT PRIMARY KEY,
    company_id  TEXT REFERENCES companies(id) ON DELETE SET NULL,
    title       TEXT NOT NULL,
    summary     TEXT,
    url         TEXT,
    created_at  %s NOT NULL DEFAULT %s
)`, d.timestamp, d.now),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS events (
    id          TEXT PRIMARY KEY,
    company_id  TEXT REFERENCES companies(id) ON DELETE SET NULL,
    title       TEXT NOT NULL,
    summary     TEXT,
    url         TEXT,
    starts_at   %s,
    location    TEXT,
    created_at  %s NOT NULL DEFAULT %s
)`, d.timestamp, d.timestamp, d.now),
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS articles (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    summary     TEXT,
    url         TEXT,
    created_at  %s NOT NULL DEFAULT %s
)`, d.timestamp, d.now),
	}

	for _, o := range ownershipTables {
		stmts = append(stmts, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    %s  TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
    id_portal  %s NOT NULL,
    PRIMARY KEY (%s, id_portal)
)`, o.table, o.column, o.content, d.portalID, o.column))
	}

	for _, o := range ownershipTables {
		// ORDER BY created_at DESC on every portal listing
		stmts = append(stmts,
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_created_at ON %s(created_at DESC)`, o.content, o.content),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_portal ON %s(id_portal)`, o.table, o.table))
	}
	return stmts
}

// commentStatements creates the comment table. Serial allocation relies on the unique key.
func commentStatements(d dialect) []string {
	return []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS comments (
    id_comment  TEXT PRIMARY KEY,
    id_article  TEXT NOT NULL,
    serial      INTEGER NOT NULL CHECK (serial > 0),
    author_id   TEXT NOT NULL,
    content     TEXT NOT NULL,
    created_at  %s NOT NULL DEFAULT %s,
    CONSTRAINT uq_comments_article_serial UNIQUE (id_article, serial)
)`, d.timestamp, d.now),
		`CREATE INDEX IF NOT EXISTS idx_comments_article_created ON comments(id_article, created_at DESC, serial DESC)`,
	}
}

// bannerStatements creates the banner table.
func bannerStatements(d dialect) []string {
	return []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS banners (
    id               %s,
    placement_type   TEXT NOT NULL CHECK (placement_type IN ('top', 'medium', 'right')),
    creative_source  TEXT NOT NULL,
    target_route     TEXT NOT NULL,
    priority         INTEGER NOT NULL DEFAULT 0 CHECK (priority >= 0),
    active           %s NOT NULL DEFAULT %s,
    starts_at        %s,
    ends_at          %s
)`, d.serialPK, d.boolean, d.trueLit, d.timestamp, d.timestamp),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_banners_placement_active ON banners(placement_type) WHERE active = %s`, d.trueLit),
	}
}

// MigrateUp creates every table and index for driver. Statements are idempotent.
func MigrateUp(db *sql.DB, driver string) error {
	d, err := lookupDialect(driver)
	if err != nil {
		return err
	}

	var stmts []string
	stmts = append(stmts, contentStatements(d)...)
	stmts = append(stmts, commentStatements(d)...)
	stmts = append(stmts, bannerStatements(d)...)

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDown rolls back the comment feature.
// Content, ownership and banner tables are core tables and are kept.
// Use with caution: this will delete all comments.
func MigrateDown(db *sql.DB, driver string) error {
	if _, err := lookupDialect(driver); err != nil {
		return err
	}

	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_comments_article_created`,
		`DROP TABLE IF EXISTS comments`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// MigrateDownOwnership drops the ownership tables only.
// Listings then fail with a missing-table error and are served from the snapshot.
func MigrateDownOwnership(db *sql.DB, driver string) error {
	if _, err := lookupDialect(driver); err != nil {
		return err
	}

	for _, o := range ownershipTables {
		if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, o.table)); err != nil {
			return err
		}
	}
	return nil
}
