package sqlite_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portal-content/internal/infra/db"
)

/* ────────────────────────────  helpers  ──────────────────────────── */

// newTestDB opens a migrated in-memory database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.Config{Driver: db.DriverSQLite, DSN: ":memory:"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.MigrateUp(conn, db.DriverSQLite))
	return conn
}

func mustExec(t *testing.T, conn *sql.DB, query string, args ...any) {
	t.Helper()
	_, err := conn.Exec(query, args...)
	require.NoError(t, err)
}

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// seedContent inserts two companies, one product and one event with ownership records.
func seedContent(t *testing.T, conn *sql.DB) {
	t.Helper()
	mustExec(t, conn, `INSERT INTO companies (id, title, summary, url, created_at) VALUES (?, ?, ?, ?, ?)`,
		"acme-robotics", "Acme Robotics", "Industrial robots", "https://acme.example", base)
	mustExec(t, conn, `INSERT INTO companies (id, title, created_at) VALUES (?, ?, ?)`,
		"northwind-energy", "Northwind Energy", base.Add(time.Hour))
	mustExec(t, conn, `INSERT INTO products (id, company_id, title, created_at) VALUES (?, ?, ?, ?)`,
		"acme-cobot-x2", "acme-robotics", "Cobot X2", base.Add(2*time.Hour))
	mustExec(t, conn, `INSERT INTO events (id, company_id, title, starts_at, location, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"offshore-wind-forum", "northwind-energy", "Offshore Wind Forum", base.Add(90*24*time.Hour), "Aberdeen", base)

	mustExec(t, conn, `INSERT INTO company_portal (id_company, id_portal) VALUES ('acme-robotics', 1), ('northwind-energy', 7), ('northwind-energy', 1)`)
	mustExec(t, conn, `INSERT INTO product_portal (id_product, id_portal) VALUES ('acme-cobot-x2', 1)`)
	mustExec(t, conn, `INSERT INTO event_portal (id_event, id_portal) VALUES ('offshore-wind-forum', 7)`)
}
