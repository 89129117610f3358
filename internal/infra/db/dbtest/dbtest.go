// Package dbtest opens migrated throwaway databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"catchup-registry/internal/infra/db"
)

// NewSQLite opens a fresh file-backed SQLite database in t's temp dir and
// applies the registry schema. The database is closed when the test ends.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()
	conn, err := db.Open(context.Background(), db.SQLite, filepath.Join(t.TempDir(), "registry.db"), db.DefaultConnectionConfig())
	require.NoError(t, err, "open sqlite")
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.MigrateUp(context.Background(), conn, db.SQLite), "migrate sqlite")
	return conn
}

// Count returns the number of rows in table matching where.
func Count(t testing.TB, conn *sql.DB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, conn.QueryRowContext(context.Background(), q, args...).Scan(&n))
	return n
}
