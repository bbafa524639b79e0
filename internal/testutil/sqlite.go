// Package testutil provides helpers for tests that need a real, migrated
// database.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// NewSQLiteDB returns a migrated sqlite database in a per-test temp file.
// The pool is closed on test cleanup.
func NewSQLiteDB(t testing.TB) *sql.DB {
	t.Helper()

	dsn := dbx.SQLiteDSN(filepath.Join(t.TempDir(), "bookledger.db"))
	db, err := dbx.Open(context.Background(), dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, migrations.SQLiteDir))

	return db
}

// Exec runs raw statements, failing the test on the first error. Useful for
// seeding rows or corrupting counters on purpose.
func Exec(t testing.TB, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err, s)
	}
}
