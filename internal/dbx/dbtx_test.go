package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "dbx.db")
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS copies (id INTEGER PRIMARY KEY, barcode TEXT UNIQUE);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM copies`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO copies(barcode) VALUES ('b-1')`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, db), "must commit on success")
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO copies(barcode) VALUES ('b-2')`)
		require.NoError(t, e)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, countRows(t, db), "must rollback when fn returns error")
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countRows(t, db), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `INSERT INTO copies(barcode) VALUES ('b-3')`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO copies(barcode) VALUES ('dup')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO copies(barcode) VALUES ('dup')`)
	require.Error(t, err)
	require.True(t, IsUniqueViolation(err))
	require.True(t, IsUniqueViolation(errors.Join(errors.New("db error"), err)), "wrapped errors are unwrapped")
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	require.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
}

func TestIsUniqueViolation_Other(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.False(t, IsUniqueViolation(errors.New("plain")))
	require.False(t, IsUniqueViolation(sql.ErrNoRows))
}

func TestOpen_SQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "open.db") + "?_pragma=foreign_keys(1)"

	db, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, 1, db.Stats().MaxOpenConnections)
	require.NoError(t, db.PingContext(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestOpen_RetriesThenFails(t *testing.T) {
	oldBase, oldMax := OpenRetryBase, OpenRetryMax
	OpenRetryBase, OpenRetryMax = time.Millisecond, 2
	defer func() { OpenRetryBase, OpenRetryMax = oldBase, oldMax }()

	// a directory that does not exist cannot be opened by sqlite
	dsn := "file:" + filepath.Join(t.TempDir(), "missing", "x.db") + "?mode=ro"

	_, err := Open(context.Background(), DriverSQLite, dsn)
	require.Error(t, err)
	require.ErrorContains(t, err, "ping sqlite")
}

func TestDialect(t *testing.T) {
	q, _, err := Dialect(DriverSQLite).From("books").Prepared(true).Where(goqu.Ex{"id": "b1"}).ToSQL()
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM `books` WHERE (`id` = ?)", q)

	q, _, err = Dialect(DriverPostgres).From("books").Prepared(true).Where(goqu.Ex{"id": "b1"}).ToSQL()
	require.NoError(t, err)
	require.Equal(t, `SELECT * FROM "books" WHERE ("id" = $1)`, q)
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("/tmp/x.db")
	require.True(t, strings.HasPrefix(dsn, "file:/tmp/x.db?"))
	require.Contains(t, dsn, "_pragma=foreign_keys(1)")
	require.Contains(t, dsn, "_time_format=sqlite")
}
