package ctl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/config"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDriver = dbx.DriverSQLite
	c.DatabaseDSN = dbx.SQLiteDSN(filepath.Join(t.TempDir(), "ctl.db"))
	c.LogLevel = "error"
	return c
}

func run(t *testing.T, c *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(c)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), err }
	t.Cleanup(func() { readPassword = orig })
}

func TestMigrate(t *testing.T) {
	c := testConfig(t)

	out, err := run(t, c, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrations applied")

	// idempotent
	_, err = run(t, c, "migrate")
	require.NoError(t, err)
}

func TestCreateAdmin_PromptsForPassword(t *testing.T) {
	c := testConfig(t)
	stubPassword(t, "s3cret\n", nil)

	out, err := run(t, c, "create-admin", "--email", "ops@library.com", "--name", "Ops")
	require.NoError(t, err)
	assert.Contains(t, out, "admin ops@library.com created")

	out, err = run(t, c, "create-admin", "--email", "ops@library.com", "--password", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestCreateAdmin_PasswordErrors(t *testing.T) {
	c := testConfig(t)

	stubPassword(t, "", errors.New("not a terminal"))
	_, err := run(t, c, "create-admin")
	require.ErrorContains(t, err, "not a terminal")

	stubPassword(t, "   ", nil)
	_, err = run(t, c, "create-admin")
	require.ErrorContains(t, err, "must not be empty")
}

func TestReconcile(t *testing.T) {
	c := testConfig(t)

	out, err := run(t, c, "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, `"books_checked": 0`)

	db, err := dbx.Open(context.Background(), c.DatabaseDriver, c.DatabaseDSN)
	require.NoError(t, err)
	testutil.Exec(t, db,
		`INSERT INTO books (id, title, author, isbn, category, total_copies, available_copies, created_at)
		 VALUES ('b1', 'Dune', 'Herbert', '', '', 2, 1, '2024-01-01 00:00:00+00:00')`)
	require.NoError(t, db.Close())

	out, err = run(t, c, "reconcile")
	require.ErrorIs(t, err, common.ErrIntegrityFault)
	assert.Contains(t, out, `"book_id": "b1"`)
}

func TestStats(t *testing.T) {
	c := testConfig(t)
	_, err := run(t, c, "create-admin", "--password", "pw")
	require.NoError(t, err)

	out, err := run(t, c, "stats", "--at", "2025-01-01T00:00:00Z")
	require.NoError(t, err)

	var s models.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, models.Stats{}, s, "admins are not students")

	_, err = run(t, c, "stats", "--at", "yesterday")
	require.Error(t, err)
}

func TestUnsupportedDriver(t *testing.T) {
	c := testConfig(t)

	_, err := run(t, c, "--driver", "mysql", "migrate")
	require.Error(t, err)
}
