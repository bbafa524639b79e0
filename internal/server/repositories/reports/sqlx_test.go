package reports

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/testutil"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func ts(t time.Time) string { return t.Format("2006-01-02 15:04:05.999999999-07:00") }

// seed creates two students, an admin, three books and a small ledger:
//
//	l-1 alice Dune   borrowed t0      ACTIVE (due t0+14d)
//	l-2 alice Emma   borrowed t0+1d   RETURNED
//	l-3 bob   Dune   borrowed t0+2d   ACTIVE
func seed(t *testing.T) (*SQLXRepository, *sql.DB) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	testutil.Exec(t, db,
		`INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES
			('u-a', 'Alice', 'alice@example.com', 'h', 'student', '`+ts(t0)+`'),
			('u-b', 'Bob', 'bob@example.com', 'h', 'student', '`+ts(t0)+`'),
			('u-z', 'Admin', 'admin@example.com', 'h', 'admin', '`+ts(t0)+`')`,
		`INSERT INTO books (id, title, author, isbn, total_copies, available_copies, created_at) VALUES
			('b-d', 'Dune', 'Herbert', '111', 3, 1, '`+ts(t0)+`'),
			('b-e', 'Emma', 'Austen', '222', 1, 1, '`+ts(t0)+`'),
			('b-m', 'Moby Dick', 'Melville', '', 2, 2, '`+ts(t0)+`')`,
		`INSERT INTO loans (id, user_id, book_id, borrowed_at, due_at, returned_at, state) VALUES
			('l-1', 'u-a', 'b-d', '`+ts(t0)+`', '`+ts(models.DueDate(t0))+`', NULL, 'ACTIVE'),
			('l-2', 'u-a', 'b-e', '`+ts(t0.AddDate(0, 0, 1))+`', '`+ts(models.DueDate(t0.AddDate(0, 0, 1)))+`', '`+ts(t0.AddDate(0, 0, 3))+`', 'RETURNED'),
			('l-3', 'u-b', 'b-d', '`+ts(t0.AddDate(0, 0, 2))+`', '`+ts(models.DueDate(t0.AddDate(0, 0, 2)))+`', NULL, 'ACTIVE')`,
	)
	return NewSQLXRepository(sqlx.NewDb(db, dbx.DriverSQLite)), db
}

func TestStats(t *testing.T) {
	repo, _ := seed(t)
	ctx := context.Background()

	s, err := repo.Stats(ctx, t0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, models.Stats{TotalBooks: 3, TotalStudents: 2, ActiveLoans: 2, OverdueLoans: 0}, *s)

	// l-1 is due exactly at t0+14d: not yet overdue at that instant
	s, err = repo.Stats(ctx, models.DueDate(t0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.OverdueLoans)

	s, err = repo.Stats(ctx, models.DueDate(t0).Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.OverdueLoans)

	// the returned loan l-2 never counts, even long after its due date
	s, err = repo.Stats(ctx, t0.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.OverdueLoans)
}

func TestActiveLoansForUser(t *testing.T) {
	repo, _ := seed(t)

	got, err := repo.ActiveLoansForUser(context.Background(), "u-a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "l-1", got[0].ID)
	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, "Herbert", got[0].Author)
	assert.Equal(t, "111", got[0].ISBN)
	assert.Equal(t, models.LoanActive, got[0].State)
	assert.Empty(t, got[0].UserEmail)
}

func TestActiveLoansForUser_NoneIsEmptySlice(t *testing.T) {
	repo, _ := seed(t)

	got, err := repo.ActiveLoansForUser(context.Background(), "u-z")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAllLoans_NewestFirstWithUserFields(t *testing.T) {
	repo, _ := seed(t)

	got, err := repo.AllLoans(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"l-3", "l-2", "l-1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	assert.Equal(t, "Bob", got[0].UserName)
	assert.Equal(t, "bob@example.com", got[0].UserEmail)

	returned := got[1]
	assert.Equal(t, models.LoanReturned, returned.State)
	require.NotNil(t, returned.ReturnedAt)
	assert.True(t, returned.ReturnedAt.Equal(t0.AddDate(0, 0, 3)))
	assert.Nil(t, got[0].ReturnedAt)
}

func TestAvailability(t *testing.T) {
	repo, db := seed(t)
	ctx := context.Background()

	got, err := repo.Availability(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, b := range got {
		assert.True(t, b.Consistent(), "%+v", b)
	}
	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, 2, got[0].ActiveLoans)

	testutil.Exec(t, db, `UPDATE books SET available_copies = 0 WHERE id = 'b-m'`)

	got, err = repo.Availability(ctx)
	require.NoError(t, err)
	moby := got[2]
	assert.Equal(t, "b-m", moby.BookID)
	assert.False(t, moby.Consistent())
	assert.Equal(t, 2, moby.Expected())
}

func TestStats_PostgresRebind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLXRepository(sqlx.NewDb(db, dbx.DriverPostgres))
	mock.ExpectQuery(`due_at < \$1`).
		WithArgs(t0).
		WillReturnRows(sqlmock.NewRows([]string{"total_books", "total_students", "active_loans", "overdue_loans"}).
			AddRow(int64(4), int64(3), int64(2), int64(1)))

	s, err := repo.Stats(context.Background(), t0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.TotalBooks)
	assert.Equal(t, int64(1), s.OverdueLoans)
}

func TestAllLoans_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLXRepository(sqlx.NewDb(db, dbx.DriverPostgres))
	mock.ExpectQuery(`FROM loans l`).WillReturnError(errors.New("db err"))

	_, err = repo.AllLoans(context.Background())
	require.ErrorContains(t, err, "db error: db err")
}
