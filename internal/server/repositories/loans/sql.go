package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/doug-martin/goqu/v9"
)

const table = "loans"

var columns = []any{"id", "user_id", "book_id", "borrowed_at", "due_at", "returned_at", "state"}

type SQLRepository struct {
	db      dbx.DBTX
	dialect goqu.DialectWrapper
}

func NewSQLRepository(db dbx.DBTX, dialect goqu.DialectWrapper) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, loan *models.Loan) error {
	query, args, err := r.dialect.Insert(table).Prepared(true).Rows(goqu.Record{
		"id":          loan.ID,
		"user_id":     loan.UserID,
		"book_id":     loan.BookID,
		"borrowed_at": loan.BorrowedAt,
		"due_at":      loan.DueAt,
		"state":       loan.State,
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateKey
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Loan, error) {
	return r.getOne(ctx, goqu.Ex{"id": id})
}

func (r *SQLRepository) GetActive(ctx context.Context, id string) (*models.Loan, error) {
	return r.getOne(ctx, goqu.Ex{"id": id, "state": models.LoanActive})
}

func (r *SQLRepository) getOne(ctx context.Context, where goqu.Ex) (*models.Loan, error) {
	query, args, err := r.dialect.From(table).Prepared(true).
		Select(columns...).
		Where(where).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	l := &models.Loan{}
	var returned sql.NullTime
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueAt, &returned, &l.State)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if returned.Valid {
		l.ReturnedAt = &returned.Time
	}
	return l, nil
}

func (r *SQLRepository) HasActive(ctx context.Context, userID, bookID string) (bool, error) {
	query, args, err := r.dialect.From(table).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"user_id": userID, "book_id": bookID, "state": models.LoanActive}).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLRepository) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	query, args, err := r.dialect.Update(table).Prepared(true).
		Set(goqu.Record{"returned_at": at, "state": models.LoanReturned}).
		Where(goqu.Ex{"id": id, "state": models.LoanActive}).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
