package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/doug-martin/goqu/v9"
)

const table = "books"

var columns = []any{"id", "title", "author", "isbn", "category", "total_copies", "available_copies", "created_at"}

type SQLRepository struct {
	db      dbx.DBTX
	dialect goqu.DialectWrapper
}

func NewSQLRepository(db dbx.DBTX, dialect goqu.DialectWrapper) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Create(ctx context.Context, book *models.Book) error {
	query, args, err := r.dialect.Insert(table).Prepared(true).Rows(goqu.Record{
		"id":               book.ID,
		"title":            book.Title,
		"author":           book.Author,
		"isbn":             book.ISBN,
		"category":         book.Category,
		"total_copies":     book.TotalCopies,
		"available_copies": book.AvailableCopies,
		"created_at":       book.CreatedAt,
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

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	query, args, err := r.dialect.From(table).Prepared(true).
		Select(columns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	book, err := scanBook(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return book, nil
}

// List returns the whole catalog ordered by title.
func (r *SQLRepository) List(ctx context.Context) ([]*models.Book, error) {
	query, args, err := r.dialect.From(table).Prepared(true).
		Select(columns...).
		Order(goqu.C("title").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) DecrementAvailable(ctx context.Context, id string) (bool, error) {
	query, args, err := r.dialect.Update(table).Prepared(true).
		Set(goqu.Record{"available_copies": goqu.L("available_copies - 1")}).
		Where(goqu.C("id").Eq(id), goqu.C("available_copies").Gt(0)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	return r.execOne(ctx, query, args)
}

func (r *SQLRepository) IncrementAvailable(ctx context.Context, id string) (bool, error) {
	query, args, err := r.dialect.Update(table).Prepared(true).
		Set(goqu.Record{"available_copies": goqu.L("available_copies + 1")}).
		Where(goqu.C("id").Eq(id), goqu.C("available_copies").Lt(goqu.I("total_copies"))).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	return r.execOne(ctx, query, args)
}

func (r *SQLRepository) execOne(ctx context.Context, query string, args []any) (bool, error) {
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

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(s scanner) (*models.Book, error) {
	b := &models.Book{}
	err := s.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category,
		&b.TotalCopies, &b.AvailableCopies, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}
