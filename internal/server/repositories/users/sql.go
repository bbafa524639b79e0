package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

const table = "users"

var columns = []any{"id", "name", "email", "password_hash", "role", "created_at"}

type SQLRepository struct {
	db      dbx.DBTX
	dialect goqu.DialectWrapper
}

func NewSQLRepository(db dbx.DBTX, dialect goqu.DialectWrapper) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

// Create inserts a persisted user. A taken email yields common.ErrDuplicateKey.
func (r *SQLRepository) Create(ctx context.Context, user *models.User) error {
	if !user.Role.Persisted() {
		return fmt.Errorf("%w: %s users are not stored", common.ErrorValidation, user.Role)
	}

	query, args, err := r.dialect.Insert(table).Prepared(true).Rows(goqu.Record{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role,
		"created_at":    user.CreatedAt,
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

func (r *SQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, goqu.C("id").Eq(id))
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, goqu.C("email").Eq(email))
}

func (r *SQLRepository) getOne(ctx context.Context, where exp.Expression) (*models.User, error) {
	query, args, err := r.dialect.From(table).Prepared(true).
		Select(columns...).
		Where(where).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	u := &models.User{}
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}
