package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/migrations"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/books"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/loans"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/reports"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/users"
	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends goqu-backed repositories for one driver and
// runs that driver's migrations.
type SQLRepositoryManager struct {
	driver        string
	dialect       goqu.DialectWrapper
	gooseDialect  string
	migrationsDir string
}

// New returns the manager for a database/sql driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case dbx.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func NewPostgresRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{
		driver:        dbx.DriverPostgres,
		dialect:       dbx.Dialect(dbx.DriverPostgres),
		gooseDialect:  "pgx",
		migrationsDir: migrations.PostgresDir,
	}
}

func NewSQLiteRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{
		driver:        dbx.DriverSQLite,
		dialect:       dbx.Dialect(dbx.DriverSQLite),
		gooseDialect:  "sqlite3",
		migrationsDir: migrations.SQLiteDir,
	}
}

// Books returns a books.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Books(db dbx.DBTX) books.Repository {
	return books.NewSQLRepository(db, m.dialect)
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// Loans returns a loans.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Loans(db dbx.DBTX) loans.Repository {
	return loans.NewSQLRepository(db, m.dialect)
}

// Reports returns the read model. It always runs on the pool.
func (m *SQLRepositoryManager) Reports(db *sql.DB) reports.Repository {
	return reports.NewSQLXRepository(sqlx.NewDb(db, m.driver))
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations of this dialect
// and applies them.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.gooseDialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, m.migrationsDir); err != nil {
		return err
	}
	return nil
}
