// Package repomanager vends repositories bound to a database handle, so the
// same repository code runs against the pool or inside a transaction, and
// owns the schema migrations for the configured SQL dialect.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/books"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/loans"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/reports"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Books(db dbx.DBTX) books.Repository
	Users(db dbx.DBTX) users.Repository
	Loans(db dbx.DBTX) loans.Repository
	Reports(db *sql.DB) reports.Repository
}
