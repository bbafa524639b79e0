// Package reports is the read side of the ledger: listings joined with
// catalog and identity fields, statistics and the availability scan used
// by reconciliation. It never writes.
package reports

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
)

type Repository interface {
	Stats(ctx context.Context, now time.Time) (*models.Stats, error)
	ActiveLoansForUser(ctx context.Context, userID string) ([]models.LoanDetails, error)
	AllLoans(ctx context.Context) ([]models.LoanDetails, error)
	Availability(ctx context.Context) ([]models.BookAvailability, error)
}
