package loans

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
)

type Repository interface {
	// Create inserts an ACTIVE loan. A second ACTIVE loan for the same
	// (user, book) pair yields common.ErrDuplicateKey.
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id string) (*models.Loan, error)
	// GetActive returns the loan only while it is ACTIVE.
	GetActive(ctx context.Context, id string) (*models.Loan, error)
	HasActive(ctx context.Context, userID, bookID string) (bool, error)
	// MarkReturned moves an ACTIVE loan to RETURNED. It reports false when
	// no ACTIVE loan with that id exists.
	MarkReturned(ctx context.Context, id string, at time.Time) (bool, error)
}
