package books

import (
	"context"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id string) (*models.Book, error)
	List(ctx context.Context) ([]*models.Book, error)
	// DecrementAvailable takes one copy if any is left. It reports false when
	// the book is missing or has no available copy.
	DecrementAvailable(ctx context.Context, id string) (bool, error)
	// IncrementAvailable puts one copy back unless the counter is already at
	// total. It reports false when the book is missing or full.
	IncrementAvailable(ctx context.Context, id string) (bool, error)
}
