package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
)

// NewBook is the administrator input for AddBook.
type NewBook struct {
	Title    string
	Author   string
	ISBN     string
	Category string
	Copies   int
}

type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         Clock
	newID       IDGenerator
}

func NewCatalogService(db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) *CatalogService {
	return &CatalogService{
		db:          db,
		repomanager: rm,
		logger:      logger.With("module", "catalog"),
		now:         UTCNow,
		newID:       NewID,
	}
}

// AddBook stores a book with every copy available.
func (s *CatalogService) AddBook(ctx context.Context, in NewBook) (*models.Book, error) {
	book := &models.Book{
		ID:              s.newID(),
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		ISBN:            strings.TrimSpace(in.ISBN),
		Category:        strings.TrimSpace(in.Category),
		TotalCopies:     in.Copies,
		AvailableCopies: in.Copies,
		CreatedAt:       s.now(),
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := s.repomanager.Books(s.db).Create(ctx, book); err != nil {
		return nil, fmt.Errorf("error creating book: %w", err)
	}

	s.logger.Info(ctx, "book added", "book_id", book.ID, "title", book.Title, "copies", book.TotalCopies)
	return book, nil
}

// GetBook resolves a book id. Unknown ids yield common.ErrUnknownReference.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*models.Book, error) {
	book, err := s.repomanager.Books(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnknownReference
		}
		return nil, err
	}
	return book, nil
}

// ListCatalog returns every book ordered by title.
func (s *CatalogService) ListCatalog(ctx context.Context) ([]*models.Book, error) {
	books, err := s.repomanager.Books(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}
