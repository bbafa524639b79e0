package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
)

// Book is a catalog record. AvailableCopies is a materialized view over the
// ledger: TotalCopies minus the number of ACTIVE loans of this book.
type Book struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Author          string    `db:"author" json:"author"`
	ISBN            string    `db:"isbn" json:"isbn,omitempty"`
	Category        string    `db:"category" json:"category,omitempty"`
	TotalCopies     int       `db:"total_copies" json:"total_copies"`
	AvailableCopies int       `db:"available_copies" json:"available_copies"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the fields an administrator supplies when adding a book.
func (b *Book) Validate() error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	case strings.TrimSpace(b.Author) == "":
		return fmt.Errorf("%w: author is required", common.ErrorValidation)
	case b.TotalCopies < 1:
		return fmt.Errorf("%w: total copies must be at least 1", common.ErrorValidation)
	case b.AvailableCopies < 0 || b.AvailableCopies > b.TotalCopies:
		return fmt.Errorf("%w: available copies out of range", common.ErrorValidation)
	}
	return nil
}

func (b *Book) Available() bool { return b.AvailableCopies > 0 }
