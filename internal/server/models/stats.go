package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
)

// Stats are read-only rollups for the admin dashboard.
type Stats struct {
	TotalBooks    int64 `db:"total_books" json:"totalBooks"`
	TotalStudents int64 `db:"total_students" json:"totalStudents"`
	ActiveLoans   int64 `db:"active_loans" json:"activeLoans"`
	OverdueLoans  int64 `db:"overdue_loans" json:"overdueLoans"`
}

// BookAvailability compares a book's stored counter with the ledger.
type BookAvailability struct {
	BookID          string `db:"book_id" json:"book_id"`
	Title           string `db:"title" json:"title"`
	TotalCopies     int    `db:"total_copies" json:"total_copies"`
	AvailableCopies int    `db:"available_copies" json:"available_copies"`
	ActiveLoans     int    `db:"active_loans" json:"active_loans"`
}

// Expected is the counter value the ledger implies.
func (b BookAvailability) Expected() int { return b.TotalCopies - b.ActiveLoans }

func (b BookAvailability) Consistent() bool {
	return b.ActiveLoans <= b.TotalCopies && b.AvailableCopies == b.Expected()
}

// ReconcileReport is the outcome of one integrity check over all books.
type ReconcileReport struct {
	ID            string             `json:"id"`
	CheckedAt     time.Time          `json:"checked_at"`
	BooksChecked  int                `json:"books_checked"`
	Discrepancies []BookAvailability `json:"discrepancies"`
}

func (r *ReconcileReport) Clean() bool { return len(r.Discrepancies) == 0 }

// Err returns an ErrIntegrityFault describing the drift, or nil.
func (r *ReconcileReport) Err() error {
	if r.Clean() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d books drifted from the ledger",
		common.ErrIntegrityFault, len(r.Discrepancies), r.BooksChecked)
}
