package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
)

// LoanState is the ledger entry state. ACTIVE is initial, RETURNED terminal.
type LoanState string

const (
	LoanActive   LoanState = "ACTIVE"
	LoanReturned LoanState = "RETURNED"
)

func (s LoanState) Value() (driver.Value, error) {
	switch s {
	case LoanActive, LoanReturned:
		return string(s), nil
	default:
		return nil, fmt.Errorf("invalid loan state %q", string(s))
	}
}

func (s *LoanState) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("cannot scan %T into LoanState", src)
	}
	switch LoanState(v) {
	case LoanActive, LoanReturned:
		*s = LoanState(v)
		return nil
	default:
		return fmt.Errorf("invalid loan state %q", v)
	}
}

// Loan is one borrow-to-return lifecycle of a (user, book) pair.
type Loan struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"user_id"`
	BookID     string     `db:"book_id" json:"book_id"`
	BorrowedAt time.Time  `db:"borrowed_at" json:"borrow_date"`
	DueAt      time.Time  `db:"due_at" json:"due_date"`
	ReturnedAt *time.Time `db:"returned_at" json:"return_date"`
	State      LoanState  `db:"state" json:"status"`
}

// DueDate is borrowedAt plus the loan period in calendar days, so month and
// year rollover follow the calendar of borrowedAt's location.
func DueDate(borrowedAt time.Time) time.Time {
	return borrowedAt.AddDate(0, 0, common.LoanPeriodDays)
}

// NewLoan builds an ACTIVE loan borrowed at now.
func NewLoan(id, userID, bookID string, now time.Time) *Loan {
	return &Loan{
		ID:         id,
		UserID:     userID,
		BookID:     bookID,
		BorrowedAt: now,
		DueAt:      DueDate(now),
		State:      LoanActive,
	}
}

func (l *Loan) Active() bool { return l.State == LoanActive }

// MarkReturned performs the only permitted transition, ACTIVE -> RETURNED.
// A loan that is not active is reported as ErrLoanNotFound.
func (l *Loan) MarkReturned(at time.Time) error {
	if !l.Active() {
		return common.ErrLoanNotFound
	}
	if at.Before(l.BorrowedAt) {
		at = l.BorrowedAt
	}
	l.ReturnedAt = &at
	l.State = LoanReturned
	return nil
}

// Overdue reports whether the loan is active and its due date is strictly
// before now.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Active() && l.DueAt.Before(now)
}

// LoanDetails is a ledger entry joined with descriptive book and user fields
// for listings. User fields are empty in per-user listings.
type LoanDetails struct {
	Loan
	Title     string `db:"title" json:"title"`
	Author    string `db:"author" json:"author"`
	ISBN      string `db:"isbn" json:"isbn,omitempty"`
	UserName  string `db:"user_name" json:"user_name,omitempty"`
	UserEmail string `db:"user_email" json:"user_email,omitempty"`
}
