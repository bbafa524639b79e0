package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/jmoiron/sqlx"
)

const statsQuery = `
SELECT
	(SELECT COUNT(*) FROM books) AS total_books,
	(SELECT COUNT(*) FROM users WHERE role <> 'admin') AS total_students,
	(SELECT COUNT(*) FROM loans WHERE state = 'ACTIVE') AS active_loans,
	(SELECT COUNT(*) FROM loans WHERE state = 'ACTIVE' AND due_at < ?) AS overdue_loans`

const loanColumns = `
	l.id, l.user_id, l.book_id, l.borrowed_at, l.due_at, l.returned_at, l.state,
	b.title, b.author, b.isbn`

const userLoansQuery = `
SELECT` + loanColumns + `
FROM loans l
JOIN books b ON b.id = l.book_id
WHERE l.user_id = ? AND l.state = 'ACTIVE'
ORDER BY l.borrowed_at DESC, l.id`

const allLoansQuery = `
SELECT` + loanColumns + `,
	u.name AS user_name, u.email AS user_email
FROM loans l
JOIN books b ON b.id = l.book_id
JOIN users u ON u.id = l.user_id
ORDER BY l.borrowed_at DESC, l.id`

const availabilityQuery = `
SELECT
	b.id AS book_id, b.title, b.total_copies, b.available_copies,
	COUNT(l.id) AS active_loans
FROM books b
LEFT JOIN loans l ON l.book_id = b.id AND l.state = 'ACTIVE'
GROUP BY b.id, b.title, b.total_copies, b.available_copies
ORDER BY b.title, b.id`

// SQLXRepository runs hand-written reporting queries through sqlx. Bind
// variables are written as ? and rebound for the driver.
type SQLXRepository struct {
	db *sqlx.DB
}

func NewSQLXRepository(db *sqlx.DB) *SQLXRepository {
	return &SQLXRepository{db: db}
}

// Stats counts overdue loans as ACTIVE loans due strictly before now.
func (r *SQLXRepository) Stats(ctx context.Context, now time.Time) (*models.Stats, error) {
	s := &models.Stats{}
	if err := r.db.GetContext(ctx, s, r.db.Rebind(statsQuery), now); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// ActiveLoansForUser lists the user's ACTIVE loans, most recent first.
func (r *SQLXRepository) ActiveLoansForUser(ctx context.Context, userID string) ([]models.LoanDetails, error) {
	result := []models.LoanDetails{}
	if err := r.db.SelectContext(ctx, &result, r.db.Rebind(userLoansQuery), userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// AllLoans lists the whole ledger, most recent borrow first.
func (r *SQLXRepository) AllLoans(ctx context.Context) ([]models.LoanDetails, error) {
	result := []models.LoanDetails{}
	if err := r.db.SelectContext(ctx, &result, allLoansQuery); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// Availability pairs every book's stored counter with its ACTIVE loan count
// in a single statement.
func (r *SQLXRepository) Availability(ctx context.Context) ([]models.BookAvailability, error) {
	result := []models.BookAvailability{}
	if err := r.db.SelectContext(ctx, &result, availabilityQuery); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
