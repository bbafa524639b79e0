package grpc

import (
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GuestRequest struct{}

type SessionResponse struct {
	AccessToken string      `json:"access_token,omitempty"`
	User        models.User `json:"user"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ListCatalogRequest struct{}

type ListCatalogResponse struct {
	Books []*models.Book `json:"books"`
}

type AddBookRequest struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	ISBN     string `json:"isbn"`
	Category string `json:"category"`
	Copies   int    `json:"copies"`
}

// BorrowRequest borrows for the caller. Only admins may set UserID to
// someone else.
type BorrowRequest struct {
	UserID string `json:"user_id,omitempty"`
	BookID string `json:"book_id"`
}

type BorrowResponse struct {
	LoanID string    `json:"loan_id"`
	DueAt  time.Time `json:"due_at"`
}

type ReturnRequest struct {
	LoanID string `json:"loan_id"`
}

type ReturnResponse struct{}

type ListUserLoansRequest struct {
	UserID string `json:"user_id,omitempty"`
}

type ListAllLoansRequest struct{}

type LoansResponse struct {
	Loans []models.LoanDetails `json:"loans"`
}

type StatsRequest struct{}

type ReconcileRequest struct{}
