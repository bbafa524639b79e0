package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/keylock"
	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
)

// BorrowReceipt identifies the loan created by Borrow.
type BorrowReceipt struct {
	LoanID string
	DueAt  time.Time
}

// CirculationService is the ledger state machine. Borrow and return each
// run as one unit: a per-book lock in this process plus a database
// transaction holding the loan change and the counter change together.
type CirculationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	reconciler  *AvailabilityReconciler
	locks       *keylock.Locker
	logger      logging.Logger
	now         Clock
	newID       IDGenerator
}

func NewCirculationService(db *sql.DB, rm repomanager.RepositoryManager, reconciler *AvailabilityReconciler, logger logging.Logger) *CirculationService {
	return &CirculationService{
		db:          db,
		repomanager: rm,
		reconciler:  reconciler,
		locks:       keylock.New(),
		logger:      logger.With("module", "circulation"),
		now:         UTCNow,
		newID:       NewID,
	}
}

// Borrow creates an ACTIVE loan of bookID for userID, due LoanPeriodDays
// calendar days from now, and takes one available copy.
//
// Errors: common.ErrUnknownReference for a missing user or book,
// common.ErrorForbidden for identities that may not borrow,
// common.ErrAlreadyBorrowed when the user already holds this book and
// common.ErrBookUnavailable when no copy is left.
func (s *CirculationService) Borrow(ctx context.Context, userID, bookID string) (*BorrowReceipt, error) {
	if userID == "" || bookID == "" {
		return nil, common.ErrUnknownReference
	}

	release := s.locks.Lock(bookID)
	defer release()

	var receipt *BorrowReceipt
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.repomanager.Users(tx).GetByID(ctx, userID)
		if err != nil {
			return notFoundAs(err, common.ErrUnknownReference)
		}
		if !user.Role.CanBorrow() {
			return common.ErrorForbidden
		}
		if _, err := s.repomanager.Books(tx).GetByID(ctx, bookID); err != nil {
			return notFoundAs(err, common.ErrUnknownReference)
		}

		loans := s.repomanager.Loans(tx)
		held, err := loans.HasActive(ctx, userID, bookID)
		if err != nil {
			return err
		}
		if held {
			return common.ErrAlreadyBorrowed
		}

		if err := s.reconciler.ReserveCopy(ctx, tx, bookID); err != nil {
			return err
		}

		loan := models.NewLoan(s.newID(), userID, bookID, s.now())
		if err := loans.Create(ctx, loan); err != nil {
			if errors.Is(err, common.ErrDuplicateKey) {
				return common.ErrAlreadyBorrowed
			}
			return err
		}

		receipt = &BorrowReceipt{LoanID: loan.ID, DueAt: loan.DueAt}
		return nil
	})
	if err != nil {
		s.logger.Debug(ctx, "borrow refused", "user_id", userID, "book_id", bookID, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "book borrowed", "loan_id", receipt.LoanID, "user_id", userID, "book_id", bookID, "due_at", receipt.DueAt)
	return receipt, nil
}

// Return closes an ACTIVE loan and puts its copy back. A missing or already
// returned loan yields common.ErrLoanNotFound and changes nothing.
func (s *CirculationService) Return(ctx context.Context, loanID string) error {
	return s.returnLoan(ctx, loanID, "")
}

// ReturnOwned is Return restricted to loans held by ownerID. Loans of other
// users are reported as common.ErrLoanNotFound.
func (s *CirculationService) ReturnOwned(ctx context.Context, ownerID, loanID string) error {
	if ownerID == "" {
		return common.ErrLoanNotFound
	}
	return s.returnLoan(ctx, loanID, ownerID)
}

func (s *CirculationService) returnLoan(ctx context.Context, loanID, ownerID string) error {
	if loanID == "" {
		return common.ErrLoanNotFound
	}

	// the book id decides the lock, so it is read before locking and the
	// loan is re-checked inside the transaction
	current, err := s.repomanager.Loans(s.db).GetActive(ctx, loanID)
	if err != nil {
		return notFoundAs(err, common.ErrLoanNotFound)
	}

	release := s.locks.Lock(current.BookID)
	defer release()

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		loans := s.repomanager.Loans(tx)
		loan, err := loans.GetActive(ctx, loanID)
		if err != nil {
			return notFoundAs(err, common.ErrLoanNotFound)
		}
		if ownerID != "" && loan.UserID != ownerID {
			return common.ErrLoanNotFound
		}

		if err := loan.MarkReturned(s.now()); err != nil {
			return err
		}
		ok, err := loans.MarkReturned(ctx, loan.ID, *loan.ReturnedAt)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrLoanNotFound
		}

		return s.reconciler.ReleaseCopy(ctx, tx, loan.BookID, loan.ID)
	})
	if err != nil {
		s.logger.Debug(ctx, "return refused", "loan_id", loanID, "error", err)
		return err
	}

	s.logger.Info(ctx, "book returned", "loan_id", loanID, "book_id", current.BookID)
	return nil
}

// ListUserLoans returns the user's ACTIVE loans, most recent borrow first,
// with book fields.
func (s *CirculationService) ListUserLoans(ctx context.Context, userID string) ([]models.LoanDetails, error) {
	return s.repomanager.Reports(s.db).ActiveLoansForUser(ctx, userID)
}

// ListAllLoans returns the whole ledger with user and book fields, most
// recent borrow first.
func (s *CirculationService) ListAllLoans(ctx context.Context) ([]models.LoanDetails, error) {
	return s.repomanager.Reports(s.db).AllLoans(ctx)
}

func notFoundAs(err, target error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return target
	}
	return err
}
