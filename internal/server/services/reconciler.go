package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/common"
	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/alerts"
	"github.com/dmitrijs2005/bookledger/internal/server/models"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
)

// AvailabilityReconciler owns every change to a book's available-copy
// counter and checks the counters against the ledger.
//
// ReserveCopy and ReleaseCopy run on the caller's transaction and are only
// called by CirculationService. Neither scans the ledger.
type AvailabilityReconciler struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	sink        alerts.Sink
	logger      logging.Logger
	now         Clock
	newID       IDGenerator
}

func NewAvailabilityReconciler(db *sql.DB, rm repomanager.RepositoryManager, sink alerts.Sink, logger logging.Logger) *AvailabilityReconciler {
	return &AvailabilityReconciler{
		db:          db,
		repomanager: rm,
		sink:        sink,
		logger:      logger.With("module", "reconciler"),
		now:         UTCNow,
		newID:       NewID,
	}
}

// ReserveCopy takes one available copy of the book. A missing book or an
// exhausted counter yields common.ErrBookUnavailable.
func (r *AvailabilityReconciler) ReserveCopy(ctx context.Context, tx dbx.DBTX, bookID string) error {
	ok, err := r.repomanager.Books(tx).DecrementAvailable(ctx, bookID)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrBookUnavailable
	}
	return nil
}

// ReleaseCopy puts one copy back. The counter never exceeds the total: an
// overflow is an integrity fault that is logged, published to the sink and
// returned, and the counter is left unchanged.
func (r *AvailabilityReconciler) ReleaseCopy(ctx context.Context, tx dbx.DBTX, bookID, loanID string) error {
	ok, err := r.repomanager.Books(tx).IncrementAvailable(ctx, bookID)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	fault := fmt.Errorf("%w: releasing a copy of book %s would exceed its total", common.ErrIntegrityFault, bookID)
	r.raise(ctx, alerts.Alert{
		ID:         r.newID(),
		Kind:       alerts.KindReleaseOverflow,
		OccurredAt: r.now(),
		BookID:     bookID,
		LoanID:     loanID,
		Message:    fault.Error(),
	})
	return fault
}

// Reconcile recomputes every book's expected availability from its ACTIVE
// loans and reports each book whose stored counter differs. Nothing is
// corrected. A report with discrepancies is published to the sink.
func (r *AvailabilityReconciler) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	rows, err := r.repomanager.Reports(r.db).Availability(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.ReconcileReport{
		ID:            r.newID(),
		CheckedAt:     r.now(),
		BooksChecked:  len(rows),
		Discrepancies: []models.BookAvailability{},
	}
	for _, row := range rows {
		if !row.Consistent() {
			report.Discrepancies = append(report.Discrepancies, row)
		}
	}

	if report.Clean() {
		r.logger.Debug(ctx, "availability consistent", "books_checked", report.BooksChecked)
		return report, nil
	}

	r.raise(ctx, alerts.Alert{
		ID:         r.newID(),
		Kind:       alerts.KindReconcileDrift,
		OccurredAt: report.CheckedAt,
		Message:    report.Err().Error(),
		Report:     report,
	})
	return report, nil
}

// RunPeriodic reconciles every interval until ctx is cancelled. A
// non-positive interval returns immediately.
func (r *AvailabilityReconciler) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Reconcile(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error(ctx, "periodic reconcile failed", "error", err)
			}
		}
	}
}

// raise logs the fault and hands it to the operator channel. Sink failures
// are logged and never propagated.
func (r *AvailabilityReconciler) raise(ctx context.Context, alert alerts.Alert) {
	r.logger.Error(ctx, "integrity fault", "alert_id", alert.ID, "kind", alert.Kind, "book_id", alert.BookID, "message", alert.Message)
	if r.sink == nil {
		return
	}
	if err := r.sink.Publish(ctx, alert); err != nil {
		r.logger.Error(ctx, "publish alert failed", "alert_id", alert.ID, "error", err)
	}
}
