package alerts

import (
	"context"

	"github.com/dmitrijs2005/bookledger/internal/logging"
)

// LogSink writes alerts to the structured log at error level.
type LogSink struct {
	logger logging.Logger
}

func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logger.With("module", "alerts")}
}

func (s *LogSink) Publish(ctx context.Context, alert Alert) error {
	args := []any{"alert_id", alert.ID, "kind", alert.Kind, "occurred_at", alert.OccurredAt}
	if alert.BookID != "" {
		args = append(args, "book_id", alert.BookID)
	}
	if alert.LoanID != "" {
		args = append(args, "loan_id", alert.LoanID)
	}
	if alert.Report != nil {
		args = append(args,
			"books_checked", alert.Report.BooksChecked,
			"discrepancies", len(alert.Report.Discrepancies))
		for _, d := range alert.Report.Discrepancies {
			s.logger.Error(ctx, "availability drift",
				"alert_id", alert.ID, "book_id", d.BookID, "title", d.Title,
				"stored", d.AvailableCopies, "expected", d.Expected(),
				"total", d.TotalCopies, "active_loans", d.ActiveLoans)
		}
	}
	s.logger.Error(ctx, alert.Message, args...)
	return nil
}
