// Package alerts is the operator channel: integrity faults and reconcile
// drift are published here and never fixed automatically.
package alerts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bookledger/internal/server/models"
)

// Alert kinds.
const (
	KindReleaseOverflow = "release_overflow"
	KindReconcileDrift  = "reconcile_drift"
)

type Alert struct {
	ID         string                  `json:"id"`
	Kind       string                  `json:"kind"`
	OccurredAt time.Time               `json:"occurred_at"`
	BookID     string                  `json:"book_id,omitempty"`
	LoanID     string                  `json:"loan_id,omitempty"`
	Message    string                  `json:"message"`
	Report     *models.ReconcileReport `json:"report,omitempty"`
}

// Sink receives alerts. Implementations must be safe for concurrent use.
type Sink interface {
	Publish(ctx context.Context, alert Alert) error
}

// Fanout publishes to every sink and returns the first error after trying
// all of them.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, alert Alert) error {
	var first error
	for _, s := range f {
		if err := s.Publish(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}
