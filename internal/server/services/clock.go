// Package services contains server-side business logic: the catalog and
// identity stores, the circulation ledger, the availability reconciler and
// the statistics aggregator.
package services

import (
	"time"

	"github.com/google/uuid"
)

// Clock returns the current time.
type Clock func() time.Time

// UTCNow is the default Clock. Both supported databases keep microseconds,
// so values are truncated to round-trip exactly.
func UTCNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// IDGenerator returns a new unique identifier.
type IDGenerator func() string

func NewID() string {
	return uuid.NewString()
}
