package shared

import (
	"context"
	"time"
)

// SyncGuard serializes reconciliation runs per card. Begin marks a card as
// being reconciled and reports whether the mark was acquired; a second Begin
// for the same card returns false until Clear is called or the mark expires.
//
// The mark must be set before any asynchronous work starts so that concurrent
// triggers observe it. It is cleared only when a run fails, so the card can
// be retried; after a successful run the mark stays until the TTL expires.
type SyncGuard interface {
	// Begin acquires the reconciliation mark for cardID. Returns false if a
	// run is already in flight.
	Begin(ctx context.Context, cardID string, ttl time.Duration) (bool, error)

	// Clear releases the mark, allowing the next run to proceed.
	Clear(ctx context.Context, cardID string) error

	// Active reports whether a run is currently marked in flight.
	Active(ctx context.Context, cardID string) (bool, error)
}
