// Package ledger implements the points accounting core: photo submissions
// credit pending points, verified bin scans convert pending to active under a
// per-user daily cap, and coupon issuance debits active points. All
// read-modify-write sequences against a daily summary row run inside one
// store transaction and are retried on conflict.
package ledger

import (
	"context"
	"errors"
	"time"

	"cashup-backend/models"
)

const (
	rateLimitWindow   = 60 * time.Second
	rateLimitMax      = 5
	duplicateLookback = 8
	duplicateMaxDist  = 5
	conversionWindow  = 30 * time.Minute
	txAttempts        = 3
)

// Ledger orchestrates the gating and accounting workflows against an injected
// Store. The clock is injected for deterministic tests.
type Ledger struct {
	store Store
	now   func() time.Time
}

func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// NewWithClock is used by tests that need to steer time.
func NewWithClock(store Store, now func() time.Time) *Ledger {
	return &Ledger{store: store, now: now}
}

func (l *Ledger) Store() Store {
	return l.store
}

// runTx executes fn through the store, retrying conflicts a bounded number of
// times. fn must re-evaluate its preconditions on every attempt.
func (l *Ledger) runTx(ctx context.Context, fn func(tx Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = l.store.InLedgerTx(ctx, fn)
		if !errors.Is(err, ErrTxConflict) {
			return err
		}
	}
	return ErrRetryExhausted
}

// EnsureSummary get-or-creates today's summary row for the user and festival.
// Calling it repeatedly for the same key always yields the same row.
func (l *Ledger) EnsureSummary(ctx context.Context, userID, festivalID string) (*models.UserDailySummary, error) {
	key := SummaryKey{UserID: userID, FestivalID: festivalID, Date: DateOf(l.now())}
	var out *models.UserDailySummary
	err := l.runTx(ctx, func(tx Tx) error {
		s, err := tx.Summary(key)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}
