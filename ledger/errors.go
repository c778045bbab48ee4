package ledger

import (
	"errors"
	"fmt"
)

// NotFoundError marks a missing referenced entity. Not retryable.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	return e.Resource + " not found"
}

var (
	ErrFestivalNotFound = NotFoundError{Resource: "festival"}
	ErrUserNotFound     = NotFoundError{Resource: "user"}
	ErrBinNotFound      = NotFoundError{Resource: "trash bin"}
)

// InvalidInputError marks a missing or malformed required field.
type InvalidInputError struct {
	Field string
	Msg   string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Reason identifies why a request was rejected by policy. These are expected
// business outcomes, not faults; callers render them as user-facing messages.
type Reason string

const (
	ReasonOutsideGeofence     Reason = "outside_geofence"
	ReasonRateLimited         Reason = "rate_limited"
	ReasonDuplicatePhoto      Reason = "duplicate_photo"
	ReasonCapExhausted        Reason = "cap_exhausted"
	ReasonNoPendingRecent     Reason = "no_pending_recent"
	ReasonInsufficientBalance Reason = "insufficient_balance"
)

type PolicyError struct {
	Reason  Reason
	Message string
}

func (e *PolicyError) Error() string {
	return string(e.Reason) + ": " + e.Message
}

func rejected(reason Reason, msg string) *PolicyError {
	return &PolicyError{Reason: reason, Message: msg}
}

// ErrTxConflict is returned by a Store when a ledger transaction lost a
// concurrency race (serialization failure, deadlock victim). The ledger
// retries these with preconditions re-evaluated; exhaustion surfaces as
// ErrRetryExhausted, which is safe for the caller to retry whole.
var (
	ErrTxConflict     = errors.New("ledger: transaction conflict")
	ErrRetryExhausted = errors.New("ledger: retries exhausted, try again")
)
