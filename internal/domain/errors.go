package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrTransitionNotFound = errors.New("status transition not found")
	ErrCounterNotFound    = errors.New("sequence counter not found")
	ErrOpenPeriodNotFound = errors.New("no open membership period")

	// ErrConflict signals a lost update: the row changed between read
	// and write. Callers retry a bounded number of times before
	// surfacing it.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrCounterInUse is returned when deleting a counter that has
	// already generated numbers.
	ErrCounterInUse = errors.New("sequence counter has already generated numbers")
)

// InvalidTransitionError is returned when a requested status change
// violates the transition policy.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition from %q to %q is not allowed", e.From, e.To)
}

// CancellationStateError is returned when a cancellation is set or
// revoked while the member's status does not permit it.
type CancellationStateError struct {
	MemberID string
	Status   Status
	Reason   string
}

func (e *CancellationStateError) Error() string {
	return fmt.Sprintf("cancellation change rejected for member %s in status %q: %s", e.MemberID, e.Status, e.Reason)
}

// HistoryGuardError is returned when deleting the most recent
// non-deleted transition of a member. That entry backs the member's
// denormalized status and must survive.
type HistoryGuardError struct {
	TransitionID string
}

func (e *HistoryGuardError) Error() string {
	return fmt.Sprintf("cannot delete status transition %s: it is the most recent entry backing the member's current status", e.TransitionID)
}
