package domain

import (
	"context"
	"time"
)

// ApplyTransitionParams carries everything the member store needs to
// record one status change atomically: the audit row to append, the
// status the member is expected to still have (optimistic check), and
// whether the open membership period must be closed as of the
// transition's effective date.
type ApplyTransitionParams struct {
	Transition     StatusTransition
	ExpectedStatus Status
	ClosePeriod    bool
}

// MemberRepository defines the persistence contract for members and
// their membership periods. ApplyTransition must perform all its writes
// in one transaction and return ErrConflict when the member's status no
// longer matches ExpectedStatus.
type MemberRepository interface {
	Create(ctx context.Context, member Member, period MembershipPeriod, seed StatusTransition) error
	GetByID(ctx context.Context, clubID, memberID string) (Member, error)
	OpenPeriod(ctx context.Context, clubID, memberID string) (MembershipPeriod, error)
	UpdateCancellation(ctx context.Context, member Member) error
	ApplyTransition(ctx context.Context, params ApplyTransitionParams) error

	// ListCancellationDue returns, across all clubs, non-deleted members
	// in a cancellable status whose cancellation date is on or before
	// now. The cancellation sweep is the only cross-club reader.
	ListCancellationDue(ctx context.Context, now time.Time) ([]Member, error)
}

// HistoryRepository defines the persistence contract for the status
// transition audit log.
type HistoryRepository interface {
	List(ctx context.Context, clubID, memberID string) ([]StatusTransition, error)
	GetByID(ctx context.Context, clubID, memberID, transitionID string) (StatusTransition, error)

	// UpdateMeta persists reason, effective date and left category of an
	// existing entry. FromStatus and ToStatus are never written.
	UpdateMeta(ctx context.Context, transition StatusTransition) error

	// SoftDelete marks an entry deleted. It returns a HistoryGuardError
	// when the target is the member's most recent non-deleted entry.
	SoftDelete(ctx context.Context, clubID, memberID, transitionID, actorID string, at time.Time) error

	// PruneProvisional soft-deletes all non-deleted entries of the
	// member whose effective date equals the given date and whose target
	// status is not terminal. Returns the number of pruned entries.
	PruneProvisional(ctx context.Context, clubID, memberID string, effectiveDate time.Time, actorID string, at time.Time) (int64, error)
}

// SequenceRepository defines the persistence contract for sequence
// counters. Advance must be a single conditional write and return
// ErrConflict when the stored row no longer matches the snapshot's
// CurrentValue and UpdatedAt pair. The value alone cannot carry the
// guard: a year reset targets the same value the row already holds.
type SequenceRepository interface {
	Get(ctx context.Context, clubID, entityType string) (SequenceCounter, error)

	// GetOrCreate returns the counter, lazily creating it with defaults
	// stamped at the given time.
	GetOrCreate(ctx context.Context, clubID, entityType string, now time.Time) (SequenceCounter, error)
	Advance(ctx context.Context, counter SequenceCounter, newValue int64, now time.Time) error
	Upsert(ctx context.Context, counter SequenceCounter) error
	List(ctx context.Context, clubID string) ([]SequenceCounter, error)

	// Delete removes a counter that has not generated anything yet and
	// returns ErrCounterInUse otherwise.
	Delete(ctx context.Context, clubID, entityType string) error
}

// TransitionValidator checks whether a status change is legal. Both the
// interactive lifecycle service and the cancellation sweep consult the
// same validator.
type TransitionValidator interface {
	Validate(ctx context.Context, from, to Status) error
}

// Event represents a domain event emitted after a successful operation.
type Event string

const (
	EventStatusChanged       Event = "status.changed"
	EventCancellationSet     Event = "cancellation.set"
	EventCancellationRevoked Event = "cancellation.revoked"
	EventMemberRegistered    Event = "member.registered"
)

// EventPublisher defines the contract for emitting domain events.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, member Member) error
}

// Clock supplies the current time. Injected so services and tests agree
// on "now".
type Clock interface {
	Now() time.Time
}
