package domain

import "time"

// SystemActorID is the reserved identity used to attribute automatic
// transitions (e.g. the cancellation sweep) in the audit trail.
const SystemActorID = "system"

// SweepReason is the audit reason recorded on transitions executed by
// the cancellation sweep.
const SweepReason = "automatic exit after notice period expiry"

// LeftCategory classifies why a member left. Only meaningful on
// transitions whose target status is left.
type LeftCategory string

const (
	LeftVoluntary   LeftCategory = "voluntary"
	LeftInvoluntary LeftCategory = "involuntary"
	LeftDeceased    LeftCategory = "deceased"
	LeftOther       LeftCategory = "other"
)

// StatusTransition is one entry in a member's append-mostly audit log.
// FromStatus and ToStatus are immutable after creation; descriptive
// metadata (reason, effective date, left category) may be edited. The
// newest non-deleted entry for a member backs the member's denormalized
// status and can never be deleted.
//
// A member's onboarding seed entry has an empty FromStatus.
type StatusTransition struct {
	ID            string
	ClubID        string
	MemberID      string
	FromStatus    Status
	ToStatus      Status
	EffectiveDate time.Time
	Reason        string
	ActorID       string
	LeftCategory  LeftCategory
	CreatedAt     time.Time
	DeletedAt     *time.Time
	DeletedBy     string
}

// Deleted reports whether the entry has been soft-deleted.
func (t StatusTransition) Deleted() bool { return t.DeletedAt != nil }
