package domain

import "time"

// Status represents the lifecycle state of a club member.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProbation Status = "probation"
	StatusActive    Status = "active"
	StatusDormant   Status = "dormant"
	StatusSuspended Status = "suspended"
	StatusLeft      Status = "left"
)

// Statuses lists every known member status.
var Statuses = []Status{
	StatusPending,
	StatusProbation,
	StatusActive,
	StatusDormant,
	StatusSuspended,
	StatusLeft,
}

// Known reports whether s is one of the defined statuses.
func (s Status) Known() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s is the absorbing end state.
func (s Status) Terminal() bool { return s == StatusLeft }

// Cancellable reports whether a member in this status may file a
// cancellation notice. Pending members have nothing to cancel yet and
// left members are already gone.
func (s Status) Cancellable() bool {
	switch s {
	case StatusProbation, StatusActive, StatusDormant, StatusSuspended:
		return true
	default:
		return false
	}
}

// Transition defines a valid status change from From to To.
type Transition struct {
	From Status
	To   Status
}

// Transitions defines all valid status changes in the member lifecycle.
// Pending is the single entry state: it leads to active (admission) or
// left (rejection), and no status ever transitions back into it. The
// four regular statuses are mutually reachable and each may end in left.
// Left has no outgoing edges. This is domain knowledge consumed by the
// FSM adapter.
var Transitions = []Transition{
	{From: StatusPending, To: StatusActive},
	{From: StatusPending, To: StatusLeft},

	{From: StatusProbation, To: StatusActive},
	{From: StatusProbation, To: StatusDormant},
	{From: StatusProbation, To: StatusSuspended},
	{From: StatusProbation, To: StatusLeft},

	{From: StatusActive, To: StatusProbation},
	{From: StatusActive, To: StatusDormant},
	{From: StatusActive, To: StatusSuspended},
	{From: StatusActive, To: StatusLeft},

	{From: StatusDormant, To: StatusProbation},
	{From: StatusDormant, To: StatusActive},
	{From: StatusDormant, To: StatusSuspended},
	{From: StatusDormant, To: StatusLeft},

	{From: StatusSuspended, To: StatusProbation},
	{From: StatusSuspended, To: StatusActive},
	{From: StatusSuspended, To: StatusDormant},
	{From: StatusSuspended, To: StatusLeft},
}

// CanTransition reports whether the change from one status to another is
// listed in Transitions. It is the single source of truth for transition
// legality; the FSM adapter is built from the same table.
func CanTransition(from, to Status) bool {
	for _, t := range Transitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// ClosesOpenPeriod reports whether a transition into the given status
// requires the member's open membership period to be closed. This is a
// hint for the lifecycle service; the policy itself performs no writes.
func ClosesOpenPeriod(to Status) bool { return to.Terminal() }

// Member is the core domain entity representing a person in a club.
// Status fields are mutated only through the lifecycle service; the
// member number is assigned once at onboarding and never changes.
type Member struct {
	ID                     string
	ClubID                 string
	MemberNumber           string
	FirstName              string
	LastName               string
	Status                 Status
	CancellationDate       *time.Time
	CancellationReceivedAt *time.Time
	StatusChangedAt        time.Time
	StatusChangedBy        string
	StatusChangeReason     string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              *time.Time
}

// MembershipPeriod is one uninterrupted span of membership. A nil
// LeaveDate marks the period as open; a member has at most one open
// period at a time.
type MembershipPeriod struct {
	ID               string
	ClubID           string
	MemberID         string
	JoinDate         time.Time
	LeaveDate        *time.Time
	MembershipTypeID string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Open reports whether the period has no leave date yet.
func (p MembershipPeriod) Open() bool { return p.LeaveDate == nil }
