package domain_test

import (
	"testing"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

func TestCanTransition_LeftIsAbsorbing(t *testing.T) {
	for _, to := range domain.Statuses {
		if domain.CanTransition(domain.StatusLeft, to) {
			t.Errorf("CanTransition(left, %q) = true, want false", to)
		}
	}
}

func TestCanTransition_PendingNeverATarget(t *testing.T) {
	for _, from := range domain.Statuses {
		if domain.CanTransition(from, domain.StatusPending) {
			t.Errorf("CanTransition(%q, pending) = true, want false", from)
		}
	}
}

func TestCanTransition_PendingExits(t *testing.T) {
	if !domain.CanTransition(domain.StatusPending, domain.StatusActive) {
		t.Error("pending → active should be allowed (admission)")
	}
	if !domain.CanTransition(domain.StatusPending, domain.StatusLeft) {
		t.Error("pending → left should be allowed (rejection)")
	}
	for _, to := range []domain.Status{domain.StatusProbation, domain.StatusDormant, domain.StatusSuspended} {
		if domain.CanTransition(domain.StatusPending, to) {
			t.Errorf("pending → %q should not be allowed", to)
		}
	}
}

func TestCanTransition_RegularStatusesFullyConnected(t *testing.T) {
	regular := []domain.Status{
		domain.StatusProbation,
		domain.StatusActive,
		domain.StatusDormant,
		domain.StatusSuspended,
	}

	for _, from := range regular {
		for _, to := range regular {
			if from == to {
				if domain.CanTransition(from, to) {
					t.Errorf("self-transition %q → %q should not be allowed", from, to)
				}
				continue
			}
			if !domain.CanTransition(from, to) {
				t.Errorf("CanTransition(%q, %q) = false, want true", from, to)
			}
		}
		if !domain.CanTransition(from, domain.StatusLeft) {
			t.Errorf("CanTransition(%q, left) = false, want true", from)
		}
	}
}

func TestStatus_Cancellable(t *testing.T) {
	cases := []struct {
		status domain.Status
		want   bool
	}{
		{domain.StatusPending, false},
		{domain.StatusProbation, true},
		{domain.StatusActive, true},
		{domain.StatusDormant, true},
		{domain.StatusSuspended, true},
		{domain.StatusLeft, false},
	}

	for _, tc := range cases {
		if got := tc.status.Cancellable(); got != tc.want {
			t.Errorf("%q.Cancellable() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestClosesOpenPeriod(t *testing.T) {
	if !domain.ClosesOpenPeriod(domain.StatusLeft) {
		t.Error("transition to left must close the open period")
	}
	if domain.ClosesOpenPeriod(domain.StatusDormant) {
		t.Error("transition to dormant must not close the open period")
	}
}

func TestMembershipPeriod_Open(t *testing.T) {
	p := domain.MembershipPeriod{JoinDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	if !p.Open() {
		t.Error("period without leave date should be open")
	}

	leave := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	p.LeaveDate = &leave
	if p.Open() {
		t.Error("period with leave date should be closed")
	}
}
