package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// OnboardingService creates new members. It draws the member number
// from the sequence service and seeds the audit log so the member's
// status is backed by a history entry from day one.
type OnboardingService struct {
	members   domain.MemberRepository
	sequences *SequenceService
	publisher domain.EventPublisher
	clock     domain.Clock
}

// NewOnboardingService creates a service with the given adapters.
func NewOnboardingService(members domain.MemberRepository, sequences *SequenceService, publisher domain.EventPublisher, clock domain.Clock) *OnboardingService {
	return &OnboardingService{
		members:   members,
		sequences: sequences,
		publisher: publisher,
		clock:     clock,
	}
}

// RegisterMemberParams carries a new member application.
type RegisterMemberParams struct {
	ClubID           string
	FirstName        string
	LastName         string
	JoinDate         *time.Time
	MembershipTypeID string
	ActorID          string
}

// Register creates a pending member with a freshly generated member
// number, an open membership period and the seed audit entry.
func (s *OnboardingService) Register(ctx context.Context, p RegisterMemberParams) (domain.Member, error) {
	number, err := s.sequences.Next(ctx, p.ClubID, domain.EntityTypeMember)
	if err != nil {
		return domain.Member{}, fmt.Errorf("generating member number: %w", err)
	}

	memberID, err := generateID()
	if err != nil {
		return domain.Member{}, fmt.Errorf("generating member id: %w", err)
	}
	periodID, err := generateID()
	if err != nil {
		return domain.Member{}, fmt.Errorf("generating period id: %w", err)
	}
	seedID, err := generateID()
	if err != nil {
		return domain.Member{}, fmt.Errorf("generating transition id: %w", err)
	}

	now := s.clock.Now()
	join := now
	if p.JoinDate != nil {
		join = *p.JoinDate
	}

	member := domain.Member{
		ID:                 memberID,
		ClubID:             p.ClubID,
		MemberNumber:       number,
		FirstName:          p.FirstName,
		LastName:           p.LastName,
		Status:             domain.StatusPending,
		StatusChangedAt:    join,
		StatusChangedBy:    p.ActorID,
		StatusChangeReason: "member registered",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	period := domain.MembershipPeriod{
		ID:               periodID,
		ClubID:           p.ClubID,
		MemberID:         memberID,
		JoinDate:         join,
		MembershipTypeID: p.MembershipTypeID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	seed := domain.StatusTransition{
		ID:            seedID,
		ClubID:        p.ClubID,
		MemberID:      memberID,
		ToStatus:      domain.StatusPending,
		EffectiveDate: join,
		Reason:        "member registered",
		ActorID:       p.ActorID,
		CreatedAt:     now,
	}

	if err := s.members.Create(ctx, member, period, seed); err != nil {
		return domain.Member{}, fmt.Errorf("creating member: %w", err)
	}

	if err := s.publisher.Publish(ctx, domain.EventMemberRegistered, member); err != nil {
		slog.ErrorContext(ctx, "publishing registration failed",
			"club_id", member.ClubID,
			"member_id", member.ID,
			"error", err,
		)
	}

	return member, nil
}
