package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// HistoryService exposes the guarded operations on a member's status
// transition audit log.
type HistoryService struct {
	members domain.MemberRepository
	history domain.HistoryRepository
	clock   domain.Clock
}

// NewHistoryService creates a service with the given adapters.
func NewHistoryService(members domain.MemberRepository, history domain.HistoryRepository, clock domain.Clock) *HistoryService {
	return &HistoryService{
		members: members,
		history: history,
		clock:   clock,
	}
}

// List returns the member's non-deleted transitions ordered by
// effective date, then creation time, ascending.
func (s *HistoryService) List(ctx context.Context, clubID, memberID string) ([]domain.StatusTransition, error) {
	if _, err := s.members.GetByID(ctx, clubID, memberID); err != nil {
		return nil, err
	}
	return s.history.List(ctx, clubID, memberID)
}

// UpdateTransitionParams carries an edit of a past entry's descriptive
// metadata. Nil fields are left unchanged; the statuses themselves are
// immutable.
type UpdateTransitionParams struct {
	ClubID        string
	MemberID      string
	TransitionID  string
	Reason        *string
	EffectiveDate *time.Time
	LeftCategory  *domain.LeftCategory
	ActorID       string
}

// Update edits reason, effective date or left category of an existing
// transition.
func (s *HistoryService) Update(ctx context.Context, p UpdateTransitionParams) (domain.StatusTransition, error) {
	transition, err := s.history.GetByID(ctx, p.ClubID, p.MemberID, p.TransitionID)
	if err != nil {
		return domain.StatusTransition{}, err
	}

	if p.Reason != nil {
		transition.Reason = *p.Reason
	}
	if p.EffectiveDate != nil {
		transition.EffectiveDate = *p.EffectiveDate
	}
	if p.LeftCategory != nil {
		transition.LeftCategory = *p.LeftCategory
	}

	if err := s.history.UpdateMeta(ctx, transition); err != nil {
		return domain.StatusTransition{}, fmt.Errorf("updating transition: %w", err)
	}

	slog.InfoContext(ctx, "status transition edited",
		"club_id", p.ClubID,
		"member_id", p.MemberID,
		"transition_id", p.TransitionID,
		"actor_id", p.ActorID,
	)

	return transition, nil
}

// SoftDelete marks a historical transition as deleted. The newest
// non-deleted entry is protected: deleting it would orphan the member's
// denormalized status from its audit trail.
func (s *HistoryService) SoftDelete(ctx context.Context, clubID, memberID, transitionID, actorID string) error {
	return s.history.SoftDelete(ctx, clubID, memberID, transitionID, actorID, s.clock.Now())
}
