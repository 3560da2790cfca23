package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/clubworks/clubcore/internal/domain"
)

// LifecycleService orchestrates member status changes. It is the only
// writer of a member's status fields, the transition audit log and the
// open membership period; the cancellation sweep goes through the same
// entry points under the system actor.
type LifecycleService struct {
	members   domain.MemberRepository
	validator domain.TransitionValidator
	publisher domain.EventPublisher
	clock     domain.Clock
}

// NewLifecycleService creates a service with the given adapters.
func NewLifecycleService(members domain.MemberRepository, validator domain.TransitionValidator, publisher domain.EventPublisher, clock domain.Clock) *LifecycleService {
	return &LifecycleService{
		members:   members,
		validator: validator,
		publisher: publisher,
		clock:     clock,
	}
}

// GetMember returns a member by ID within a club.
func (s *LifecycleService) GetMember(ctx context.Context, clubID, memberID string) (domain.Member, error) {
	return s.members.GetByID(ctx, clubID, memberID)
}

// ChangeStatusParams carries one requested status change.
// EffectiveDate defaults to the current time; LeftCategory is only
// recorded when the target status is terminal.
type ChangeStatusParams struct {
	ClubID        string
	MemberID      string
	To            domain.Status
	Reason        string
	ActorID       string
	EffectiveDate *time.Time
	LeftCategory  domain.LeftCategory
}

// ChangeStatus validates the requested transition and applies it: one
// storage transaction appends the audit row, updates the member's
// denormalized status fields against an optimistic status check, and
// closes the open membership period when the target is terminal. A lost
// update is retried a bounded number of times before ErrConflict
// surfaces.
func (s *LifecycleService) ChangeStatus(ctx context.Context, p ChangeStatusParams) (domain.Member, error) {
	var updated domain.Member

	op := func() error {
		member, err := s.members.GetByID(ctx, p.ClubID, p.MemberID)
		if err != nil {
			return backoff.Permanent(err)
		}

		if err := s.validator.Validate(ctx, member.Status, p.To); err != nil {
			return backoff.Permanent(err)
		}

		now := s.clock.Now()
		effective := now
		if p.EffectiveDate != nil {
			effective = *p.EffectiveDate
		}

		id, err := generateID()
		if err != nil {
			return backoff.Permanent(fmt.Errorf("generating transition id: %w", err))
		}

		category := domain.LeftCategory("")
		if p.To.Terminal() {
			category = p.LeftCategory
		}

		transition := domain.StatusTransition{
			ID:            id,
			ClubID:        p.ClubID,
			MemberID:      p.MemberID,
			FromStatus:    member.Status,
			ToStatus:      p.To,
			EffectiveDate: effective,
			Reason:        p.Reason,
			ActorID:       p.ActorID,
			LeftCategory:  category,
			CreatedAt:     now,
		}

		err = s.members.ApplyTransition(ctx, domain.ApplyTransitionParams{
			Transition:     transition,
			ExpectedStatus: member.Status,
			ClosePeriod:    domain.ClosesOpenPeriod(p.To),
		})
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("applying transition: %w", err))
		}

		member.Status = p.To
		member.StatusChangedAt = effective
		member.StatusChangedBy = p.ActorID
		member.StatusChangeReason = p.Reason
		member.UpdatedAt = now
		updated = member
		return nil
	}

	if err := backoff.Retry(op, retryPolicy(ctx)); err != nil {
		return domain.Member{}, err
	}

	// The transition is committed at this point. A failed publish must
	// not make the call look failed, or callers would retry a change
	// that already happened.
	if err := s.publisher.Publish(ctx, domain.EventStatusChanged, updated); err != nil {
		slog.ErrorContext(ctx, "publishing status change failed",
			"club_id", updated.ClubID,
			"member_id", updated.ID,
			"status", string(updated.Status),
			"error", err,
		)
	}

	return updated, nil
}

// ChangePreview describes what a status change would do, without doing
// it.
type ChangePreview struct {
	MemberID      string
	From          domain.Status
	To            domain.Status
	EffectiveDate time.Time
	Reason        string
	LeftCategory  domain.LeftCategory
	ClosesPeriod  bool
	ClosingPeriod *domain.MembershipPeriod
}

// PreviewChangeStatus runs the same validation as ChangeStatus and
// reports the computed side effects (which period would close, on what
// date) but commits nothing. Because it shares the validator, a preview
// can never promise something the real call would reject.
func (s *LifecycleService) PreviewChangeStatus(ctx context.Context, p ChangeStatusParams) (ChangePreview, error) {
	member, err := s.members.GetByID(ctx, p.ClubID, p.MemberID)
	if err != nil {
		return ChangePreview{}, err
	}

	if err := s.validator.Validate(ctx, member.Status, p.To); err != nil {
		return ChangePreview{}, err
	}

	effective := s.clock.Now()
	if p.EffectiveDate != nil {
		effective = *p.EffectiveDate
	}

	category := domain.LeftCategory("")
	if p.To.Terminal() {
		category = p.LeftCategory
	}

	preview := ChangePreview{
		MemberID:      member.ID,
		From:          member.Status,
		To:            p.To,
		EffectiveDate: effective,
		Reason:        p.Reason,
		LeftCategory:  category,
	}

	if domain.ClosesOpenPeriod(p.To) {
		preview.ClosesPeriod = true
		period, err := s.members.OpenPeriod(ctx, p.ClubID, p.MemberID)
		switch {
		case err == nil:
			preview.ClosingPeriod = &period
		case errors.Is(err, domain.ErrOpenPeriodNotFound):
			// Nothing to close; the transition is still legal.
		default:
			return ChangePreview{}, fmt.Errorf("loading open period: %w", err)
		}
	}

	return preview, nil
}

// SetCancellationParams carries a member's notice to leave.
type SetCancellationParams struct {
	ClubID           string
	MemberID         string
	CancellationDate time.Time
	ReceivedAt       *time.Time
	ActorID          string
	Reason           string
}

// SetCancellation records the cancellation date and the date the notice
// was received on the member. The member's status is unchanged; the
// periodic sweep executes the exit once the date has passed.
func (s *LifecycleService) SetCancellation(ctx context.Context, p SetCancellationParams) (domain.Member, error) {
	member, err := s.members.GetByID(ctx, p.ClubID, p.MemberID)
	if err != nil {
		return domain.Member{}, err
	}

	if member.Status.Terminal() {
		return domain.Member{}, &domain.CancellationStateError{
			MemberID: member.ID,
			Status:   member.Status,
			Reason:   "member has already left",
		}
	}
	if !member.Status.Cancellable() {
		return domain.Member{}, &domain.CancellationStateError{
			MemberID: member.ID,
			Status:   member.Status,
			Reason:   "membership has not started",
		}
	}

	now := s.clock.Now()
	received := now
	if p.ReceivedAt != nil {
		received = *p.ReceivedAt
	}

	member.CancellationDate = &p.CancellationDate
	member.CancellationReceivedAt = &received
	member.UpdatedAt = now

	if err := s.members.UpdateCancellation(ctx, member); err != nil {
		return domain.Member{}, fmt.Errorf("recording cancellation: %w", err)
	}

	slog.InfoContext(ctx, "cancellation recorded",
		"club_id", member.ClubID,
		"member_id", member.ID,
		"cancellation_date", p.CancellationDate.Format(time.DateOnly),
		"actor_id", p.ActorID,
		"reason", p.Reason,
	)

	if err := s.publisher.Publish(ctx, domain.EventCancellationSet, member); err != nil {
		slog.ErrorContext(ctx, "publishing cancellation failed",
			"club_id", member.ClubID,
			"member_id", member.ID,
			"error", err,
		)
	}

	return member, nil
}

// RevokeCancellation clears a previously recorded cancellation.
func (s *LifecycleService) RevokeCancellation(ctx context.Context, clubID, memberID, actorID, reason string) (domain.Member, error) {
	member, err := s.members.GetByID(ctx, clubID, memberID)
	if err != nil {
		return domain.Member{}, err
	}

	if member.Status.Terminal() {
		return domain.Member{}, &domain.CancellationStateError{
			MemberID: member.ID,
			Status:   member.Status,
			Reason:   "member has already left",
		}
	}
	if member.CancellationDate == nil {
		return domain.Member{}, &domain.CancellationStateError{
			MemberID: member.ID,
			Status:   member.Status,
			Reason:   "no cancellation recorded",
		}
	}

	member.CancellationDate = nil
	member.CancellationReceivedAt = nil
	member.UpdatedAt = s.clock.Now()

	if err := s.members.UpdateCancellation(ctx, member); err != nil {
		return domain.Member{}, fmt.Errorf("revoking cancellation: %w", err)
	}

	slog.InfoContext(ctx, "cancellation revoked",
		"club_id", member.ClubID,
		"member_id", member.ID,
		"actor_id", actorID,
		"reason", reason,
	)

	if err := s.publisher.Publish(ctx, domain.EventCancellationRevoked, member); err != nil {
		slog.ErrorContext(ctx, "publishing revocation failed",
			"club_id", member.ClubID,
			"member_id", member.ID,
			"error", err,
		)
	}

	return member, nil
}

// BulkChangeParams applies the same status change to several members.
type BulkChangeParams struct {
	ClubID       string
	MemberIDs    []string
	To           domain.Status
	Reason       string
	ActorID      string
	LeftCategory domain.LeftCategory
}

// SkippedMember records why one member of a batch was not changed.
type SkippedMember struct {
	MemberID string
	Reason   string
}

// BulkResult lists batch outcomes in input order.
type BulkResult struct {
	Updated []string
	Skipped []SkippedMember
}

// BulkChangeStatus applies ChangeStatus independently per member. A
// failure on one member is converted into a skip entry and processing
// continues; the batch as a whole never aborts because one member is in
// an illegal state. No transaction spans members.
func (s *LifecycleService) BulkChangeStatus(ctx context.Context, p BulkChangeParams) (BulkResult, error) {
	var result BulkResult

	for _, memberID := range p.MemberIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := s.ChangeStatus(ctx, ChangeStatusParams{
			ClubID:       p.ClubID,
			MemberID:     memberID,
			To:           p.To,
			Reason:       p.Reason,
			ActorID:      p.ActorID,
			LeftCategory: p.LeftCategory,
		})
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedMember{MemberID: memberID, Reason: err.Error()})
			continue
		}
		result.Updated = append(result.Updated, memberID)
	}

	return result, nil
}
