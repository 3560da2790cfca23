package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// DefaultSweepItemTimeout bounds the time spent on a single member
// during a sweep pass so one stuck member cannot block the whole run.
const DefaultSweepItemTimeout = 30 * time.Second

// SweepService executes expired cancellations. It is the one caller
// that operates across all clubs; every exit still goes through the
// lifecycle service, so the transition rules have a single
// implementation.
type SweepService struct {
	members     domain.MemberRepository
	history     domain.HistoryRepository
	lifecycle   *LifecycleService
	clock       domain.Clock
	itemTimeout time.Duration
}

// NewSweepService creates a sweep service. A non-positive itemTimeout
// falls back to DefaultSweepItemTimeout.
func NewSweepService(members domain.MemberRepository, history domain.HistoryRepository, lifecycle *LifecycleService, clock domain.Clock, itemTimeout time.Duration) *SweepService {
	if itemTimeout <= 0 {
		itemTimeout = DefaultSweepItemTimeout
	}
	return &SweepService{
		members:     members,
		history:     history,
		lifecycle:   lifecycle,
		clock:       clock,
		itemTimeout: itemTimeout,
	}
}

// SweepFailure records one member the sweep could not process.
type SweepFailure struct {
	ClubID   string
	MemberID string
	Reason   string
}

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Due       int
	Completed []string
	Failed    []SweepFailure
}

// Run performs one sweep pass: find members whose cancellation date has
// passed, prune provisional same-date history rows, and drive each
// member to left under the system actor. Failures on one member are
// recorded and the loop continues, mirroring the bulk-change contract.
func (s *SweepService) Run(ctx context.Context) (SweepResult, error) {
	now := s.clock.Now()

	due, err := s.members.ListCancellationDue(ctx, now)
	if err != nil {
		return SweepResult{}, fmt.Errorf("listing due cancellations: %w", err)
	}

	result := SweepResult{Due: len(due)}
	for _, member := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if err := s.processOne(ctx, member, now); err != nil {
			slog.WarnContext(ctx, "cancellation sweep: member skipped",
				"club_id", member.ClubID,
				"member_id", member.ID,
				"error", err,
			)
			result.Failed = append(result.Failed, SweepFailure{
				ClubID:   member.ClubID,
				MemberID: member.ID,
				Reason:   err.Error(),
			})
			continue
		}
		result.Completed = append(result.Completed, member.ID)
	}

	slog.InfoContext(ctx, "cancellation sweep finished",
		"due", result.Due,
		"completed", len(result.Completed),
		"failed", len(result.Failed),
	)

	return result, nil
}

func (s *SweepService) processOne(ctx context.Context, member domain.Member, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.itemTimeout)
	defer cancel()

	if member.CancellationDate == nil {
		return fmt.Errorf("member %s has no cancellation date", member.ID)
	}

	// Same-date entries that do not end in left are provisional
	// self-corrections; remove them so they do not clash with the
	// automatic exit recorded next.
	pruned, err := s.history.PruneProvisional(ctx, member.ClubID, member.ID, *member.CancellationDate, domain.SystemActorID, now)
	if err != nil {
		return fmt.Errorf("pruning provisional transitions: %w", err)
	}
	if pruned > 0 {
		slog.InfoContext(ctx, "pruned provisional transitions",
			"club_id", member.ClubID,
			"member_id", member.ID,
			"count", pruned,
		)
	}

	_, err = s.lifecycle.ChangeStatus(ctx, ChangeStatusParams{
		ClubID:        member.ClubID,
		MemberID:      member.ID,
		To:            domain.StatusLeft,
		Reason:        domain.SweepReason,
		ActorID:       domain.SystemActorID,
		EffectiveDate: member.CancellationDate,
		LeftCategory:  domain.LeftVoluntary,
	})
	return err
}
