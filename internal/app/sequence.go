package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/clubworks/clubcore/internal/domain"
)

// SequenceService generates formatted sequence numbers and manages
// counter configuration.
type SequenceService struct {
	counters domain.SequenceRepository
	clock    domain.Clock
}

// NewSequenceService creates a service with the given adapters.
func NewSequenceService(counters domain.SequenceRepository, clock domain.Clock) *SequenceService {
	return &SequenceService{counters: counters, clock: clock}
}

// Next returns the next formatted number for the club's counter of the
// given entity type, creating the counter with defaults on first use.
// The advance is a single conditional write; a lost race is retried
// with fresh state, so an aborted attempt never burns a number.
func (s *SequenceService) Next(ctx context.Context, clubID, entityType string) (string, error) {
	var formatted string

	op := func() error {
		now := s.clock.Now()

		counter, err := s.counters.GetOrCreate(ctx, clubID, entityType, now)
		if err != nil {
			return backoff.Permanent(err)
		}

		value := counter.NextValue(now)

		if err := s.counters.Advance(ctx, counter, value, now); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return err
			}
			return backoff.Permanent(fmt.Errorf("advancing counter: %w", err))
		}

		formatted = counter.Format(value, now)
		return nil
	}

	if err := backoff.Retry(op, retryPolicy(ctx)); err != nil {
		return "", err
	}

	return formatted, nil
}

// Preview renders what the next number would look like for the given
// settings, without touching any counter. It shares the formatter with
// Next.
func (s *SequenceService) Preview(prefix string, currentValue int64, padLength int) string {
	return domain.FormatSequence(prefix, currentValue+1, padLength, s.clock.Now().Year())
}

// Get returns the counter for the given club and entity type.
func (s *SequenceService) Get(ctx context.Context, clubID, entityType string) (domain.SequenceCounter, error) {
	return s.counters.Get(ctx, clubID, entityType)
}

// List returns all counters of a club.
func (s *SequenceService) List(ctx context.Context, clubID string) ([]domain.SequenceCounter, error) {
	return s.counters.List(ctx, clubID)
}

// Configure creates or updates a counter's prefix, padding and
// year-reset flag. The current value is never written through this
// path.
func (s *SequenceService) Configure(ctx context.Context, counter domain.SequenceCounter) (domain.SequenceCounter, error) {
	if counter.PadLength < 1 {
		counter.PadLength = domain.DefaultPadLength
	}

	now := s.clock.Now()
	counter.CreatedAt = now
	counter.UpdatedAt = now

	if err := s.counters.Upsert(ctx, counter); err != nil {
		return domain.SequenceCounter{}, fmt.Errorf("storing counter: %w", err)
	}

	return s.counters.Get(ctx, counter.ClubID, counter.EntityType)
}

// Delete removes a counter that has not generated any numbers yet.
func (s *SequenceService) Delete(ctx context.Context, clubID, entityType string) error {
	return s.counters.Delete(ctx, clubID, entityType)
}
