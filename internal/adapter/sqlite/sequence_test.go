package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/clubworks/clubcore/internal/domain"
)

func TestSequenceGetOrCreate_Defaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := date(2026, 2, 1)
	counter, err := store.Sequences.GetOrCreate(ctx, "club-1", "member", created)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if counter.Prefix != "" {
		t.Errorf("Prefix = %q, want empty", counter.Prefix)
	}
	if counter.PadLength != domain.DefaultPadLength {
		t.Errorf("PadLength = %d, want %d", counter.PadLength, domain.DefaultPadLength)
	}
	if counter.CurrentValue != 0 {
		t.Errorf("CurrentValue = %d, want 0", counter.CurrentValue)
	}
	if counter.YearReset {
		t.Error("YearReset should default to false")
	}
	if !counter.CreatedAt.Equal(created) || !counter.UpdatedAt.Equal(created) {
		t.Errorf("timestamps = %v / %v, want the supplied time %v", counter.CreatedAt, counter.UpdatedAt, created)
	}

	// Second call returns the same row, not a reset one.
	again, err := store.Sequences.GetOrCreate(ctx, "club-1", "member", date(2026, 2, 2))
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if !again.CreatedAt.Equal(created) {
		t.Error("GetOrCreate replaced the existing counter")
	}
}

func TestSequenceGet_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Sequences.Get(context.Background(), "club-1", "invoice")
	if !errors.Is(err, domain.ErrCounterNotFound) {
		t.Errorf("expected ErrCounterNotFound, got %v", err)
	}
}

func TestSequenceAdvance_ConditionalOnCurrentValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	counter, err := store.Sequences.GetOrCreate(ctx, "club-1", "member", date(2026, 2, 1))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	now := date(2026, 3, 1)
	if err := store.Sequences.Advance(ctx, counter, 1, now); err != nil {
		t.Fatalf("first Advance failed: %v", err)
	}

	// Advancing again from the same stale snapshot must conflict.
	err = store.Sequences.Advance(ctx, counter, 1, now)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale advance, got %v", err)
	}

	got, _ := store.Sequences.Get(ctx, "club-1", "member")
	if got.CurrentValue != 1 {
		t.Errorf("CurrentValue = %d, want 1", got.CurrentValue)
	}
}

func TestSequenceAdvance_YearResetStaleSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := domain.SequenceCounter{
		ClubID:     "club-1",
		EntityType: "member",
		Prefix:     "TSV-{YYYY}-",
		PadLength:  3,
		YearReset:  true,
		CreatedAt:  date(2025, 1, 1),
		UpdatedAt:  date(2025, 1, 1),
	}
	if err := store.Sequences.Upsert(ctx, seed); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	counter, err := store.Sequences.Get(ctx, "club-1", "member")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := store.Sequences.Advance(ctx, counter, 1, date(2025, 6, 1)); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// Two callers read the same snapshot after the year rolled over.
	// Both compute a reset value of 1, which equals the stored value,
	// so the value alone cannot tell the second writer it lost.
	snapshot, err := store.Sequences.Get(ctx, "club-1", "member")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	now := date(2026, 1, 5)
	value := snapshot.NextValue(now)
	if value != 1 {
		t.Fatalf("NextValue = %d, want 1 after year rollover", value)
	}

	if err := store.Sequences.Advance(ctx, snapshot, value, now); err != nil {
		t.Fatalf("winning Advance failed: %v", err)
	}
	err = store.Sequences.Advance(ctx, snapshot, value, now)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict for the losing reset, got %v", err)
	}

	// The loser retries from fresh state and gets the next number.
	fresh, err := store.Sequences.Get(ctx, "club-1", "member")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	retried := fresh.NextValue(now)
	if err := store.Sequences.Advance(ctx, fresh, retried, now); err != nil {
		t.Fatalf("retried Advance failed: %v", err)
	}
	if got := fresh.Format(retried, now); got != "TSV-2026-002" {
		t.Errorf("retried number = %q, want %q", got, "TSV-2026-002")
	}
}

func TestSequenceUpsert_DoesNotTouchCurrentValue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	counter, err := store.Sequences.GetOrCreate(ctx, "club-1", "member", date(2026, 2, 1))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if err := store.Sequences.Advance(ctx, counter, 7, date(2026, 3, 1)); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	counter.Prefix = "TSV-{YYYY}-"
	counter.PadLength = 3
	counter.YearReset = true
	counter.UpdatedAt = date(2026, 3, 2)
	if err := store.Sequences.Upsert(ctx, counter); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, _ := store.Sequences.Get(ctx, "club-1", "member")
	if got.Prefix != "TSV-{YYYY}-" {
		t.Errorf("Prefix = %q, want %q", got.Prefix, "TSV-{YYYY}-")
	}
	if !got.YearReset {
		t.Error("YearReset not persisted")
	}
	if got.CurrentValue != 7 {
		t.Errorf("CurrentValue = %d, want 7 (reconfiguration must not reset)", got.CurrentValue)
	}
}

func TestSequenceDelete_UnusedOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	counter, err := store.Sequences.GetOrCreate(ctx, "club-1", "member", date(2026, 2, 1))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	if err := store.Sequences.Delete(ctx, "club-1", "member"); err != nil {
		t.Fatalf("deleting unused counter failed: %v", err)
	}

	counter, err = store.Sequences.GetOrCreate(ctx, "club-1", "member", date(2026, 2, 1))
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if err := store.Sequences.Advance(ctx, counter, 1, date(2026, 3, 1)); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	err = store.Sequences.Delete(ctx, "club-1", "member")
	if !errors.Is(err, domain.ErrCounterInUse) {
		t.Errorf("expected ErrCounterInUse, got %v", err)
	}
}

func TestSequenceDelete_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Sequences.Delete(context.Background(), "club-1", "ghost")
	if !errors.Is(err, domain.ErrCounterNotFound) {
		t.Errorf("expected ErrCounterNotFound, got %v", err)
	}
}

func TestSequenceList_ScopedToClub(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Sequences.GetOrCreate(ctx, "club-1", "member", date(2026, 2, 1)); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := store.Sequences.GetOrCreate(ctx, "club-1", "invoice", date(2026, 2, 1)); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if _, err := store.Sequences.GetOrCreate(ctx, "club-2", "member", date(2026, 2, 1)); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}

	counters, err := store.Sequences.List(ctx, "club-1")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(counters) != 2 {
		t.Fatalf("got %d counters, want 2", len(counters))
	}
	if counters[0].EntityType != "invoice" || counters[1].EntityType != "member" {
		t.Errorf("unexpected order: %q, %q", counters[0].EntityType, counters[1].EntityType)
	}
}
