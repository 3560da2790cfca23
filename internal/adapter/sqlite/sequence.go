package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// SequenceRepository implements domain.SequenceRepository using SQLite.
type SequenceRepository struct {
	db *sql.DB
}

// Compile-time check: SequenceRepository implements domain.SequenceRepository.
var _ domain.SequenceRepository = (*SequenceRepository)(nil)

const counterColumns = `club_id, entity_type, prefix, pad_length, current_value, year_reset, created_at, updated_at`

// Get returns the counter for the given club and entity type.
func (r *SequenceRepository) Get(ctx context.Context, clubID, entityType string) (domain.SequenceCounter, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+counterColumns+` FROM sequence_counters
		 WHERE club_id = ? AND entity_type = ?`,
		clubID, entityType,
	)
	return scanCounter(row.Scan)
}

// GetOrCreate returns the counter, lazily creating it with defaults
// (empty prefix, pad length 4, no year reset) on first use. The caller
// supplies the creation time so it comes from the same clock as every
// other write.
func (r *SequenceRepository) GetOrCreate(ctx context.Context, clubID, entityType string, now time.Time) (domain.SequenceCounter, error) {
	stamp := formatTime(now)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sequence_counters (club_id, entity_type, prefix, pad_length, current_value, year_reset, created_at, updated_at)
		 VALUES (?, ?, '', ?, 0, 0, ?, ?)
		 ON CONFLICT (club_id, entity_type) DO NOTHING`,
		clubID, entityType, domain.DefaultPadLength, stamp, stamp,
	)
	if err != nil {
		return domain.SequenceCounter{}, fmt.Errorf("creating counter: %w", err)
	}

	return r.Get(ctx, clubID, entityType)
}

// Advance moves the counter to newValue only if the stored row still
// matches the snapshot's value and last-advance timestamp. Guarding on
// the value alone is not enough: a year reset can compute a target
// equal to the stored value, so the timestamp is what makes the second
// writer miss. This single conditional write is what makes next()
// race-free.
func (r *SequenceRepository) Advance(ctx context.Context, counter domain.SequenceCounter, newValue int64, now time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE sequence_counters SET current_value = ?, updated_at = ?
		 WHERE club_id = ? AND entity_type = ? AND current_value = ? AND updated_at = ?`,
		newValue, formatTime(now),
		counter.ClubID, counter.EntityType, counter.CurrentValue, formatTime(counter.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("advancing counter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrConflict
	}
	return nil
}

// Upsert creates or reconfigures a counter. The current value is left
// untouched on update; only Advance writes it.
func (r *SequenceRepository) Upsert(ctx context.Context, c domain.SequenceCounter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sequence_counters (club_id, entity_type, prefix, pad_length, current_value, year_reset, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?, ?)
		 ON CONFLICT (club_id, entity_type) DO UPDATE SET
		   prefix = excluded.prefix,
		   pad_length = excluded.pad_length,
		   year_reset = excluded.year_reset,
		   updated_at = excluded.updated_at`,
		c.ClubID, c.EntityType, c.Prefix, c.PadLength, boolToInt(c.YearReset),
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting counter: %w", err)
	}
	return nil
}

// List returns all counters of a club ordered by entity type.
func (r *SequenceRepository) List(ctx context.Context, clubID string) ([]domain.SequenceCounter, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+counterColumns+` FROM sequence_counters
		 WHERE club_id = ? ORDER BY entity_type`,
		clubID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing counters: %w", err)
	}
	defer rows.Close()

	var counters []domain.SequenceCounter
	for rows.Next() {
		c, err := scanCounter(rows.Scan)
		if err != nil {
			return nil, err
		}
		counters = append(counters, c)
	}

	return counters, rows.Err()
}

// Delete removes a counter that has never generated a number.
func (r *SequenceRepository) Delete(ctx context.Context, clubID, entityType string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sequence_counters
		 WHERE club_id = ? AND entity_type = ? AND current_value = 0`,
		clubID, entityType,
	)
	if err != nil {
		return fmt.Errorf("deleting counter: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// Distinguish a missing counter from one that is already in use.
	if _, err := r.Get(ctx, clubID, entityType); err != nil {
		return err
	}
	return domain.ErrCounterInUse
}

func scanCounter(scan func(...any) error) (domain.SequenceCounter, error) {
	var c domain.SequenceCounter
	var yearReset int
	var createdAt, updatedAt string

	err := scan(&c.ClubID, &c.EntityType, &c.Prefix, &c.PadLength, &c.CurrentValue, &yearReset, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.SequenceCounter{}, domain.ErrCounterNotFound
		}
		return domain.SequenceCounter{}, fmt.Errorf("scanning counter: %w", err)
	}

	c.YearReset = yearReset != 0
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)

	return c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
