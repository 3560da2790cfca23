package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// HistoryRepository implements domain.HistoryRepository using SQLite.
type HistoryRepository struct {
	db *sql.DB
}

// Compile-time check: HistoryRepository implements domain.HistoryRepository.
var _ domain.HistoryRepository = (*HistoryRepository)(nil)

const transitionColumns = `id, club_id, member_id, from_status, to_status,
	effective_date, reason, actor_id, left_category, created_at, deleted_at, deleted_by`

// List returns the member's non-deleted transitions, oldest first.
func (r *HistoryRepository) List(ctx context.Context, clubID, memberID string) ([]domain.StatusTransition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transitionColumns+` FROM status_transitions
		 WHERE club_id = ? AND member_id = ? AND deleted_at IS NULL
		 ORDER BY effective_date ASC, created_at ASC, id ASC`,
		clubID, memberID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing transitions: %w", err)
	}
	defer rows.Close()

	var transitions []domain.StatusTransition
	for rows.Next() {
		t, err := scanTransition(rows.Scan)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, t)
	}

	return transitions, rows.Err()
}

// GetByID returns one non-deleted transition of the member.
func (r *HistoryRepository) GetByID(ctx context.Context, clubID, memberID, transitionID string) (domain.StatusTransition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transitionColumns+` FROM status_transitions
		 WHERE club_id = ? AND member_id = ? AND id = ? AND deleted_at IS NULL`,
		clubID, memberID, transitionID,
	)
	return scanTransition(row.Scan)
}

// UpdateMeta persists the editable metadata of a transition. The
// from/to statuses are deliberately not part of the statement.
func (r *HistoryRepository) UpdateMeta(ctx context.Context, t domain.StatusTransition) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE status_transitions
		 SET reason = ?, effective_date = ?, left_category = ?
		 WHERE club_id = ? AND member_id = ? AND id = ? AND deleted_at IS NULL`,
		t.Reason, formatDate(t.EffectiveDate), string(t.LeftCategory),
		t.ClubID, t.MemberID, t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transition: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrTransitionNotFound
	}
	return nil
}

// SoftDelete marks a transition deleted unless it is the member's most
// recent non-deleted entry, which backs the denormalized status.
func (r *HistoryRepository) SoftDelete(ctx context.Context, clubID, memberID, transitionID, actorID string, at time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var exists string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM status_transitions
		 WHERE club_id = ? AND member_id = ? AND id = ? AND deleted_at IS NULL`,
		clubID, memberID, transitionID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrTransitionNotFound
	}
	if err != nil {
		return fmt.Errorf("loading transition: %w", err)
	}

	var newest string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM status_transitions
		 WHERE club_id = ? AND member_id = ? AND deleted_at IS NULL
		 ORDER BY effective_date DESC, created_at DESC, id DESC
		 LIMIT 1`,
		clubID, memberID,
	).Scan(&newest)
	if err != nil {
		return fmt.Errorf("finding newest transition: %w", err)
	}
	if newest == transitionID {
		return &domain.HistoryGuardError{TransitionID: transitionID}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE status_transitions SET deleted_at = ?, deleted_by = ?
		 WHERE club_id = ? AND member_id = ? AND id = ?`,
		formatTime(at), actorID, clubID, memberID, transitionID,
	)
	if err != nil {
		return fmt.Errorf("deleting transition: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deletion: %w", err)
	}
	return nil
}

// PruneProvisional soft-deletes the member's non-deleted transitions
// whose effective date equals the given date and whose target status is
// not terminal. Used by the cancellation sweep before it records the
// automatic exit.
func (r *HistoryRepository) PruneProvisional(ctx context.Context, clubID, memberID string, effectiveDate time.Time, actorID string, at time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE status_transitions SET deleted_at = ?, deleted_by = ?
		 WHERE club_id = ? AND member_id = ? AND deleted_at IS NULL
		   AND effective_date = ? AND to_status != ?`,
		formatTime(at), actorID,
		clubID, memberID,
		formatDate(effectiveDate), string(domain.StatusLeft),
	)
	if err != nil {
		return 0, fmt.Errorf("pruning transitions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return rows, nil
}

// scanTransition scans one transition row; works for both QueryRow and
// Rows.
func scanTransition(scan func(...any) error) (domain.StatusTransition, error) {
	var t domain.StatusTransition
	var fromStatus, toStatus, effectiveDate, leftCategory, createdAt string
	var deletedAt sql.NullString

	err := scan(&t.ID, &t.ClubID, &t.MemberID, &fromStatus, &toStatus,
		&effectiveDate, &t.Reason, &t.ActorID, &leftCategory, &createdAt, &deletedAt, &t.DeletedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StatusTransition{}, domain.ErrTransitionNotFound
		}
		return domain.StatusTransition{}, fmt.Errorf("scanning transition: %w", err)
	}

	t.FromStatus = domain.Status(fromStatus)
	t.ToStatus = domain.Status(toStatus)
	t.EffectiveDate = parseDate(effectiveDate)
	t.LeftCategory = domain.LeftCategory(leftCategory)
	t.CreatedAt = parseTime(createdAt)
	t.DeletedAt = timePtr(deletedAt)

	return t, nil
}
