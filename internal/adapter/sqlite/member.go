package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// MemberRepository implements domain.MemberRepository using SQLite.
type MemberRepository struct {
	db *sql.DB
}

// Compile-time check: MemberRepository implements domain.MemberRepository.
var _ domain.MemberRepository = (*MemberRepository)(nil)

const memberColumns = `id, club_id, member_number, first_name, last_name, status,
	cancellation_date, cancellation_received_at,
	status_changed_at, status_changed_by, status_change_reason,
	created_at, updated_at`

// Create inserts the member, the initial open membership period and the
// seed audit entry in one transaction.
func (r *MemberRepository) Create(ctx context.Context, m domain.Member, p domain.MembershipPeriod, seed domain.StatusTransition) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.ExecContext(ctx,
		`INSERT INTO members (id, club_id, member_number, first_name, last_name, status,
		   cancellation_date, cancellation_received_at,
		   status_changed_at, status_changed_by, status_change_reason,
		   created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ClubID, m.MemberNumber, m.FirstName, m.LastName, string(m.Status),
		nullDate(m.CancellationDate), nullTime(m.CancellationReceivedAt),
		formatTime(m.StatusChangedAt), m.StatusChangedBy, m.StatusChangeReason,
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("member number %q already taken in club %s: %w", m.MemberNumber, m.ClubID, domain.ErrConflict)
		}
		return fmt.Errorf("inserting member: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO membership_periods (id, club_id, member_id, join_date, leave_date,
		   membership_type_id, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.ClubID, p.MemberID, formatDate(p.JoinDate), nullDate(p.LeaveDate),
		p.MembershipTypeID, p.Notes, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting membership period: %w", err)
	}

	if err := insertTransition(ctx, tx, seed); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing member creation: %w", err)
	}
	return nil
}

// GetByID returns a non-deleted member of the given club.
func (r *MemberRepository) GetByID(ctx context.Context, clubID, memberID string) (domain.Member, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members
		 WHERE club_id = ? AND id = ? AND deleted_at IS NULL`,
		clubID, memberID,
	)
	return scanMember(row.Scan)
}

// OpenPeriod returns the member's currently open membership period.
func (r *MemberRepository) OpenPeriod(ctx context.Context, clubID, memberID string) (domain.MembershipPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, club_id, member_id, join_date, leave_date,
		   membership_type_id, notes, created_at, updated_at
		 FROM membership_periods
		 WHERE club_id = ? AND member_id = ? AND leave_date IS NULL`,
		clubID, memberID,
	)

	var p domain.MembershipPeriod
	var joinDate, createdAt, updatedAt string
	var leaveDate sql.NullString

	err := row.Scan(&p.ID, &p.ClubID, &p.MemberID, &joinDate, &leaveDate,
		&p.MembershipTypeID, &p.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MembershipPeriod{}, domain.ErrOpenPeriodNotFound
		}
		return domain.MembershipPeriod{}, fmt.Errorf("scanning membership period: %w", err)
	}

	p.JoinDate = parseDate(joinDate)
	p.LeaveDate = datePtr(leaveDate)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	return p, nil
}

// UpdateCancellation persists the member's cancellation fields.
func (r *MemberRepository) UpdateCancellation(ctx context.Context, m domain.Member) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE members
		 SET cancellation_date = ?, cancellation_received_at = ?, updated_at = ?
		 WHERE club_id = ? AND id = ? AND deleted_at IS NULL`,
		nullDate(m.CancellationDate), nullTime(m.CancellationReceivedAt), formatTime(m.UpdatedAt),
		m.ClubID, m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating cancellation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// ApplyTransition records one status change atomically: the member row
// is updated only if its status still matches the expected one, the
// audit row is appended, and the open period is closed when requested.
// A stale expected status yields domain.ErrConflict.
func (r *MemberRepository) ApplyTransition(ctx context.Context, params domain.ApplyTransitionParams) error {
	t := params.Transition

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx,
		`UPDATE members
		 SET status = ?, status_changed_at = ?, status_changed_by = ?, status_change_reason = ?, updated_at = ?
		 WHERE club_id = ? AND id = ? AND status = ? AND deleted_at IS NULL`,
		string(t.ToStatus), formatTime(t.EffectiveDate), t.ActorID, t.Reason, formatTime(t.CreatedAt),
		t.ClubID, t.MemberID, string(params.ExpectedStatus),
	)
	if err != nil {
		return fmt.Errorf("updating member status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Either the member is gone or another transition won the race.
		var current string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM members WHERE club_id = ? AND id = ? AND deleted_at IS NULL`,
			t.ClubID, t.MemberID,
		).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrMemberNotFound
		}
		if err != nil {
			return fmt.Errorf("checking member status: %w", err)
		}
		return domain.ErrConflict
	}

	if err := insertTransition(ctx, tx, t); err != nil {
		return err
	}

	if params.ClosePeriod {
		_, err := tx.ExecContext(ctx,
			`UPDATE membership_periods
			 SET leave_date = ?, updated_at = ?
			 WHERE club_id = ? AND member_id = ? AND leave_date IS NULL`,
			formatDate(t.EffectiveDate), formatTime(t.CreatedAt),
			t.ClubID, t.MemberID,
		)
		if err != nil {
			return fmt.Errorf("closing membership period: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transition: %w", err)
	}
	return nil
}

// ListCancellationDue returns non-deleted members of every club whose
// cancellation date is on or before now and whose status can still be
// cancelled.
func (r *MemberRepository) ListCancellationDue(ctx context.Context, now time.Time) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members
		 WHERE deleted_at IS NULL
		   AND cancellation_date IS NOT NULL
		   AND cancellation_date <= ?
		   AND status IN (?, ?, ?, ?)
		 ORDER BY club_id, cancellation_date, id`,
		formatDate(now),
		string(domain.StatusProbation), string(domain.StatusActive),
		string(domain.StatusDormant), string(domain.StatusSuspended),
	)
	if err != nil {
		return nil, fmt.Errorf("listing due cancellations: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	return members, rows.Err()
}

func insertTransition(ctx context.Context, tx *sql.Tx, t domain.StatusTransition) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO status_transitions (id, club_id, member_id, from_status, to_status,
		   effective_date, reason, actor_id, left_category, created_at, deleted_at, deleted_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClubID, t.MemberID, string(t.FromStatus), string(t.ToStatus),
		formatDate(t.EffectiveDate), t.Reason, t.ActorID, string(t.LeftCategory),
		formatTime(t.CreatedAt), nullTime(t.DeletedAt), t.DeletedBy,
	)
	if err != nil {
		return fmt.Errorf("inserting status transition: %w", err)
	}
	return nil
}

// scanMember scans one member row; works for both QueryRow and Rows.
func scanMember(scan func(...any) error) (domain.Member, error) {
	var m domain.Member
	var status, statusChangedAt, createdAt, updatedAt string
	var cancellationDate, cancellationReceivedAt sql.NullString

	err := scan(&m.ID, &m.ClubID, &m.MemberNumber, &m.FirstName, &m.LastName, &status,
		&cancellationDate, &cancellationReceivedAt,
		&statusChangedAt, &m.StatusChangedBy, &m.StatusChangeReason,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, domain.ErrMemberNotFound
		}
		return domain.Member{}, fmt.Errorf("scanning member: %w", err)
	}

	m.Status = domain.Status(status)
	m.CancellationDate = datePtr(cancellationDate)
	m.CancellationReceivedAt = timePtr(cancellationReceivedAt)
	m.StatusChangedAt = parseTime(statusChangedAt)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)

	return m, nil
}
