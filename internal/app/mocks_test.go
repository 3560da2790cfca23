package app_test

import (
	"context"
	"time"

	"github.com/clubworks/clubcore/internal/domain"
)

// --- Shared mocks ---

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func memberKey(clubID, memberID string) string { return clubID + "/" + memberID }

type mockMemberRepo struct {
	members map[string]domain.Member
	periods map[string]domain.MembershipPeriod

	created       []domain.Member
	createdSeeds  []domain.StatusTransition
	applied       []domain.ApplyTransitionParams
	applyAttempts int
	conflicts     int // ApplyTransition failures to inject before succeeding

	due     []domain.Member
	listErr error
}

func newMockMemberRepo() *mockMemberRepo {
	return &mockMemberRepo{
		members: make(map[string]domain.Member),
		periods: make(map[string]domain.MembershipPeriod),
	}
}

func (m *mockMemberRepo) put(member domain.Member) {
	m.members[memberKey(member.ClubID, member.ID)] = member
}

func (m *mockMemberRepo) Create(_ context.Context, member domain.Member, period domain.MembershipPeriod, seed domain.StatusTransition) error {
	m.put(member)
	m.periods[memberKey(member.ClubID, member.ID)] = period
	m.created = append(m.created, member)
	m.createdSeeds = append(m.createdSeeds, seed)
	return nil
}

func (m *mockMemberRepo) GetByID(_ context.Context, clubID, memberID string) (domain.Member, error) {
	member, ok := m.members[memberKey(clubID, memberID)]
	if !ok {
		return domain.Member{}, domain.ErrMemberNotFound
	}
	return member, nil
}

func (m *mockMemberRepo) OpenPeriod(_ context.Context, clubID, memberID string) (domain.MembershipPeriod, error) {
	period, ok := m.periods[memberKey(clubID, memberID)]
	if !ok || !period.Open() {
		return domain.MembershipPeriod{}, domain.ErrOpenPeriodNotFound
	}
	return period, nil
}

func (m *mockMemberRepo) UpdateCancellation(_ context.Context, member domain.Member) error {
	key := memberKey(member.ClubID, member.ID)
	if _, ok := m.members[key]; !ok {
		return domain.ErrMemberNotFound
	}
	m.members[key] = member
	return nil
}

func (m *mockMemberRepo) ApplyTransition(_ context.Context, params domain.ApplyTransitionParams) error {
	m.applyAttempts++
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrConflict
	}

	tr := params.Transition
	key := memberKey(tr.ClubID, tr.MemberID)
	member, ok := m.members[key]
	if !ok {
		return domain.ErrMemberNotFound
	}
	if member.Status != params.ExpectedStatus {
		return domain.ErrConflict
	}

	m.applied = append(m.applied, params)

	member.Status = tr.ToStatus
	member.StatusChangedAt = tr.EffectiveDate
	member.StatusChangedBy = tr.ActorID
	member.StatusChangeReason = tr.Reason
	m.members[key] = member

	if params.ClosePeriod {
		if period, ok := m.periods[key]; ok && period.Open() {
			leave := tr.EffectiveDate
			period.LeaveDate = &leave
			m.periods[key] = period
		}
	}
	return nil
}

func (m *mockMemberRepo) ListCancellationDue(_ context.Context, _ time.Time) ([]domain.Member, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.due, nil
}

type mockValidator struct {
	calls int
}

func (m *mockValidator) Validate(_ context.Context, from, to domain.Status) error {
	m.calls++
	if !domain.CanTransition(from, to) {
		return &domain.InvalidTransitionError{From: from, To: to}
	}
	return nil
}

type publishedEvent struct {
	event  domain.Event
	member domain.Member
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, member domain.Member) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{event: e, member: member})
	return nil
}

type prunedCall struct {
	clubID        string
	memberID      string
	effectiveDate time.Time
	actorID       string
	at            time.Time
}

type deletedCall struct {
	clubID       string
	memberID     string
	transitionID string
	actorID      string
	at           time.Time
}

type mockHistoryRepo struct {
	transitions []domain.StatusTransition
	updated     []domain.StatusTransition
	deletes     []deletedCall
	deleteErr   error
	prunes      []prunedCall
	pruneCount  int64
	pruneErr    error
}

func (m *mockHistoryRepo) List(_ context.Context, clubID, memberID string) ([]domain.StatusTransition, error) {
	var out []domain.StatusTransition
	for _, tr := range m.transitions {
		if tr.ClubID == clubID && tr.MemberID == memberID && !tr.Deleted() {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (m *mockHistoryRepo) GetByID(_ context.Context, clubID, memberID, transitionID string) (domain.StatusTransition, error) {
	for _, tr := range m.transitions {
		if tr.ClubID == clubID && tr.MemberID == memberID && tr.ID == transitionID && !tr.Deleted() {
			return tr, nil
		}
	}
	return domain.StatusTransition{}, domain.ErrTransitionNotFound
}

func (m *mockHistoryRepo) UpdateMeta(_ context.Context, transition domain.StatusTransition) error {
	m.updated = append(m.updated, transition)
	for i, tr := range m.transitions {
		if tr.ID == transition.ID {
			m.transitions[i] = transition
			return nil
		}
	}
	return domain.ErrTransitionNotFound
}

func (m *mockHistoryRepo) SoftDelete(_ context.Context, clubID, memberID, transitionID, actorID string, at time.Time) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, deletedCall{clubID, memberID, transitionID, actorID, at})
	return nil
}

func (m *mockHistoryRepo) PruneProvisional(_ context.Context, clubID, memberID string, effectiveDate time.Time, actorID string, at time.Time) (int64, error) {
	if m.pruneErr != nil {
		return 0, m.pruneErr
	}
	m.prunes = append(m.prunes, prunedCall{clubID, memberID, effectiveDate, actorID, at})
	return m.pruneCount, nil
}

type mockSequenceRepo struct {
	counters  map[string]domain.SequenceCounter
	conflicts int // Advance failures to inject before succeeding
	advances  int
}

func newMockSequenceRepo() *mockSequenceRepo {
	return &mockSequenceRepo{counters: make(map[string]domain.SequenceCounter)}
}

func (m *mockSequenceRepo) Get(_ context.Context, clubID, entityType string) (domain.SequenceCounter, error) {
	counter, ok := m.counters[memberKey(clubID, entityType)]
	if !ok {
		return domain.SequenceCounter{}, domain.ErrCounterNotFound
	}
	return counter, nil
}

func (m *mockSequenceRepo) GetOrCreate(_ context.Context, clubID, entityType string, now time.Time) (domain.SequenceCounter, error) {
	key := memberKey(clubID, entityType)
	if counter, ok := m.counters[key]; ok {
		return counter, nil
	}
	counter := domain.SequenceCounter{
		ClubID:     clubID,
		EntityType: entityType,
		PadLength:  domain.DefaultPadLength,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	m.counters[key] = counter
	return counter, nil
}

func (m *mockSequenceRepo) Advance(_ context.Context, counter domain.SequenceCounter, newValue int64, now time.Time) error {
	m.advances++
	if m.conflicts > 0 {
		m.conflicts--
		key := memberKey(counter.ClubID, counter.EntityType)
		stored := m.counters[key]
		stored.CurrentValue++
		stored.UpdatedAt = now
		m.counters[key] = stored
		return domain.ErrConflict
	}

	key := memberKey(counter.ClubID, counter.EntityType)
	stored, ok := m.counters[key]
	if !ok {
		return domain.ErrCounterNotFound
	}
	if stored.CurrentValue != counter.CurrentValue || !stored.UpdatedAt.Equal(counter.UpdatedAt) {
		return domain.ErrConflict
	}
	stored.CurrentValue = newValue
	stored.UpdatedAt = now
	m.counters[key] = stored
	return nil
}

func (m *mockSequenceRepo) Upsert(_ context.Context, counter domain.SequenceCounter) error {
	key := memberKey(counter.ClubID, counter.EntityType)
	if existing, ok := m.counters[key]; ok {
		existing.Prefix = counter.Prefix
		existing.PadLength = counter.PadLength
		existing.YearReset = counter.YearReset
		existing.UpdatedAt = counter.UpdatedAt
		m.counters[key] = existing
		return nil
	}
	m.counters[key] = counter
	return nil
}

func (m *mockSequenceRepo) List(_ context.Context, clubID string) ([]domain.SequenceCounter, error) {
	var out []domain.SequenceCounter
	for _, counter := range m.counters {
		if counter.ClubID == clubID {
			out = append(out, counter)
		}
	}
	return out, nil
}

func (m *mockSequenceRepo) Delete(_ context.Context, clubID, entityType string) error {
	key := memberKey(clubID, entityType)
	counter, ok := m.counters[key]
	if !ok {
		return domain.ErrCounterNotFound
	}
	if counter.CurrentValue > 0 {
		return domain.ErrCounterInUse
	}
	delete(m.counters, key)
	return nil
}

// testMember returns a minimal member in the given status.
func testMember(id string, status domain.Status) domain.Member {
	return domain.Member{
		ID:           id,
		ClubID:       "club-1",
		MemberNumber: "M-0001",
		FirstName:    "Erika",
		LastName:     "Beispiel",
		Status:       status,
	}
}
