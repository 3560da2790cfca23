package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/clubworks/clubcore/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// MemberEventArgs carries the data needed to process a domain event
// asynchronously. River serializes this as JSON into its job queue
// table. It includes a snapshot of the member at the time the event was
// published, so the worker never needs to query the database.
type MemberEventArgs struct {
	Event            string `json:"event"`
	ClubID           string `json:"club_id"`
	MemberID         string `json:"member_id"`
	MemberNumber     string `json:"member_number"`
	Status           string `json:"status"`
	StatusChangedBy  string `json:"status_changed_by"`
	CancellationDate string `json:"cancellation_date,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (MemberEventArgs) Kind() string { return "member.event" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a domain event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.Event, member domain.Member) error {
	args := MemberEventArgs{
		Event:           string(event),
		ClubID:          member.ClubID,
		MemberID:        member.ID,
		MemberNumber:    member.MemberNumber,
		Status:          string(member.Status),
		StatusChangedBy: member.StatusChangedBy,
	}
	if member.CancellationDate != nil {
		args.CancellationDate = member.CancellationDate.Format(time.DateOnly)
	}

	if _, err := p.client.Insert(ctx, args, nil); err != nil {
		return fmt.Errorf("enqueuing event job: %w", err)
	}
	return nil
}
