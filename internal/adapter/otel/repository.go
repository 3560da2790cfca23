package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clubworks/clubcore/internal/domain"
)

const tracerName = "github.com/clubworks/clubcore/internal/adapter/otel"

// TracingMemberRepository wraps a domain.MemberRepository with
// OpenTelemetry tracing. Each method creates a span with semantic
// attributes and records errors.
type TracingMemberRepository struct {
	next   domain.MemberRepository
	tracer trace.Tracer
}

// Compile-time check: TracingMemberRepository implements domain.MemberRepository.
var _ domain.MemberRepository = (*TracingMemberRepository)(nil)

// NewTracingMemberRepository creates a tracing decorator around the
// given repository.
func NewTracingMemberRepository(next domain.MemberRepository) *TracingMemberRepository {
	return &TracingMemberRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingMemberRepository) Create(ctx context.Context, member domain.Member, period domain.MembershipPeriod, seed domain.StatusTransition) error {
	ctx, span := r.tracer.Start(ctx, "MemberRepository.Create",
		trace.WithAttributes(
			attribute.String("club.id", member.ClubID),
			attribute.String("member.id", member.ID),
			attribute.String("member.number", member.MemberNumber),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, member, period, seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingMemberRepository) GetByID(ctx context.Context, clubID, memberID string) (domain.Member, error) {
	ctx, span := r.tracer.Start(ctx, "MemberRepository.GetByID",
		trace.WithAttributes(
			attribute.String("club.id", clubID),
			attribute.String("member.id", memberID),
		),
	)
	defer span.End()

	member, err := r.next.GetByID(ctx, clubID, memberID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return member, err
}

func (r *TracingMemberRepository) OpenPeriod(ctx context.Context, clubID, memberID string) (domain.MembershipPeriod, error) {
	ctx, span := r.tracer.Start(ctx, "MemberRepository.OpenPeriod",
		trace.WithAttributes(
			attribute.String("club.id", clubID),
			attribute.String("member.id", memberID),
		),
	)
	defer span.End()

	period, err := r.next.OpenPeriod(ctx, clubID, memberID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return period, err
}

func (r *TracingMemberRepository) UpdateCancellation(ctx context.Context, member domain.Member) error {
	ctx, span := r.tracer.Start(ctx, "MemberRepository.UpdateCancellation",
		trace.WithAttributes(
			attribute.String("club.id", member.ClubID),
			attribute.String("member.id", member.ID),
			attribute.Bool("cancellation.set", member.CancellationDate != nil),
		),
	)
	defer span.End()

	err := r.next.UpdateCancellation(ctx, member)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingMemberRepository) ApplyTransition(ctx context.Context, params domain.ApplyTransitionParams) error {
	ctx, span := r.tracer.Start(ctx, "MemberRepository.ApplyTransition",
		trace.WithAttributes(
			attribute.String("club.id", params.Transition.ClubID),
			attribute.String("member.id", params.Transition.MemberID),
			attribute.String("transition.from", string(params.Transition.FromStatus)),
			attribute.String("transition.to", string(params.Transition.ToStatus)),
			attribute.Bool("transition.closes_period", params.ClosePeriod),
		),
	)
	defer span.End()

	err := r.next.ApplyTransition(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingMemberRepository) ListCancellationDue(ctx context.Context, now time.Time) ([]domain.Member, error) {
	ctx, span := r.tracer.Start(ctx, "MemberRepository.ListCancellationDue")
	defer span.End()

	members, err := r.next.ListCancellationDue(ctx, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(members)))
	}
	return members, err
}
