package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/clubworks/clubcore/internal/app"
)

// EventWorker processes member event jobs from the River queue. For now
// it logs the event; future versions will dispatch to mail templates or
// webhook endpoints.
type EventWorker struct {
	river.WorkerDefaults[MemberEventArgs]
}

// Work processes a single event job.
func (w *EventWorker) Work(ctx context.Context, job *river.Job[MemberEventArgs]) error {
	slog.InfoContext(ctx, "processing member event",
		"event", job.Args.Event,
		"club_id", job.Args.ClubID,
		"member_id", job.Args.MemberID,
		"status", job.Args.Status,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// SweepArgs triggers one cancellation sweep pass. The job carries no
// payload; the sweep service finds the due members itself.
type SweepArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (SweepArgs) Kind() string { return "cancellation.sweep" }

// Sweeper runs one cancellation sweep pass. Implemented by
// app.SweepService.
type Sweeper interface {
	Run(ctx context.Context) (app.SweepResult, error)
}

// SweepWorker executes the periodic cancellation sweep.
type SweepWorker struct {
	river.WorkerDefaults[SweepArgs]

	sweeper Sweeper
}

// NewSweepWorker creates a sweep worker driving the given sweeper.
func NewSweepWorker(sweeper Sweeper) *SweepWorker {
	return &SweepWorker{sweeper: sweeper}
}

// Work runs one sweep pass. Per-member failures are already handled
// inside the sweep service; only a failure to even start the pass is
// surfaced to River for retry.
func (w *SweepWorker) Work(ctx context.Context, job *river.Job[SweepArgs]) error {
	result, err := w.sweeper.Run(ctx)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "cancellation sweep job done",
		"job_id", job.ID,
		"due", result.Due,
		"completed", len(result.Completed),
		"failed", len(result.Failed),
	)
	return nil
}
