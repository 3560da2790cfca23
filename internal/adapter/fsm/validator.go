package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/clubworks/clubcore/internal/domain"
)

// Compile-time check: Validator implements domain.TransitionValidator.
var _ domain.TransitionValidator = (*Validator)(nil)

// events converts domain.Transitions into looplab/fsm EventDesc format.
// The event name is the target status, so "apply event X" means "move
// to status X". Transitions with the same destination are consolidated
// into one EventDesc with multiple source states (e.g. "left" is
// reachable from every non-terminal status).
var events = buildEvents()

func buildEvents() []loopfsm.EventDesc {
	grouped := make(map[domain.Status][]string)
	order := make([]domain.Status, 0)

	for _, t := range domain.Transitions {
		if _, exists := grouped[t.To]; !exists {
			order = append(order, t.To)
		}
		grouped[t.To] = append(grouped[t.To], string(t.From))
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, dst := range order {
		out = append(out, loopfsm.EventDesc{
			Name: string(dst),
			Src:  grouped[dst],
			Dst:  string(dst),
		})
	}
	return out
}

// Validator implements domain.TransitionValidator using looplab/fsm.
// It creates a short-lived FSM instance per Validate call, initialized
// with the member's current status. This is necessary because
// looplab/fsm is stateful (it tracks the current state internally).
type Validator struct{}

// New creates a new FSM-backed transition validator.
func New() *Validator {
	return &Validator{}
}

// Validate checks whether moving from the current status to the target
// status is legal. Returns a domain.InvalidTransitionError if not.
func (v *Validator) Validate(ctx context.Context, from, to domain.Status) error {
	if !from.Known() || !to.Known() {
		return &domain.InvalidTransitionError{From: from, To: to}
	}

	machine := loopfsm.NewFSM(string(from), events, nil)

	if err := machine.Event(ctx, string(to)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return &domain.InvalidTransitionError{From: from, To: to}
		}
		return err
	}

	return nil
}
