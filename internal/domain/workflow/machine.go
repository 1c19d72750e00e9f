package workflow

import (
	"context"
	"fmt"
)

// StateMachine tracks the state of one expense
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire reports whether any transition exists for the trigger.
	// Guards are not evaluated.
	CanFire(trigger Trigger) bool

	// Fire moves to the next state or returns ErrInvalidTransition / ErrGuardFailed
	Fire(ctx context.Context, trigger Trigger) (Transition, error)
}

// Transition describes a state change that was applied
type Transition struct {
	From    State
	To      State
	Trigger Trigger
}

type machine struct {
	def     *Definition
	current State
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	return len(m.def.table[m.current][trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) (Transition, error) {
	candidates := m.def.table[m.current][trigger]
	if len(candidates) == 0 {
		return Transition{}, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range candidates {
		if t.guard != nil && !t.guard(ctx) {
			continue
		}
		applied := Transition{From: m.current, To: t.to, Trigger: trigger}
		m.current = t.to
		return applied, nil
	}

	return Transition{}, fmt.Errorf("%w: %s from %s", ErrGuardFailed, trigger, m.current)
}
