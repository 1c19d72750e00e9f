package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides at fire time whether a transition may be taken
type GuardFunc func(ctx context.Context) bool

type transition struct {
	to    State
	guard GuardFunc
}

// Definition is an immutable transition table. One Definition is shared by
// every machine built from it.
type Definition struct {
	table map[State]map[Trigger][]transition
}

// Builder assembles a Definition
type Builder struct {
	table map[State]map[Trigger][]transition
	err   error
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{table: make(map[State]map[Trigger][]transition)}
}

// Permit adds an unconditional transition
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	return b.PermitIf(from, trigger, to, nil)
}

// PermitIf adds a transition that is only taken when guard passes.
// Guards for the same trigger are tried in registration order.
func (b *Builder) PermitIf(from State, trigger Trigger, to State, guard GuardFunc) *Builder {
	if b.err != nil {
		return b
	}
	if !from.IsValid() {
		b.err = fmt.Errorf("%w: %s", ErrInvalidState, from)
		return b
	}
	if !to.IsValid() {
		b.err = fmt.Errorf("%w: %s", ErrInvalidState, to)
		return b
	}

	if b.table[from] == nil {
		b.table[from] = make(map[Trigger][]transition)
	}
	b.table[from][trigger] = append(b.table[from][trigger], transition{to: to, guard: guard})
	return b
}

// Build freezes the table. It fails if any registered state was invalid.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}

	table := make(map[State]map[Trigger][]transition, len(b.table))
	for from, triggers := range b.table {
		copied := make(map[Trigger][]transition, len(triggers))
		for trigger, ts := range triggers {
			copied[trigger] = append([]transition(nil), ts...)
		}
		table[from] = copied
	}

	return &Definition{table: table}, nil
}

// Machine starts a state machine at current
func (d *Definition) Machine(current State) (StateMachine, error) {
	if !current.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, current)
	}
	return &machine{def: d, current: current}, nil
}

// Permitted lists the triggers that have at least one transition out of s
func (d *Definition) Permitted(s State) []Trigger {
	triggers := make([]Trigger, 0, len(d.table[s]))
	for trigger, ts := range d.table[s] {
		if len(ts) > 0 {
			triggers = append(triggers, trigger)
		}
	}
	return triggers
}
