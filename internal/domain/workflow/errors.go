// Package workflow models the expense approval lifecycle as a small state machine.
package workflow

import "errors"

var (
	// ErrInvalidTransition means the trigger is not allowed from the current state
	ErrInvalidTransition = errors.New("transition not allowed")

	// ErrInvalidState means a state outside the known set was used
	ErrInvalidState = errors.New("unknown state")

	// ErrGuardFailed means every transition for the trigger was guarded off
	ErrGuardFailed = errors.New("transition guard rejected")
)
