package service

import (
	"context"

	"github.com/garyjia/event-finance/internal/domain/event"
	"github.com/garyjia/event-finance/internal/domain/permission"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// EventDispatcher is the part of the dispatcher the services need
type EventDispatcher interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}

// Actor identifies who performs an operation
type Actor struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Authorizer resolves capabilities for an actor. Every mutation calls it
// again rather than trusting flags computed for an earlier request.
type Authorizer struct {
	policy   permission.Policy
	demoMode bool
}

// NewAuthorizer creates an Authorizer
func NewAuthorizer(policy permission.Policy, demoMode bool) *Authorizer {
	return &Authorizer{policy: policy, demoMode: demoMode}
}

// Permissions returns the capability set for actor
func (a *Authorizer) Permissions(actor Actor) permission.Set {
	return a.policy.Resolve(actor.Role, a.demoMode)
}

// DemoMode reports whether every caller is granted full capabilities
func (a *Authorizer) DemoMode() bool {
	return a.demoMode
}

func (a *Authorizer) require(actor Actor, action, capability string, allowed func(permission.Set) bool) error {
	if allowed(a.Permissions(actor)) {
		return nil
	}
	return &AuthorizationError{Action: action, Capability: capability, Role: actor.Role}
}

func canEditBudget(p permission.Set) bool {
	return p.CanEditBudget
}

func canApprove(p permission.Set) bool {
	return p.CanApprove
}

func canEditAll(p permission.Set) bool {
	return p.CanEditAll
}

func canSetEstimated(p permission.Set) bool {
	return p.CanSetEstimated()
}

func canSetActual(p permission.Set) bool {
	return p.CanSetActual()
}

// dispatch sends evt without tying handler lifetime to the request
func dispatch(ctx context.Context, d EventDispatcher, evt *event.Event) {
	if d == nil {
		return
	}
	d.DispatchAsync(context.WithoutCancel(ctx), evt)
}
