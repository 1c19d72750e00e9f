package dispatcher

import (
	"context"

	"github.com/garyjia/event-finance/internal/domain/event"
)

// Handler reacts to a domain event after the mutation has been committed
type Handler func(ctx context.Context, evt *event.Event) error

// Subscription is a registered handler and the name it was registered under
type Subscription struct {
	Name      string
	EventType event.Type
	handler   Handler
}
