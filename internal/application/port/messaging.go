package port

import (
	"context"

	"github.com/garyjia/event-finance/internal/domain/event"
)

// EventPublisher forwards domain events to an external broker
type EventPublisher interface {
	Publish(ctx context.Context, evt *event.Event) error
	Close() error
}
