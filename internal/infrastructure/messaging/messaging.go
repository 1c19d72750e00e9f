// Package messaging forwards committed domain events to external consumers.
package messaging

import (
	"context"

	"github.com/garyjia/event-finance/internal/application/dispatcher"
	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/event"
)

// NopPublisher drops every event. It is used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, evt *event.Event) error {
	return nil
}

func (NopPublisher) Close() error {
	return nil
}

// Handler adapts a publisher to a dispatcher subscription
func Handler(p port.EventPublisher) dispatcher.Handler {
	return func(ctx context.Context, evt *event.Event) error {
		return p.Publish(ctx, evt)
	}
}

// Register subscribes the publisher to every event type
func Register(d dispatcher.Dispatcher, p port.EventPublisher) {
	d.SubscribeAll("broker-publisher", Handler(p))
}

var _ port.EventPublisher = NopPublisher{}
