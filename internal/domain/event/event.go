package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a domain event raised after a successful mutation
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	EventID       int64                  `json:"event_id"`
	AggregateID   int64                  `json:"aggregate_id"`
	Actor         string                 `json:"actor"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a domain event for an aggregate inside a finance event.
// eventID is the finance event scope, aggregateID the item or expense.
func NewEvent(eventType Type, eventID, aggregateID int64, actor string, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return &Event{
		ID:            id,
		Type:          eventType,
		EventID:       eventID,
		AggregateID:   aggregateID,
		Actor:         actor,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: id,
	}
}

// WithCorrelation returns a copy linked to an existing correlation chain
func (e *Event) WithCorrelation(correlationID string) *Event {
	cp := *e
	if correlationID != "" {
		cp.CorrelationID = correlationID
	}
	return &cp
}

// WithPayload returns a copy with an added payload entry; the receiver is not modified
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	cp := *e
	cp.Payload = payload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if s, ok := e.Payload[key].(string); ok {
		return s
	}
	return ""
}
