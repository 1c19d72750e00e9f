package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/domain/event"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	declared   []string
	kind       string
	published  []published
	publishErr error
	declareErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error {
	f.declared = append(f.declared, name)
	f.kind = kind
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return f.publishErr
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, Config{Exchange: "finance.events"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"finance.events"}, ch.declared)
	assert.Equal(t, "topic", ch.kind)

	evt := event.NewEvent(event.TypeExpenseApproved, 3, 9, "boss", map[string]interface{}{"new_status": "Approved"})
	require.NoError(t, p.Publish(context.Background(), evt))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "finance.events", got.exchange)
	assert.Equal(t, "expense.approved", got.key)
	assert.Equal(t, uint8(amqp091.Persistent), got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, evt.ID, got.msg.MessageId)
	assert.Equal(t, "eventfin", got.msg.AppId)

	var decoded event.Event
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	assert.Equal(t, int64(9), decoded.AggregateID)
	assert.Equal(t, "Approved", decoded.GetPayloadString("new_status"))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newPublisher(ch, Config{Exchange: "x"}, zap.NewNop())
	require.NoError(t, err)

	err = p.Publish(context.Background(), event.NewEvent(event.TypeEventCreated, 1, 1, "a", nil))
	assert.ErrorContains(t, err, "publish message")
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}

	_, err := newPublisher(ch, Config{Exchange: "x"}, zap.NewNop())

	assert.ErrorContains(t, err, "declare exchange")
	assert.True(t, ch.closed)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{12, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("ACCESS_REFUSED - Login was refused")))
}
