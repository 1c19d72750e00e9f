// Package amqp publishes domain events to a RabbitMQ topic exchange.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/garyjia/event-finance/internal/application/port"
	"github.com/garyjia/event-finance/internal/domain/event"
)

const publishTimeout = 5 * time.Second

// Config holds broker connection settings
type Config struct {
	URL        string
	Exchange   string
	AppID      string
	MaxRetries int
}

// channel is the subset of *amqp091.Channel the publisher uses
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher sends each event to the exchange with its type as routing key
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	ch       channel
	exchange string
	appID    string
	logger   *zap.Logger
}

// Dial connects to the broker, retrying with exponential backoff, and
// declares a durable topic exchange
func Dial(ctx context.Context, cfg Config, logger *zap.Logger) (*Publisher, error) {
	var conn *amqp091.Connection
	var err error

	for attempt := 0; ; attempt++ {
		conn, err = amqp091.Dial(cfg.URL)
		if err == nil {
			break
		}
		if attempt >= cfg.MaxRetries || !isConnectionError(err) {
			return nil, fmt.Errorf("dial AMQP: %w", err)
		}
		wait := exponentialBackoff(attempt)
		logger.Warn("Broker unavailable, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p, err := newPublisher(ch, cfg, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, cfg Config, logger *zap.Logger) (*Publisher, error) {
	err := ch.ExchangeDeclare(
		cfg.Exchange, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	appID := cfg.AppID
	if appID == "" {
		appID = "eventfin"
	}
	return &Publisher{
		ch:       ch,
		exchange: cfg.Exchange,
		appID:    appID,
		logger:   logger,
	}, nil
}

// Publish sends evt as a persistent JSON message
func (p *Publisher) Publish(ctx context.Context, evt *event.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(
		ctx,
		p.exchange,        // exchange
		evt.Type.String(), // routing key
		false,             // mandatory
		false,             // immediate
		amqp091.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp091.Persistent,
			MessageId:     evt.ID,
			CorrelationId: evt.CorrelationID,
			Type:          evt.Type.String(),
			AppId:         p.appID,
			Timestamp:     evt.Timestamp,
			Body:          body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_type", evt.Type.String()),
			zap.String("event_id", evt.ID),
			zap.Error(err))
		return fmt.Errorf("publish message: %w", err)
	}

	p.logger.Debug("Published event",
		zap.String("event_type", evt.Type.String()),
		zap.String("event_id", evt.ID),
		zap.String("exchange", p.exchange))
	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// exponentialBackoff doubles from one second and caps at 30 seconds
func exponentialBackoff(attempt int) time.Duration {
	if attempt > 4 {
		return 30 * time.Second
	}
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "no such host", "i/o timeout"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

var _ port.EventPublisher = (*Publisher)(nil)
