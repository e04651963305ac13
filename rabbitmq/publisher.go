// SPDX-License-Identifier: GPL-3.0-only

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"laundrolink-server/commons"
	"laundrolink-server/metrics"
	"laundrolink-server/models"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

func ConfigFromEnv() Config {
	return Config{
		URL:      commons.GetEnv("AMQP_URL"),
		Exchange: commons.GetEnv("EVENTS_EXCHANGE", DefaultExchange),
	}
}

// NewPublisher connects to the broker and declares the durable topic
// exchange. An empty URL yields a publisher that drops every event.
func NewPublisher(cfg Config) (Publisher, error) {
	if cfg.URL == "" {
		commons.Logger.Info("AMQP_URL not set, domain events are disabled")
		return NoopPublisher{}, nil
	}
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("exchange declare %s: %w", cfg.Exchange, err)
	}

	commons.Logger.Infof("Publishing domain events to exchange %s", cfg.Exchange)
	return &AMQPPublisher{conn: conn, channel: ch, exchange: cfg.Exchange}, nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *models.Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

// AMQPPublisher is safe for concurrent use; amqp channels are not, so
// publishes are serialized.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func (p *AMQPPublisher) Publish(ctx context.Context, event *models.Event) error {
	msg, err := encodeEvent(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func encodeEvent(event *models.Event) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EID,
		Type:         event.Type,
		Timestamp:    event.CreatedAt,
		Body:         body,
	}, nil
}

// Emit publishes event and only logs a failure; events never fail requests.
func Emit(ctx context.Context, p Publisher, event *models.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		metrics.EventsPublished.WithLabelValues(event.Type, "error").Inc()
		commons.Logger.Errorf("Failed to publish event %s (%s): %v", event.Type, event.EID, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(event.Type, "ok").Inc()
}
