package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoopPublisher drops events. Used when AMQP_URL is unset.
type NoopPublisher struct {
	Logger *slog.Logger
}

func (p NoopPublisher) Publish(_ context.Context, ev Event) error {
	if p.Logger != nil {
		p.Logger.Debug("events.publish.skipped", "event_id", ev.EventID, "key", ev.Key)
	}
	return nil
}

func (NoopPublisher) Close() error { return nil }

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type AMQPPublisher struct {
	cfg    AMQPConfig
	conn   *amqp.Connection
	logger *slog.Logger

	mu sync.Mutex
	ch channel
}

// DialAMQP connects and declares a durable topic exchange.
func DialAMQP(cfg AMQPConfig, logger *slog.Logger) (*AMQPPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		logger.Error("events.amqp.dial_failed", "error", err)
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", cfg.Exchange, err)
	}
	logger.Info("events.amqp.connected", "exchange", cfg.Exchange, "routing_key", cfg.RoutingKey)
	return &AMQPPublisher{cfg: cfg, conn: conn, ch: ch, logger: logger}, nil
}

func newAMQPPublisher(cfg AMQPConfig, ch channel, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{cfg: cfg, ch: ch, logger: logger}
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.EventID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}
	if ev.RequestID != "" {
		msg.Headers = amqp.Table{"x-request-id": ev.RequestID}
	}

	start := time.Now()
	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx, p.cfg.Exchange, p.cfg.RoutingKey, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.logger.Error("events.publish.failed", "event_id", ev.EventID, "error", err)
		return fmt.Errorf("publish event: %w", err)
	}
	p.logger.Info("events.publish.ok",
		"event_id", ev.EventID,
		"key", ev.Key,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first error
	if p.ch != nil {
		first = p.ch.Close()
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
