// Package events announces record lifecycle changes over AMQP.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"screening-bot/internal/record"
)

const TypeRecordSaved = "record.saved"

// Event is the JSON body published for each saved record. It never carries
// contact details.
type Event struct {
	Type         string    `json:"type"`
	RecordID     string    `json:"record_id"`
	SessionID    string    `json:"session_id"`
	Status       string    `json:"status"`
	CandidateKey string    `json:"candidate_key,omitempty"`
	StorageKey   string    `json:"storage_key"`
	Backend      string    `json:"backend"`
	TechStack    []string  `json:"tech_stack"`
	Fallbacks    int       `json:"fallback_sets"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// RecordSaved builds the event for a record stored under key.
func RecordSaved(rec *record.Record, key, backend string, at time.Time) Event {
	return Event{
		Type:         TypeRecordSaved,
		RecordID:     rec.ID,
		SessionID:    rec.SessionID,
		Status:       string(rec.Status),
		CandidateKey: rec.Privacy.CandidateKey,
		StorageKey:   key,
		Backend:      backend,
		TechStack:    append([]string{}, rec.TechStack...),
		Fallbacks:    rec.Questions.FallbackCount(),
		OccurredAt:   at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// channel is the subset of *amqp.Channel the publisher uses.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes events to a topic exchange. The routing key is
// the event type followed by the record status, e.g. "record.saved.complete".
type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       channel
	exchange string
	logger   *slog.Logger
}

func NewAMQPPublisher(url, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newPublisher(ch, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, logger *slog.Logger) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, logger: logger.With("component", "events")}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := fmt.Sprintf("%s.%s", ev.Type, ev.Status)
	p.mu.Lock()
	err = p.ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.RecordID,
			Timestamp:    ev.OccurredAt,
			Type:         ev.Type,
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", routingKey, err)
	}

	p.logger.Debug("event published", "routing_key", routingKey, "record_id", ev.RecordID)
	return nil
}

func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
