// Package events publishes application tracker events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// Exchange is the topic exchange events are published to
const Exchange = "application_updates"

// Event types
const (
	TypeApplicationCreated       = "application.created"
	TypeApplicationStatusChanged = "application.status_changed"
)

// Event is a change to a user's tracked applications
type Event struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	ApplicationID string    `json:"application_id"`
	JobID         string    `json:"job_id,omitempty"`
	Status        string    `json:"status"`
	Time          time.Time `json:"time"`
}

// RoutingKey returns the routing key for e
func (e Event) RoutingKey() string {
	return fmt.Sprintf("application.%s", e.UserID)
}

// Publisher publishes Events
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher discards Events
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(ctx context.Context, e Event) error {
	return nil
}

// channel is the subset of *amqp.Channel used by AMQPPublisher
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes Events to a RabbitMQ topic exchange
type AMQPPublisher struct {
	mu   sync.Mutex
	conn *amqp.Connection
	open func() (channel, error)
}

// DialAMQP connects to the broker at url and declares Exchange
func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	p := &AMQPPublisher{conn: conn}
	p.open = func() (channel, error) {
		ch, err := conn.Channel()
		if err != nil {
			return nil, err
		}
		return ch, nil
	}

	ch, err := p.open()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("error opening channel: %w", err)
	}
	defer ch.Close()

	if err = ch.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error declaring exchange %s: %w", Exchange, err)
	}

	return p, nil
}

// Publish sends e to Exchange with e.RoutingKey()
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("could not encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("error opening channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(
		Exchange,
		e.RoutingKey(),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.Time,
			Type:         e.Type,
			Body:         body,
		},
	)
}

// Close closes the broker connection
func (p *AMQPPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
