package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/court-booking/internal/domain/booking"
)

const (
	DefaultExchange = "courtbook.bookings"

	KeyBookingCreated   = "booking.created"
	KeyBookingCancelled = "booking.cancelled"
)

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher emits booking events to a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// NewWithChannel wraps an already open channel.
func NewWithChannel(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Event is the message body for every booking routing key.
type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Booking    booking.Record `json:"booking"`
	ID         string         `json:"id"`
	Origin     booking.Origin `json:"origin"`
}

func (p *Publisher) BookingCreated(ctx context.Context, b booking.Booking) error {
	return p.publish(ctx, KeyBookingCreated, b)
}

func (p *Publisher) BookingCancelled(ctx context.Context, b booking.Booking) error {
	return p.publish(ctx, KeyBookingCancelled, b)
}

func (p *Publisher) publish(ctx context.Context, key string, b booking.Booking) error {
	ev := Event{Type: key, OccurredAt: time.Now().UTC(), Booking: booking.RecordOf(b), ID: b.ID, Origin: b.Origin}
	return p.PublishJSON(ctx, key, ev)
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
