package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

const dialAttempts = 6

// AMQPForwarder republishes content events to a topic exchange with the
// routing key "content.<kind>.created".
type AMQPForwarder struct {
	url      string
	exchange string
	logger   zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

// NewAMQPForwarder dials the broker with exponential backoff and declares the exchange
func NewAMQPForwarder(url, exchange string, logger zerolog.Logger) (*AMQPForwarder, error) {
	f := &AMQPForwarder{url: url, exchange: exchange, logger: logger}
	if err := f.connect(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *AMQPForwarder) connect() error {
	f.logger.Info().Str("exchange", f.exchange).Msg("Trying to connect to rabbitmq...")

	var conn *amqp.Connection
	wait := time.Second
	for i := 0; i < dialAttempts; i++ {
		var err error
		conn, err = amqp.Dial(f.url)
		if err == nil {
			break
		}
		if i == dialAttempts-1 {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		time.Sleep(wait)
		wait *= 2
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		f.exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to declare exchange %s: %w", f.exchange, err)
	}

	f.conn = conn
	f.logger.Info().Str("exchange", f.exchange).Msg("Connected to rabbitmq")
	return nil
}

// Name implements Subscriber
func (f *AMQPForwarder) Name() string { return "amqp-forwarder" }

// RoutingKey returns the routing key used for an event
func RoutingKey(evt ContentCreated) string {
	return "content." + evt.Kind + ".created"
}

// Handle implements Subscriber
func (f *AMQPForwarder) Handle(ctx context.Context, evt ContentCreated) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conn == nil || f.conn.IsClosed() {
		if err := f.connect(); err != nil {
			return err
		}
	}

	ch, err := f.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(f.exchange, RoutingKey(evt), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.CreatedAt,
		Body:         body,
	})
}

// Close closes the broker connection
func (f *AMQPForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn == nil {
		return nil
	}
	return f.conn.Close()
}
