package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

// DefaultExchange is the fanout exchange restaurant events are mirrored to.
const DefaultExchange = "restaurant_events"

// AMQPMirror copies hub messages to a fanout exchange so other services
// (printers, dashboards) can follow restaurant events.
type AMQPMirror struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewAMQPMirror(url, exchange string) (*AMQPMirror, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"fanout", // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPMirror{conn: conn, channel: channel, exchange: exchange}, nil
}

func (m *AMQPMirror) Publish(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.channel.PublishWithContext(ctx,
		m.exchange, // exchange
		msg.Event,  // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Type:         msg.Event,
			Body:         body,
		},
	)
}

func (m *AMQPMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.channel.Close(); err != nil {
		m.conn.Close()
		return err
	}
	return m.conn.Close()
}
