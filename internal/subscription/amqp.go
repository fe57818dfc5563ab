package subscription

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	amqp "github.com/rabbitmq/amqp091-go"

	"livemarket-sync/internal/syncerrors"
)

// AMQPBus implements Bus over RabbitMQ. Each push channel maps to a fanout
// exchange; every subscriber gets its own exclusive, auto-deleted queue.
type AMQPBus struct {
	conn *amqp.Connection

	mu  sync.Mutex
	pub *amqp.Channel // lazily opened publisher channel
}

// NewAMQPBus wraps an established AMQP connection.
func NewAMQPBus(conn *amqp.Connection) *AMQPBus {
	return &AMQPBus{conn: conn}
}

type amqpSub struct {
	ch     *amqp.Channel
	closed atomic.Bool
}

func declareExchange(ch *amqp.Channel, channel string) error {
	return ch.ExchangeDeclare(channel, "fanout", false, true, false, false, nil)
}

// Subscribe binds a fresh exclusive queue to the channel's fanout exchange
// and pumps deliveries to the handler.
func (b *AMQPBus) Subscribe(ctx context.Context, channel string, onMessage MessageHandler, onClosed ClosedHandler) (Subscription, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("amqp channel open: %w", err)
	}
	if err := declareExchange(ch, channel); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("amqp exchange declare %s: %w", channel, err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("amqp queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", channel, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("amqp queue bind %s: %w", channel, err)
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("amqp consume %s: %w", channel, err)
	}

	sub := &amqpSub{ch: ch}
	go func() {
		for d := range deliveries {
			if onMessage != nil {
				onMessage(d.Body)
			}
		}
		if !sub.closed.Load() && onClosed != nil {
			onClosed(syncerrors.ErrChannelDisconnected)
		}
	}()
	return sub, nil
}

// Publish sends a payload to every subscriber of a channel.
func (b *AMQPBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pub == nil {
		ch, err := b.conn.Channel()
		if err != nil {
			return fmt.Errorf("amqp publisher channel: %w", err)
		}
		b.pub = ch
	}
	if err := declareExchange(b.pub, channel); err != nil {
		return fmt.Errorf("amqp exchange declare %s: %w", channel, err)
	}

	err := b.pub.PublishWithContext(ctx, channel, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", channel, err)
	}
	return nil
}

func (s *amqpSub) Close() error {
	s.closed.Store(true)
	if err := s.ch.Close(); err != nil && err != amqp.ErrClosed {
		return err
	}
	return nil
}
