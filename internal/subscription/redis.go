package subscription

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"livemarket-sync/internal/syncerrors"
	"livemarket-sync/utils"
)

// RedisBus implements Bus over Redis Pub/Sub.
type RedisBus struct {
	client *redis.Client
}

// NewRedisBus wraps an existing Redis client.
func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

type redisSub struct {
	pubsub *redis.PubSub
	closed atomic.Bool
}

// Subscribe opens a Redis subscription and pumps payloads to the handler
// from a background goroutine until the channel drops or Close is called.
func (b *RedisBus) Subscribe(ctx context.Context, channel string, onMessage MessageHandler, onClosed ClosedHandler) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channel)

	// Confirm the subscription before reporting success.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", channel, err)
	}

	sub := &redisSub{pubsub: pubsub}
	go func() {
		for msg := range pubsub.Channel() {
			utils.Debug("subscription: redis message", map[string]any{"channel": channel})
			if onMessage != nil {
				onMessage([]byte(msg.Payload))
			}
		}
		if !sub.closed.Load() && onClosed != nil {
			onClosed(syncerrors.ErrChannelDisconnected)
		}
	}()
	return sub, nil
}

// Publish sends a payload to a channel.
func (b *RedisBus) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", channel, err)
	}
	return nil
}

func (s *redisSub) Close() error {
	s.closed.Store(true)
	return s.pubsub.Close()
}
