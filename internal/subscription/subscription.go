// Package subscription manages the push channel a screen listens on.
package subscription

import (
	"context"
	"fmt"
	"sync"

	"livemarket-sync/utils"
)

// GlobalChannel carries events for the globally approved session.
const GlobalChannel = "auction.live"

// ChannelName returns the push channel for a session. Channel identity is a
// function of the session id only.
func ChannelName(sessionID string) string {
	if sessionID == "" {
		return GlobalChannel
	}
	return "session." + sessionID
}

// MessageHandler is invoked for every raw payload arriving on a channel.
type MessageHandler func(payload []byte)

// ClosedHandler is invoked once when the underlying channel drops for any
// reason other than a deliberate Close.
type ClosedHandler func(err error)

// Subscription is one open binding to a push channel.
type Subscription interface {
	Close() error
}

// Bus is the pub/sub transport behind subscriptions. Redis, AMQP and
// in-memory implementations are provided.
type Bus interface {
	Subscribe(ctx context.Context, channel string, onMessage MessageHandler, onClosed ClosedHandler) (Subscription, error)
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Lifecycle guarantees at most one open subscription per screen instance.
// Reopening for a different session closes the previous subscription first,
// so two simultaneous subscriptions can never leak from one screen.
type Lifecycle struct {
	bus Bus

	mu      sync.Mutex
	sub     Subscription
	channel string
}

// NewLifecycle creates a Lifecycle over the given bus.
func NewLifecycle(bus Bus) *Lifecycle {
	return &Lifecycle{bus: bus}
}

// Open subscribes to the session's channel, tearing down any previous
// subscription first.
func (l *Lifecycle) Open(ctx context.Context, sessionID string, onMessage MessageHandler, onClosed ClosedHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sub != nil {
		if err := l.sub.Close(); err != nil {
			utils.Warn("subscription: closing previous channel failed", map[string]any{
				"channel": l.channel,
				"error":   err.Error(),
			})
		}
		l.sub = nil
		l.channel = ""
	}

	channel := ChannelName(sessionID)
	sub, err := l.bus.Subscribe(ctx, channel, onMessage, onClosed)
	if err != nil {
		return fmt.Errorf("subscription: open channel %s: %w", channel, err)
	}

	l.sub = sub
	l.channel = channel
	utils.Info("subscription: channel opened", map[string]any{"channel": channel})
	return nil
}

// Channel returns the currently subscribed channel name, or "".
func (l *Lifecycle) Channel() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.channel
}

// Close releases the subscription. Safe to call repeatedly.
func (l *Lifecycle) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sub == nil {
		return nil
	}
	err := l.sub.Close()
	l.sub = nil
	l.channel = ""
	return err
}
