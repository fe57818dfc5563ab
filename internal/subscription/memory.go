package subscription

import (
	"context"
	"sync"

	"livemarket-sync/utils"
)

// MemoryBus is an in-process Bus for tests and the backend simulator.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[string]map[string]*memorySub // channel -> subscriber id -> sub
}

type memorySub struct {
	bus       *MemoryBus
	channel   string
	id        string
	onMessage MessageHandler
	onClosed  ClosedHandler

	mu     sync.Mutex
	closed bool
}

// NewMemoryBus creates an empty MemoryBus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string]map[string]*memorySub)}
}

// Subscribe registers a handler for a channel.
func (b *MemoryBus) Subscribe(ctx context.Context, channel string, onMessage MessageHandler, onClosed ClosedHandler) (Subscription, error) {
	sub := &memorySub{
		bus:       b,
		channel:   channel,
		id:        utils.GenerateID(),
		onMessage: onMessage,
		onClosed:  onClosed,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[string]*memorySub)
	}
	b.subs[channel][sub.id] = sub
	return sub, nil
}

// Publish delivers a payload to every subscriber of the channel.
func (b *MemoryBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	targets := make([]*memorySub, 0, len(b.subs[channel]))
	for _, sub := range b.subs[channel] {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		sub.deliver(payload)
	}
	return nil
}

// Drop simulates a transport failure: every subscriber of the channel is
// detached and told the channel went down.
func (b *MemoryBus) Drop(channel string, err error) {
	b.mu.Lock()
	targets := b.subs[channel]
	delete(b.subs, channel)
	b.mu.Unlock()

	for _, sub := range targets {
		sub.mu.Lock()
		closed := sub.closed
		sub.closed = true
		sub.mu.Unlock()
		if !closed && sub.onClosed != nil {
			sub.onClosed(err)
		}
	}
}

// SubscriberCount reports how many subscriptions a channel has. Test helper.
func (b *MemoryBus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}

func (s *memorySub) deliver(payload []byte) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if !closed && s.onMessage != nil {
		s.onMessage(payload)
	}
}

// Close detaches the subscription without invoking the closed handler.
func (s *memorySub) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if subs := s.bus.subs[s.channel]; subs != nil {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(s.bus.subs, s.channel)
		}
	}
	return nil
}
