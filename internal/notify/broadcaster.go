package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/modemanager/internal/shared/types"
)

// DefaultSubscriberBuffer is the per-subscriber backlog before drops start
const DefaultSubscriberBuffer = 64

// Subscription is one live stream of notifications
type Subscription struct {
	ID id.SubscriberID
	C  <-chan types.Notification

	ch      chan types.Notification
	dropped atomic.Uint64
	owner   *Broadcaster
}

// Dropped returns how many notifications this subscriber missed
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.owner.remove(s.ID)
}

// Broadcaster fans notifications out to subscribers. A subscriber that does
// not keep up loses notifications instead of slowing delivery down.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[id.SubscriberID]*Subscription // Protected by mu
	buffer int
	closed bool
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:   make(map[id.SubscriberID]*Subscription),
		buffer: buffer,
	}
}

func (b *Broadcaster) Name() string { return "broadcast" }

// Deliver hands n to every subscriber without blocking
func (b *Broadcaster) Deliver(_ context.Context, n types.Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		select {
		case sub.ch <- n:
		default:
			sub.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe registers a new subscriber. After Close the returned
// subscription is already closed.
func (b *Broadcaster) Subscribe() *Subscription {
	ch := make(chan types.Notification, b.buffer)
	sub := &Subscription{
		ID:    id.NewSubscriberID(),
		C:     ch,
		ch:    ch,
		owner: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub
	}
	b.subs[sub.ID] = sub
	return sub
}

// Count returns the number of live subscribers
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for subID, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, subID)
	}
}

func (b *Broadcaster) remove(subID id.SubscriberID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[subID]; ok {
		close(sub.ch)
		delete(b.subs, subID)
	}
}
