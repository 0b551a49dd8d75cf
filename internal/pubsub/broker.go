package pubsub

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Broker fans events out to subscribers. Publishing never blocks: a
// subscriber whose channel is full misses the event, which is acceptable for
// state-change notifications because consumers read current state from the
// session itself, not from the event payload.
type Broker[T any] struct {
	mu   sync.RWMutex
	subs map[chan T]struct{}
	done chan struct{}
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subs: make(map[chan T]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe registers a subscriber whose channel is closed and removed when
// ctx is cancelled or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan T)
		close(ch)
		return ch
	default:
	}

	sub := make(chan T, subscriberBuffer)
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		select {
		case <-b.done:
			return
		default:
		}

		delete(b.subs, sub)
		close(sub)
	}()

	return sub
}

// Publish delivers the event to every subscriber that has room for it.
func (b *Broker[T]) Publish(event T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return
	default:
	}

	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			// Subscriber is slow; drop rather than block the publisher.
		}
	}
}

// Shutdown closes every subscriber channel and rejects future subscriptions.
func (b *Broker[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
		close(b.done)
	}

	for sub := range b.subs {
		delete(b.subs, sub)
		close(sub)
	}
}

// SubscriberCount reports the number of live subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
