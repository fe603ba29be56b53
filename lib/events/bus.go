// Package events provides a small typed publish/subscribe bus.
//
// Publishing never blocks: every subscriber owns a buffered channel and an
// event is dropped for a subscriber whose buffer is full. This makes the bus
// suitable for fire-and-forget notifications (errors, logs, model state)
// emitted from the transporter's goroutine.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultBuffer is used when Subscribe is called with a buffer < 1
const DefaultBuffer = 64

// Bus fans out events of type T to all current subscribers
type Bus[T any] struct {
	subs    *xsync.MapOf[uint64, chan T]
	nextID  atomic.Uint64
	dropped atomic.Uint64
	closed  atomic.Bool
	mu      sync.RWMutex // serializes Publish against channel close
}

// NewBus creates an empty bus
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{
		subs: xsync.NewMapOf[uint64, chan T](),
	}
}

// Subscribe registers a new subscriber. The returned function unsubscribes and
// closes the channel; it is safe to call more than once.
func (b *Bus[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	ch := make(chan T, buffer)

	b.mu.RLock()
	if b.closed.Load() {
		b.mu.RUnlock()
		close(ch)
		return ch, func() {}
	}
	id := b.nextID.Add(1)
	b.subs.Store(id, ch)
	b.mu.RUnlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs.LoadAndDelete(id); ok {
				close(c)
			}
		})
	}
}

// Publish delivers ev to every subscriber without blocking
func (b *Bus[T]) Publish(ev T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	b.subs.Range(func(_ uint64, ch chan T) bool {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
		}
		return true
	})
}

// Subscribers returns the number of active subscribers
func (b *Bus[T]) Subscribers() int {
	return b.subs.Size()
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Bus[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.subs.Range(func(id uint64, ch chan T) bool {
		close(ch)
		b.subs.Delete(id)
		return true
	})
}
