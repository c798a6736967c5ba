package events

import (
	"sync"
	"sync/atomic"

	"github.com/therealtombi/RumbleVideoDeleteManager/internal/models"
)

const defaultBufferSize = 256

// Bus is the channel between the orchestration core and the presentation
// layer. Core components only ever push immutable events; the consumer drains
// Events(). Publish never blocks the core: when the consumer falls behind and
// the buffer fills, events are dropped and counted.
type Bus struct {
	mu      sync.RWMutex
	ch      chan models.Event
	closed  bool
	dropped atomic.Int64
}

// NewBus creates an event bus with the default buffer size.
func NewBus() *Bus {
	return NewBusWithCapacity(defaultBufferSize)
}

// NewBusWithCapacity creates an event bus with an explicit buffer size.
func NewBusWithCapacity(capacity int) *Bus {
	if capacity <= 0 {
		capacity = defaultBufferSize
	}
	return &Bus{ch: make(chan models.Event, capacity)}
}

// Publish pushes an event without blocking. Returns false if the event was
// dropped because the buffer is full or the bus is closed.
func (b *Bus) Publish(event models.Event) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false
	}
	select {
	case b.ch <- event:
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Log is a convenience wrapper publishing a log-line event.
func (b *Bus) Log(message string) {
	b.Publish(models.LogEvent(message))
}

// Events returns the receive side for the single consumer. The channel is
// closed when the bus is closed.
func (b *Bus) Events() <-chan models.Event {
	return b.ch
}

// Dropped reports how many events were discarded due to a full buffer.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close shuts the bus down. Safe to call multiple times.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}
