package broadcast

import (
	"context"
	"sync"
)

// DefaultBufferSize is the per-subscriber buffer used when none is given.
const DefaultBufferSize = 100

// MemoryBroadcaster is an in-process broadcaster.
// A subscriber whose buffer is full misses the message instead of blocking
// the sender.
type MemoryBroadcaster[T any] struct {
	mu         sync.RWMutex
	subs       map[*memorySubscriber[T]]struct{}
	bufferSize int
	closed     bool
	done       chan struct{}
}

// NewMemoryBroadcaster creates a broadcaster with the given per-subscriber buffer size.
func NewMemoryBroadcaster[T any](bufferSize int) *MemoryBroadcaster[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &MemoryBroadcaster[T]{
		subs:       make(map[*memorySubscriber[T]]struct{}),
		bufferSize: bufferSize,
		done:       make(chan struct{}),
	}
}

// Subscribe registers a subscriber. Subscribing to a closed broadcaster
// returns a subscriber whose channel is already closed.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	s := &memorySubscriber[T]{
		b:    b,
		ch:   make(chan Message[T], b.bufferSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.ch)
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		case <-b.done:
		}
	}()

	return s
}

// Broadcast delivers msg to every subscriber with free buffer space.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBroadcasterClosed
	}

	for s := range b.subs {
		select {
		case s.ch <- msg:
		default:
		}
	}
	return nil
}

// Close closes all subscriber channels. Closing twice is a no-op.
func (b *MemoryBroadcaster[T]) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)

	for s := range b.subs {
		close(s.ch)
	}
	clear(b.subs)
	return nil
}

// Len returns the number of active subscribers.
func (b *MemoryBroadcaster[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *MemoryBroadcaster[T]) remove(s *memorySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}

type memorySubscriber[T any] struct {
	b    *MemoryBroadcaster[T]
	ch   chan Message[T]
	done chan struct{}
	once sync.Once
}

func (s *memorySubscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.ch
}

// Close ends the subscription. Closing twice returns ErrSubscriberClosed.
func (s *memorySubscriber[T]) Close() error {
	err := ErrSubscriberClosed
	s.once.Do(func() {
		close(s.done)
		s.b.remove(s)
		err = nil
	})
	return err
}
