package broadcast

import "context"

// Message wraps a broadcast payload.
type Message[T any] struct {
	Data T
}

// Broadcaster sends messages to every active subscriber.
type Broadcaster[T any] interface {
	// Subscribe registers a new subscriber. The subscription ends when ctx is
	// cancelled or the subscriber is closed.
	Subscribe(ctx context.Context) Subscriber[T]
	// Broadcast delivers msg to all subscribers without waiting for slow ones.
	Broadcast(ctx context.Context, msg Message[T]) error
	// Close stops the broadcaster and closes every subscriber channel.
	Close() error
}

// Subscriber receives broadcast messages.
type Subscriber[T any] interface {
	// Receive returns the message channel. It is closed when the
	// subscription ends.
	Receive(ctx context.Context) <-chan Message[T]
	Close() error
}
