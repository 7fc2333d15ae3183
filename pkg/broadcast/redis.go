package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Option configures the Redis and WebSocket backends.
type Option func(*options)

type options struct {
	bufferSize int
	logger     *slog.Logger
}

// WithBufferSize sets the per-subscriber buffer size.
func WithBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithLogger sets the logger used for dropped and undecodable messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		bufferSize: DefaultBufferSize,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RedisBroadcaster shares messages between processes over a Redis pub/sub
// channel. Payloads are JSON encoded.
type RedisBroadcaster[T any] struct {
	rdb     redis.UniversalClient
	channel string
	opts    options

	mu     sync.Mutex
	subs   map[*redisSubscriber[T]]struct{}
	closed bool
}

// NewRedisBroadcaster creates a broadcaster publishing to the given channel.
func NewRedisBroadcaster[T any](rdb redis.UniversalClient, channel string, opts ...Option) *RedisBroadcaster[T] {
	return &RedisBroadcaster[T]{
		rdb:     rdb,
		channel: channel,
		opts:    newOptions(opts),
		subs:    make(map[*redisSubscriber[T]]struct{}),
	}
}

// Subscribe opens a pub/sub connection and waits for Redis to confirm the
// subscription, so messages published after Subscribe returns are delivered.
func (b *RedisBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	s := &redisSubscriber[T]{
		b:    b,
		out:  make(chan Message[T], b.opts.bufferSize),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(s.out)
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	s.ps = b.rdb.Subscribe(ctx, b.channel)
	if _, err := s.ps.Receive(ctx); err != nil {
		b.opts.logger.ErrorContext(ctx, "redis subscribe failed",
			slog.String("channel", b.channel),
			slog.String("error", err.Error()))
		b.forget(s)
		_ = s.ps.Close()
		close(s.out)
		return s
	}

	go s.run(ctx)
	return s
}

// Broadcast publishes msg to the channel.
func (b *RedisBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBroadcasterClosed
	}

	payload, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("encode broadcast message: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Close ends every subscription. The Redis client itself is left open.
func (b *RedisBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSubscriber[T], 0, len(b.subs))
	for s := range b.subs {
		subs = append(subs, s)
	}
	b.mu.Unlock()

	for _, s := range subs {
		_ = s.Close()
	}
	return nil
}

func (b *RedisBroadcaster[T]) forget(s *redisSubscriber[T]) {
	b.mu.Lock()
	delete(b.subs, s)
	b.mu.Unlock()
}

type redisSubscriber[T any] struct {
	b    *RedisBroadcaster[T]
	ps   *redis.PubSub
	out  chan Message[T]
	done chan struct{}
	once sync.Once
}

func (s *redisSubscriber[T]) run(ctx context.Context) {
	defer func() {
		s.b.forget(s)
		_ = s.ps.Close()
		close(s.out)
	}()

	in := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case m, ok := <-in:
			if !ok {
				return
			}

			var data T
			if err := json.Unmarshal([]byte(m.Payload), &data); err != nil {
				s.b.opts.logger.WarnContext(ctx, "dropping undecodable broadcast message",
					slog.String("channel", m.Channel),
					slog.String("error", err.Error()))
				continue
			}

			select {
			case s.out <- Message[T]{Data: data}:
			default:
				s.b.opts.logger.WarnContext(ctx, "subscriber buffer full, message dropped",
					slog.String("channel", m.Channel))
			}
		}
	}
}

func (s *redisSubscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.out
}

func (s *redisSubscriber[T]) Close() error {
	err := ErrSubscriberClosed
	s.once.Do(func() {
		close(s.done)
		err = nil
	})
	return err
}
