package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/pkg/broadcast"
)

// Option configures a Store.
type Option func(*Store)

// WithBroadcaster connects the store to a channel shared with other stores.
// The broadcaster is owned by the caller and is not closed by Store.Close.
func WithBroadcaster(b broadcast.Broadcaster[Envelope]) Option {
	return func(s *Store) {
		s.bc = b
	}
}

// WithPublisher connects the store to b for publishing only. The store never
// subscribes, so it suits short-lived stores created per request.
func WithPublisher(b broadcast.Broadcaster[Envelope]) Option {
	return func(s *Store) {
		s.bc = b
		s.publishOnly = true
	}
}

// WithScope binds the store to one session. Published envelopes carry scope
// and received envelopes of any other scope are ignored. See TokenScope.
func WithScope(scope string) Option {
	return func(s *Store) {
		s.scope = scope
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for token expiration math.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCookieOptions appends cookie attributes, such as Secure or SameSite,
// to every cookie write and delete.
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(s *Store) {
		s.extra = append(s.extra, opts...)
	}
}
