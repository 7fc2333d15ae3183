package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/core/logger"
	"github.com/dmitrymomot/brokerage/pkg/broadcast"
	"github.com/dmitrymomot/brokerage/pkg/jwt"
)

// Store owns the access token cookie of one browsing context and notifies
// subscribers, local and remote, whenever it changes.
type Store struct {
	jar    cookie.Jar
	id     string
	prefix string
	local  bool
	domain string
	extra  []cookie.Option

	scope       string
	bc          broadcast.Broadcaster[Envelope]
	publishOnly bool
	sub         broadcast.Subscriber[Envelope]
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	observers map[string][]*observer
	closed    bool
}

type observer struct {
	fn func(Notification)
}

// New creates a store over jar. When a broadcaster is configured with
// WithBroadcaster the store starts listening for changes published by other
// stores of the same scope right away.
func New(jar cookie.Jar, cfg Config, opts ...Option) (*Store, error) {
	if jar == nil {
		return nil, ErrNilJar
	}

	s := &Store{
		jar:       jar,
		id:        uuid.NewString(),
		local:     cookie.IsLocalHost(cfg.Hostname),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		observers: make(map[string][]*observer),
	}
	for _, opt := range opts {
		opt(s)
	}

	switch {
	case cfg.CookieKey != "":
		s.prefix = cfg.CookieKey
	case s.local:
		s.prefix = LocalNamespace
	default:
		s.prefix = cookie.NamespaceForHost(cfg.Hostname)
	}
	if !s.local {
		s.domain = cookie.WildcardDomain(cfg.Hostname)
	}

	if s.bc != nil && !s.publishOnly {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.sub = s.bc.Subscribe(ctx)
		s.wg.Add(1)
		go s.receive(ctx)
	}

	s.logger.Debug("session store created",
		logger.Component("session"),
		logger.Key("prefix", s.prefix),
		logger.Key("local", s.local),
		logger.Key("domain", s.domain),
		logger.Key("publish_only", s.publishOnly),
	)
	return s, nil
}

// CookieKey returns the namespaced cookie name for a logical key.
func (s *Store) CookieKey(logical string) string {
	return s.prefix + "_" + logical
}

// Subscribe registers fn for changes of the logical key. The returned function
// removes exactly this registration and may be called any number of times.
func (s *Store) Subscribe(key string, fn func(Notification)) func() {
	name := s.CookieKey(key)
	o := &observer{fn: fn}

	s.mu.Lock()
	s.observers[name] = append(s.observers[name], o)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			list := s.observers[name]
			if i := slices.Index(list, o); i >= 0 {
				s.observers[name] = slices.Delete(list, i, i+1)
			}
			if len(s.observers[name]) == 0 {
				delete(s.observers, name)
			}
		})
	}
}

// AccessToken reads the token cookie. An empty string means no token.
func (s *Store) AccessToken(ctx context.Context) string {
	token, err := s.jar.Get(ctx, s.CookieKey(KeyAccess))
	if err != nil {
		if !errors.Is(err, cookie.ErrCookieNotFound) {
			s.logger.WarnContext(ctx, "failed to read token cookie",
				logger.Component("session"),
				logger.Error(err),
			)
		}
		return ""
	}
	return token
}

// UpdateAccessToken stores token with the standard one day expiry and
// notifies subscribers when the value changed. An empty token is ignored;
// use RemoveTokens to clear the session.
func (s *Store) UpdateAccessToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	name := s.CookieKey(KeyAccess)
	prev := s.AccessToken(ctx)
	if err := s.jar.Set(ctx, name, token, s.cookieOptions()...); err != nil {
		return fmt.Errorf("%w: %w", ErrSetCookie, err)
	}

	if prev != token {
		s.notify(ctx, Notification{
			Key:   name,
			Value: token,
			Conditions: Conditions{
				Fresh:   prev == "",
				Updated: prev != "",
			},
			Origin: OriginLocal,
		})
	}
	return nil
}

// SetTokens stores every non-empty token in t.
func (s *Store) SetTokens(ctx context.Context, t Tokens) error {
	return s.UpdateAccessToken(ctx, t.AccessToken)
}

// Tokens returns the current credentials.
func (s *Store) Tokens(ctx context.Context) Tokens {
	return Tokens{AccessToken: s.AccessToken(ctx)}
}

// RemoveTokens deletes the token cookie and always notifies subscribers with
// a reset, even when no token was stored. A delete failure is returned after
// subscribers have been notified.
func (s *Store) RemoveTokens(ctx context.Context) error {
	name := s.CookieKey(KeyAccess)

	var err error
	if derr := s.jar.Delete(ctx, name, s.cookieOptions()...); derr != nil {
		err = fmt.Errorf("%w: %w", ErrDeleteCookie, derr)
	}

	s.notify(ctx, Notification{
		Key:        name,
		Conditions: Conditions{Reset: true},
		Origin:     OriginLocal,
	})
	return err
}

// TokenScope returns the session scope for an access token: the subject of its
// id claim. Tokens without one have no scope.
//
// The claim is read without verifying the signature, so a scope separates
// sessions that play by the rules. It never grants access to a token: relays
// strip token values before they reach a browser.
func TokenScope(token string) string {
	return jwt.Subject(token)
}

// HeaderScope returns the scope of the access token carried by a raw Cookie
// request header, or "" when there is none.
func (s *Store) HeaderScope(header string) string {
	return TokenScope(cookie.FromHeader(s.CookieKey(KeyAccess), header))
}

// Scope returns the session scope the store was created with.
func (s *Store) Scope() string {
	return s.scope
}

// RelayConfig returns the filters for relaying the broadcast channel to one
// browser connection of the session scope.
//
// Outbound, only envelopes of scope reach the browser, with the token value
// removed and without echoes of the connection's own messages. Inbound, only
// access token envelopes for scope are accepted: a foreign scope, another
// cookie key or a token of another subject is dropped. Accepted envelopes are
// stamped with scope and a source unique to the connection.
func (s *Store) RelayConfig(scope string) broadcast.RelayConfig[Envelope] {
	source := uuid.NewString()
	key := s.CookieKey(KeyAccess)

	return broadcast.RelayConfig[Envelope]{
		Outbound: func(env Envelope) (Envelope, bool) {
			if scope == "" || env.Scope != scope || env.Source == source {
				return Envelope{}, false
			}
			env.Value = ""
			return env, true
		},
		Inbound: func(env Envelope) (Envelope, bool) {
			switch {
			case scope == "",
				env.CookieKey != key,
				env.Scope != "" && env.Scope != scope,
				env.Value != "" && TokenScope(env.Value) != scope:
				return Envelope{}, false
			}
			env.Scope = scope
			env.Source = source
			return env, true
		},
	}
}

// ServerCookie extracts one cookie value from a raw Cookie request header.
func (s *Store) ServerCookie(key, header string) string {
	return cookie.FromHeader(key, header)
}

// JWTExpirationDays returns the whole days until token expires.
// The cookie expiry does not depend on it.
func (s *Store) JWTExpirationDays(token string) (int, error) {
	return jwt.ExpirationDays(token, s.now())
}

// Close detaches the store from the broadcast channel: it stops listening
// and later changes are no longer published. Subscribers stay registered and
// still receive local changes.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		_ = s.sub.Close()
		s.wg.Wait()
	}
	return nil
}

func (s *Store) cookieOptions() []cookie.Option {
	opts := make([]cookie.Option, 0, len(s.extra)+3)
	opts = append(opts, s.extra...)
	opts = append(opts,
		cookie.WithPath("/"),
		cookie.WithMaxAge(cookie.DayInSeconds),
	)
	if s.domain != "" {
		opts = append(opts, cookie.WithDomain(s.domain))
	}
	return opts
}

// notify delivers n to the subscribers of n.Key in registration order, then
// publishes local changes to the broadcast channel.
func (s *Store) notify(ctx context.Context, n Notification) {
	s.mu.Lock()
	list := slices.Clone(s.observers[n.Key])
	closed := s.closed
	s.mu.Unlock()

	for _, o := range list {
		o.fn(n)
	}

	switch n.Origin {
	case OriginLocal:
		if s.bc == nil || closed {
			return
		}
		env := Envelope{
			Source:     s.id,
			Scope:      s.scope,
			CookieKey:  n.Key,
			Value:      n.Value,
			Conditions: n.Conditions,
		}
		if err := s.bc.Broadcast(ctx, broadcast.Message[Envelope]{Data: env}); err != nil {
			s.logger.WarnContext(ctx, "failed to broadcast session change",
				logger.Component("session"),
				logger.Error(err),
			)
		}
	case OriginRemote:
		// received from the channel, never sent back
	}
}

func (s *Store) receive(ctx context.Context) {
	defer s.wg.Done()

	msgs := s.sub.Receive(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			env := msg.Data
			if env.Source == s.id || env.Scope != s.scope {
				continue
			}
			s.notify(ctx, Notification{
				Key:        env.CookieKey,
				Value:      env.Value,
				Conditions: env.Conditions,
				Origin:     OriginRemote,
			})
		}
	}
}
