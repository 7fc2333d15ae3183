package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/core/session"
	"github.com/dmitrymomot/brokerage/pkg/broadcast"
)

// recorder collects notifications delivered to a subscriber.
type recorder struct {
	mu    sync.Mutex
	items []session.Notification
}

func (r *recorder) add(n session.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) all() []session.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Notification, len(r.items))
	copy(out, r.items)
	return out
}

func (r *recorder) len() int {
	return len(r.all())
}

// mockJar implements cookie.Jar for failure injection.
type mockJar struct {
	mock.Mock
}

func (m *mockJar) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *mockJar) Set(ctx context.Context, name, value string, opts ...cookie.Option) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

func (m *mockJar) Delete(ctx context.Context, name string, opts ...cookie.Option) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func newLocalStore(t *testing.T, jar cookie.Jar, opts ...session.Option) *session.Store {
	t.Helper()
	store, err := session.New(jar, session.DefaultConfig(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires jar", func(t *testing.T) {
		t.Parallel()
		_, err := session.New(nil, session.DefaultConfig())
		assert.ErrorIs(t, err, session.ErrNilJar)
	})

	t.Run("local namespace", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		assert.Equal(t, "lisa_access", store.CookieKey(session.KeyAccess))
	})

	t.Run("explicit namespace wins", func(t *testing.T) {
		t.Parallel()
		store, err := session.New(cookie.NewMemoryJar(), session.Config{
			Hostname:  "www.example.com",
			CookieKey: "myapp",
		})
		require.NoError(t, err)
		defer store.Close()
		assert.Equal(t, "myapp_access", store.CookieKey(session.KeyAccess))
	})

	t.Run("deployed host derives namespace and wildcard domain", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		jar := cookie.NewMemoryJar()
		store, err := session.New(jar, session.Config{Hostname: "www.example.com"})
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, "www_example_access", store.CookieKey(session.KeyAccess))

		require.NoError(t, store.UpdateAccessToken(ctx, "tok"))
		entry, ok := jar.Lookup("www_example_access")
		require.True(t, ok)
		assert.Equal(t, ".example.com", entry.Options.Domain)
		assert.Equal(t, "/", entry.Options.Path)
		assert.Equal(t, cookie.DayInSeconds, entry.Options.MaxAge)
	})

	t.Run("local cookies have no domain", func(t *testing.T) {
		t.Parallel()
		jar := cookie.NewMemoryJar()
		store := newLocalStore(t, jar)

		require.NoError(t, store.UpdateAccessToken(context.Background(), "tok"))
		entry, ok := jar.Lookup("lisa_access")
		require.True(t, ok)
		assert.Empty(t, entry.Options.Domain)
		assert.Equal(t, cookie.DayInSeconds, entry.Options.MaxAge)
	})

	t.Run("extra cookie options", func(t *testing.T) {
		t.Parallel()
		jar := cookie.NewMemoryJar()
		store := newLocalStore(t, jar, session.WithCookieOptions(cookie.WithSecure(true)))

		require.NoError(t, store.UpdateAccessToken(context.Background(), "tok"))
		entry, ok := jar.Lookup("lisa_access")
		require.True(t, ok)
		assert.True(t, entry.Options.Secure)
	})
}

func TestTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		token := "eyJhbGciOiJIUzI1NiJ9.eyJpZCI6IjEifQ.sig+/=%20"

		assert.Empty(t, store.AccessToken(ctx))
		require.NoError(t, store.SetTokens(ctx, session.Tokens{AccessToken: token}))
		assert.Equal(t, token, store.AccessToken(ctx))
		assert.Equal(t, session.Tokens{AccessToken: token}, store.Tokens(ctx))
	})

	t.Run("empty update keeps previous token", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		rec := &recorder{}
		store.Subscribe(session.KeyAccess, rec.add)

		require.NoError(t, store.SetTokens(ctx, session.Tokens{AccessToken: "A"}))
		require.NoError(t, store.SetTokens(ctx, session.Tokens{}))

		assert.Equal(t, "A", store.AccessToken(ctx))
		assert.Equal(t, 1, rec.len())
	})

	t.Run("remove clears token", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())

		require.NoError(t, store.UpdateAccessToken(ctx, "A"))
		require.NoError(t, store.RemoveTokens(ctx))
		assert.Empty(t, store.AccessToken(ctx))
	})

	t.Run("set failure", func(t *testing.T) {
		t.Parallel()
		jar := &mockJar{}
		jar.On("Get", mock.Anything, "lisa_access").Return("", cookie.ErrCookieNotFound)
		jar.On("Set", mock.Anything, "lisa_access", "A").Return(errors.New("disk full"))
		store := newLocalStore(t, jar)
		rec := &recorder{}
		store.Subscribe(session.KeyAccess, rec.add)

		err := store.UpdateAccessToken(ctx, "A")
		assert.ErrorIs(t, err, session.ErrSetCookie)
		assert.Zero(t, rec.len())
		jar.AssertExpectations(t)
	})
}

func TestNotifications(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fresh then updated then unchanged", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		rec := &recorder{}
		store.Subscribe(session.KeyAccess, rec.add)

		require.NoError(t, store.UpdateAccessToken(ctx, "first"))
		require.NoError(t, store.UpdateAccessToken(ctx, "second"))
		require.NoError(t, store.UpdateAccessToken(ctx, "second"))

		got := rec.all()
		require.Len(t, got, 2)

		assert.Equal(t, "lisa_access", got[0].Key)
		assert.Equal(t, "first", got[0].Value)
		assert.Equal(t, session.Conditions{Fresh: true}, got[0].Conditions)
		assert.Equal(t, session.OriginLocal, got[0].Origin)

		assert.Equal(t, "second", got[1].Value)
		assert.Equal(t, session.Conditions{Updated: true}, got[1].Conditions)
	})

	t.Run("remove always notifies reset", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		rec := &recorder{}
		store.Subscribe(session.KeyAccess, rec.add)

		require.NoError(t, store.RemoveTokens(ctx))
		require.NoError(t, store.RemoveTokens(ctx))

		got := rec.all()
		require.Len(t, got, 2)
		for _, n := range got {
			assert.Empty(t, n.Value)
			assert.Equal(t, session.Conditions{Reset: true}, n.Conditions)
		}
	})

	t.Run("remove notifies even when delete fails", func(t *testing.T) {
		t.Parallel()
		jar := &mockJar{}
		jar.On("Delete", mock.Anything, "lisa_access").Return(errors.New("io error"))
		store := newLocalStore(t, jar)
		rec := &recorder{}
		store.Subscribe(session.KeyAccess, rec.add)

		err := store.RemoveTokens(ctx)
		assert.ErrorIs(t, err, session.ErrDeleteCookie)
		require.Equal(t, 1, rec.len())
		assert.True(t, rec.all()[0].Conditions.Reset)
	})

	t.Run("unsubscribe removes only that callback", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		first, second := &recorder{}, &recorder{}

		unsubscribe := store.Subscribe(session.KeyAccess, first.add)
		store.Subscribe(session.KeyAccess, second.add)

		unsubscribe()
		unsubscribe()

		require.NoError(t, store.UpdateAccessToken(ctx, "tok"))
		assert.Zero(t, first.len())
		assert.Equal(t, 1, second.len())
	})

	t.Run("subscribers run in registration order", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		var order []int
		for i := range 3 {
			store.Subscribe(session.KeyAccess, func(session.Notification) { order = append(order, i) })
		}

		require.NoError(t, store.UpdateAccessToken(ctx, "tok"))
		assert.Equal(t, []int{0, 1, 2}, order)
	})

	t.Run("other keys are not notified", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		rec := &recorder{}
		store.Subscribe("refresh", rec.add)

		require.NoError(t, store.UpdateAccessToken(ctx, "tok"))
		assert.Zero(t, rec.len())
	})

	t.Run("unsubscribe from inside callback", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		calls := 0
		var unsubscribe func()
		unsubscribe = store.Subscribe(session.KeyAccess, func(session.Notification) {
			calls++
			unsubscribe()
		})

		require.NoError(t, store.UpdateAccessToken(ctx, "a"))
		require.NoError(t, store.UpdateAccessToken(ctx, "b"))
		assert.Equal(t, 1, calls)
	})
}

func TestCrossContext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bc := broadcast.NewMemoryBroadcaster[session.Envelope](16)
	t.Cleanup(func() { _ = bc.Close() })

	spy := bc.Subscribe(ctx)
	t.Cleanup(func() { _ = spy.Close() })

	jar := cookie.NewMemoryJar()
	tabA := newLocalStore(t, jar, session.WithBroadcaster(bc))
	tabB := newLocalStore(t, jar, session.WithBroadcaster(bc))

	recA, recB := &recorder{}, &recorder{}
	tabA.Subscribe(session.KeyAccess, recA.add)
	tabB.Subscribe(session.KeyAccess, recB.add)

	require.NoError(t, tabA.UpdateAccessToken(ctx, "tok"))

	require.Eventually(t, func() bool { return recB.len() == 1 }, time.Second, 5*time.Millisecond)
	remote := recB.all()[0]
	assert.Equal(t, session.OriginRemote, remote.Origin)
	assert.Equal(t, "tok", remote.Value)
	assert.Equal(t, session.Conditions{Fresh: true}, remote.Conditions)
	assert.Equal(t, "tok", tabB.AccessToken(ctx))

	// exactly one message on the channel: no echo from tabB, no self delivery on tabA
	select {
	case msg := <-spy.Receive(ctx):
		assert.Equal(t, "lisa_access", msg.Data.CookieKey)
		assert.NotEmpty(t, msg.Data.Source)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast")
	}
	select {
	case msg := <-spy.Receive(ctx):
		t.Fatalf("unexpected extra broadcast: %+v", msg.Data)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Equal(t, 1, recA.len())
	assert.Equal(t, session.OriginLocal, recA.all()[0].Origin)
}

func TestClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bc := broadcast.NewMemoryBroadcaster[session.Envelope](16)
	t.Cleanup(func() { _ = bc.Close() })

	sender, err := session.New(cookie.NewMemoryJar(), session.DefaultConfig(), session.WithBroadcaster(bc))
	require.NoError(t, err)
	defer sender.Close()

	receiver, err := session.New(cookie.NewMemoryJar(), session.DefaultConfig(), session.WithBroadcaster(bc))
	require.NoError(t, err)
	rec := &recorder{}
	receiver.Subscribe(session.KeyAccess, rec.add)

	require.NoError(t, receiver.Close())
	assert.ErrorIs(t, receiver.Close(), session.ErrClosed)

	require.NoError(t, sender.UpdateAccessToken(ctx, "tok"))
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, rec.len())

	spy := bc.Subscribe(ctx)
	t.Cleanup(func() { _ = spy.Close() })

	// local changes still reach subscribers of a closed store but are not published
	require.NoError(t, receiver.UpdateAccessToken(ctx, "local"))
	require.NoError(t, receiver.RemoveTokens(ctx))
	assert.Equal(t, 2, rec.len())
	select {
	case msg := <-spy.Receive(ctx):
		t.Fatalf("closed store published: %+v", msg.Data)
	case <-time.After(100 * time.Millisecond):
	}
}

func signedToken(t *testing.T, id any) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"id":  id,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return token
}

func TestScope(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("token scope", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "u1", session.TokenScope(signedToken(t, "u1")))
		assert.Equal(t, "42", session.TokenScope(signedToken(t, 42)))
		assert.Empty(t, session.TokenScope("not-a-jwt"))
		assert.Empty(t, session.TokenScope(""))
	})

	t.Run("header scope", func(t *testing.T) {
		t.Parallel()
		store := newLocalStore(t, cookie.NewMemoryJar())
		assert.Equal(t, "u1", store.HeaderScope("theme=dark; lisa_access="+signedToken(t, "u1")))
		assert.Empty(t, store.HeaderScope("theme=dark"))
		assert.Empty(t, store.HeaderScope("other_access="+signedToken(t, "u1")))
	})

	t.Run("stores only hear their own scope", func(t *testing.T) {
		t.Parallel()
		bc := broadcast.NewMemoryBroadcaster[session.Envelope](16)
		t.Cleanup(func() { _ = bc.Close() })

		alice := newLocalStore(t, cookie.NewMemoryJar(), session.WithBroadcaster(bc), session.WithScope("alice"))
		aliceTab := newLocalStore(t, cookie.NewMemoryJar(), session.WithBroadcaster(bc), session.WithScope("alice"))
		bob := newLocalStore(t, cookie.NewMemoryJar(), session.WithBroadcaster(bc), session.WithScope("bob"))
		server := newLocalStore(t, cookie.NewMemoryJar(), session.WithBroadcaster(bc))
		assert.Equal(t, "alice", alice.Scope())

		recTab, recBob, recServer := &recorder{}, &recorder{}, &recorder{}
		aliceTab.Subscribe(session.KeyAccess, recTab.add)
		bob.Subscribe(session.KeyAccess, recBob.add)
		server.Subscribe(session.KeyAccess, recServer.add)

		require.NoError(t, alice.RemoveTokens(ctx))

		require.Eventually(t, func() bool { return recTab.len() == 1 }, time.Second, 5*time.Millisecond)
		assert.True(t, recTab.all()[0].Conditions.Reset)
		time.Sleep(50 * time.Millisecond)
		assert.Zero(t, recBob.len())
		assert.Zero(t, recServer.len())
	})

	t.Run("publisher never subscribes", func(t *testing.T) {
		t.Parallel()
		bc := broadcast.NewMemoryBroadcaster[session.Envelope](16)
		t.Cleanup(func() { _ = bc.Close() })

		spy := bc.Subscribe(ctx)
		t.Cleanup(func() { _ = spy.Close() })

		store := newLocalStore(t, cookie.NewMemoryJar(), session.WithPublisher(bc), session.WithScope("alice"))
		assert.Equal(t, 1, bc.Len())

		require.NoError(t, store.UpdateAccessToken(ctx, "tok"))
		select {
		case msg := <-spy.Receive(ctx):
			assert.Equal(t, "alice", msg.Data.Scope)
			assert.Equal(t, "tok", msg.Data.Value)
		case <-time.After(time.Second):
			t.Fatal("expected broadcast")
		}
		require.NoError(t, store.Close())
	})
}

func TestRelayConfig(t *testing.T) {
	t.Parallel()

	store := newLocalStore(t, cookie.NewMemoryJar())
	aliceToken := signedToken(t, "alice")
	cfg := store.RelayConfig("alice")

	t.Run("outbound", func(t *testing.T) {
		t.Parallel()
		env, ok := cfg.Outbound(session.Envelope{Source: "s", Scope: "alice", CookieKey: "lisa_access", Value: aliceToken})
		require.True(t, ok)
		assert.Empty(t, env.Value)
		assert.Equal(t, "alice", env.Scope)

		_, ok = cfg.Outbound(session.Envelope{Scope: "bob", CookieKey: "lisa_access", Value: "bob-token"})
		assert.False(t, ok)
		_, ok = cfg.Outbound(session.Envelope{CookieKey: "lisa_access", Value: "server-token"})
		assert.False(t, ok)
	})

	t.Run("inbound", func(t *testing.T) {
		t.Parallel()
		reset := session.Envelope{CookieKey: "lisa_access", Conditions: session.Conditions{Reset: true}}

		env, ok := cfg.Inbound(reset)
		require.True(t, ok)
		assert.Equal(t, "alice", env.Scope)
		assert.NotEmpty(t, env.Source)

		env, ok = cfg.Inbound(session.Envelope{CookieKey: "lisa_access", Value: aliceToken})
		require.True(t, ok)
		assert.Equal(t, aliceToken, env.Value)

		for name, forged := range map[string]session.Envelope{
			"foreign scope":    {Scope: "bob", CookieKey: "lisa_access", Conditions: session.Conditions{Reset: true}},
			"foreign cookie":   {CookieKey: "other_access", Conditions: session.Conditions{Reset: true}},
			"foreign token":    {CookieKey: "lisa_access", Value: signedToken(t, "bob")},
			"token without id": {CookieKey: "lisa_access", Value: "opaque"},
		} {
			_, ok := cfg.Inbound(forged)
			assert.False(t, ok, name)
		}
	})

	t.Run("own messages are not echoed", func(t *testing.T) {
		t.Parallel()
		env, ok := cfg.Inbound(session.Envelope{CookieKey: "lisa_access", Conditions: session.Conditions{Reset: true}})
		require.True(t, ok)
		_, ok = cfg.Outbound(env)
		assert.False(t, ok)

		_, ok = store.RelayConfig("alice").Outbound(env)
		assert.True(t, ok)
	})

	t.Run("no scope relays nothing", func(t *testing.T) {
		t.Parallel()
		none := store.RelayConfig("")
		_, ok := none.Outbound(session.Envelope{CookieKey: "lisa_access"})
		assert.False(t, ok)
		_, ok = none.Inbound(session.Envelope{CookieKey: "lisa_access"})
		assert.False(t, ok)
	})
}

func TestServerCookie(t *testing.T) {
	t.Parallel()
	store := newLocalStore(t, cookie.NewMemoryJar())
	assert.Equal(t, "XYZ", store.ServerCookie("myapp_access", "foo=1; myapp_access=XYZ; bar=2"))
	assert.Empty(t, store.ServerCookie("myapp_access", "foo=1"))
}

func TestJWTExpirationDays(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := newLocalStore(t, cookie.NewMemoryJar(), session.WithClock(func() time.Time { return now }))

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(now.Add(30 * 24 * time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	days, err := store.JWTExpirationDays(token)
	require.NoError(t, err)
	assert.Equal(t, 30, days)
}
