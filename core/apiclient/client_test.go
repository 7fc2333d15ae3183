package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/brokerage/core/apiclient"
	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/core/session"
)

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	claims := struct {
		UserID string `json:"id,omitempty"`
		gojwt.RegisteredClaims
	}{
		UserID:           userID,
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func newStore(t *testing.T, token string) *session.Store {
	t.Helper()
	store, err := session.New(cookie.NewMemoryJar(), session.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	if token != "" {
		require.NoError(t, store.SetTokens(context.Background(), session.Tokens{AccessToken: token}))
	}
	return store
}

// countingServer counts requests and delegates to h.
func countingServer(t *testing.T, h http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// flakyTransport fails the first n round trips with a network error naming
// the attempt.
type flakyTransport struct {
	mu    sync.Mutex
	fails int
	calls int
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.calls++
	attempt := f.calls
	f.mu.Unlock()
	if attempt <= f.fails {
		return nil, fmt.Errorf("connection reset by peer (attempt %d)", attempt)
	}
	return f.next.RoundTrip(r)
}

func (f *flakyTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// mockTokens implements apiclient.TokenStore.
type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) AccessToken(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

func (m *mockTokens) RemoveTokens(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestWithToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sends bearer token and decodes json", func(t *testing.T) {
		t.Parallel()
		token := mintToken(t, "u1")
		srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/property/add", r.URL.Path)
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "yes", r.Header.Get("X-Custom"))
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"title":"Flat"}`, string(body))
			writeJSON(w, http.StatusCreated, map[string]any{"results": map[string]any{"data": map[string]any{"id": "p1"}}})
		})

		client := apiclient.New(srv.URL, newStore(t, token))
		resp, err := client.WithToken(ctx, "/property/add", apiclient.Options{
			Method:  http.MethodPost,
			Headers: map[string]string{"X-Custom": "yes"},
			Body:    []byte(`{"title":"Flat"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.True(t, resp.IsJSON())

		var out struct {
			Results struct {
				Data struct {
					ID string `json:"id"`
				} `json:"data"`
			} `json:"results"`
		}
		require.NoError(t, resp.Decode(&out))
		assert.Equal(t, "p1", out.Results.Data.ID)
		assert.IsType(t, map[string]any{}, resp.Data)
	})

	t.Run("numeric id claim", func(t *testing.T) {
		t.Parallel()
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
			"id":  42,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		store := newStore(t, token)

		_, err = apiclient.New(srv.URL, store).WithToken(ctx, "/x", apiclient.Options{})
		require.NoError(t, err)
		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, token, store.AccessToken(ctx))
	})

	t.Run("text response", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("pong"))
		})

		resp, err := apiclient.New(srv.URL, newStore(t, mintToken(t, "u1"))).WithToken(ctx, "/ping", apiclient.Options{})
		require.NoError(t, err)
		assert.False(t, resp.IsJSON())
		assert.Equal(t, "pong", resp.Text)
		assert.Nil(t, resp.Data)
		assert.ErrorIs(t, resp.Decode(&struct{}{}), apiclient.ErrDecode)
	})

	t.Run("missing credential sends nothing", func(t *testing.T) {
		t.Parallel()
		srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})

		_, err := apiclient.New(srv.URL, newStore(t, "")).WithToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrMissingCredential)
		assert.Equal(t, "token not found for authorization", err.Error())
		assert.Equal(t, apiclient.KindMissingCredential, apiclient.KindOf(err))
		assert.False(t, apiclient.IsRetryable(err))
		assert.Zero(t, hits.Load())
	})

	t.Run("nil store requires fallback", func(t *testing.T) {
		t.Parallel()
		_, err := apiclient.New("http://127.0.0.1:1", nil).WithToken(ctx, "/x", apiclient.Options{})
		assert.ErrorIs(t, err, apiclient.ErrMissingCredential)
	})

	t.Run("fallback token", func(t *testing.T) {
		t.Parallel()
		fallback := mintToken(t, "server-side")
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+fallback, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		_, err := apiclient.New(srv.URL, newStore(t, "")).WithToken(ctx, "/x", apiclient.Options{FallbackToken: fallback})
		require.NoError(t, err)
	})

	t.Run("stored token wins over fallback", func(t *testing.T) {
		t.Parallel()
		stored := mintToken(t, "stored")
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+stored, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, nil)
		})

		_, err := apiclient.New(srv.URL, newStore(t, stored)).WithToken(ctx, "/x", apiclient.Options{FallbackToken: mintToken(t, "other")})
		require.NoError(t, err)
	})
}

func TestInvalidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	noSubject, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"undecodable": "not.a.jwt",
		"no subject":  noSubject,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})
			store := newStore(t, token)

			_, err := apiclient.New(srv.URL, store).WithToken(ctx, "/x", apiclient.Options{})
			require.ErrorIs(t, err, apiclient.ErrInvalidCredential)
			assert.Equal(t, "failed to decode access token", err.Error())
			assert.Empty(t, store.AccessToken(ctx))
			assert.Zero(t, hits.Load())
		})
	}

	t.Run("401 clears token", func(t *testing.T) {
		t.Parallel()
		srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("{broken"))
		})
		store := newStore(t, mintToken(t, "u1"))

		_, err := apiclient.New(srv.URL, store).WithToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.Equal(t, "token expired, please reauthenticate", err.Error())

		var apiErr *apiclient.Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Empty(t, store.AccessToken(ctx))
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("401 notifies subscribers", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		store := newStore(t, mintToken(t, "u1"))
		var resets atomic.Int32
		store.Subscribe(session.KeyAccess, func(n session.Notification) {
			if n.Conditions.Reset {
				resets.Add(1)
			}
		})

		_, err := apiclient.New(srv.URL, store).WithToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		assert.Equal(t, int32(1), resets.Load())
	})

	t.Run("remove failure does not mask error", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		tokens := &mockTokens{}
		tokens.On("AccessToken", mock.Anything).Return(mintToken(t, "u1"))
		tokens.On("RemoveTokens", mock.Anything).Return(errors.New("jar unavailable"))

		_, err := apiclient.New(srv.URL, tokens).WithToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrUnauthorized)
		tokens.AssertNumberOfCalls(t, "RemoveTokens", 1)
	})
}

func TestAPIErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"nested error", "application/json", `{"results":{"data":{"error":"Property not found"}},"message":"ignored"}`, "Property not found"},
		{"message", "application/json", `{"message":"Invalid page"}`, "Invalid page"},
		{"serialized body", "application/json", `{"code":7}`, `{"code":7}`},
		{"text body", "text/plain", "upstream exploded", "upstream exploded"},
		{"empty body", "text/plain", "", "API error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := apiclient.New(srv.URL, nil).WithoutToken(ctx, "/x", apiclient.Options{})
			require.ErrorIs(t, err, apiclient.ErrAPI)
			assert.Equal(t, tt.want, err.Error())
			assert.False(t, apiclient.IsRetryable(err))
			assert.Equal(t, int32(1), hits.Load())

			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, apiclient.KindHTTPStatus, apiErr.Kind)
		})
	}

	t.Run("malformed success body", func(t *testing.T) {
		t.Parallel()
		srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{nope"))
		})

		_, err := apiclient.New(srv.URL, nil).WithoutToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrDecode)
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestRetry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("recovers on third attempt", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		transport := &flakyTransport{fails: 2, next: http.DefaultTransport}

		client := apiclient.New(srv.URL, newStore(t, mintToken(t, "u1")),
			apiclient.WithHTTPClient(&http.Client{Transport: transport}))
		resp, err := client.WithToken(ctx, "/x", apiclient.Options{})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"ok": true}, resp.Data)
		assert.Equal(t, 3, transport.Calls())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		t.Parallel()
		transport := &flakyTransport{fails: 10, next: http.DefaultTransport}

		client := apiclient.New("http://api.invalid", nil,
			apiclient.WithHTTPClient(&http.Client{Transport: transport}))
		_, err := client.WithoutToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrNetwork)
		assert.True(t, apiclient.IsRetryable(err))
		assert.Equal(t, 3, transport.Calls())
		assert.ErrorContains(t, err, "(attempt 3)")
		assert.NotContains(t, err.Error(), "(attempt 1)")
		assert.NotContains(t, err.Error(), "(attempt 2)")
	})

	t.Run("custom retry count", func(t *testing.T) {
		t.Parallel()
		transport := &flakyTransport{fails: 10, next: http.DefaultTransport}

		client := apiclient.New("http://api.invalid", nil,
			apiclient.WithMaxRetries(0),
			apiclient.WithHTTPClient(&http.Client{Transport: transport}))
		_, err := client.WithoutToken(ctx, "/x", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrNetwork)
		assert.Equal(t, 1, transport.Calls())
	})

	t.Run("timeout is retried", func(t *testing.T) {
		t.Parallel()
		srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		})

		client := apiclient.New(srv.URL, nil, apiclient.WithTimeout(50*time.Millisecond), apiclient.WithMaxRetries(1))
		_, err := client.WithoutToken(ctx, "/slow", apiclient.Options{})
		require.ErrorIs(t, err, apiclient.ErrTimeout)
		assert.Equal(t, apiclient.KindTimeout, apiclient.KindOf(err))
		assert.Eventually(t, func() bool { return hits.Load() == 2 }, time.Second, 10*time.Millisecond)
	})

	t.Run("caller cancellation is not retried", func(t *testing.T) {
		t.Parallel()
		transport := &flakyTransport{fails: 0, next: http.DefaultTransport}
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		client := apiclient.New(srv.URL, nil, apiclient.WithHTTPClient(&http.Client{Transport: transport}))
		_, err := client.WithoutToken(cctx, "/x", apiclient.Options{})
		require.Error(t, err)
		assert.Equal(t, apiclient.KindCanceled, apiclient.KindOf(err))
		assert.ErrorIs(t, err, context.Canceled)
		assert.LessOrEqual(t, transport.Calls(), 1)
	})
}

func TestHeaders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no content type", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		})

		_, err := apiclient.New(srv.URL, nil).WithoutToken(ctx, "/x", apiclient.Options{NoContentType: true})
		require.NoError(t, err)
	})

	t.Run("caller content type kept", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "text/csv", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		})

		_, err := apiclient.New(srv.URL, nil).WithoutToken(ctx, "/x", apiclient.Options{
			Headers: map[string]string{"content-type": "text/csv"},
		})
		require.NoError(t, err)
	})

	t.Run("without token never sends authorization", func(t *testing.T) {
		t.Parallel()
		srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []any{})
		})

		client := apiclient.New(srv.URL, newStore(t, mintToken(t, "u1")))
		resp, err := client.WithoutToken(ctx, "/property/getAll", apiclient.Options{FallbackToken: mintToken(t, "x")})
		require.NoError(t, err)
		assert.Equal(t, []any{}, resp.Data)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := apiclient.NewFromConfig(apiclient.DefaultConfig(), nil)
	assert.ErrorIs(t, err, apiclient.ErrMissingBaseURL)

	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = "http://localhost:4000/api"
	client, err := apiclient.NewFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
}
