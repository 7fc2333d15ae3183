package cookie

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// RequestJar is a server-side jar bound to a single HTTP exchange.
// Reads come from the incoming request, writes go out as Set-Cookie headers.
// Values written during the exchange are visible to later reads on the same jar.
type RequestJar struct {
	w       http.ResponseWriter
	r       *http.Request
	maxSize int

	mu      sync.Mutex
	pending map[string]*string // nil marks a deleted cookie
}

// RequestJarOption configures a RequestJar.
type RequestJarOption func(*RequestJar)

// WithMaxSize sets the maximum serialized cookie size.
func WithMaxSize(size int) RequestJarOption {
	return func(j *RequestJar) {
		if size > 0 {
			j.maxSize = size
		}
	}
}

// NewRequestJar creates a jar over the given response writer and request.
func NewRequestJar(w http.ResponseWriter, r *http.Request, opts ...RequestJarOption) *RequestJar {
	j := &RequestJar{
		w:       w,
		r:       r,
		maxSize: MaxCookieSize,
		pending: make(map[string]*string),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Get retrieves a cookie value.
func (j *RequestJar) Get(_ context.Context, name string) (string, error) {
	j.mu.Lock()
	value, written := j.pending[name]
	j.mu.Unlock()

	if written {
		if value == nil {
			return "", ErrCookieNotFound
		}
		return *value, nil
	}

	c, err := j.r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Set writes a Set-Cookie header for the cookie.
func (j *RequestJar) Set(_ context.Context, name, value string, opts ...Option) error {
	if name == "" {
		return ErrEmptyName
	}

	c := toHTTPCookie(name, value, applyOptions(Options{}, opts))

	// Check size limit
	header := c.String()
	if len(header) > j.maxSize {
		return ErrCookieTooLarge{
			Name: name,
			Size: len(header),
			Max:  j.maxSize,
		}
	}

	http.SetCookie(j.w, c)

	j.mu.Lock()
	if c.MaxAge < 0 {
		j.pending[name] = nil
	} else {
		j.pending[name] = &value
	}
	j.mu.Unlock()
	return nil
}

// Delete writes an expired Set-Cookie header. Domain and path must match the ones used on Set.
func (j *RequestJar) Delete(_ context.Context, name string, opts ...Option) error {
	if name == "" {
		return ErrEmptyName
	}

	c := toHTTPCookie(name, "", applyOptions(Options{}, opts))
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(j.w, c)

	j.mu.Lock()
	j.pending[name] = nil
	j.mu.Unlock()
	return nil
}
