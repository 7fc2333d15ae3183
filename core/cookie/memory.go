package cookie

import (
	"context"
	"sync"
	"time"
)

// Entry is a cookie held by a MemoryJar together with the attributes it was set with.
type Entry struct {
	Value     string
	Options   Options
	ExpiresAt time.Time // zero for session cookies
}

// expired reports whether the entry outlived its max-age at the given instant.
func (e Entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// MemoryJar is an in-process cookie jar, one per browsing context.
// Cookies are keyed by name only. Safe for concurrent use.
type MemoryJar struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// MemoryJarOption configures a MemoryJar.
type MemoryJarOption func(*MemoryJar)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) MemoryJarOption {
	return func(j *MemoryJar) {
		if now != nil {
			j.now = now
		}
	}
}

// NewMemoryJar creates an empty in-memory jar.
func NewMemoryJar(opts ...MemoryJarOption) *MemoryJar {
	j := &MemoryJar{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Get returns the cookie value or ErrCookieNotFound if it is absent or expired.
func (j *MemoryJar) Get(_ context.Context, name string) (string, error) {
	entry, ok := j.Lookup(name)
	if !ok {
		return "", ErrCookieNotFound
	}
	return entry.Value, nil
}

// Lookup returns the live entry for name, including the attributes it was stored with.
func (j *MemoryJar) Lookup(name string) (Entry, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	entry, ok := j.entries[name]
	if !ok || entry.expired(j.now()) {
		return Entry{}, false
	}
	return entry, true
}

// Set stores a cookie. A negative max-age removes it instead.
func (j *MemoryJar) Set(_ context.Context, name, value string, opts ...Option) error {
	if name == "" {
		return ErrEmptyName
	}

	options := applyOptions(Options{}, opts)

	j.mu.Lock()
	defer j.mu.Unlock()

	if options.MaxAge < 0 {
		delete(j.entries, name)
		return nil
	}

	entry := Entry{Value: value, Options: options}
	if options.MaxAge > 0 {
		entry.ExpiresAt = j.now().Add(time.Duration(options.MaxAge) * time.Second)
	}
	j.entries[name] = entry
	return nil
}

// Delete removes a cookie. Missing cookies are ignored.
func (j *MemoryJar) Delete(_ context.Context, name string, _ ...Option) error {
	if name == "" {
		return ErrEmptyName
	}

	j.mu.Lock()
	delete(j.entries, name)
	j.mu.Unlock()
	return nil
}

// Len returns the number of live cookies.
func (j *MemoryJar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	now := j.now()
	n := 0
	for _, e := range j.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}
