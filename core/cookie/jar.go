package cookie

import "context"

const (
	// MaxCookieSize is the maximum size for a cookie (4KB).
	MaxCookieSize = 4096
	// DayInSeconds is the max-age of a cookie that lives for one day.
	DayInSeconds = 24 * 60 * 60
)

// Jar is the minimal cookie storage capability the session layer depends on.
// Browser-like, request-scoped and shared (Redis) implementations all satisfy it,
// so callers never reach for ambient cookie state.
type Jar interface {
	// Get returns the cookie value or ErrCookieNotFound when it is absent or expired.
	Get(ctx context.Context, name string) (string, error)
	// Set stores the cookie with the given attributes.
	Set(ctx context.Context, name, value string, opts ...Option) error
	// Delete removes the cookie. Deleting a missing cookie is not an error.
	Delete(ctx context.Context, name string, opts ...Option) error
}
