package session

import "errors"

var (
	// ErrNilJar is returned by New when no cookie jar is given.
	ErrNilJar = errors.New("session: cookie jar is required")
	// ErrSetCookie is returned when the token cookie cannot be written.
	ErrSetCookie = errors.New("session: failed to set token cookie")
	// ErrDeleteCookie is returned when the token cookie cannot be removed.
	ErrDeleteCookie = errors.New("session: failed to delete token cookie")
	// ErrClosed is returned by Close on an already closed store.
	ErrClosed = errors.New("session: store is closed")
)
