package cookie

import (
	"errors"
	"fmt"
)

// Error variables define specific failure scenarios in cookie management.
var (
	// ErrCookieNotFound indicates the requested cookie doesn't exist in the jar.
	ErrCookieNotFound = errors.New("cookie not found")

	// ErrEmptyName indicates an operation was attempted with an empty cookie name.
	ErrEmptyName = errors.New("cookie name is required")
)

// ErrCookieTooLarge indicates the cookie exceeds the maximum allowed size.
type ErrCookieTooLarge struct {
	Name string
	Size int
	Max  int
}

// Error implements the error interface.
func (e ErrCookieTooLarge) Error() string {
	return fmt.Sprintf("cookie %q size %d exceeds maximum %d bytes", e.Name, e.Size, e.Max)
}
