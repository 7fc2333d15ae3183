package jwt

import "errors"

var (
	// ErrInvalidToken is returned when a token cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingExpiration is returned when a token has no exp claim.
	ErrMissingExpiration = errors.New("token has no expiration")
)
