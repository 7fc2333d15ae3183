package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrAPI               = errors.New("api error")
	ErrTimeout           = errors.New("request timed out")
	ErrNetwork           = errors.New("network error")
	ErrDecode            = errors.New("failed to decode response")
	ErrMissingBaseURL    = errors.New("api base url is not configured")
)

// Fixed user-facing messages.
const (
	msgMissingCredential = "token not found for authorization"
	msgInvalidCredential = "failed to decode access token"
	msgUnauthorized      = "token expired, please reauthenticate"
	msgAPIFallback       = "API error occurred"
)

// Kind classifies a failed call. It is decided where the failure happens.
type Kind int

const (
	KindMissingCredential Kind = iota + 1
	KindInvalidCredential
	KindUnauthorized
	KindHTTPStatus
	KindTimeout
	KindNetwork
	KindDecode
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindUnauthorized:
		return "unauthorized"
	case KindHTTPStatus:
		return "http_status"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is returned by every failed call.
type Error struct {
	Kind       Kind
	StatusCode int // zero when no response was received
	Method     string
	URL        string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error kind.
func (e *Error) Is(target error) bool {
	switch e.Kind {
	case KindMissingCredential:
		return target == ErrMissingCredential
	case KindInvalidCredential:
		return target == ErrInvalidCredential
	case KindUnauthorized:
		return target == ErrUnauthorized
	case KindHTTPStatus:
		return target == ErrAPI
	case KindTimeout:
		return target == ErrTimeout
	case KindNetwork:
		return target == ErrNetwork
	case KindDecode:
		return target == ErrDecode
	}
	return false
}

// IsRetryable reports whether err is a transient failure worth another attempt.
func IsRetryable(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Kind {
	case KindTimeout, KindNetwork:
		return true
	default:
		return false
	}
}

// KindOf returns the kind of err, or zero when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}
