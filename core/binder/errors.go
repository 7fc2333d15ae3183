package binder

import "errors"

var (
	// ErrUnsupportedMediaType: the Content-Type is not one the binder reads.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrMissingContentType: the request has a body but no Content-Type.
	ErrMissingContentType = errors.New("missing content type")
	// ErrBodyTooLarge: the body exceeds DefaultMaxJSONSize.
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrFailedToParseJSON: the body is not valid JSON for the target.
	ErrFailedToParseJSON = errors.New("failed to parse JSON request body")
	// ErrFailedToParseQuery: a query parameter cannot be converted.
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")
	// ErrFailedToParsePath: a path parameter cannot be converted.
	ErrFailedToParsePath = errors.New("failed to parse path parameters")
)
