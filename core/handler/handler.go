package handler

import "net/http"

// Response renders an HTTP response. It writes headers, status and body.
// A returned error goes to the router's error handler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc handles a request and returns the response to render.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler renders errors returned by handlers and by the router itself.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps a HandlerFunc.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
