package router

import (
	"net/http"

	"github.com/dmitrymomot/brokerage/core/handler"
)

// Router matches requests by method and path pattern and renders the
// response returned by the matched handler.
//
// Patterns are slash separated. A segment written as {name} matches any
// non-empty segment and is available through Context.Param. Static segments
// win over parameters at the same position.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// Use appends middleware. It panics once routes are registered.
	Use(middlewares ...handler.Middleware[C])
}

// Routes provides route introspection.
type Routes interface {
	Routes() []Route
}

// Route describes a registered route.
type Route struct {
	Method  string
	Pattern string
}

// New creates a router. Without WithContextFactory, C must be *Context.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
