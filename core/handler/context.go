package handler

import (
	"context"
	"net/http"
)

// Context is the request context handed to every HandlerFunc.
// router.Context is the default implementation.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
