package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/brokerage/core/handler"
)

var (
	ErrNoContextFactory  = errors.New("no context factory provided")
	ErrNilResponse       = errors.New("nil response")
	ErrInvalidMethod     = errors.New("invalid http method")
	ErrInvalidPattern    = errors.New("invalid route path pattern")
	ErrDuplicateParam    = errors.New("duplicate parameter name")
	ErrParamConflict     = errors.New("conflicting parameter name")
	ErrHijackUnsupported = errors.New("response writer does not support hijacking")

	ErrNotFound         = statusError{status: http.StatusNotFound, msg: "not found"}
	ErrMethodNotAllowed = statusError{status: http.StatusMethodNotAllowed, msg: "method not allowed"}
)

// statusError is a routing error that carries its HTTP status.
type statusError struct {
	status int
	msg    string
}

func (e statusError) Error() string   { return e.msg }
func (e statusError) StatusCode() int { return e.status }

// statusCode is implemented by errors that choose their HTTP status.
type statusCode interface {
	StatusCode() int
}

// defaultErrorHandler answers with the error text as plain text.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()
	if ww, ok := w.(*responseWriter); ok && ww.Written() {
		return
	}

	status := http.StatusInternalServerError
	var sc statusCode
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	if status >= http.StatusInternalServerError {
		http.Error(w, http.StatusText(status), status)
		return
	}
	http.Error(w, err.Error(), status)
}

// PanicError is passed to the error handler when a handler panics.
type PanicError interface {
	error
	Value() any
	Stack() []byte
}

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
