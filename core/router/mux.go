package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/brokerage/core/handler"
	"github.com/dmitrymomot/brokerage/core/logger"
)

// mux is the Router implementation.
type mux[C handler.Context] struct {
	tree         *node[C]
	middlewares  []handler.Middleware[C]
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request, map[string]string) C
	logger       *slog.Logger
	hasRoutes    bool
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         &node[C]{},
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, params map[string]string) C {
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(NewContext(w, r, params)).(C)
			}
			panic(ErrNoContextFactory)
		}
	}
	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w)

	// RawPath keeps escaped slashes inside parameters
	path := r.URL.Path
	if r.URL.RawPath != "" {
		path = r.URL.RawPath
	}

	method, ok := methodMap[r.Method]
	if !ok {
		m.errorHandler(m.newContext(ww, r, nil), ErrMethodNotAllowed)
		return
	}

	eps, fn, params := m.tree.findRoute(method, path)

	var paramsMap map[string]string
	if len(params.Keys) > 0 {
		paramsMap = make(map[string]string, len(params.Keys))
		for i, key := range params.Keys {
			paramsMap[key] = params.Values[i]
		}
	}
	ctx := m.newContext(ww, r, paramsMap)

	defer func() {
		if p := recover(); p != nil {
			perr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				m.logger.Error("panic after response written",
					logger.Component("router"),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(ww.Status()),
					logger.Error(perr),
					logger.Key("stack", string(perr.stack)),
				)
				return
			}
			m.errorHandler(ctx, perr)
		}
	}()

	if fn == nil {
		if len(eps) > 0 {
			ww.Header().Set("Allow", strings.Join(eps.allowed(), ", "))
			m.errorHandler(ctx, ErrMethodNotAllowed)
			return
		}
		m.errorHandler(ctx, ErrNotFound)
		return
	}

	if len(m.middlewares) > 0 {
		fn = chain(m.middlewares, fn)
	}

	response := fn(ctx)
	if response == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}
	if err := response(ww, ctx.Request()); err != nil {
		m.errorHandler(ctx, err)
	}
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mGET, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPOST, pattern, h)
}

// Method registers a handler for one or more HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}
	for _, method := range methods {
		mt, ok := methodMap[strings.ToUpper(method)]
		if !ok {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		m.handle(mt, pattern, h)
	}
}

// Use appends middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.hasRoutes {
		panic("router: all middlewares must be defined before routes")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	return m.tree.routes()
}

func (m *mux[C]) handle(method methodTyp, pattern string, h handler.HandlerFunc[C]) {
	if pattern == "" || pattern[0] != '/' {
		panic(fmt.Errorf("%w: '%s'", ErrInvalidPattern, pattern))
	}
	if err := m.tree.insertRoute(method, pattern, h); err != nil {
		panic(err)
	}
	m.hasRoutes = true
}

// chain wraps endpoint so the first middleware runs first.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
