package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/brokerage/core/apiclient"
	"github.com/dmitrymomot/brokerage/core/binder"
	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/core/handler"
	"github.com/dmitrymomot/brokerage/core/healthcheck"
	"github.com/dmitrymomot/brokerage/core/logger"
	"github.com/dmitrymomot/brokerage/core/response"
	"github.com/dmitrymomot/brokerage/core/router"
	"github.com/dmitrymomot/brokerage/core/session"
	"github.com/dmitrymomot/brokerage/listing"
	"github.com/dmitrymomot/brokerage/middleware"
	"github.com/dmitrymomot/brokerage/pkg/broadcast"
	"github.com/dmitrymomot/brokerage/users"
)

type propertyPath struct {
	ID string `path:"id"`
}

func (a *App) routes() http.Handler {
	r := router.New[*router.Context](
		router.WithErrorHandler[*router.Context](a.handleError),
		router.WithLogger[*router.Context](a.logger),
		router.WithMiddleware(
			middleware.RequestID[*router.Context](),
			middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
				Logger: a.logger,
				Skip: func(ctx handler.Context) bool {
					return strings.HasPrefix(ctx.Request().URL.Path, "/health/")
				},
			}),
		),
	)

	r.Get("/health/live", healthcheck.Handler[*router.Context](a.logger))
	r.Get("/health/ready", healthcheck.Handler[*router.Context](a.logger, a.checks...))

	r.Get("/ws/session", a.handleSessionRelay)

	if a.users != nil {
		r.Get("/api/users", users.Handler[*router.Context](a.users, a.logger))
	}

	r.Get("/api/properties", a.handleProperties)
	r.Get("/api/properties/filter", a.handleFilterProperties)
	r.Get("/api/properties/{id}", a.handleProperty)
	r.Post("/api/properties/{id}/enquiries", a.handleCreatePropertyEnquiry)
	r.Post("/api/properties/{id}/visits", a.handleCreatePropertyVisit)
	r.Post("/api/enquiries", a.handleCreateWebsiteEnquiry)
	r.Get("/api/enquiries", a.handleWebsiteEnquiries)

	return r
}

func (a *App) handleProperties(ctx *router.Context) handler.Response {
	var page listing.Page
	if err := binder.Query()(ctx.Request(), &page); err != nil {
		return response.Error(err)
	}
	return jsonResult(a.listings.Properties(ctx, page))
}

func (a *App) handleFilterProperties(ctx *router.Context) handler.Response {
	f := listing.Filter{}
	if err := binder.Query()(ctx.Request(), &f); err != nil {
		return response.Error(err)
	}
	return jsonResult(a.listings.FilterProperties(ctx, f))
}

func (a *App) handleProperty(ctx *router.Context) handler.Response {
	var p propertyPath
	if err := bindPath(ctx, &p); err != nil {
		return response.Error(err)
	}
	return jsonResult(a.listings.Property(ctx, p.ID))
}

func (a *App) handleCreateWebsiteEnquiry(ctx *router.Context) handler.Response {
	var e listing.Enquiry
	if err := binder.JSON()(ctx.Request(), &e); err != nil {
		return response.Error(err)
	}
	return created(a.listings.CreateWebsiteEnquiry(ctx, e))
}

func (a *App) handleCreatePropertyEnquiry(ctx *router.Context) handler.Response {
	var (
		p propertyPath
		e listing.Enquiry
	)
	if err := bindPath(ctx, &p); err != nil {
		return response.Error(err)
	}
	if err := binder.JSON()(ctx.Request(), &e); err != nil {
		return response.Error(err)
	}
	return created(a.listings.CreatePropertyEnquiry(ctx, p.ID, e))
}

func (a *App) handleCreatePropertyVisit(ctx *router.Context) handler.Response {
	var (
		p propertyPath
		v listing.Visit
	)
	if err := bindPath(ctx, &p); err != nil {
		return response.Error(err)
	}
	if err := binder.JSON()(ctx.Request(), &v); err != nil {
		return response.Error(err)
	}
	return created(a.listings.CreatePropertyVisit(ctx, p.ID, v))
}

// handleWebsiteEnquiries authenticates with the caller's own access token
// cookie. A rejected token is removed from the browser by the response and
// the reset reaches the caller's other tabs through the session relay.
func (a *App) handleWebsiteEnquiries(ctx *router.Context) handler.Response {
	var page listing.Page
	if err := binder.Query()(ctx.Request(), &page); err != nil {
		return response.Error(err)
	}

	jar := cookie.NewRequestJar(ctx.ResponseWriter(), ctx.Request(), cookie.WithMaxSize(a.cfg.Cookie.MaxSize))
	store, err := a.newRequestStore(jar, a.store.HeaderScope(ctx.Request().Header.Get("Cookie")))
	if err != nil {
		return response.Error(err)
	}
	defer store.Close()

	svc := listing.New(a.newClient(store), listing.WithLogger(a.logger))
	return jsonResult(svc.WebsiteEnquiries(ctx, page))
}

// handleSessionRelay joins a browser tab to the session channel of its own
// access token. Requests without a token scope or from another origin are
// refused.
func (a *App) handleSessionRelay(ctx *router.Context) handler.Response {
	scope := a.store.HeaderScope(ctx.Request().Header.Get("Cookie"))
	if scope == "" {
		return response.Error(response.ErrUnauthorized.WithMessage("session cookie required"))
	}

	return response.WebSocket(
		broadcast.Relay(a.bc, a.store.RelayConfig(scope), broadcast.WithLogger(a.logger)),
		response.WithWSOriginCheck(sameOrigin),
		response.WithWSErrorHandler(func(ctx context.Context, err error) {
			a.logger.WarnContext(ctx, "session relay failed",
				logger.Component("app"),
				logger.Error(err),
			)
		}),
	)
}

// sameOrigin accepts only requests whose Origin header names the requested
// host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func bindPath(ctx *router.Context, v any) error {
	return binder.Path(func(_ *http.Request, name string) string {
		return ctx.Param(name)
	})(ctx.Request(), v)
}

func jsonResult[T any](data T, err error) handler.Response {
	if err != nil {
		return response.Error(err)
	}
	return response.JSON(data)
}

func created[T any](data T, err error) handler.Response {
	if err != nil {
		return response.Error(err)
	}
	return response.JSONWithStatus(data, http.StatusCreated)
}

// handleError maps err onto an HTTP error, logs it and renders it as JSON.
func (a *App) handleError(ctx *router.Context, err error) {
	httpErr := httpError(err)

	level := slog.LevelWarn
	if httpErr.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	r := ctx.Request()
	a.logger.Log(ctx, level, "request failed",
		logger.Component("app"),
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.StatusCode(httpErr.Status),
		logger.Error(err),
	)

	if response.Started(ctx.ResponseWriter()) {
		return
	}
	response.Render(ctx, response.JSONWithStatus(httpErr, httpErr.Status))
}

func httpError(err error) response.HTTPError {
	switch {
	case errors.Is(err, listing.ErrInvalidName),
		errors.Is(err, listing.ErrInvalidMobile),
		errors.Is(err, listing.ErrInvalidEmail),
		errors.Is(err, listing.ErrMissingVisitDate),
		errors.Is(err, listing.ErrMissingID):
		return response.ErrBadRequest.WithMessage(err.Error())
	case errors.Is(err, binder.ErrUnsupportedMediaType),
		errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMediaType
	case errors.Is(err, binder.ErrBodyTooLarge):
		return response.ErrRequestEntityTooLarge
	case errors.Is(err, binder.ErrFailedToParseJSON):
		return response.ErrBadRequest.WithMessage("invalid request body")
	case errors.Is(err, binder.ErrFailedToParseQuery),
		errors.Is(err, binder.ErrFailedToParsePath):
		return response.ErrBadRequest.WithMessage("invalid request parameters")
	}

	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return response.AsHTTPError(err)
	}
	switch apiErr.Kind {
	case apiclient.KindMissingCredential, apiclient.KindInvalidCredential, apiclient.KindUnauthorized:
		return response.ErrUnauthorized.WithMessage(apiErr.Error())
	case apiclient.KindHTTPStatus:
		httpErr := response.AsHTTPError(statusError(apiErr.StatusCode))
		return httpErr.WithMessage(apiErr.Error())
	case apiclient.KindTimeout:
		return response.ErrGatewayTimeout
	default:
		return response.ErrBadGateway
	}
}

// statusError carries an upstream status into response.AsHTTPError.
type statusError int

func (e statusError) Error() string   { return http.StatusText(int(e)) }
func (e statusError) StatusCode() int { return int(e) }

// newRequestStore creates a publish-only session store for one request.
// Without a scope it stays off the broadcast channel.
func (a *App) newRequestStore(jar cookie.Jar, scope string) (*session.Store, error) {
	opts := []session.Option{
		session.WithLogger(a.logger),
		session.WithCookieOptions(cookie.DefaultOptions(a.cfg.Cookie)...),
	}
	if scope != "" {
		opts = append(opts, session.WithPublisher(a.bc), session.WithScope(scope))
	}
	return session.New(jar, a.cfg.Session, opts...)
}
