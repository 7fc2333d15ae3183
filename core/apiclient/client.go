package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/brokerage/core/logger"
	"github.com/dmitrymomot/brokerage/pkg/jwt"
)

// TokenStore supplies the bearer token and clears it when the API rejects it.
// *session.Store satisfies it.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	RemoveTokens(ctx context.Context) error
}

// Options describe one call.
type Options struct {
	Method        string // GET when empty
	Headers       map[string]string
	Body          []byte
	NoContentType bool   // suppress the default application/json content type
	FallbackToken string // used when the store has no token
}

// Client calls a single backend origin with bearer auth, a per-attempt
// deadline and retries for transient failures.
type Client struct {
	baseURL    string
	tokens     TokenStore
	http       *http.Client
	timeout    time.Duration
	maxRetries int
	logger     *slog.Logger
}

// New creates a client. endpoint paths passed to calls are appended to
// baseURL verbatim. tokens may be nil for clients that only use fallback
// tokens or unauthenticated calls.
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		http:       &http.Client{},
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from cfg. A missing base URL is reported as
// ErrMissingBaseURL.
func NewFromConfig(cfg Config, tokens TokenStore, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	base := []Option{WithTimeout(cfg.Timeout), WithMaxRetries(cfg.MaxRetries)}
	return New(cfg.BaseURL, tokens, append(base, opts...)...), nil
}

// WithToken performs an authenticated call. The token comes from the store,
// or from opts.FallbackToken when the store has none.
func (c *Client) WithToken(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	return c.do(ctx, endpoint, opts, true)
}

// WithoutToken performs a call without an Authorization header.
func (c *Client) WithoutToken(ctx context.Context, endpoint string, opts Options) (*Response, error) {
	return c.do(ctx, endpoint, opts, false)
}

func (c *Client) do(ctx context.Context, endpoint string, opts Options, auth bool) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, endpoint, opts, auth)
		if err == nil {
			return resp, nil
		}
		if attempt >= c.maxRetries || !IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		c.logger.WarnContext(ctx, "retrying api call",
			logger.Component("apiclient"),
			logger.URL(c.baseURL+endpoint),
			logger.RetryCount(attempt+1),
			logger.Error(err),
		)
	}
}

func (c *Client) attempt(ctx context.Context, endpoint string, opts Options, auth bool) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.baseURL + endpoint
	fail := func(kind Kind, status int, msg string, err error) *Error {
		return &Error{Kind: kind, StatusCode: status, Method: method, URL: url, Message: msg, Err: err}
	}

	header := make(http.Header, len(opts.Headers)+2)
	for k, v := range opts.Headers {
		header.Set(k, v)
	}
	if !opts.NoContentType && header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	if auth {
		token := ""
		if c.tokens != nil {
			token = c.tokens.AccessToken(ctx)
		}
		if token == "" {
			token = opts.FallbackToken
		}
		if token == "" {
			return nil, fail(KindMissingCredential, 0, msgMissingCredential, nil)
		}

		claims, err := jwt.Decode(token)
		if err == nil && !claims.HasSubject() {
			err = errors.New("token has no subject")
		}
		if err != nil {
			c.invalidate(ctx)
			return nil, fail(KindInvalidCredential, 0, msgInvalidCredential, err)
		}
		header.Set("Authorization", "Bearer "+token)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		return nil, fail(KindNetwork, 0, "", err)
	}
	req.Header = header

	res, err := c.http.Do(req)
	if err != nil {
		kind := transportKind(ctx, err)
		c.logFailure(ctx, req, 0, kind, err)
		return nil, fail(kind, 0, "", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		kind := transportKind(ctx, err)
		c.logFailure(ctx, req, res.StatusCode, kind, err)
		return nil, fail(kind, res.StatusCode, "", err)
	}

	resp := &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		raw:        raw,
	}
	success := res.StatusCode >= 200 && res.StatusCode <= 299
	if resp.IsJSON() && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &resp.Data); err != nil {
			if success {
				c.logFailure(ctx, req, res.StatusCode, KindDecode, err)
				return nil, fail(KindDecode, res.StatusCode, "", err)
			}
			// error statuses are classified by code whatever the body looks like
			resp.Data = nil
			resp.Text = string(raw)
		}
	} else if !resp.IsJSON() {
		resp.Text = string(raw)
	}

	c.logger.DebugContext(ctx, "api exchange",
		logger.Component("apiclient"),
		logger.Method(method),
		logger.URL(url),
		logger.StatusCode(res.StatusCode),
		logger.Headers(req.Header),
		logger.Body(responseBody(resp)),
	)

	switch {
	case res.StatusCode == http.StatusUnauthorized:
		c.invalidate(ctx)
		return nil, fail(KindUnauthorized, res.StatusCode, msgUnauthorized, nil)
	case !success:
		return nil, fail(KindHTTPStatus, res.StatusCode, errorMessage(resp.Data, resp.Text), nil)
	}
	return resp, nil
}

// invalidate clears the stored token. Failures are logged only so they never
// hide the error that triggered them.
func (c *Client) invalidate(ctx context.Context) {
	if c.tokens == nil {
		return
	}
	if err := c.tokens.RemoveTokens(ctx); err != nil {
		c.logger.ErrorContext(ctx, "failed to clear session token",
			logger.Component("apiclient"),
			logger.Error(err),
		)
	}
}

func (c *Client) logFailure(ctx context.Context, req *http.Request, status int, kind Kind, err error) {
	c.logger.ErrorContext(ctx, "api call failed",
		logger.Component("apiclient"),
		logger.Method(req.Method),
		logger.URL(req.URL.String()),
		logger.StatusCode(status),
		logger.Headers(req.Header),
		logger.Key("kind", kind.String()),
		logger.Error(err),
	)
}

// transportKind classifies an error from sending the request or reading the
// body. parent is the caller's context, not the per-attempt one.
func transportKind(parent context.Context, err error) Kind {
	if parent.Err() != nil {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}

func responseBody(r *Response) any {
	if r.Data != nil {
		return r.Data
	}
	if r.Text == "" {
		return nil
	}
	if len(r.Text) > 2048 {
		return strings.ToValidUTF8(r.Text[:2048], "") + "..."
	}
	return r.Text
}
