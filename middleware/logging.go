package middleware

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/brokerage/core/handler"
	"github.com/dmitrymomot/brokerage/core/logger"
)

// DefaultSlowRequestThreshold marks requests that take longer as slow.
const DefaultSlowRequestThreshold = 5 * time.Second

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Logger is the slog logger to use (default: discard)
	Logger *slog.Logger
	// Skip excludes requests from logging, such as health probes
	Skip func(ctx handler.Context) bool
	// LogHeaders adds redacted request headers
	LogHeaders bool
	// SlowRequestThreshold logs slow requests at warning level (default: 5s)
	SlowRequestThreshold time.Duration
	// Component name for structured logging (default: "http")
	Component string
}

// Logging logs one record per completed request with log.
func Logging[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig logs method, path, status, size and duration of every
// request. 5xx responses log at error level; 4xx and slow requests at warn.
//
// A response that fails before writing anything is logged with the status
// its error carries, or 500, since the router's error handler renders it
// afterwards.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = DefaultSlowRequestThreshold
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			resp := next(ctx)
			if resp == nil {
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
				err := resp(rw, r)
				duration := time.Since(start)

				status := rw.statusCode
				if err != nil && !rw.headerWritten {
					status = statusFromError(err)
				}

				attrs := []slog.Attr{
					logger.Component(cfg.Component),
					logger.Event("request"),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(status),
					slog.Int("bytes_out", rw.size),
					logger.Duration(duration),
					slog.String("remote_addr", r.RemoteAddr),
				}
				if cfg.LogHeaders {
					attrs = append(attrs, logger.Headers(r.Header))
				}

				level := slog.LevelInfo
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
					if err != nil {
						attrs = append(attrs, logger.Error(err))
					}
				case status >= http.StatusBadRequest:
					level = slog.LevelWarn
				case duration > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
					attrs = append(attrs, slog.Bool("slow_request", true))
				}

				cfg.Logger.LogAttrs(r.Context(), level, "HTTP request completed", attrs...)
				return err
			}
		}
	}
}

func statusFromError(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= http.StatusBadRequest && code < 600 {
			return code
		}
	}
	return http.StatusInternalServerError
}

// responseWriter captures the status code and size of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	size          int
	headerWritten bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.headerWritten {
		rw.statusCode = statusCode
		rw.headerWritten = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets WebSocket upgrades pass through the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	rw.headerWritten = true
	return h.Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
