package response

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/brokerage/core/handler"
)

type wsConfig struct {
	upgrader     *websocket.Upgrader
	onConnect    func(context.Context, *websocket.Conn) error
	onDisconnect func(context.Context, *websocket.Conn)
	onError      func(context.Context, error)
}

// WebSocketOption configures a WebSocket response.
type WebSocketOption func(*wsConfig)

// WithWSOriginCheck sets the upgrader's origin check. Without it gorilla
// accepts requests with no Origin header and same-host origins.
func WithWSOriginCheck(fn func(r *http.Request) bool) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

// WithWSOnConnect runs fn after the upgrade. An error closes the connection.
func WithWSOnConnect(fn func(context.Context, *websocket.Conn) error) WebSocketOption {
	return func(c *wsConfig) {
		c.onConnect = fn
	}
}

// WithWSOnDisconnect runs fn after the connection is closed.
func WithWSOnDisconnect(fn func(context.Context, *websocket.Conn)) WebSocketOption {
	return func(c *wsConfig) {
		c.onDisconnect = fn
	}
}

// WithWSErrorHandler receives upgrade, connect and message loop errors.
func WithWSErrorHandler(fn func(context.Context, error)) WebSocketOption {
	return func(c *wsConfig) {
		c.onError = fn
	}
}

// WebSocket upgrades the connection and runs messageHandler until it
// returns. A failed upgrade has already been answered by the upgrader, so
// errors are reported to the error callback and never to the router.
func WebSocket(messageHandler func(context.Context, *websocket.Conn) error, opts ...WebSocketOption) handler.Response {
	cfg := &wsConfig{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		report := func(err error) {
			if cfg.onError != nil {
				cfg.onError(ctx, err)
			}
		}

		conn, err := cfg.upgrader.Upgrade(w, r, nil)
		if err != nil {
			report(err)
			return nil
		}
		defer func() {
			_ = conn.Close()
			if cfg.onDisconnect != nil {
				cfg.onDisconnect(ctx, conn)
			}
		}()

		if cfg.onConnect != nil {
			if err := cfg.onConnect(ctx, conn); err != nil {
				report(err)
				return nil
			}
		}

		if err := messageHandler(ctx, conn); err != nil {
			report(err)
		}
		return nil
	}
}
