package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

// RelayConfig filters and rewrites messages crossing a WebSocket relay.
// Each hook returns the message to forward and whether to forward it.
// A nil hook forwards messages unchanged.
type RelayConfig[T any] struct {
	// Outbound runs on every broadcast message before it is written to the
	// client.
	Outbound func(T) (T, bool)
	// Inbound runs on every message read from the client before it is
	// broadcast.
	Inbound func(T) (T, bool)
}

func (c RelayConfig[T]) outbound(v T) (T, bool) {
	if c.Outbound == nil {
		return v, true
	}
	return c.Outbound(v)
}

func (c RelayConfig[T]) inbound(v T) (T, bool) {
	if c.Inbound == nil {
		return v, true
	}
	return c.Inbound(v)
}

// Relay returns a WebSocket message handler that connects one client to b.
// Broadcast messages accepted by cfg.Outbound are written to the client as
// JSON; JSON messages read from the client and accepted by cfg.Inbound are
// broadcast. It returns when either side goes away, with a non-nil error
// only for unexpected failures.
//
//	r.Get("/ws", func(ctx *router.Context) handler.Response {
//		return response.WebSocket(broadcast.Relay(b, cfg))
//	})
func Relay[T any](b Broadcaster[T], cfg RelayConfig[T], opts ...Option) func(context.Context, *websocket.Conn) error {
	o := newOptions(opts)

	return func(ctx context.Context, conn *websocket.Conn) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		sub := b.Subscribe(ctx)
		defer sub.Close()

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			writeLoop(ctx, conn, sub, cfg)
			cancel()
			_ = conn.Close() // unblocks the reader
		}()

		err := readLoop(ctx, conn, b, cfg, o.logger)
		cancel()
		_ = conn.Close()
		wg.Wait()
		return err
	}
}

func readLoop[T any](ctx context.Context, conn *websocket.Conn, b Broadcaster[T], cfg RelayConfig[T], log *slog.Logger) error {
	for {
		var data T
		if err := conn.ReadJSON(&data); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				return err
			}
			return nil
		}

		data, ok := cfg.inbound(data)
		if !ok {
			log.WarnContext(ctx, "websocket relay dropped client message")
			continue
		}
		if err := b.Broadcast(ctx, Message[T]{Data: data}); err != nil {
			return err
		}
	}
}

func writeLoop[T any](ctx context.Context, conn *websocket.Conn, sub Subscriber[T], cfg RelayConfig[T]) {
	msgs := sub.Receive(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			data, ok := cfg.outbound(msg.Data)
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(data); err != nil {
				return
			}
		}
	}
}
