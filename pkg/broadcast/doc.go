// Package broadcast provides a generic pub/sub channel with pluggable backends.
//
// It carries session change notifications between browsing contexts: tabs of
// one process share a MemoryBroadcaster, separate processes share a
// RedisBroadcaster, and browser tabs join either through Relay.
//
// # Usage
//
//	b := broadcast.NewMemoryBroadcaster[string](100)
//	defer b.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	sub := b.Subscribe(ctx)
//	defer sub.Close()
//
//	go func() {
//		for msg := range sub.Receive(ctx) {
//			fmt.Println(msg.Data)
//		}
//	}()
//
//	_ = b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
//
// Redis:
//
//	b := broadcast.NewRedisBroadcaster[Event](rdb, "cookieUpdates",
//		broadcast.WithLogger(log),
//	)
//
// WebSocket relay:
//
//	cfg := broadcast.RelayConfig[Event]{
//		Outbound: func(e Event) (Event, bool) { return e, e.Room == room },
//		Inbound:  func(e Event) (Event, bool) { e.Room = room; return e, true },
//	}
//	r.Get("/ws", func(ctx *router.Context) handler.Response {
//		return response.WebSocket(broadcast.Relay(b, cfg))
//	})
//
// # Delivery
//
// Broadcast never waits for subscribers. A subscriber whose buffer is full
// misses the message. Subscriptions end when their context is cancelled, when
// Close is called on the subscriber, or when the broadcaster is closed; in all
// cases the Receive channel is closed.
//
// # Errors
//
//   - ErrBroadcasterClosed: Broadcast after Close
//   - ErrSubscriberClosed: Close called twice on a subscriber
package broadcast
