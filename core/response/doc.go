// Package response builds handler.Response values: plain text, JSON,
// structured HTTP errors and WebSocket upgrades.
//
//	r.Get("/api/properties/{id}", func(ctx *router.Context) handler.Response {
//		data, err := svc.Property(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(data)
//	})
//
// # Errors
//
// Error passes an error to the router's error handler. JSONErrorHandler
// renders it as an HTTPError:
//
//	{"code":"not_found","message":"Not Found"}
//
// AsHTTPError keeps HTTPErrors as they are and maps other errors by their
// StatusCode method, dropping their text.
//
// # WebSocket
//
//	r.Get("/ws", func(ctx *router.Context) handler.Response {
//		return response.WebSocket(loop,
//			response.WithWSOriginCheck(sameOrigin),
//			response.WithWSErrorHandler(logError),
//		)
//	})
package response
