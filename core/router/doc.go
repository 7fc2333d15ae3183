// Package router provides a generic HTTP router for handler.HandlerFunc.
//
// Routes are matched per path segment. A {name} segment captures one
// non-empty segment, and static segments take precedence over parameters,
// so /api/properties/filter and /api/properties/{id} coexist.
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler[*router.Context](response.JSONErrorHandler[*router.Context]),
//		router.WithMiddleware(middleware.RequestID[*router.Context]()),
//	)
//
//	r.Get("/api/properties/{id}", func(ctx *router.Context) handler.Response {
//		data, err := svc.Property(ctx, ctx.Param("id"))
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(data)
//	})
//
//	http.ListenAndServe(":8080", r)
//
// Unmatched paths reach the error handler as ErrNotFound and known paths
// with another method as ErrMethodNotAllowed, with the Allow header set.
// Both carry their HTTP status through a StatusCode method. Handler panics
// are recovered and reported as PanicError.
package router
