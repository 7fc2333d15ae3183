// Package handler defines the function types shared by the router, the
// response helpers and the middleware.
//
// A HandlerFunc receives a Context and returns a Response. The Response is
// rendered by the router after every middleware has run, so middleware can
// wrap it:
//
//	func listProperties(ctx *router.Context) handler.Response {
//		data, err := svc.Properties(ctx, listing.Page{})
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(data)
//	}
package handler
