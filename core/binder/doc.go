// Package binder fills request structs from HTTP request data.
//
// Each binder has the signature func(*http.Request, any) error so it can be
// called directly from a handler:
//
//	var req enquiryRequest
//	if err := binder.JSON()(ctx.Request(), &req); err != nil {
//		return response.Error(err)
//	}
//
// JSON reads application/json bodies up to DefaultMaxJSONSize with unknown
// fields rejected. Query binds the URL query into a struct or into a
// map[string]any. Path binds named route parameters through an extractor.
//
// All failures wrap one of the package errors (ErrFailedToParseJSON,
// ErrUnsupportedMediaType and so on), so callers can map them with errors.Is.
package binder
