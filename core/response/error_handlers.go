package response

import (
	"github.com/dmitrymomot/brokerage/core/handler"
)

// JSONErrorHandler renders errors as HTTPError JSON bodies.
// Nothing is written once the response has started.
func JSONErrorHandler[C handler.Context](ctx C, err error) {
	if Started(ctx.ResponseWriter()) {
		return
	}
	httpErr := AsHTTPError(err)
	Render(ctx, JSONWithStatus(httpErr, httpErr.Status))
}
