package response

import (
	"net/http"

	"github.com/dmitrymomot/brokerage/core/handler"
)

// Render executes resp for ctx. A rendering error is answered with 500.
func Render(ctx handler.Context, resp handler.Response) {
	if err := resp(ctx.ResponseWriter(), ctx.Request()); err != nil {
		http.Error(ctx.ResponseWriter(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// Started reports whether the status line has been sent on w. Writers that
// do not track it, such as a bare http.ResponseWriter, report false.
func Started(w http.ResponseWriter) bool {
	s, ok := w.(interface{ Written() bool })
	return ok && s.Written()
}

// String creates a text/plain response with 200 OK status.
func String(content string) handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus creates a text/plain response with a custom status code.
func StringWithStatus(content string, status int) handler.Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if content != "" {
			_, err := w.Write([]byte(content))
			return err
		}
		return nil
	}
}
