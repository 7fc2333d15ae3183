package binder

import "net/http"

// Binder fills v from one part of the request.
type Binder func(r *http.Request, v any) error
