// Package apiclient calls the brokerage REST backend.
//
// Every call goes to one configured origin. Authenticated calls take the
// bearer token from a TokenStore (usually *session.Store) and fall back to
// Options.FallbackToken, which server-side code uses when the identity comes
// from an incoming request instead of the cookie jar.
//
//	client := apiclient.New(cfg.BaseURL, store, apiclient.WithLogger(log))
//
//	resp, err := client.WithToken(ctx, "/property/add", apiclient.Options{
//		Method: http.MethodPost,
//		Body:   body,
//	})
//	if err != nil {
//		switch {
//		case errors.Is(err, apiclient.ErrUnauthorized):
//			// token was cleared; ask the user to sign in again
//		case errors.Is(err, apiclient.ErrAPI):
//			// err.Error() holds the backend message
//		}
//	}
//
// # Attempts
//
// Each attempt has its own deadline (10s by default). Timeouts and network
// failures are retried immediately, twice by default. Everything else fails
// on the first attempt:
//
//   - KindMissingCredential: no token in the store and no fallback. No request is sent.
//   - KindInvalidCredential: the token does not decode or has no subject. The stored token is cleared.
//   - KindUnauthorized: HTTP 401. The stored token is cleared.
//   - KindHTTPStatus: any other non-2xx status.
//   - KindDecode: a 2xx JSON response that does not parse.
//   - KindCanceled: the caller's context ended.
//
// Failures are *Error values carrying the kind; errors.Is matches the
// package sentinels and IsRetryable reports transient kinds.
//
// # Responses
//
// JSON responses are decoded into Response.Data; other bodies are kept in
// Response.Text. Envelopes are returned as-is.
package apiclient
