// Package cookie provides the cookie storage capability used by the session layer,
// plus helpers for cookie namespaces, wildcard domains and raw Cookie headers.
//
// # Jars
//
// All storage goes through the Jar interface so browser-like, server-side and
// shared implementations satisfy the same contract:
//
//   - MemoryJar: in-process jar, one per browsing context.
//   - RequestJar: bound to one HTTP exchange; reads request cookies, writes Set-Cookie headers.
//   - RedisJar: shared jar backed by go-redis, max-age mapped onto key TTL.
//
// Basic usage:
//
//	jar := cookie.NewMemoryJar()
//
//	err := jar.Set(ctx, "myapp_access", token,
//		cookie.WithPath("/"),
//		cookie.WithMaxAge(cookie.DayInSeconds),
//		cookie.WithDomain(cookie.WildcardDomain("www.example.com")), // ".example.com"
//	)
//
//	token, err := jar.Get(ctx, "myapp_access")
//	if errors.Is(err, cookie.ErrCookieNotFound) {
//		// not set or expired
//	}
//
// Server side, inside a handler:
//
//	jar := cookie.NewRequestJar(w, r)
//
// # Namespaces
//
// NamespaceForHost derives a cookie prefix from a hostname by dropping the
// top-level label and joining the rest with underscores:
//
//	cookie.NamespaceForHost("app.example.com") // "app_example"
//	cookie.NamespaceForHost("example.com")     // "example"
//
// # Raw headers
//
// FromHeader parses one value out of a raw Cookie header without a jar:
//
//	cookie.FromHeader("myapp_access", "foo=1; myapp_access=XYZ; bar=2") // "XYZ"
package cookie
