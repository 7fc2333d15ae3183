// Package session keeps the API access token in a cookie and tells interested
// parties when it changes.
//
// A Store is constructed explicitly over a cookie.Jar and injected wherever
// the token is needed, typically the API client:
//
//	store, err := session.New(cookie.NewMemoryJar(), session.Config{
//		Hostname: "www.example.com",
//	}, session.WithBroadcaster(bc), session.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
// # Cookie layout
//
// The token lives in one cookie named "<namespace>_access". The namespace is
// Config.CookieKey when set, "lisa" on localhost, and otherwise derived from
// the hostname ("www.example.com" becomes "www_example"). Cookies use path
// "/" and a fixed one day max-age; outside localhost they are scoped to the
// wildcard domain (".example.com") so subdomains share the session.
//
// The expiry does not follow the token's exp claim. JWTExpirationDays reports
// it for callers that want to act on it.
//
// # Notifications
//
//	unsubscribe := store.Subscribe(session.KeyAccess, func(n session.Notification) {
//		switch {
//		case n.Conditions.Reset:
//			// logged out
//		case n.Conditions.Fresh:
//			// logged in
//		}
//	})
//	defer unsubscribe()
//
// Subscribers run synchronously in registration order. Changes made through a
// store carry OriginLocal and are published to the broadcaster; changes
// received from the broadcaster carry OriginRemote and are never published
// again, so stores sharing a channel cannot echo each other.
//
// # Scopes
//
// Every envelope on the channel names the session it belongs to: the id
// claim of the access token, see TokenScope. A store created WithScope
// publishes under that scope and only hears envelopes of the same scope;
// stores without one form the server scope. Short-lived stores, such as one
// per request, use WithPublisher to publish without subscribing.
//
// Browser tabs join through broadcast.Relay with the filters from
// RelayConfig, which keep each connection inside its own scope and never
// send token values to the browser.
//
// UpdateAccessToken ignores empty tokens. RemoveTokens is the only way to
// clear the session and always notifies with Reset.
package session
