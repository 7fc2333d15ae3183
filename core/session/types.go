package session

import "fmt"

// Logical cookie keys managed by the store.
const (
	KeyAccess = "access"
)

const (
	// LocalNamespace prefixes cookies in local development.
	LocalNamespace = "lisa"
	// DefaultChannel is the broadcast channel name.
	DefaultChannel = "cookieUpdates"
)

// Conditions describe what kind of change a notification carries.
type Conditions struct {
	Fresh   bool `json:"fresh"`
	Updated bool `json:"updated"`
	Reset   bool `json:"reset"`
}

// Origin tells where a notification was produced.
type Origin int

const (
	// OriginLocal marks changes made through this store.
	OriginLocal Origin = iota
	// OriginRemote marks changes received from another store over the broadcast channel.
	OriginRemote
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginRemote:
		return "remote"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Notification is delivered to subscribers on every token change.
// An empty Value means the token was removed.
type Notification struct {
	Key        string
	Value      string
	Conditions Conditions
	Origin     Origin
}

// Envelope is the broadcast wire message. Source identifies the sending store
// so it can ignore its own messages on shared channels. Scope names the
// session the change belongs to; stores and relays only deliver envelopes of
// their own scope.
type Envelope struct {
	Source     string     `json:"source"`
	Scope      string     `json:"scope,omitempty"`
	CookieKey  string     `json:"cookieKey"`
	Value      string     `json:"value"`
	Conditions Conditions `json:"conditions"`
}

// Tokens is a snapshot of the stored credentials.
type Tokens struct {
	AccessToken string `json:"accessToken"`
}
