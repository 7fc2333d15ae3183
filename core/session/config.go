package session

// Config holds session store configuration.
type Config struct {
	// Hostname the store serves. Hostnames containing "localhost" select
	// local development mode.
	Hostname string `env:"SESSION_HOSTNAME" envDefault:"localhost"`
	// CookieKey overrides the cookie namespace prefix.
	CookieKey string `env:"COOKIE_KEY"`
	// Channel is the broadcast channel name shared by all stores of an app.
	Channel string `env:"SESSION_CHANNEL" envDefault:"cookieUpdates"`
}

// DefaultConfig returns a Config for local development.
func DefaultConfig() Config {
	return Config{
		Hostname: "localhost",
		Channel:  DefaultChannel,
	}
}
