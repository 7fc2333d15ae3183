package cookie

import "net/http"

// Config provides environment-based configuration for cookie attributes.
// Path, domain and max-age are owned by the session store; only transport
// level flags are configurable here.
type Config struct {
	Secure      bool          `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly    bool          `env:"COOKIE_HTTP_ONLY" envDefault:"false"`
	SameSite    http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"` // SameSiteLaxMode
	MaxSize     int           `env:"COOKIE_MAX_SIZE" envDefault:"4096"`
	RedisPrefix string        `env:"COOKIE_REDIS_PREFIX" envDefault:"cookie:"`
}

// DefaultConfig returns a Config matching the env defaults.
// HttpOnly is off because the access token cookie is read by browser scripts.
func DefaultConfig() Config {
	return Config{
		Secure:      false,
		HttpOnly:    false,
		SameSite:    http.SameSiteLaxMode,
		MaxSize:     MaxCookieSize,
		RedisPrefix: DefaultRedisPrefix,
	}
}

// DefaultOptions turns the config into cookie options.
// Only non-zero config values produce options.
func DefaultOptions(cfg Config) []Option {
	opts := make([]Option, 0, 3)
	if cfg.Secure {
		opts = append(opts, WithSecure(true))
	}
	if cfg.HttpOnly {
		opts = append(opts, WithHTTPOnly(true))
	}
	if cfg.SameSite != 0 {
		opts = append(opts, WithSameSite(cfg.SameSite))
	}
	return opts
}
