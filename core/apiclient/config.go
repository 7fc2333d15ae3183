package apiclient

import "time"

const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 2
)

// Config provides environment-based configuration for the API client.
type Config struct {
	BaseURL    string        `env:"API_URL"`
	Timeout    time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	MaxRetries int           `env:"API_MAX_RETRIES" envDefault:"2"`
}

// DefaultConfig returns a Config with default timeout and retries and no base URL.
func DefaultConfig() Config {
	return Config{
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}
