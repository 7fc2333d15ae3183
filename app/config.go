package app

import (
	"github.com/dmitrymomot/brokerage/core/apiclient"
	"github.com/dmitrymomot/brokerage/core/cookie"
	"github.com/dmitrymomot/brokerage/core/server"
	"github.com/dmitrymomot/brokerage/core/session"
	mongodb "github.com/dmitrymomot/brokerage/integration/database/mongo"
	redisdb "github.com/dmitrymomot/brokerage/integration/database/redis"
)

// Environments recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config aggregates the configuration of every component. Redis and MongoDB
// are optional: they are used only when their connection URL is set.
type Config struct {
	Server  server.Config
	API     apiclient.Config
	Session session.Config
	Cookie  cookie.Config
	Redis   redisdb.Config
	Mongo   mongodb.Config

	AppName  string `env:"APP_NAME" envDefault:"brokersite"`
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// DefaultConfig returns an in-memory development configuration.
func DefaultConfig() Config {
	return Config{
		Server:   server.DefaultConfig(),
		API:      apiclient.DefaultConfig(),
		Session:  session.DefaultConfig(),
		Cookie:   cookie.DefaultConfig(),
		AppName:  "brokersite",
		Env:      EnvDevelopment,
		LogLevel: "info",
	}
}
