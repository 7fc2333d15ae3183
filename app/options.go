package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/brokerage/users"
)

// Option configures an App.
type Option func(*App)

// WithLogger sets the application logger. By default one is built from
// APP_ENV and LOG_LEVEL.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) {
		if log != nil {
			a.logger = log
		}
	}
}

// WithRedis uses an existing Redis client instead of connecting with
// REDIS_URL. The caller keeps ownership of the client.
func WithRedis(rdb redis.UniversalClient) Option {
	return func(a *App) {
		a.rdb = rdb
	}
}

// WithUsers serves /api/users from repo instead of connecting with
// MONGODB_URL.
func WithUsers(repo users.Repository) Option {
	return func(a *App) {
		a.users = repo
	}
}
