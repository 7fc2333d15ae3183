package healthcheck

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrymomot/brokerage/core/handler"
	"github.com/dmitrymomot/brokerage/core/logger"
	"github.com/dmitrymomot/brokerage/core/response"
)

// Check is a dependency probe such as redis.Healthcheck(client).
type Check func(context.Context) error

// Handler serves liveness when no checks are given and answers "ALIVE".
// With checks it serves readiness: every check runs in order, the first
// failure is logged and answered with 503, otherwise "READY".
//
//	r.Get("/health/live", healthcheck.Handler[*router.Context](log))
//	r.Get("/health/ready", healthcheck.Handler[*router.Context](log,
//		redis.Healthcheck(rdb),
//		mongo.Healthcheck(client),
//	))
func Handler[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(ctx C) handler.Response {
		if len(checks) == 0 {
			return response.String("ALIVE")
		}

		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("healthcheck"),
					logger.Error(err),
				)
				return response.Error(response.ErrServiceUnavailable)
			}
		}

		return response.String("READY")
	}
}
