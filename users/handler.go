package users

import (
	"io"
	"log/slog"

	"github.com/dmitrymomot/brokerage/core/handler"
	"github.com/dmitrymomot/brokerage/core/logger"
	"github.com/dmitrymomot/brokerage/core/response"
)

// Handler serves the user list as a JSON array. Storage failures answer 500
// without the cause.
func Handler[C handler.Context](repo Repository, log *slog.Logger) handler.HandlerFunc[C] {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(ctx C) handler.Response {
		list, err := repo.List(ctx)
		if err != nil {
			log.ErrorContext(ctx, "list users",
				logger.Component("users"),
				logger.Error(err),
			)
			return response.Error(response.ErrInternalServerError)
		}
		if list == nil {
			list = []User{}
		}
		return response.JSON(list)
	}
}
