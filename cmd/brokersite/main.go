package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/brokerage/app"
	"github.com/dmitrymomot/brokerage/core/config"
	"github.com/dmitrymomot/brokerage/core/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg app.Config
	config.MustLoad(&cfg)

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", logger.Error(err))
		os.Exit(1)
	}

	if err := a.Run(ctx); err != nil {
		slog.Error("stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
