package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nholik/deploy-hook/internal/app"
	"github.com/nholik/deploy-hook/internal/config"
	"github.com/nholik/deploy-hook/internal/logging"
	"github.com/nholik/deploy-hook/internal/preflight"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.NewWithLevel(cfg.LogLevel)
	logger.Info().Str("environment", cfg.Environment.String()).Msg("deploy-hook starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, logger, cfg)
	if err != nil {
		var report *preflight.ValidationError
		if errors.As(err, &report) {
			fmt.Fprintln(os.Stderr, report.Message())
		}
		logger.Error().Err(err).Msg("deploy-hook deactivated")
		stop()
		os.Exit(1)
	}

	if err := a.Serve(ctx); err != nil {
		logger.Error().Err(err).Msg("deploy-hook stopped")
		stop()
		os.Exit(1)
	}
}
