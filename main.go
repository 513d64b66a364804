package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"artisanhub/internal/config"
	"artisanhub/internal/logging"

	"github.com/spf13/viper"
)

func main() {
	bootLog := logging.New("text", "info")
	if err := config.LoadDotEnv(); err != nil {
		bootLog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		bootLog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	go func() {
		log.Info("starting server", "addr", cfg.AppPort)
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("error during fiber shutdown", "error", err)
	}
	log.Info("server gracefully stopped")
}
