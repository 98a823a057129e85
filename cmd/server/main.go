package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/backstage/internal/app"
	"github.com/dmitrymomot/backstage/internal/config"
	"github.com/dmitrymomot/backstage/internal/logger"
	"github.com/dmitrymomot/backstage/internal/server"
)

// Config composes all service settings from the environment.
type Config struct {
	Env    string `env:"APP_ENV" envDefault:"development"`
	App    app.Config
	Server server.Config
}

func main() {
	var cfg Config
	config.MustLoad(&cfg)

	logOpt := logger.WithDevelopment("backstage")
	if cfg.Env == "production" {
		logOpt = logger.WithProduction("backstage")
	}
	log := logger.New(logOpt)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.App.InsecureDefaults() {
		log.Warn("running with default credentials or secrets, set ADMIN_PASSWORD and SESSION_SECRET",
			logger.Component("main"))
	}

	a, err := app.New(ctx, cfg.App, log)
	if err != nil {
		log.Error("startup failed", logger.Error(err))
		os.Exit(1)
	}

	srv := server.New(cfg.Server, a.Router, log)
	if err := srv.Run(ctx); err != nil {
		log.Error("server failed", logger.Error(err))
		os.Exit(1)
	}

	log.Info("server stopped", slog.String("env", cfg.Env))
}
