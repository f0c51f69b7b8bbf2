package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orgball2608/technews-autopilot/internal/app"
	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"go.uber.org/fx"
)

const shutdownTimeout = 45 * time.Second

func main() {
	cfg, err := config.New()
	if err != nil {
		panic(err)
	}

	log := logger.FromConfig(cfg).WithComponent("main")

	autopilot := fx.New(
		fx.Logger(logger.New(logger.Opts{Env: cfg.App.Env, Level: cfg.App.LogLevel})),
		app.Module(cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := autopilot.Start(ctx); err != nil {
		log.Error("Failed to start autopilot", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("Shutting down", "timeout", shutdownTimeout.String())

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := autopilot.Stop(stopCtx); err != nil {
		log.Error("Failed to stop autopilot", "error", err)
		os.Exit(1)
	}
}
