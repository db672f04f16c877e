package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/beachhead-labs/beachhead-backend/config"
	"github.com/beachhead-labs/beachhead-backend/internal/bootstrap"
	"github.com/beachhead-labs/beachhead-backend/internal/cli"
	"github.com/beachhead-labs/beachhead-backend/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	z, err := logging.Init(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		return err
	}
	defer z.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	rootCmd := cli.NewRootCmd(&cli.App{
		Migrations:    app.Migrations,
		SweepLimit:    cfg.Migration.SweepLimit,
		SweepSchedule: cfg.Migration.SweepSchedule,
	})
	return rootCmd.ExecuteContext(ctx)
}
