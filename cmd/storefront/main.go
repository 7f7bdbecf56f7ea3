package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openmerce/storefront/internal/app"
	"github.com/openmerce/storefront/internal/config"
	"github.com/openmerce/storefront/pkg/logger"
	"github.com/openmerce/storefront/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New("storefront", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracingCfg := tracing.DefaultConfig("storefront")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	tracingCfg.Enabled = cfg.TracingEnabled
	shutdownTracing, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("failed to shut down tracing", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, log, os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	log.Info("storefront starting",
		"environment", cfg.Environment,
		"orders_api", cfg.OrdersAPIURL,
	)

	if err := a.Run(ctx); err != nil && err != context.Canceled {
		return err
	}

	log.Info("storefront stopped")
	return nil
}
