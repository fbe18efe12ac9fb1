// Package main is the entry point for the template HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/programmernewbie/multimodule-template/internal/config"
	"github.com/programmernewbie/multimodule-template/internal/logger"
	"github.com/programmernewbie/multimodule-template/internal/metrics"
	"github.com/programmernewbie/multimodule-template/internal/server"
	"github.com/programmernewbie/multimodule-template/pkg/greeting"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; the environment is the primary source
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log, cfg.Server.ServiceName)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	if envLoaded {
		log.Info().Msg("Loaded configuration from .env file")
	}

	deps := &server.Dependencies{
		Config:  cfg,
		Greeter: greeting.NewService(),
		Logger:  log,
	}
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.New(deps),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, srv, cfg.Server, log)
}

// serve runs srv until ctx is done, then drains in-flight requests
func serve(ctx context.Context, srv *http.Server, cfg config.ServerConfig, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}
