// Package cli provides common CLI initialization utilities shared by
// cmd/saldo and cmd/ledger-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"saldo/internal/backend"
	"saldo/internal/config"
	saldolog "saldo/internal/log"
)

// SetupLogger initializes structured logging at the given level and makes it
// the process default. LOG_FORMAT=json switches to JSON lines.
func SetupLogger(level, component string) *saldolog.Logger {
	logger := saldolog.New(saldolog.Config{
		Level:     saldolog.ParseLevel(level),
		Component: component,
		JSON:      strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
	})
	saldolog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and checks it with validate,
// typically (*config.Config).Validate or (*config.Config).ValidateWorker.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *saldolog.Logger, validate func(*config.Config) error) *config.Config {
	cfg := config.Load()
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", saldolog.FieldError, err.Error())
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured ledger store. With events disabled the
// AMQP publisher is not attached even when AMQP_URL is set.
// Exits the process on failure.
func InitBackend(ctx context.Context, logger *saldolog.Logger, cfg *config.Config, events bool) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", saldolog.FieldError, err.Error())
		os.Exit(1)
	}
	if !events {
		bcfg.AMQPURL = ""
	}

	factory := backend.NewFactory(logger.WithComponent(saldolog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize ledger backend",
			saldolog.FieldError, err.Error(),
			"backend", cfg.DataBackend)
		os.Exit(1)
	}
	return result
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// It returns a context cancelled on SIGINT or SIGTERM and a channel closed
// once cleanup has finished or timeout has elapsed.
func GracefulShutdown(logger *saldolog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		shutdown(cancel, logger, timeout, cleanup)
		close(done)
	}()

	return ctx, done
}

func shutdown(cancel context.CancelFunc, logger *saldolog.Logger, timeout time.Duration, cleanup func(ctx context.Context)) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	cancel()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
	}()

	select {
	case <-finished:
		logger.Info("Shutdown complete")
	case <-shutdownCtx.Done():
		logger.Warn("Shutdown timeout reached")
	}
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
