package main

import (
	"context"
	"errors"
	"os"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	saldolog "saldo/internal/log"
	gsheet "saldo/internal/sheets/google"
	"saldo/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), saldolog.ComponentWorker)
	logger.Info("Starting ledger-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)
	loc := cfg.Location()

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	sink, err := gsheet.New(initCtx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsFile: cfg.GoogleCredentialsFile,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		Location:        loc,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", saldolog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	w := worker.NewExportWorker(sink)

	if cfg.ExportBackfill {
		backfill(initCtx, logger, cfg, w, loc)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", saldolog.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("AMQP client initialized",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close AMQP client", saldolog.FieldError, err.Error())
		}
	})

	if err := client.Consume(ctx, w.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", saldolog.FieldError, err.Error())
		_ = client.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("ledger-worker stopped gracefully")
}

// backfill exports the current month straight from the ledger store so rows
// missed while the worker was down reach the spreadsheet. Failures are logged;
// event consumption still starts.
func backfill(ctx context.Context, logger *saldolog.Logger, cfg *config.Config, w *worker.ExportWorker, loc *time.Location) {
	if cfg.DataBackend == string(backend.MemoryBackend) {
		logger.Warn("Skipping backfill: the memory backend is not shared with the bot")
		return
	}

	be := cli.InitBackend(ctx, logger, cfg, false)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Failed to close ledger backend", saldolog.FieldError, err.Error())
		}
	}()

	now := time.Now().In(loc)
	if err := w.Backfill(ctx, be.Store, now.Year(), now.Month()); err != nil {
		logger.Error("Backfill failed",
			saldolog.FieldError, err.Error(),
			"year", now.Year(),
			"month", int(now.Month()))
		return
	}
	logger.Info("Backfill finished", "year", now.Year(), "month", int(now.Month()))
}
