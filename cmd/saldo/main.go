package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"saldo/internal/cache"
	"saldo/internal/cli"
	"saldo/internal/config"
	apphttp "saldo/internal/http"
	saldolog "saldo/internal/log"
	"saldo/internal/report"
	"saldo/internal/services"
	"saldo/internal/telegram"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), saldolog.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)
	loc := cfg.Location()
	logger.Info("Starting saldo",
		"backend", cfg.DataBackend,
		"policy", cfg.BalancePolicy,
		"categorizer", cfg.Categorizer,
		"timezone", loc.String(),
		"webhook", cfg.UseWebhook())

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	be := cli.InitBackend(initCtx, logger, cfg, true)

	policy, err := services.GetBalancePolicy(cfg.BalancePolicy)
	if err != nil {
		logger.Error("Invalid balance policy", saldolog.FieldError, err.Error())
		os.Exit(1)
	}

	cacheManager := cache.NewManager()
	classifier, closeCategorizer, err := buildCategorizer(initCtx, cfg, logger, cacheManager)
	if err != nil {
		logger.Error("Failed to initialize categorizer", saldolog.FieldError, err.Error())
		_ = be.Cleanup()
		os.Exit(1)
	}
	cacheManager.StartCleanup(10 * time.Minute)

	ledger := services.NewLedger(be.Store, classifier, policy, services.WithLocation(loc))
	handler := telegram.NewHandler(ledger, report.NewPieRenderer(), logger)

	bot, err := telegram.NewBot(telegram.Config{
		Token:          cfg.TelegramBotToken,
		WebhookURL:     cfg.WebhookURL,
		WebhookSecret:  cfg.WebhookSecret,
		HandlerTimeout: cfg.ClassifyTimeout + 20*time.Second,
	}, handler, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", saldolog.FieldError, err.Error())
		_ = be.Cleanup()
		os.Exit(1)
	}

	opts := apphttp.Options{
		Addr:               ":" + cfg.Port,
		WebhookSecret:      cfg.WebhookSecret,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready: func(ctx context.Context) error {
			_, err := be.Store.Latest(ctx)
			return err
		},
		Logger: logger,
	}
	if bot.UsesWebhook() {
		opts.Webhook = bot.WebhookHandler()
	}
	srv := apphttp.NewServer(opts)

	botDone := make(chan struct{})
	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", saldolog.FieldError, err.Error())
		}
		select {
		case <-botDone:
		case <-ctx.Done():
			logger.Warn("Bot did not stop before the shutdown deadline")
		}
		cacheManager.Stop()
		closeCategorizer()
		if err := be.Cleanup(); err != nil {
			logger.Error("Failed to close ledger backend", saldolog.FieldError, err.Error())
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer close(botDone)
		return bot.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Saldo stopped with error", saldolog.FieldError, err.Error())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
		cacheManager.Stop()
		closeCategorizer()
		_ = be.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Saldo stopped gracefully")
}
