package main

import (
	"context"
	"fmt"

	"saldo/internal/cache"
	"saldo/internal/categorizer"
	"saldo/internal/config"
	"saldo/internal/core"
	saldolog "saldo/internal/log"
)

// buildCategorizer assembles classifier -> cache -> adapter. The returned
// cleanup releases the cache backend.
func buildCategorizer(ctx context.Context, cfg *config.Config, logger *saldolog.Logger, manager *cache.Manager) (*categorizer.Adapter, func(), error) {
	logger = logger.WithComponent(saldolog.ComponentCategorizer)
	cleanup := func() {}

	var classifier categorizer.Categorizer
	switch cfg.Categorizer {
	case "gemini":
		g, err := categorizer.NewGeminiCategorizer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, cleanup, fmt.Errorf("init gemini categorizer: %w", err)
		}
		classifier = g
		logger.Info("Using Gemini categorizer", "model", cfg.GeminiModel)
	default:
		classifier = categorizer.NewKeywordCategorizer()
		logger.Info("Using keyword categorizer")
	}

	switch {
	case cfg.RedisURL != "":
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, cleanup, err
		}
		rc := cache.NewRedisCache[core.Category](client, "saldo:category:", cfg.ClassificationCacheTTL)
		if err := rc.Ping(ctx); err != nil {
			// Redis errors degrade to cache misses, so keep going.
			logger.Warn("Redis unreachable at startup", saldolog.FieldError, err.Error())
		}
		classifier = categorizer.NewCached(classifier, rc)
		cleanup = func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close Redis client", saldolog.FieldError, err.Error())
			}
		}
		logger.Info("Classification cache backed by Redis", "ttl", cfg.ClassificationCacheTTL)
	case cfg.ClassificationCacheSize > 0:
		lru := cache.NewLRUCache[core.Category](cfg.ClassificationCacheSize, cfg.ClassificationCacheTTL)
		manager.Register(lru)
		classifier = categorizer.NewCached(classifier, lru)
		logger.Info("Classification cache in memory",
			"size", cfg.ClassificationCacheSize,
			"ttl", cfg.ClassificationCacheTTL)
	}

	adapter := categorizer.NewAdapter(classifier,
		categorizer.WithTimeout(cfg.ClassifyTimeout),
		categorizer.WithLogger(logger.Logger))
	return adapter, cleanup, nil
}
