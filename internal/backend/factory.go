package backend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/adapters"
	"saldo/internal/amqp"
	"saldo/internal/ledger"
	"saldo/internal/ledger/memory"
	"saldo/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	loc := config.Location
	if loc == nil {
		loc = time.Local
	}

	var (
		store ledger.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(ctx, config, loc)
	case PostgresBackend:
		store, err = f.createPostgresStore(ctx, config, loc)
	case MemoryBackend:
		store = memory.New(memory.WithLocation(loc))
		f.logger.Warn("Using in-memory ledger, transactions are lost on restart")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	store = f.withPublisher(store, config)

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config, loc *time.Location) (ledger.Store, error) {
	s, err := storage.NewSQLiteStore(ctx, config.SQLiteDBPath, storage.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return s, nil
}

func (f *DefaultFactory) createPostgresStore(ctx context.Context, config Config, loc *time.Location) (ledger.Store, error) {
	s, err := storage.NewPostgresStore(ctx, config.DatabaseURL, config.Pool, storage.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
	}
	f.logger.Info("Initialized Postgres backend", "max_open_conns", config.Pool.MaxOpenConns)
	return s, nil
}

// withPublisher wraps store with AMQP event publishing when configured. A
// broker that is down at startup is not fatal: the bot keeps working and
// events are simply not emitted.
func (f *DefaultFactory) withPublisher(store ledger.Store, config Config) ledger.Store {
	if config.AMQPURL == "" {
		return store
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without ledger events", "error", err)
		return store
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return adapters.NewPublishingStore(store, client)
}
