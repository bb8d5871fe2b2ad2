package backend

import (
	"context"
	"time"

	"saldo/internal/ledger"
	"saldo/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the ledger store and its cleanup function
type BackendResult struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Factory creates ledger stores based on configuration
type Factory interface {
	// CreateBackend creates a store based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Postgres specific
	DatabaseURL string
	Pool        storage.PoolConfig

	// Optional event publishing, enabled when AMQPURL is set
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Location is the zone used for calendar-month queries
	Location *time.Location
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
