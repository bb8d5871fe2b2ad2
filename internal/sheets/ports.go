package sheets

import (
	"context"

	"saldo/internal/core"
)

// Ports for outbound adapters.
type (
	// ExportSink mirrors ledger rows into an external spreadsheet. Both
	// operations must be idempotent: events are delivered at least once.
	ExportSink interface {
		// Append writes tx unless a row with the same id already exists.
		Append(ctx context.Context, tx core.Transaction) error
		// Remove deletes the row of tx.ID; a missing row is not an error.
		Remove(ctx context.Context, tx core.Transaction) error
	}
)
