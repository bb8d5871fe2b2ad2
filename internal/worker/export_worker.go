package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/ledger"
	"saldo/internal/sheets"
)

// ExportWorker mirrors ledger events into a spreadsheet.
type ExportWorker struct {
	sink sheets.ExportSink
}

func NewExportWorker(sink sheets.ExportSink) *ExportWorker {
	return &ExportWorker{sink: sink}
}

// HandleEvent processes a single ledger event from AMQP. A returned error
// makes the consumer requeue the delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", ev.EventID,
		"type", ev.Type,
		"transaction_id", ev.TransactionID)

	tx := ev.Transaction()
	switch ev.Type {
	case amqp.EventRecorded:
		if err := w.sink.Append(ctx, tx); err != nil {
			return fmt.Errorf("export transaction %d: %w", tx.ID, err)
		}
	case amqp.EventDeleted:
		if err := w.sink.Remove(ctx, tx); err != nil {
			return fmt.Errorf("remove exported transaction %d: %w", tx.ID, err)
		}
	default:
		// Unknown types cannot become valid by retrying.
		slog.WarnContext(ctx, "Ignoring unknown ledger event type", "type", ev.Type)
	}
	return nil
}

// Backfill exports every transaction of the given month. It recovers from
// events lost while the worker was down; Append skips rows already present.
func (w *ExportWorker) Backfill(ctx context.Context, store ledger.Store, year int, month time.Month) error {
	txs, err := store.ListByMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("list transactions for backfill: %w", err)
	}
	if len(txs) == 0 {
		slog.InfoContext(ctx, "No transactions to backfill", "year", year, "month", int(month))
		return nil
	}

	successCount := 0
	errorCount := 0
	// Oldest first so spreadsheet rows follow ledger order.
	for i := len(txs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.sink.Append(ctx, txs[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during backfill",
				"transaction_id", txs[i].ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Backfill completed",
		"total", len(txs),
		"exported", successCount,
		"errors", errorCount)
	if errorCount > 0 {
		return fmt.Errorf("backfill: %d of %d transactions failed", errorCount, len(txs))
	}
	return nil
}
