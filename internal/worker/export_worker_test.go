package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/core"
	ledgermem "saldo/internal/ledger/memory"
	sinkmem "saldo/internal/sheets/memory"
)

func tx(id int64, desc string) core.Transaction {
	return core.Transaction{
		ID:            id,
		Description:   desc,
		Category:      core.CategoryFood,
		Amount:        core.Money{Cents: -1000},
		Kind:          core.Expense,
		PaymentMethod: core.Debit,
	}
}

func TestHandleEvent_RecordedThenDeleted(t *testing.T) {
	sink := sinkmem.New()
	w := NewExportWorker(sink)
	ctx := context.Background()

	if err := w.HandleEvent(ctx, amqp.NewRecordedEvent(tx(1, "Pizza"))); err != nil {
		t.Fatalf("recorded: %v", err)
	}
	// Redelivery must not duplicate the row.
	if err := w.HandleEvent(ctx, amqp.NewRecordedEvent(tx(1, "Pizza"))); err != nil {
		t.Fatalf("redelivered: %v", err)
	}
	if rows := sink.Rows(); len(rows) != 1 || rows[0].Description != "Pizza" {
		t.Fatalf("rows = %+v", rows)
	}

	if err := w.HandleEvent(ctx, amqp.NewDeletedEvent(tx(1, "Pizza"))); err != nil {
		t.Fatalf("deleted: %v", err)
	}
	if rows := sink.Rows(); len(rows) != 0 {
		t.Fatalf("expected empty sink, got %+v", rows)
	}
}

func TestHandleEvent_UnknownTypeIsDropped(t *testing.T) {
	w := NewExportWorker(sinkmem.New())
	ev := amqp.NewRecordedEvent(tx(1, "Pizza"))
	ev.Type = "transaction.edited"
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("unknown type should not be retried: %v", err)
	}
}

type failingSink struct{ err error }

func (f failingSink) Append(context.Context, core.Transaction) error { return f.err }
func (f failingSink) Remove(context.Context, core.Transaction) error { return f.err }

func TestHandleEvent_SinkErrorIsReturned(t *testing.T) {
	boom := errors.New("quota exceeded")
	w := NewExportWorker(failingSink{err: boom})

	err := w.HandleEvent(context.Background(), amqp.NewRecordedEvent(tx(3, "Uber")))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
	err = w.HandleEvent(context.Background(), amqp.NewDeletedEvent(tx(3, "Uber")))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sink error, got %v", err)
	}
}

func TestBackfill_ExportsMonthOldestFirst(t *testing.T) {
	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	store := ledgermem.New(ledgermem.WithLocation(time.UTC), ledgermem.WithClock(func() time.Time { return now }))
	ctx := context.Background()
	for _, d := range []string{"Pizza", "Uber", "Cinema"} {
		_, err := store.Insert(ctx, core.NewTransaction{
			Description: d,
			Category:    core.CategoryOther,
			Amount:      core.Money{Cents: -100},
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	sink := sinkmem.New()
	w := NewExportWorker(sink)
	// One row already exported before the outage.
	_ = sink.Append(ctx, tx(1, "Pizza"))

	if err := w.Backfill(ctx, store, 2026, time.October); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	rows := sink.Rows()
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[2].Description != "Cinema" {
		t.Errorf("last row = %+v", rows[2])
	}

	if err := w.Backfill(ctx, store, 2026, time.February); err != nil {
		t.Fatalf("empty month backfill: %v", err)
	}
}

func TestBackfill_ReportsFailures(t *testing.T) {
	store := ledgermem.New(ledgermem.WithLocation(time.UTC))
	ctx := context.Background()
	_, _ = store.Insert(ctx, core.NewTransaction{Description: "Pizza", Category: core.CategoryFood, Amount: core.Money{Cents: -100}})

	w := NewExportWorker(failingSink{err: errors.New("down")})
	now := time.Now().UTC()
	if err := w.Backfill(ctx, store, now.Year(), now.Month()); err == nil {
		t.Fatal("expected backfill error")
	}
}
