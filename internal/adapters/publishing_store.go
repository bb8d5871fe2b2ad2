// Package adapters decorates ledger stores with side effects that must not
// change their semantics.
package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
)

// EventPublisher delivers ledger events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
	Close() error
}

// PublishingStore saves to the wrapped store first and then publishes a
// ledger event. A failed publish is logged and never fails the write: the
// transaction is already stored.
type PublishingStore struct {
	ledger.Store
	publisher EventPublisher
}

var _ ledger.Store = (*PublishingStore)(nil)

func NewPublishingStore(store ledger.Store, publisher EventPublisher) *PublishingStore {
	return &PublishingStore{Store: store, publisher: publisher}
}

// Insert implements ledger.Store.
func (s *PublishingStore) Insert(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	tx, err := s.Store.Insert(ctx, in)
	if err != nil {
		return core.Transaction{}, err
	}
	s.publish(ctx, amqp.NewRecordedEvent(tx))
	return tx, nil
}

// Delete implements ledger.Store. The deleted event carries the full row when
// the deleted transaction is the latest one, which is the only delete the bot
// issues; otherwise only the id is known.
func (s *PublishingStore) Delete(ctx context.Context, id int64) error {
	deleted := core.Transaction{ID: id}
	if latest, err := s.Store.Latest(ctx); err == nil && latest != nil && latest.ID == id {
		deleted = *latest
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewDeletedEvent(deleted))
	return nil
}

// Close closes the store and the publisher.
func (s *PublishingStore) Close() error {
	var errs []error
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *PublishingStore) publish(ctx context.Context, ev *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping ledger event", "type", ev.Type)
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"transaction_id", ev.TransactionID,
			"error", err)
	}
}
