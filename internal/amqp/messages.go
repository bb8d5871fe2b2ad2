package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"saldo/internal/core"
)

// Event types carried on the ledger queue.
const (
	EventRecorded = "transaction.recorded"
	EventDeleted  = "transaction.deleted"
)

// LedgerEvent announces a change to the ledger. It carries the full row so
// consumers never need database access.
type LedgerEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	TransactionID int64     `json:"transaction_id"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	AmountCents   int64     `json:"amount_cents"`
	PaymentMethod string    `json:"payment_method"`
	CreatedAt     time.Time `json:"created_at"`
	Timestamp     time.Time `json:"timestamp"`
}

func newEvent(eventType string, tx core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		TransactionID: tx.ID,
		Description:   tx.Description,
		Category:      string(tx.Category),
		AmountCents:   tx.Amount.Cents,
		PaymentMethod: string(tx.PaymentMethod),
		CreatedAt:     tx.CreatedAt,
		Timestamp:     time.Now(),
	}
}

// NewRecordedEvent announces a stored transaction.
func NewRecordedEvent(tx core.Transaction) *LedgerEvent {
	return newEvent(EventRecorded, tx)
}

// NewDeletedEvent announces a removed transaction.
func NewDeletedEvent(tx core.Transaction) *LedgerEvent {
	return newEvent(EventDeleted, tx)
}

// Transaction rebuilds the ledger row carried by the event.
func (m *LedgerEvent) Transaction() core.Transaction {
	amount := core.Money{Cents: m.AmountCents}
	pm, err := core.ParsePaymentMethod(m.PaymentMethod)
	if err != nil {
		pm = core.Debit
	}
	return core.Transaction{
		ID:            m.TransactionID,
		CreatedAt:     m.CreatedAt,
		Description:   m.Description,
		Category:      core.Category(m.Category),
		Amount:        amount,
		Kind:          core.KindOf(amount),
		PaymentMethod: pm,
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and checks an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case EventRecorded, EventDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.TransactionID <= 0 {
		return nil, fmt.Errorf("event %s has no transaction id", msg.EventID)
	}
	return &msg, nil
}
