// Package ledger defines the persistence contract for transactions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/core"
)

// ErrNotFound is returned by Delete when no row has the given id.
var ErrNotFound = errors.New("transaction not found")

// SumFilter selects which rows contribute to a running total.
type SumFilter int

const (
	// SumAll adds every transaction.
	SumAll SumFilter = iota
	// SumDebitOrIncome adds income plus debit expenses: the account balance.
	SumDebitOrIncome
	// SumCredit adds credit card expenses only.
	SumCredit
)

func (f SumFilter) String() string {
	switch f {
	case SumAll:
		return "all"
	case SumDebitOrIncome:
		return "debit_or_income"
	case SumCredit:
		return "credit"
	default:
		return fmt.Sprintf("SumFilter(%d)", int(f))
	}
}

// Matches reports whether t contributes to the total selected by f. Every
// transaction matches exactly one of SumDebitOrIncome and SumCredit.
func (f SumFilter) Matches(t core.Transaction) bool {
	switch f {
	case SumAll:
		return true
	case SumDebitOrIncome:
		return t.Kind == core.Income || t.PaymentMethod != core.Credit
	case SumCredit:
		return t.Kind == core.Expense && t.PaymentMethod == core.Credit
	default:
		return false
	}
}

// Store persists transactions. Implementations must be safe for concurrent use.
type Store interface {
	// Insert validates and stores tx, assigning ID and CreatedAt.
	Insert(ctx context.Context, tx core.NewTransaction) (core.Transaction, error)
	// ListByMonth returns the month's transactions, most recent first.
	ListByMonth(ctx context.Context, year int, month time.Month) ([]core.Transaction, error)
	// Latest returns the transaction with the highest id, or nil when empty.
	Latest(ctx context.Context) (*core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Sum(ctx context.Context, filter SumFilter) (core.Money, error)
	// Close releases resources. Calling it more than once is safe.
	Close() error
}

// Prepare normalises and validates a new transaction before insertion.
func Prepare(tx core.NewTransaction) (core.NewTransaction, error) {
	tx = tx.Normalized()
	if err := tx.Validate(); err != nil {
		return core.NewTransaction{}, fmt.Errorf("invalid transaction: %w", err)
	}
	return tx, nil
}
