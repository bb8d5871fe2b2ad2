package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Debit  PaymentMethod = "debit"
	Credit PaymentMethod = "credit"
)

type (
	// Kind is derived from the sign of a transaction amount.
	Kind string

	// PaymentMethod tells whether an expense reduces the spendable balance
	// (debit) or accrues to the credit card bill (credit).
	PaymentMethod string

	Money struct {
		Cents int64
	}

	// NewTransaction is what the recorder hands to a ledger store. ID and
	// CreatedAt are assigned by the store.
	NewTransaction struct {
		Description   string
		Category      Category
		Amount        Money
		PaymentMethod PaymentMethod
	}

	// Transaction is a persisted ledger row.
	Transaction struct {
		ID            int64
		CreatedAt     time.Time
		Description   string
		Category      Category
		Amount        Money
		Kind          Kind
		PaymentMethod PaymentMethod
	}
)

var (
	ErrZeroAmount       = errors.New("amount must not be zero")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrUnknownCategory  = errors.New("category not in taxonomy")
	ErrInvalidPayment   = errors.New("invalid payment method")
	ErrKindMismatch     = errors.New("kind does not match amount sign")
)

// KindOf returns Income for positive amounts and Expense otherwise.
func KindOf(m Money) Kind {
	if m.Cents > 0 {
		return Income
	}
	return Expense
}

func (k Kind) String() string { return string(k) }

func (p PaymentMethod) String() string { return string(p) }

// IsValid reports whether p is one of the supported payment methods.
func (p PaymentMethod) IsValid() bool {
	return p == Debit || p == Credit
}

// ParsePaymentMethod maps a stored value to a PaymentMethod. Empty values and
// the legacy Portuguese spellings are accepted.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "debit", "debito", "débito":
		return Debit, nil
	case "credit", "credito", "crédito":
		return Credit, nil
	default:
		return "", ErrInvalidPayment
	}
}

// Kind returns the kind implied by the amount sign.
func (n NewTransaction) Kind() Kind {
	return KindOf(n.Amount)
}

// Normalized returns a copy with a trimmed description and income forced to
// debit: income is never tagged as credit card income.
func (n NewTransaction) Normalized() NewTransaction {
	n.Description = strings.TrimSpace(n.Description)
	if n.PaymentMethod == "" || n.Kind() == Income {
		n.PaymentMethod = Debit
	}
	return n
}

func (n NewTransaction) Validate() error {
	if n.Amount.IsZero() {
		return ErrZeroAmount
	}
	if strings.TrimSpace(n.Description) == "" {
		return ErrEmptyDescription
	}
	if n.Category == "" {
		return ErrEmptyCategory
	}
	if !n.Category.IsKnown() {
		return ErrUnknownCategory
	}
	if !n.PaymentMethod.IsValid() {
		return ErrInvalidPayment
	}
	return nil
}

// Validate checks the invariants a stored transaction must hold.
func (t Transaction) Validate() error {
	if t.Amount.IsZero() {
		return ErrZeroAmount
	}
	if t.Kind != KindOf(t.Amount) {
		return ErrKindMismatch
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Category == "" {
		return ErrEmptyCategory
	}
	if !t.PaymentMethod.IsValid() {
		return ErrInvalidPayment
	}
	return nil
}
