package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/parser"
)

// DefaultUserName is shown when the chat user has no display name.
const DefaultUserName = "Você"

// Categorizer labels a transaction. Implementations must not fail; see
// categorizer.Adapter.
type Categorizer interface {
	Categorize(ctx context.Context, kind core.Kind, description string) core.Category
}

// Ledger orchestrates recording, reporting and deleting transactions.
type Ledger struct {
	store       ledger.Store
	categorizer Categorizer
	policy      BalancePolicy
	parser      *parser.Parser
	loc         *time.Location
	now         func() time.Time
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithLocation sets the zone used for "today" and the current month.
func WithLocation(loc *time.Location) LedgerOption {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) { l.now = now }
}

// NewLedger wires the service. The parser dialect follows the policy: the
// payment token is only recognised when payment methods are tracked.
func NewLedger(store ledger.Store, categorizer Categorizer, policy BalancePolicy, opts ...LedgerOption) *Ledger {
	if policy == nil {
		policy = PaymentAwarePolicy{}
	}
	dialect := parser.DialectLegacy
	if policy.TracksPaymentMethod() {
		dialect = parser.DialectPaymentAware
	}
	l := &Ledger{
		store:       store,
		categorizer: categorizer,
		policy:      policy,
		parser:      parser.New(dialect),
		loc:         time.Local,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the configured balance policy.
func (l *Ledger) Policy() BalancePolicy { return l.policy }

// Now returns the current time in the ledger's zone.
func (l *Ledger) Now() time.Time { return l.now().In(l.loc) }

// Accepts reports whether text follows the transaction grammar, including
// amounts that round to zero. It lets transports ignore unrelated chat before
// doing any work.
func (l *Ledger) Accepts(text string) bool {
	_, err := l.parser.Parse(text)
	return err == nil || errors.Is(err, core.ErrZeroAmount)
}

// Record parses rawText, stores the transaction and returns the confirmation.
// Text that is not a transaction yields parser.ErrNotTransaction and no write.
func (l *Ledger) Record(ctx context.Context, rawText, userName string) (*core.Confirmation, error) {
	intent, err := l.parser.Parse(rawText)
	if err != nil {
		return nil, err
	}

	kind := intent.Kind()
	category := l.categorizer.Categorize(ctx, kind, intent.Description)

	method := intent.PaymentMethod
	if !l.policy.TracksPaymentMethod() {
		method = core.Debit
	}

	tx, err := l.store.Insert(ctx, core.NewTransaction{
		Description:   intent.Description,
		Category:      category,
		Amount:        intent.Amount,
		PaymentMethod: method,
	})
	if err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	balances, err := l.policy.Balances(ctx, l.store)
	if err != nil {
		return nil, fmt.Errorf("compute balances: %w", err)
	}

	if userName == "" {
		userName = DefaultUserName
	}
	tx.CreatedAt = tx.CreatedAt.In(l.loc)

	slog.DebugContext(ctx, "Transaction stored",
		"component", "ledger",
		"id", tx.ID,
		"kind", string(tx.Kind),
		"category", string(tx.Category),
		"amount_cents", tx.Amount.Cents,
		"payment_method", string(tx.PaymentMethod),
		"token_only", intent.TokenOnly)

	return &core.Confirmation{
		Transaction:       tx,
		UserName:          userName,
		Balances:          balances,
		DailyAllowance:    core.DailyAllowance(balances.Account, l.Now()),
		ShowPaymentMethod: kind == core.Expense && l.policy.TracksPaymentMethod(),
	}, nil
}

// MonthlyReport aggregates one calendar month. Balances are ledger-wide.
func (l *Ledger) MonthlyReport(ctx context.Context, year int, month time.Month) (*core.MonthlyReport, error) {
	txs, err := l.store.ListByMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("load month: %w", err)
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	rep := Aggregate(year, month, txs, l.policy.TracksPaymentMethod())
	balances, err := l.policy.Balances(ctx, l.store)
	if err != nil {
		return nil, fmt.Errorf("compute balances: %w", err)
	}
	rep.Balances = balances
	return &rep, nil
}

// CurrentMonthReport reports on the current month in the ledger's zone.
func (l *Ledger) CurrentMonthReport(ctx context.Context) (*core.MonthlyReport, error) {
	now := l.Now()
	return l.MonthlyReport(ctx, now.Year(), now.Month())
}

// DeleteLast removes the most recently recorded transaction.
func (l *Ledger) DeleteLast(ctx context.Context) (*core.Deletion, error) {
	latest, err := l.store.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest transaction: %w", err)
	}
	if latest == nil {
		return nil, ErrNothingToDelete
	}

	if err := l.store.Delete(ctx, latest.ID); err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}

	balances, err := l.policy.Balances(ctx, l.store)
	if err != nil {
		return nil, fmt.Errorf("compute balances: %w", err)
	}
	deleted := *latest
	deleted.CreatedAt = deleted.CreatedAt.In(l.loc)
	return &core.Deletion{Transaction: deleted, Balances: balances}, nil
}
