// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for running balances. Each policy
// decides which ledger rows feed the account balance and whether a separate
// credit card bill is tracked.
package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

const (
	PolicySimple       = "simple"
	PolicyPaymentAware = "payment_aware"

	// DefaultBalancePolicy is used when no policy is configured.
	DefaultBalancePolicy = PolicyPaymentAware
)

// BalancePolicy computes ledger-wide running balances.
type BalancePolicy interface {
	Name() string
	// TracksPaymentMethod reports whether expenses carry a debit/credit split.
	TracksPaymentMethod() bool
	Balances(ctx context.Context, store ledger.Store) (core.Balances, error)
}

// SimplePolicy sums every transaction into one account balance.
type SimplePolicy struct{}

func (SimplePolicy) Name() string              { return PolicySimple }
func (SimplePolicy) TracksPaymentMethod() bool { return false }

func (SimplePolicy) Balances(ctx context.Context, store ledger.Store) (core.Balances, error) {
	total, err := store.Sum(ctx, ledger.SumAll)
	if err != nil {
		return core.Balances{}, fmt.Errorf("account balance: %w", err)
	}
	return core.Balances{Account: total}, nil
}

// PaymentAwarePolicy keeps credit card expenses out of the account balance
// and reports them as the card bill.
type PaymentAwarePolicy struct{}

func (PaymentAwarePolicy) Name() string              { return PolicyPaymentAware }
func (PaymentAwarePolicy) TracksPaymentMethod() bool { return true }

func (PaymentAwarePolicy) Balances(ctx context.Context, store ledger.Store) (core.Balances, error) {
	var account, credit core.Money
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := store.Sum(gctx, ledger.SumDebitOrIncome)
		if err != nil {
			return fmt.Errorf("account balance: %w", err)
		}
		account = m
		return nil
	})
	g.Go(func() error {
		m, err := store.Sum(gctx, ledger.SumCredit)
		if err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}
		credit = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Balances{}, err
	}
	return core.Balances{Account: account, Credit: credit, TracksCredit: true}, nil
}

var (
	policiesMu sync.RWMutex
	policies   = map[string]BalancePolicy{
		PolicySimple:       SimplePolicy{},
		PolicyPaymentAware: PaymentAwarePolicy{},
	}
)

// GetBalancePolicy returns the policy registered under name. An empty name
// selects DefaultBalancePolicy.
func GetBalancePolicy(name string) (BalancePolicy, error) {
	if name == "" {
		name = DefaultBalancePolicy
	}
	policiesMu.RLock()
	defer policiesMu.RUnlock()
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown balance policy: %s", name)
	}
	return p, nil
}

// RegisterBalancePolicy adds or replaces a policy.
func RegisterBalancePolicy(p BalancePolicy) {
	policiesMu.Lock()
	defer policiesMu.Unlock()
	policies[p.Name()] = p
}

// BalancePolicyNames lists registered policies in sorted order.
func BalancePolicyNames() []string {
	policiesMu.RLock()
	defer policiesMu.RUnlock()
	names := make([]string, 0, len(policies))
	for n := range policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
