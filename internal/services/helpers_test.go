package services

import (
	"context"
	"errors"
	"time"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/ledger/memory"
)

var errBoom = errors.New("database is locked")

// failingStore wraps a memory store and fails selected operations.
type failingStore struct {
	*memory.Store
	failInsert bool
	failSum    bool
	failList   bool
	failLatest bool
}

func (f *failingStore) Insert(ctx context.Context, tx core.NewTransaction) (core.Transaction, error) {
	if f.failInsert {
		return core.Transaction{}, errBoom
	}
	return f.Store.Insert(ctx, tx)
}

func (f *failingStore) Sum(ctx context.Context, filter ledger.SumFilter) (core.Money, error) {
	if f.failSum {
		return core.Money{}, errBoom
	}
	return f.Store.Sum(ctx, filter)
}

func (f *failingStore) ListByMonth(ctx context.Context, y int, m time.Month) ([]core.Transaction, error) {
	if f.failList {
		return nil, errBoom
	}
	return f.Store.ListByMonth(ctx, y, m)
}

func (f *failingStore) Latest(ctx context.Context) (*core.Transaction, error) {
	if f.failLatest {
		return nil, errBoom
	}
	return f.Store.Latest(ctx)
}

// fixedCategorizer labels every expense with one category.
type fixedCategorizer core.Category

func (c fixedCategorizer) Categorize(_ context.Context, kind core.Kind, _ string) core.Category {
	if kind == core.Income {
		return core.IncomeCategory
	}
	return core.Category(c)
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func seed(store ledger.Store, txs ...core.NewTransaction) {
	for _, tx := range txs {
		if _, err := store.Insert(context.Background(), tx); err != nil {
			panic(err)
		}
	}
}

func nt(desc string, cat core.Category, cents int64, pm core.PaymentMethod) core.NewTransaction {
	return core.NewTransaction{Description: desc, Category: cat, Amount: core.Money{Cents: cents}, PaymentMethod: pm}
}
