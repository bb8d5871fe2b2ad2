// Package ledgertest holds behaviour checks shared by every ledger.Store
// implementation.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

// Clock is a settable time source for stores under test.
type Clock struct{ T time.Time }

func (c *Clock) Now() time.Time { return c.T }

// Factory builds an empty store that reads time from clock and buckets months
// in loc.
type Factory func(t *testing.T, clock *Clock, loc *time.Location) ledger.Store

func tx(desc string, cat core.Category, cents int64, pm core.PaymentMethod) core.NewTransaction {
	return core.NewTransaction{Description: desc, Category: cat, Amount: core.Money{Cents: cents}, PaymentMethod: pm}
}

// Run executes the store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	loc := time.FixedZone("BRT", -3*60*60)

	t.Run("InsertThenLatest", func(t *testing.T) {
		clock := &Clock{T: time.Date(2026, 10, 15, 10, 30, 0, 0, loc)}
		s := newStore(t, clock, loc)
		ctx := context.Background()

		latest, err := s.Latest(ctx)
		require.NoError(t, err)
		assert.Nil(t, latest)

		got, err := s.Insert(ctx, tx("Netflix", core.CategoryLeisure, -8990, core.Credit))
		require.NoError(t, err)
		assert.Positive(t, got.ID)
		assert.Equal(t, core.Expense, got.Kind)

		latest, err = s.Latest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, got.ID, latest.ID)
		assert.Equal(t, "Netflix", latest.Description)
		assert.Equal(t, core.CategoryLeisure, latest.Category)
		assert.Equal(t, int64(-8990), latest.Amount.Cents)
		assert.Equal(t, core.Credit, latest.PaymentMethod)
		assert.Equal(t, core.Expense, latest.Kind)
		assert.True(t, latest.CreatedAt.Equal(clock.T), "created_at %v != %v", latest.CreatedAt, clock.T)
	})

	t.Run("InsertNormalisesAndValidates", func(t *testing.T) {
		s := newStore(t, &Clock{T: time.Now()}, loc)
		ctx := context.Background()

		got, err := s.Insert(ctx, tx("  Bonus ", core.CategorySalary, 12345, core.Credit))
		require.NoError(t, err)
		assert.Equal(t, "Bonus", got.Description)
		assert.Equal(t, core.Debit, got.PaymentMethod, "income is always debit")
		assert.Equal(t, core.Income, got.Kind)

		_, err = s.Insert(ctx, tx("Zero", core.CategoryOther, 0, core.Debit))
		assert.ErrorIs(t, err, core.ErrZeroAmount)
		_, err = s.Insert(ctx, tx("x", "Comida", -100, core.Debit))
		assert.ErrorIs(t, err, core.ErrUnknownCategory)
	})

	t.Run("IDsIncreaseAndAreNotReused", func(t *testing.T) {
		s := newStore(t, &Clock{T: time.Now()}, loc)
		ctx := context.Background()

		a, err := s.Insert(ctx, tx("a", core.CategoryOther, -100, core.Debit))
		require.NoError(t, err)
		b, err := s.Insert(ctx, tx("b", core.CategoryOther, -100, core.Debit))
		require.NoError(t, err)
		assert.Greater(t, b.ID, a.ID)

		require.NoError(t, s.Delete(ctx, b.ID))
		c, err := s.Insert(ctx, tx("c", core.CategoryOther, -100, core.Debit))
		require.NoError(t, err)
		assert.Greater(t, c.ID, b.ID)

		assert.ErrorIs(t, s.Delete(ctx, b.ID), ledger.ErrNotFound)
	})

	t.Run("SumFilters", func(t *testing.T) {
		s := newStore(t, &Clock{T: time.Now()}, loc)
		ctx := context.Background()

		for _, in := range []core.NewTransaction{
			tx("Salário", core.CategorySalary, 300000, core.Debit),
			tx("Pizza", core.CategoryFood, -5000, core.Debit),
			tx("Netflix", core.CategoryLeisure, -8990, core.Credit),
			tx("Restaurante", core.CategoryFood, -20000, core.Credit),
			tx("Freelance", core.CategorySalary, 50000, core.Credit),
		} {
			_, err := s.Insert(ctx, in)
			require.NoError(t, err)
		}

		all, err := s.Sum(ctx, ledger.SumAll)
		require.NoError(t, err)
		debit, err := s.Sum(ctx, ledger.SumDebitOrIncome)
		require.NoError(t, err)
		credit, err := s.Sum(ctx, ledger.SumCredit)
		require.NoError(t, err)

		assert.Equal(t, int64(316010), all.Cents)
		assert.Equal(t, int64(345000), debit.Cents)
		assert.Equal(t, int64(-28990), credit.Cents)
		assert.Equal(t, all.Cents, debit.Cents+credit.Cents)
	})

	t.Run("SumEmpty", func(t *testing.T) {
		s := newStore(t, &Clock{T: time.Now()}, loc)
		for _, f := range []ledger.SumFilter{ledger.SumAll, ledger.SumDebitOrIncome, ledger.SumCredit} {
			got, err := s.Sum(context.Background(), f)
			require.NoError(t, err)
			assert.Zero(t, got.Cents, f.String())
		}
	})

	t.Run("ListByMonth", func(t *testing.T) {
		clock := &Clock{}
		s := newStore(t, clock, loc)
		ctx := context.Background()

		insertAt := func(at time.Time, desc string) {
			t.Helper()
			clock.T = at
			_, err := s.Insert(ctx, tx(desc, core.CategoryOther, -100, core.Debit))
			require.NoError(t, err)
		}
		insertAt(time.Date(2026, 9, 30, 23, 59, 59, 0, loc), "september")
		insertAt(time.Date(2026, 10, 1, 0, 0, 0, 0, loc), "first")
		insertAt(time.Date(2026, 10, 20, 12, 0, 0, 0, loc), "third")
		insertAt(time.Date(2026, 10, 10, 12, 0, 0, 0, loc), "second")
		insertAt(time.Date(2026, 11, 1, 0, 0, 0, 0, loc), "november")

		got, err := s.ListByMonth(ctx, 2026, time.October)
		require.NoError(t, err)
		var descs []string
		for _, tx := range got {
			descs = append(descs, tx.Description)
		}
		assert.Equal(t, []string{"third", "second", "first"}, descs)

		empty, err := s.ListByMonth(ctx, 1900, time.February)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		s := newStore(t, &Clock{T: time.Now()}, loc)
		assert.NoError(t, s.Close())
		assert.NoError(t, s.Close())
	})
}
