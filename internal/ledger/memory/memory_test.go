package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/ledger/ledgertest"
)

func TestStoreContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T, clock *ledgertest.Clock, loc *time.Location) ledger.Store {
		return New(WithClock(clock.Now), WithLocation(loc))
	})
}

func TestLatestReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Insert(ctx, core.NewTransaction{
		Description: "Pizza", Category: core.CategoryFood, Amount: core.Money{Cents: -5000},
	})
	require.NoError(t, err)

	latest, err := s.Latest(ctx)
	require.NoError(t, err)
	latest.Description = "changed"

	again, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pizza", again.Description, "Latest leaked internal state")
	assert.Equal(t, 1, s.Len())
}
