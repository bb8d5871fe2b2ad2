package categorizer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"saldo/internal/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		answer string
		want   core.Category
		ok     bool
	}{
		{"Lazer", core.CategoryLeisure, true},
		{"  lazer.\n", core.CategoryLeisure, true},
		{"\"Saúde\"", core.CategoryHealth, true},
		{"saude", core.CategoryHealth, true},
		{"EDUCACAO", core.CategoryEducation, true},
		{"**Alimentação**", core.CategoryFood, true},
		{"```\nTransporte\n```", core.CategoryTransport, true},
		{"```text\nContas\n```", core.CategoryBills, true},
		{"Categoria: Supermercado", core.CategoryGroceries, true},
		{"roupas/beleza", core.CategoryClothing, true},
		{"A categoria é Investimentos", core.CategoryInvestments, true},
		{"Lazer\nporque é um filme", core.CategoryLeisure, true},
		{"Lazer ou Transporte", "", false},
		{"Comida", "", false},
		{"", "", false},
		{"```", "", false},
	}
	for _, tt := range tests {
		got, ok := Normalize(tt.answer)
		assert.Equal(t, tt.ok, ok, "answer %q", tt.answer)
		assert.Equal(t, tt.want, got, "answer %q", tt.answer)
	}
}

func TestAdapter_IncomeBypassesClassifier(t *testing.T) {
	called := false
	a := NewAdapter(Func(func(context.Context, string) (core.Category, error) {
		called = true
		return core.CategoryLeisure, nil
	}), WithLogger(quietLogger()))

	got := a.Categorize(context.Background(), core.Income, "Freelance")
	assert.Equal(t, core.CategorySalary, got)
	assert.False(t, called, "classifier must not be called for income")
}

func TestAdapter_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		classifier Categorizer
		want       core.Category
	}{
		{"error", Func(func(context.Context, string) (core.Category, error) {
			return "", errors.New("rate limited")
		}), core.CategoryOther},
		{"empty answer", Func(func(context.Context, string) (core.Category, error) {
			return "", nil
		}), core.CategoryOther},
		{"unknown label", Func(func(context.Context, string) (core.Category, error) {
			return "Comida", nil
		}), core.CategoryOther},
		{"loose label is normalised", Func(func(context.Context, string) (core.Category, error) {
			return " transporte. ", nil
		}), core.CategoryTransport},
		{"exact label", Func(func(context.Context, string) (core.Category, error) {
			return core.CategoryLeisure, nil
		}), core.CategoryLeisure},
		{"no classifier", nil, core.CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAdapter(tt.classifier, WithLogger(quietLogger()))
			assert.Equal(t, tt.want, a.Categorize(context.Background(), core.Expense, "Pizza"))
		})
	}
}

func TestAdapter_Timeout(t *testing.T) {
	slow := Func(func(ctx context.Context, _ string) (core.Category, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(5 * time.Second):
			return core.CategoryLeisure, nil
		}
	})
	a := NewAdapter(slow, WithTimeout(20*time.Millisecond), WithLogger(quietLogger()))

	start := time.Now()
	got := a.Categorize(context.Background(), core.Expense, "Cinema")
	assert.Equal(t, core.CategoryOther, got)
	assert.Less(t, time.Since(start), 2*time.Second)
}
