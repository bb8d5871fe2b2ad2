package ledger

import (
	"testing"

	"saldo/internal/core"
)

func TestSumFilterPartition(t *testing.T) {
	txs := []core.Transaction{
		{Kind: core.Income, PaymentMethod: core.Debit, Amount: core.Money{Cents: 1000}},
		{Kind: core.Income, PaymentMethod: core.Credit, Amount: core.Money{Cents: 1000}},
		{Kind: core.Expense, PaymentMethod: core.Debit, Amount: core.Money{Cents: -500}},
		{Kind: core.Expense, PaymentMethod: core.Credit, Amount: core.Money{Cents: -500}},
	}
	for i, tx := range txs {
		if !SumAll.Matches(tx) {
			t.Errorf("tx %d: SumAll must match everything", i)
		}
		if SumDebitOrIncome.Matches(tx) == SumCredit.Matches(tx) {
			t.Errorf("tx %d: must match exactly one of debit-or-income and credit", i)
		}
	}
	if SumFilter(99).Matches(txs[0]) {
		t.Error("unknown filter must match nothing")
	}
}

func TestPrepare(t *testing.T) {
	got, err := Prepare(core.NewTransaction{
		Description:   "  Salário  ",
		Category:      core.CategorySalary,
		Amount:        core.Money{Cents: 300000},
		PaymentMethod: core.Credit,
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got.Description != "Salário" || got.PaymentMethod != core.Debit {
		t.Errorf("Prepare normalisation: %+v", got)
	}

	if _, err := Prepare(core.NewTransaction{Description: "x", Category: core.CategoryOther}); err == nil {
		t.Error("zero amount should be rejected")
	}
}
