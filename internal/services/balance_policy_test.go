package services

import (
	"context"
	"errors"
	"testing"

	"saldo/internal/core"
	"saldo/internal/ledger/memory"
)

func TestGetBalancePolicy(t *testing.T) {
	tests := []struct {
		name      string
		wantName  string
		tracks    bool
		expectErr bool
	}{
		{"", PolicyPaymentAware, true, false},
		{"payment_aware", PolicyPaymentAware, true, false},
		{"simple", PolicySimple, false, false},
		{"fancy", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := GetBalancePolicy(tt.name)
			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Name() != tt.wantName || p.TracksPaymentMethod() != tt.tracks {
				t.Errorf("got %s tracks=%v", p.Name(), p.TracksPaymentMethod())
			}
		})
	}
}

type flatPolicy struct{ SimplePolicy }

func (flatPolicy) Name() string { return "flat_test" }

func TestRegisterBalancePolicy(t *testing.T) {
	RegisterBalancePolicy(flatPolicy{})
	p, err := GetBalancePolicy("flat_test")
	if err != nil || p.Name() != "flat_test" {
		t.Fatalf("registered policy not found: %v", err)
	}
	found := false
	for _, n := range BalancePolicyNames() {
		found = found || n == "flat_test"
	}
	if !found {
		t.Error("BalancePolicyNames misses registered policy")
	}
}

func TestPolicies_Balances(t *testing.T) {
	store := memory.New()
	seed(store,
		nt("Salário", core.CategorySalary, 300000, core.Debit),
		nt("Pizza", core.CategoryFood, -5000, core.Debit),
		nt("Netflix", core.CategoryLeisure, -8990, core.Credit),
	)
	ctx := context.Background()

	simple, err := SimplePolicy{}.Balances(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if simple.Account.Cents != 286010 || simple.TracksCredit {
		t.Errorf("simple = %+v", simple)
	}

	aware, err := PaymentAwarePolicy{}.Balances(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if aware.Account.Cents != 295000 || aware.Credit.Cents != -8990 || !aware.TracksCredit {
		t.Errorf("payment aware = %+v", aware)
	}
	if aware.CreditBill().Cents != 8990 {
		t.Errorf("CreditBill = %d", aware.CreditBill().Cents)
	}
	if simple.Account.Cents != aware.Account.Cents+aware.Credit.Cents {
		t.Error("simple total must equal account plus credit")
	}
}

func TestPolicies_PropagateStoreErrors(t *testing.T) {
	store := &failingStore{Store: memory.New(), failSum: true}
	for _, p := range []BalancePolicy{SimplePolicy{}, PaymentAwarePolicy{}} {
		if _, err := p.Balances(context.Background(), store); !errors.Is(err, errBoom) {
			t.Errorf("%s: expected wrapped store error, got %v", p.Name(), err)
		}
	}
}
