package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"saldo/internal/categorizer"
	"saldo/internal/core"
	"saldo/internal/ledger/memory"
	"saldo/internal/parser"
)

var brt = time.FixedZone("BRT", -3*60*60)

func newTestLedger(policy BalancePolicy) (*Ledger, *memory.Store, *clock) {
	c := &clock{t: time.Date(2026, 10, 15, 10, 0, 0, 0, brt)}
	store := memory.New(memory.WithClock(c.Now), memory.WithLocation(brt))
	l := NewLedger(store, fixedCategorizer(core.CategoryFood), policy, WithClock(c.Now), WithLocation(brt))
	return l, store, c
}

func TestLedger_RecordExpense(t *testing.T) {
	l, store, _ := newTestLedger(PaymentAwarePolicy{})
	ctx := context.Background()
	seed(store, nt("Salário", core.CategorySalary, 170000, core.Debit))

	conf, err := l.Record(ctx, "-50 Pizza c", "Ana")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	tx := conf.Transaction
	if tx.Description != "Pizza" || tx.Category != core.CategoryFood {
		t.Errorf("transaction = %q/%q", tx.Description, tx.Category)
	}
	if tx.Amount.Cents != -5000 || tx.PaymentMethod != core.Credit || tx.Kind != core.Expense {
		t.Errorf("transaction = %d %s %s", tx.Amount.Cents, tx.PaymentMethod, tx.Kind)
	}
	if conf.UserName != "Ana" || !conf.ShowPaymentMethod {
		t.Errorf("user=%q showPayment=%v", conf.UserName, conf.ShowPaymentMethod)
	}
	if conf.Balances.Account.Cents != 170000 || conf.Balances.Credit.Cents != -5000 {
		t.Errorf("balances = %+v", conf.Balances)
	}
	// 15 October: 17 days left including today.
	if conf.DailyAllowance.Cents != 10000 {
		t.Errorf("DailyAllowance = %d, want 10000", conf.DailyAllowance.Cents)
	}
	if store.Len() != 2 {
		t.Errorf("stored = %d, want 2", store.Len())
	}
}

func TestLedger_RecordIncome(t *testing.T) {
	l, _, _ := newTestLedger(PaymentAwarePolicy{})

	conf, err := l.Record(context.Background(), "+3000 Salário c", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if conf.Transaction.Category != core.CategorySalary {
		t.Errorf("Category = %q", conf.Transaction.Category)
	}
	if conf.Transaction.PaymentMethod != core.Debit {
		t.Errorf("income is never credit, got %s", conf.Transaction.PaymentMethod)
	}
	if conf.UserName != DefaultUserName || conf.ShowPaymentMethod {
		t.Errorf("user=%q showPayment=%v", conf.UserName, conf.ShowPaymentMethod)
	}
	if conf.Balances.Account.Cents != 300000 {
		t.Errorf("Account = %d", conf.Balances.Account.Cents)
	}
}

func TestLedger_RecordLongDescription(t *testing.T) {
	l, store, _ := newTestLedger(PaymentAwarePolicy{})
	desc := strings.Repeat("ç", 260)

	if !l.Accepts("-50 " + desc) {
		t.Fatal("long description not accepted")
	}
	conf, err := l.Record(context.Background(), "-50 "+desc, "Ana")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if conf.Transaction.Description != desc {
		t.Errorf("description truncated to %d bytes", len(conf.Transaction.Description))
	}
	if store.Len() != 1 {
		t.Errorf("stored = %d, want 1", store.Len())
	}
}

func TestLedger_RecordRejectsNonTransactions(t *testing.T) {
	l, store, _ := newTestLedger(PaymentAwarePolicy{})
	ctx := context.Background()

	if _, err := l.Record(ctx, "bom dia", "Ana"); !errors.Is(err, parser.ErrNotTransaction) {
		t.Errorf("err = %v, want ErrNotTransaction", err)
	}
	if _, err := l.Record(ctx, "0,00 Nada", "Ana"); !errors.Is(err, core.ErrZeroAmount) {
		t.Errorf("err = %v, want ErrZeroAmount", err)
	}
	if store.Len() != 0 {
		t.Errorf("nothing must be written, stored = %d", store.Len())
	}
}

func TestLedger_RecordSimplePolicyUsesLegacyGrammar(t *testing.T) {
	l, _, _ := newTestLedger(SimplePolicy{})

	conf, err := l.Record(context.Background(), "-89,90 Netflix c", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if conf.Transaction.Description != "Netflix c" || conf.Transaction.PaymentMethod != core.Debit {
		t.Errorf("transaction = %q %s", conf.Transaction.Description, conf.Transaction.PaymentMethod)
	}
	if conf.ShowPaymentMethod || conf.Balances.TracksCredit {
		t.Error("simple policy must not show payment methods")
	}
	if conf.Balances.Account.Cents != -8990 {
		t.Errorf("Account = %d", conf.Balances.Account.Cents)
	}
}

func TestLedger_RecordCategorizerFailureStillPersists(t *testing.T) {
	c := &clock{t: time.Now()}
	store := memory.New(memory.WithClock(c.Now))
	failing := categorizer.NewAdapter(categorizer.Func(func(context.Context, string) (core.Category, error) {
		return "", errors.New("model unavailable")
	}))
	l := NewLedger(store, failing, PaymentAwarePolicy{})

	conf, err := l.Record(context.Background(), "-12 Coisa", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if conf.Transaction.Category != core.CategoryOther {
		t.Errorf("Category = %q, want %q", conf.Transaction.Category, core.CategoryOther)
	}
	if store.Len() != 1 {
		t.Errorf("stored = %d, want 1", store.Len())
	}
}

func TestLedger_RecordStorageErrors(t *testing.T) {
	store := &failingStore{Store: memory.New(), failInsert: true}
	l := NewLedger(store, fixedCategorizer(core.CategoryFood), PaymentAwarePolicy{})

	if _, err := l.Record(context.Background(), "-10 Pão", ""); !errors.Is(err, errBoom) {
		t.Errorf("insert failure: err = %v", err)
	}

	store.failInsert, store.failSum = false, true
	if _, err := l.Record(context.Background(), "-10 Pão", ""); !errors.Is(err, errBoom) {
		t.Errorf("sum failure: err = %v", err)
	}
}

func TestLedger_RecordOnLastDayOfMonth(t *testing.T) {
	l, store, c := newTestLedger(PaymentAwarePolicy{})
	c.t = time.Date(2026, 10, 31, 23, 0, 0, 0, brt)
	seed(store, nt("Salário", core.CategorySalary, 10000, core.Debit))

	conf, err := l.Record(context.Background(), "-1 Bala", "")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if conf.DailyAllowance.Cents != 9900 {
		t.Errorf("DailyAllowance = %d, want the whole balance on the last day", conf.DailyAllowance.Cents)
	}
}

func TestLedger_MonthlyReport(t *testing.T) {
	l, store, c := newTestLedger(PaymentAwarePolicy{})
	ctx := context.Background()

	c.t = time.Date(2026, 9, 30, 12, 0, 0, 0, brt)
	seed(store, nt("Aluguel", core.CategoryBills, -150000, core.Debit))
	c.t = time.Date(2026, 10, 2, 12, 0, 0, 0, brt)
	seed(store,
		nt("Salário", core.CategorySalary, 500000, core.Debit),
		nt("Pizza", core.CategoryFood, -5000, core.Debit),
		nt("Netflix", core.CategoryLeisure, -8990, core.Credit),
	)

	rep, err := l.CurrentMonthReport(ctx)
	if err != nil {
		t.Fatalf("CurrentMonthReport: %v", err)
	}
	if rep.Month != time.October || rep.TransactionCount != 3 {
		t.Errorf("month=%s count=%d", rep.Month, rep.TransactionCount)
	}
	if len(rep.Income) != 1 || len(rep.Expenses) != 2 {
		t.Fatalf("income=%d expenses=%d", len(rep.Income), len(rep.Expenses))
	}
	if len(rep.ExpensesByMethod[core.Debit]) != 1 || len(rep.ExpensesByMethod[core.Credit]) != 1 {
		t.Errorf("ExpensesByMethod = %v", rep.ExpensesByMethod)
	}

	// Balances span the whole ledger, not only October.
	if rep.Balances.Account.Cents != 500000-5000-150000 || rep.Balances.Credit.Cents != -8990 {
		t.Errorf("balances = %+v", rep.Balances)
	}

	again, err := l.MonthlyReport(ctx, 2026, time.October)
	if err != nil {
		t.Fatalf("MonthlyReport: %v", err)
	}
	if !reflect.DeepEqual(rep, again) {
		t.Error("reporting twice without writes must give the same result")
	}
}

func TestLedger_MonthlyReportEmpty(t *testing.T) {
	l, store, _ := newTestLedger(PaymentAwarePolicy{})
	seed(store, nt("Pizza", core.CategoryFood, -5000, core.Debit))

	if _, err := l.MonthlyReport(context.Background(), 1900, time.February); !errors.Is(err, ErrNoTransactions) {
		t.Errorf("err = %v, want ErrNoTransactions", err)
	}
}

func TestLedger_MonthlyReportStorageError(t *testing.T) {
	store := &failingStore{Store: memory.New(), failList: true}
	l := NewLedger(store, fixedCategorizer(core.CategoryFood), nil)
	if _, err := l.MonthlyReport(context.Background(), 2026, time.October); !errors.Is(err, errBoom) {
		t.Errorf("err = %v", err)
	}
}

func TestLedger_DeleteLast(t *testing.T) {
	l, store, _ := newTestLedger(PaymentAwarePolicy{})
	ctx := context.Background()

	if _, err := l.DeleteLast(ctx); !errors.Is(err, ErrNothingToDelete) {
		t.Fatalf("empty ledger: err = %v", err)
	}

	seed(store,
		nt("Salário", core.CategorySalary, 100000, core.Debit),
		nt("Netflix", core.CategoryLeisure, -8990, core.Credit),
	)
	del, err := l.DeleteLast(ctx)
	if err != nil {
		t.Fatalf("DeleteLast: %v", err)
	}
	if del.Transaction.Description != "Netflix" {
		t.Errorf("deleted %q, want Netflix", del.Transaction.Description)
	}
	if del.Balances.Account.Cents != 100000 || del.Balances.Credit.Cents != 0 {
		t.Errorf("balances = %+v", del.Balances)
	}
	if store.Len() != 1 {
		t.Errorf("stored = %d, want 1", store.Len())
	}

	del, err = l.DeleteLast(ctx)
	if err != nil {
		t.Fatalf("DeleteLast: %v", err)
	}
	if del.Transaction.Description != "Salário" {
		t.Errorf("deleted %q, want Salário", del.Transaction.Description)
	}

	if _, err := l.DeleteLast(ctx); !errors.Is(err, ErrNothingToDelete) {
		t.Errorf("err = %v, want ErrNothingToDelete", err)
	}
}

func TestLedger_DeleteLastStorageError(t *testing.T) {
	store := &failingStore{Store: memory.New(), failLatest: true}
	l := NewLedger(store, fixedCategorizer(core.CategoryFood), nil)
	_, err := l.DeleteLast(context.Background())
	if !errors.Is(err, errBoom) || errors.Is(err, ErrNothingToDelete) {
		t.Errorf("err = %v", err)
	}
}

func TestLedger_Accepts(t *testing.T) {
	l, _, _ := newTestLedger(PaymentAwarePolicy{})

	tests := []struct {
		text string
		want bool
	}{
		{"-50 Pizza c", true},
		{"0 Nada", true}, // zero amounts still get a reply
		{"bom dia", false},
		{"/balanco", false},
	}
	for _, tt := range tests {
		if got := l.Accepts(tt.text); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
