package services

import (
	"time"

	"saldo/internal/core"
)

// Aggregate groups one month of transactions into report lines. txs must be
// ordered most recent first; category order in the result follows the first
// time each category is seen in that order. It performs no I/O, so repeated
// calls over the same input give identical results. Balances are left zero.
func Aggregate(year int, month time.Month, txs []core.Transaction, byMethod bool) core.MonthlyReport {
	rep := core.MonthlyReport{Year: year, Month: month, TransactionCount: len(txs)}

	var order []core.Category
	net := make(map[core.Category]int64)
	for _, tx := range txs {
		if _, seen := net[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		net[tx.Category] += tx.Amount.Cents
	}
	for _, cat := range order {
		switch n := net[cat]; {
		case n > 0:
			rep.Income = append(rep.Income, core.CategoryAmount{Category: cat, Amount: core.Money{Cents: n}})
		case n < 0:
			rep.Expenses = append(rep.Expenses, core.CategoryAmount{Category: cat, Amount: core.Money{Cents: -n}})
		}
	}

	if byMethod {
		rep.ExpensesByMethod = groupExpensesByMethod(txs)
	}
	return rep
}

// groupExpensesByMethod sums expense magnitudes per payment method and
// category. Income rows never appear here.
func groupExpensesByMethod(txs []core.Transaction) map[core.PaymentMethod][]core.CategoryAmount {
	out := make(map[core.PaymentMethod][]core.CategoryAmount)
	index := make(map[core.PaymentMethod]map[core.Category]int)
	for _, tx := range txs {
		if tx.Kind != core.Expense {
			continue
		}
		pm := tx.PaymentMethod
		if !pm.IsValid() {
			pm = core.Debit
		}
		if index[pm] == nil {
			index[pm] = make(map[core.Category]int)
		}
		i, ok := index[pm][tx.Category]
		if !ok {
			i = len(out[pm])
			index[pm][tx.Category] = i
			out[pm] = append(out[pm], core.CategoryAmount{Category: tx.Category})
		}
		out[pm][i].Amount = out[pm][i].Amount.Add(tx.Amount.Abs())
	}
	return out
}
