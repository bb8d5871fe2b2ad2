package core

import "time"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// SeriesPoint is one slice of a chart.
type SeriesPoint struct {
	Label string
	Value float64
}

// Balances are ledger-wide running totals. Credit is the signed sum of credit
// card expenses (always <= 0); it is only meaningful when TracksCredit is set.
type Balances struct {
	Account      Money
	Credit       Money
	TracksCredit bool
}

// CreditBill is the credit card total as a positive amount.
func (b Balances) CreditBill() Money {
	return b.Credit.Abs()
}

// MonthlyReport is the grouped view of one calendar month.
type MonthlyReport struct {
	Year  int
	Month time.Month

	// Income holds categories whose signed net is positive.
	Income []CategoryAmount
	// Expenses holds categories whose signed net is negative, as magnitudes.
	Expenses []CategoryAmount
	// ExpensesByMethod splits expense-only amounts by payment method. Nil
	// when the balance policy does not track payment methods.
	ExpensesByMethod map[PaymentMethod][]CategoryAmount

	TransactionCount int
	Balances         Balances
}

// ChartSeries returns every expense category (debit and credit combined).
func (r MonthlyReport) ChartSeries() []SeriesPoint {
	out := make([]SeriesPoint, 0, len(r.Expenses))
	for _, e := range r.Expenses {
		out = append(out, SeriesPoint{Label: string(e.Category), Value: e.Amount.Float()})
	}
	return out
}

// Confirmation describes a freshly recorded transaction and the balances
// after it.
type Confirmation struct {
	Transaction    Transaction
	UserName       string
	Balances       Balances
	DailyAllowance Money
	// ShowPaymentMethod is set for expenses when payment methods are tracked.
	ShowPaymentMethod bool
}

// Deletion describes a removed transaction and the balances after removal.
type Deletion struct {
	Transaction Transaction
	Balances    Balances
}
