package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"saldo/internal/core"
)

var brt = time.FixedZone("BRT", -3*60*60)

func money(c int64) core.Money { return core.Money{Cents: c} }

func TestFormatConfirmation_Expense(t *testing.T) {
	c := core.Confirmation{
		Transaction: core.Transaction{
			ID:            7,
			CreatedAt:     time.Date(2026, 10, 15, 9, 0, 0, 0, brt),
			Description:   "Netflix",
			Category:      core.CategoryLeisure,
			Amount:        money(-8990),
			Kind:          core.Expense,
			PaymentMethod: core.Credit,
		},
		UserName:          "Ana",
		Balances:          core.Balances{Account: money(170000), Credit: money(-8990), TracksCredit: true},
		DailyAllowance:    money(10000),
		ShowPaymentMethod: true,
	}
	want := "Ana spent 89.90 BRL on 🎮 Lazer\n" +
		"💳 Payment: Credit Card\n" +
		"15 October 2026, Thursday\n\n" +
		"Netflix\n\n" +
		"💰 Account balance: 1700.00 BRL (~100.00 BRL per day)\n" +
		"💳 Credit card bill: 89.90 BRL\n" +
		"Send /balanco to see detailed balance."
	assert.Equal(t, want, FormatConfirmation(c))
}

func TestFormatConfirmation_IncomeSimple(t *testing.T) {
	c := core.Confirmation{
		Transaction: core.Transaction{
			CreatedAt:     time.Date(2026, 10, 1, 9, 0, 0, 0, brt),
			Description:   "Salário",
			Category:      core.CategorySalary,
			Amount:        money(300000),
			Kind:          core.Income,
			PaymentMethod: core.Debit,
		},
		UserName:       "Você",
		Balances:       core.Balances{Account: money(-12345)},
		DailyAllowance: money(-398),
	}
	got := FormatConfirmation(c)
	assert.True(t, strings.HasPrefix(got, "Você received 3000.00 BRL in 💰 Salário\n1 October 2026, Thursday\n"), got)
	assert.NotContains(t, got, "Payment:")
	assert.NotContains(t, got, "Credit card bill")
	assert.Contains(t, got, "💰 Account balance: -123.45 BRL (~-3.98 BRL per day)")
}

func TestFormatMonthlyReport_PaymentAware(t *testing.T) {
	r := core.MonthlyReport{
		Year:   2026,
		Month:  time.October,
		Income: []core.CategoryAmount{{Category: core.CategorySalary, Amount: money(300000)}},
		Expenses: []core.CategoryAmount{
			{Category: core.CategoryFood, Amount: money(25000)},
		},
		ExpensesByMethod: map[core.PaymentMethod][]core.CategoryAmount{
			core.Debit:  {{Category: core.CategoryFood, Amount: money(5000)}},
			core.Credit: {{Category: core.CategoryFood, Amount: money(20000)}},
		},
		Balances: core.Balances{Account: money(295000), Credit: money(-20000), TracksCredit: true},
	}
	want := "📊 *Balanço de outubro*\n\n" +
		"💚 *ENTRADAS:*\n💰 *Salário:* R$ 3000.00\n\n" +
		"💸 *GASTOS NO DÉBITO:*\n🍔 *Alimentação:* R$ -50.00\n\n" +
		"💳 *GASTOS NO CRÉDITO:*\n🍔 *Alimentação:* R$ -200.00\n\n" +
		"💰 *Saldo em Conta (Débito): R$ 2950.00*\n" +
		"💳 *Fatura do Crédito: R$ 200.00*"
	assert.Equal(t, want, FormatMonthlyReport(r))
}

func TestFormatMonthlyReport_SimpleOmitsEmptySections(t *testing.T) {
	r := core.MonthlyReport{
		Month:    time.March,
		Expenses: []core.CategoryAmount{{Category: core.CategoryTransport, Amount: money(1500)}},
		Balances: core.Balances{Account: money(-1500)},
	}
	got := FormatMonthlyReport(r)
	assert.Contains(t, got, "*Balanço de março*")
	assert.NotContains(t, got, "ENTRADAS")
	assert.Contains(t, got, "💸 *GASTOS:*\n🚗 *Transporte:* R$ -15.00\n")
	assert.True(t, strings.HasSuffix(got, "💰 *Saldo em Conta: R$ -15.00*"))
	assert.NotContains(t, got, "Fatura")
}

func TestFormatDeletion(t *testing.T) {
	d := core.Deletion{
		Transaction: core.Transaction{
			Description:   "Pizza_grande",
			Category:      core.CategoryFood,
			Amount:        money(-5000),
			Kind:          core.Expense,
			PaymentMethod: core.Debit,
		},
		Balances: core.Balances{Account: money(100000), Credit: money(-8990), TracksCredit: true},
	}
	want := "🗑️ *Transação deletada com sucesso!*\n\n" +
		"🍔 Alimentação: R$ -50.00\n" +
		"📝 Pizza\\_grande\n" +
		"💸 Débito\n\n" +
		"💰 Saldo em conta: R$ 1000.00\n" +
		"💳 Fatura do crédito: R$ 89.90"
	assert.Equal(t, want, FormatDeletion(d))

	d.Transaction = core.Transaction{Description: "Bonus", Category: core.CategorySalary, Amount: money(1000), Kind: core.Income}
	got := FormatDeletion(d)
	assert.Contains(t, got, "💰 Salário: R$ +10.00\n📝 Bonus\n\n\n")
}

func TestHelpText(t *testing.T) {
	aware := HelpText("", true)
	assert.True(t, strings.HasPrefix(aware, "Olá, 👋! 👋"))
	assert.Contains(t, aware, "-200 Restaurante c")
	assert.Contains(t, aware, "/balanco")

	simple := HelpText("Ana_B", false)
	assert.Contains(t, simple, "Olá, Ana\\_B!")
	assert.NotContains(t, simple, "crédito")
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\*b\\_c\\`d\\[e]", EscapeMarkdown("a*b_c`d[e]"))
}
