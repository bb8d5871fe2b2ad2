// Package report renders ledger results as chat messages and charts.
//
// Monthly reports, deletion notices and help use Telegram's legacy Markdown;
// the per-transaction confirmation is plain text.
package report

import (
	"fmt"
	"strings"

	"saldo/internal/core"
)

// Fixed replies.
const (
	MsgNoTransactionsThisMonth = "📭 Nenhuma transação registrada neste mês."
	MsgNothingToDelete         = "❌ Não há transações para deletar."
	MsgStorageError            = "❌ Erro ao acessar o banco de dados."
	MsgZeroAmount              = "⚠️ O valor precisa ser diferente de zero."
	ChartCaption               = "📊 Gráfico de distribuição dos seus gastos"
)

const currency = "BRL"

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown protects user text embedded in a Markdown message.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatConfirmation renders the reply to a recorded transaction.
func FormatConfirmation(c core.Confirmation) string {
	tx := c.Transaction
	var b strings.Builder

	if tx.Kind == core.Income {
		fmt.Fprintf(&b, "%s received %s %s in %s %s\n", c.UserName, tx.Amount.Abs(), currency, tx.Category.Icon(), tx.Category)
	} else {
		fmt.Fprintf(&b, "%s spent %s %s on %s %s\n", c.UserName, tx.Amount.Abs(), currency, tx.Category.Icon(), tx.Category)
		if c.ShowPaymentMethod {
			if tx.PaymentMethod == core.Credit {
				b.WriteString("💳 Payment: Credit Card\n")
			} else {
				b.WriteString("💸 Payment: Debit\n")
			}
		}
	}
	b.WriteString(tx.CreatedAt.Format(core.DisplayDateLayout))
	b.WriteString("\n\n")
	b.WriteString(tx.Description)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "💰 Account balance: %s %s (~%s %s per day)\n", c.Balances.Account, currency, c.DailyAllowance, currency)
	if c.Balances.TracksCredit {
		fmt.Fprintf(&b, "💳 Credit card bill: %s %s\n", c.Balances.CreditBill(), currency)
	}
	b.WriteString("Send /balanco to see detailed balance.")
	return b.String()
}

// FormatMonthlyReport renders the /balanco text.
func FormatMonthlyReport(r core.MonthlyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Balanço de %s*\n\n", core.MonthNamePT(r.Month))

	writeSection(&b, "💚 *ENTRADAS:*", r.Income, "")

	if r.ExpensesByMethod != nil {
		writeSection(&b, "💸 *GASTOS NO DÉBITO:*", r.ExpensesByMethod[core.Debit], "-")
		writeSection(&b, "💳 *GASTOS NO CRÉDITO:*", r.ExpensesByMethod[core.Credit], "-")
	} else {
		writeSection(&b, "💸 *GASTOS:*", r.Expenses, "-")
	}

	if r.Balances.TracksCredit {
		fmt.Fprintf(&b, "💰 *Saldo em Conta (Débito): R$ %s*\n", r.Balances.Account)
		fmt.Fprintf(&b, "💳 *Fatura do Crédito: R$ %s*", r.Balances.CreditBill())
	} else {
		fmt.Fprintf(&b, "💰 *Saldo em Conta: R$ %s*", r.Balances.Account)
	}
	return b.String()
}

func writeSection(b *strings.Builder, header string, lines []core.CategoryAmount, sign string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(header)
	b.WriteByte('\n')
	for _, l := range lines {
		fmt.Fprintf(b, "%s *%s:* R$ %s%s\n", l.Category.Icon(), EscapeMarkdown(string(l.Category)), sign, l.Amount)
	}
	b.WriteByte('\n')
}

// FormatDeletion renders the /delete reply.
func FormatDeletion(d core.Deletion) string {
	tx := d.Transaction
	sign := "-"
	if tx.Kind == core.Income {
		sign = "+"
	}

	var b strings.Builder
	b.WriteString("🗑️ *Transação deletada com sucesso!*\n\n")
	fmt.Fprintf(&b, "%s %s: R$ %s%s\n", tx.Category.Icon(), EscapeMarkdown(string(tx.Category)), sign, tx.Amount.Abs())
	fmt.Fprintf(&b, "📝 %s\n", EscapeMarkdown(tx.Description))
	if tx.Kind == core.Expense && d.Balances.TracksCredit {
		if tx.PaymentMethod == core.Credit {
			b.WriteString("💳 Crédito")
		} else {
			b.WriteString("💸 Débito")
		}
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "💰 Saldo em conta: R$ %s", d.Balances.Account)
	if d.Balances.TracksCredit {
		fmt.Fprintf(&b, "\n💳 Fatura do crédito: R$ %s", d.Balances.CreditBill())
	}
	return b.String()
}

// HelpText is the /start message. Payment-method instructions are included
// only when the ledger tracks them.
func HelpText(firstName string, tracksPayment bool) string {
	if firstName == "" {
		firstName = "👋"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Olá, %s! 👋\n\n", EscapeMarkdown(firstName))
	b.WriteString("🤖 *Sou seu assistente financeiro pessoal!*\n\n")
	b.WriteString("📝 *Como usar:*\n\n")
	if tracksPayment {
		b.WriteString("💸 *Registrar gastos no débito:*\n" +
			"   • Digite: `-50 Pizza d` ou `-50 Pizza debito`\n" +
			"   • Digite: `-120.50 Gasolina d`\n\n" +
			"💳 *Registrar gastos no crédito:*\n" +
			"   • Digite: `-200 Restaurante c` ou `-200 Restaurante credito`\n" +
			"   • Digite: `-89.90 Netflix c`\n\n")
	} else {
		b.WriteString("💸 *Registrar gastos:*\n" +
			"   • Digite: `-50 Pizza`\n" +
			"   • Digite: `-120.50 Gasolina`\n\n")
	}
	b.WriteString("💰 *Registrar entradas:*\n" +
		"   • Digite: `+3000 Salário`\n" +
		"   • Digite: `+500 Freelance`\n\n")
	if tracksPayment {
		b.WriteString("ℹ️ *Como funciona:*\n" +
			"   • Gastos no débito: descontam do seu saldo\n" +
			"   • Gastos no crédito: aparecem no balanço mas não afetam o saldo\n" +
			"   • Se não especificar, será débito por padrão\n\n")
	}
	b.WriteString("🔍 *Comandos disponíveis:*\n" +
		"/balanco - Ver balanço mensal completo com gráfico\n" +
		"/delete - Deletar última transação registrada\n\n" +
		"✨ A IA classifica automaticamente seus gastos por categoria!")
	return b.String()
}

// ChartTitle is the pie chart heading for a month.
func ChartTitle(r core.MonthlyReport) string {
	return "Distribuição de Gastos - " + core.MonthNamePT(r.Month)
}
