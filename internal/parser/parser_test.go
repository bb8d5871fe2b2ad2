package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		amount int64
		desc   string
		method core.PaymentMethod
	}{
		{"explicit plus is income", "+123.45 Bonus", 12345, "Bonus", core.Debit},
		{"no sign defaults to expense", "50 Lunch d", -5000, "Lunch", core.Debit},
		{"comma decimal and credit suffix", "-89,90 Netflix c", -8990, "Netflix", core.Credit},
		{"integer amount", "50 Padaria", -5000, "Padaria", core.Debit},
		{"decimal comma without suffix", "120,50 Gasolina", -12050, "Gasolina", core.Debit},
		{"long debit token", "-50 Pizza debito", -5000, "Pizza", core.Debit},
		{"long credit token uppercase", "-200 Restaurante CREDITO", -20000, "Restaurante", core.Credit},
		{"accented credit token", "-200 Restaurante crédito", -20000, "Restaurante", core.Credit},
		{"description with digits and punctuation", "-35 Uber 2x (ida/volta)!", -3500, "Uber 2x (ida/volta)!", core.Debit},
		{"token inside description is kept", "-10 c d e f", -1000, "c d e f", core.Debit},
		{"token-like prefix is not a token", "-10 Café cd", -1000, "Café cd", core.Debit},
		{"extra whitespace", "  -15.5   Pão  na chapa   c ", -1550, "Pão  na chapa", core.Credit},
		{"income ignores nothing in parser", "+500 Freelance c", 50000, "Freelance", core.Credit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.amount, got.Amount.Cents)
			assert.Equal(t, tt.desc, got.Description)
			assert.Equal(t, tt.method, got.PaymentMethod)
		})
	}
}

func TestParseNotTransaction(t *testing.T) {
	inputs := []string{
		"",
		"hello there",
		"Pizza 50",
		"50",
		"50   ",
		"50Pizza",
		"50. Pizza",
		"50,Pizza",
		".50 Pizza",
		"+ 50 Pizza",
		"--50 Pizza",
		"/balanco",
	}
	for _, in := range inputs {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrNotTransaction, "input %q", in)
	}
}

func TestParseZeroAmount(t *testing.T) {
	for _, in := range []string{"0 Nada", "+0,00 Nada", "-0.001 Nada"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, core.ErrZeroAmount, "input %q", in)
	}
}

func TestParseExplicitSign(t *testing.T) {
	got, err := Parse("-50 Lunch")
	require.NoError(t, err)
	assert.Equal(t, byte('-'), got.ExplicitSign)
	assert.Equal(t, core.Expense, got.Kind())

	got, err = Parse("50 Lunch")
	require.NoError(t, err)
	assert.Equal(t, byte(0), got.ExplicitSign)
	assert.Equal(t, int64(-5000), got.Amount.Cents)
}

// A description made only of a payment token resolves toward the token.
func TestParseTokenOnlyDescription(t *testing.T) {
	tests := []struct {
		input  string
		method core.PaymentMethod
		desc   string
	}{
		{"-50 c", core.Credit, "c"},
		{"-50 credito", core.Credit, "credito"},
		{"-50 D", core.Debit, "D"},
		{"-50 debito", core.Debit, "debito"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, tt.input)
		assert.True(t, got.TokenOnly, tt.input)
		assert.Equal(t, tt.method, got.PaymentMethod, tt.input)
		assert.Equal(t, tt.desc, got.Description, tt.input)
	}
}

func TestParseLegacyDialect(t *testing.T) {
	p := New(DialectLegacy)

	got, err := p.Parse("-89,90 Netflix c")
	require.NoError(t, err)
	assert.Equal(t, "Netflix c", got.Description)
	assert.Equal(t, core.Debit, got.PaymentMethod)
	assert.Empty(t, got.PaymentToken)

	got, err = p.Parse("+3000 Salário")
	require.NoError(t, err)
	assert.Equal(t, int64(300000), got.Amount.Cents)

	_, err = p.Parse("oi")
	assert.ErrorIs(t, err, ErrNotTransaction)
}

func TestScanAmount(t *testing.T) {
	tests := []struct {
		in      string
		literal string
		sign    byte
		rest    string
		ok      bool
	}{
		{"+12,5 x", "+12,5", '+', " x", true},
		{"7", "7", 0, "", true},
		{"-3.14abc", "-3.14", '-', "abc", true},
		{"3.", "", 0, "3.", false},
		{"x1", "", 0, "x1", false},
	}
	for _, tt := range tests {
		literal, sign, rest, ok := scanAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if !tt.ok {
			continue
		}
		assert.Equal(t, tt.literal, literal, tt.in)
		assert.Equal(t, tt.sign, sign, tt.in)
		assert.Equal(t, tt.rest, rest, tt.in)
	}
}

func TestSplitPaymentToken(t *testing.T) {
	desc, token, method, found := splitPaymentToken("Pizza grande c")
	assert.True(t, found)
	assert.Equal(t, "Pizza grande", desc)
	assert.Equal(t, "c", token)
	assert.Equal(t, core.Credit, method)

	desc, _, _, found = splitPaymentToken("Pizza grande")
	assert.False(t, found)
	assert.Equal(t, "Pizza grande", desc)

	desc, token, _, found = splitPaymentToken("c")
	assert.True(t, found)
	assert.Empty(t, desc)
	assert.Equal(t, "c", token)
}
