// Package parser turns chat messages into transaction intents.
//
// Accepted shape: an optional sign, a decimal literal using '.' or ',' as the
// separator, whitespace, a free-text description and, in the payment-aware
// dialect, an optional trailing payment token (d, debito, c, credito).
// Anything else is not a transaction and is reported as ErrNotTransaction so
// the caller can ignore unrelated chat.
package parser

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"saldo/internal/core"
)

// ErrNotTransaction means the text does not follow the transaction grammar.
var ErrNotTransaction = errors.New("not a transaction message")

// Dialect selects which grammar variant is accepted.
type Dialect int

const (
	// DialectPaymentAware recognises a trailing payment-method token.
	DialectPaymentAware Dialect = iota
	// DialectLegacy treats everything after the amount as description.
	DialectLegacy
)

// Intent is the structured result of a successful parse.
type Intent struct {
	Amount        core.Money
	Description   string
	PaymentMethod core.PaymentMethod
	// ExplicitSign is '+', '-' or 0 when the amount had no sign.
	ExplicitSign byte
	// PaymentToken is the raw trailing token, empty when absent.
	PaymentToken string
	// TokenOnly marks the ambiguous case where the only word after the amount
	// was a payment token; the token text doubles as description.
	TokenOnly bool
}

// Kind is derived from the parsed amount.
func (i Intent) Kind() core.Kind {
	return core.KindOf(i.Amount)
}

// Parser is safe for concurrent use.
type Parser struct {
	dialect Dialect
}

func New(d Dialect) *Parser {
	return &Parser{dialect: d}
}

// Dialect returns the configured grammar variant.
func (p *Parser) Dialect() Dialect {
	return p.dialect
}

// Parse parses one message using the parser's dialect.
func (p *Parser) Parse(text string) (Intent, error) {
	return parse(text, p.dialect)
}

// Parse parses text with the payment-aware dialect.
func Parse(text string) (Intent, error) {
	return parse(text, DialectPaymentAware)
}

func parse(text string, dialect Dialect) (Intent, error) {
	s := strings.TrimSpace(text)

	literal, sign, rest, ok := scanAmount(s)
	if !ok {
		return Intent{}, ErrNotTransaction
	}
	rest, ok = skipSpace(rest)
	if !ok || rest == "" {
		return Intent{}, ErrNotTransaction
	}

	cents, err := core.ParseSignedDecimalToCents(literal)
	if err != nil {
		if errors.Is(err, core.ErrZeroAmount) {
			return Intent{}, core.ErrZeroAmount
		}
		return Intent{}, ErrNotTransaction
	}
	// Expense by default: only an explicit '+' makes income.
	if sign != '+' && cents > 0 {
		cents = -cents
	}

	intent := Intent{
		Amount:        core.Money{Cents: cents},
		Description:   rest,
		PaymentMethod: core.Debit,
		ExplicitSign:  sign,
	}
	if dialect == DialectLegacy {
		return intent, nil
	}

	desc, token, method, found := splitPaymentToken(rest)
	if !found {
		return intent, nil
	}
	intent.PaymentMethod = method
	intent.PaymentToken = token
	if desc == "" {
		intent.TokenOnly = true
		desc = token
	}
	intent.Description = desc
	return intent, nil
}

// scanAmount reads [+-]?digits([.,]digits)? from the start of s and returns the
// literal, the sign byte and the unread remainder.
func scanAmount(s string) (literal string, sign byte, rest string, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		sign = s[i]
		i++
	}
	digitsStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == digitsStart {
		return "", 0, s, false
	}
	if i < len(s) && (s[i] == '.' || s[i] == ',') {
		fracStart := i + 1
		j := fracStart
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j == fracStart {
			return "", 0, s, false
		}
		i = j
	}
	return s[:i], sign, s[i:], true
}

// skipSpace requires at least one whitespace rune and drops the whole run.
func skipSpace(s string) (string, bool) {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	if len(trimmed) == len(s) {
		return s, false
	}
	return trimmed, true
}

// splitPaymentToken checks whether the last whitespace-separated word of s is
// a payment token. A token that is the only word is still a token; desc is then
// empty and the caller decides what to show.
func splitPaymentToken(s string) (desc, token string, method core.PaymentMethod, found bool) {
	s = strings.TrimRightFunc(s, unicode.IsSpace)
	cut := strings.LastIndexFunc(s, unicode.IsSpace)
	word := s
	if cut >= 0 {
		_, size := utf8.DecodeRuneInString(s[cut:])
		word = s[cut+size:]
	}
	method, found = paymentToken(word)
	if !found {
		return s, "", "", false
	}
	if cut < 0 {
		return "", word, method, true
	}
	return strings.TrimRightFunc(s[:cut], unicode.IsSpace), word, method, true
}

func paymentToken(word string) (core.PaymentMethod, bool) {
	switch core.Fold(word) {
	case "d", "debito":
		return core.Debit, true
	case "c", "credito":
		return core.Credit, true
	default:
		return "", false
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
