// Package core provides money parsing and handling utilities.
//
// Amounts are kept as signed integer cents. Parsing and division go through
// shopspring/decimal so no binary float ever touches a stored value.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseSignedDecimalToCents converts a decimal literal to signed cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Rounding is half away from zero on the third decimal
// place. Zero results are reported as ErrZeroAmount.
//
// Examples:
//
//	ParseSignedDecimalToCents("12.34")   -> 1234, nil
//	ParseSignedDecimalToCents("-89,90")  -> -8990, nil
//	ParseSignedDecimalToCents("12.345")  -> 1235, nil
//	ParseSignedDecimalToCents("0.001")   -> 0, ErrZeroAmount
func ParseSignedDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.Replace(s, ",", ".", 1)
	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" || s[0] == '.' || strings.IndexFunc(s, func(r rune) bool {
		return r != '.' && (r < '0' || r > '9')
	}) >= 0 {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	if cents.IsZero() {
		return 0, ErrZeroAmount
	}
	if negative {
		cents = cents.Neg()
	}
	return cents.IntPart(), nil
}

// maxCents keeps sums of many rows well inside int64.
const maxCents = 1 << 53

// NewMoneyFromCents is a small helper for readability at call sites.
func NewMoneyFromCents(c int64) Money {
	return Money{Cents: c}
}

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) IsNegative() bool { return m.Cents < 0 }

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals and a dot separator,
// e.g. "-89.90".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Float returns the value in currency units for chart rendering only.
// Never use it for arithmetic on stored amounts.
func (m Money) Float() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// DivideEvenly splits m into n equal parts rounded to the cent. A non-positive
// n yields zero.
func (m Money) DivideEvenly(n int) Money {
	if n <= 0 {
		return Money{}
	}
	q := decimal.NewFromInt(m.Cents).DivRound(decimal.NewFromInt(int64(n)), 0)
	return Money{Cents: q.IntPart()}
}
