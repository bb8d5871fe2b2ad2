package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a label from the closed taxonomy.
type Category string

const (
	CategoryFood        Category = "Alimentação"
	CategoryGroceries   Category = "Supermercado"
	CategoryTransport   Category = "Transporte"
	CategoryLeisure     Category = "Lazer"
	CategoryHealth      Category = "Saúde"
	CategoryEducation   Category = "Educação"
	CategoryBills       Category = "Contas"
	CategoryClothing    Category = "Roupas/Beleza"
	CategorySalary      Category = "Salário"
	CategoryInvestments Category = "Investimentos"
	CategoryOther       Category = "Outros"
)

// IncomeCategory is assigned to every income without classification.
const IncomeCategory = CategorySalary

// FallbackCategory is used whenever classification fails.
const FallbackCategory = CategoryOther

const defaultIcon = "📦"

var taxonomy = []Category{
	CategoryFood,
	CategoryGroceries,
	CategoryTransport,
	CategoryLeisure,
	CategoryHealth,
	CategoryEducation,
	CategoryBills,
	CategoryClothing,
	CategorySalary,
	CategoryInvestments,
	CategoryOther,
}

var icons = map[Category]string{
	CategoryFood:        "🍔",
	CategoryGroceries:   "🛒",
	CategoryTransport:   "🚗",
	CategoryLeisure:     "🎮",
	CategoryHealth:      "💊",
	CategoryEducation:   "📚",
	CategoryBills:       "📄",
	CategoryClothing:    "✂️",
	CategorySalary:      "💰",
	CategoryInvestments: "📈",
	CategoryOther:       "📦",
}

// foldedTaxonomy indexes labels by their accent- and case-folded form.
var foldedTaxonomy = func() map[string]Category {
	m := make(map[string]Category, len(taxonomy))
	for _, c := range taxonomy {
		m[Fold(string(c))] = c
	}
	return m
}()

// Taxonomy returns a copy of the full label set in display order.
func Taxonomy() []Category {
	return append([]Category(nil), taxonomy...)
}

// TaxonomyLabels returns the taxonomy as plain strings.
func TaxonomyLabels() []string {
	out := make([]string, len(taxonomy))
	for i, c := range taxonomy {
		out[i] = string(c)
	}
	return out
}

func (c Category) String() string { return string(c) }

// Icon returns the emoji for c, or the generic box for unknown labels.
func (c Category) Icon() string {
	if icon, ok := icons[c]; ok {
		return icon
	}
	return defaultIcon
}

// IsKnown reports whether c is an exact taxonomy member.
func (c Category) IsKnown() bool {
	_, ok := icons[c]
	return ok
}

// LookupCategory matches free text against the taxonomy ignoring case and
// accents ("saude" finds "Saúde").
func LookupCategory(s string) (Category, bool) {
	c, ok := foldedTaxonomy[Fold(s)]
	return c, ok
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s, strips diacritics and surrounding space.
func Fold(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
