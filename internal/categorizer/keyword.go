package categorizer

import (
	"context"
	"strings"

	"saldo/internal/core"
)

// defaultKeywords covers the descriptions people usually type. Keys are
// already folded (lowercase, no accents).
var defaultKeywords = map[core.Category][]string{
	core.CategoryFood:        {"pizza", "lanche", "almoco", "jantar", "restaurante", "ifood", "padaria", "cafe", "hamburguer", "sushi", "bar", "acai", "lunch", "dinner"},
	core.CategoryGroceries:   {"mercado", "supermercado", "feira", "hortifruti", "atacadao", "carrefour", "assai"},
	core.CategoryTransport:   {"uber", "99", "gasolina", "combustivel", "onibus", "metro", "taxi", "estacionamento", "pedagio", "passagem"},
	core.CategoryLeisure:     {"cinema", "netflix", "spotify", "show", "jogo", "steam", "viagem", "festa", "teatro"},
	core.CategoryHealth:      {"farmacia", "remedio", "medico", "consulta", "dentista", "exame", "academia", "plano de saude"},
	core.CategoryEducation:   {"curso", "livro", "escola", "faculdade", "mensalidade", "udemy", "alura"},
	core.CategoryBills:       {"luz", "agua", "internet", "aluguel", "condominio", "celular", "telefone", "gas", "energia", "iptu", "ipva"},
	core.CategoryClothing:    {"roupa", "camisa", "calca", "tenis", "sapato", "cabelo", "cabeleireiro", "barbearia", "manicure", "perfume", "maquiagem"},
	core.CategoryInvestments: {"investimento", "tesouro", "cdb", "acoes", "bitcoin", "poupanca", "fii"},
}

// KeywordCategorizer is a deterministic classifier used when no language
// model is configured. It never errors; unmatched text gets the fallback.
type KeywordCategorizer struct {
	order    []core.Category
	keywords map[core.Category][]string
}

// NewKeywordCategorizer returns a matcher over the built-in keyword table.
func NewKeywordCategorizer() *KeywordCategorizer {
	return &KeywordCategorizer{order: core.Taxonomy(), keywords: defaultKeywords}
}

func (k *KeywordCategorizer) Classify(_ context.Context, description string) (core.Category, error) {
	words := strings.FieldsFunc(core.Fold(description), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	joined := " " + strings.Join(words, " ") + " "
	for _, cat := range k.order {
		for _, kw := range k.keywords[cat] {
			if strings.Contains(joined, " "+kw+" ") {
				return cat, nil
			}
		}
	}
	return core.FallbackCategory, nil
}
