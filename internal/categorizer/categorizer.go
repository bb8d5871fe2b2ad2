// Package categorizer assigns taxonomy labels to transaction descriptions.
//
// The Adapter is the only entry point the rest of the ledger uses. It never
// fails: income is labelled without asking any classifier, and every
// classifier error or unusable answer degrades to the fallback label.
package categorizer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"saldo/internal/core"
)

// ErrUnrecognised is returned when a classifier answer matches no label.
var ErrUnrecognised = errors.New("classifier answer is not a known category")

// Categorizer classifies an expense description into a taxonomy label.
type Categorizer interface {
	Classify(ctx context.Context, description string) (core.Category, error)
}

// Func adapts a plain function to the Categorizer interface.
type Func func(ctx context.Context, description string) (core.Category, error)

func (f Func) Classify(ctx context.Context, description string) (core.Category, error) {
	return f(ctx, description)
}

// Normalize maps a free-form model answer to a taxonomy label. It tolerates
// surrounding quotes, code fences, trailing punctuation, different case and
// missing accents. The second result is false when nothing matches.
func Normalize(answer string) (core.Category, bool) {
	s := strings.TrimSpace(answer)
	if strings.HasPrefix(s, "```") {
		// Drop the fence line, which may carry a language tag.
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	// Only the first non-empty line counts.
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s = line
			break
		}
	}
	// "Categoria: Lazer"
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Trim(s, " \t\r\"'`*.!,;“”«»")
	if s == "" {
		return "", false
	}

	if c, ok := core.LookupCategory(s); ok {
		return c, true
	}
	// The answer mentions exactly one label.
	folded := core.Fold(s)
	var found core.Category
	for _, c := range core.Taxonomy() {
		if strings.Contains(folded, core.Fold(string(c))) {
			if found != "" {
				return "", false
			}
			found = c
		}
	}
	return found, found != ""
}

// Adapter wraps a Categorizer with the income bypass, a per-call timeout and
// the fallback label.
type Adapter struct {
	classifier Categorizer
	timeout    time.Duration
	logger     *slog.Logger
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithTimeout bounds each classifier call. Zero disables the bound.
func WithTimeout(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.timeout = d }
}

// WithLogger sets the logger used for degraded classifications.
func WithLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l }
}

// NewAdapter returns an Adapter. A nil classifier labels every expense with
// the fallback category.
func NewAdapter(c Categorizer, opts ...AdapterOption) *Adapter {
	a := &Adapter{classifier: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Categorize returns the label for a transaction of the given kind.
func (a *Adapter) Categorize(ctx context.Context, kind core.Kind, description string) core.Category {
	if kind == core.Income {
		return core.IncomeCategory
	}
	if a.classifier == nil {
		return core.FallbackCategory
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	cat, err := a.classifier.Classify(ctx, description)
	if err != nil {
		a.logger.WarnContext(ctx, "Classification failed, using fallback category",
			"component", "categorizer", "description", description, "error", err)
		return core.FallbackCategory
	}
	if !cat.IsKnown() {
		normalized, ok := Normalize(string(cat))
		if !ok {
			a.logger.WarnContext(ctx, "Classifier returned an unknown category",
				"component", "categorizer", "description", description, "answer", string(cat))
			return core.FallbackCategory
		}
		cat = normalized
	}
	return cat
}
