package keywords

import (
	"github.com/kirillkom/acceptance-verifier/internal/core/domain"
)

// Match describes which rule and keyword produced a classification.
type Match struct {
	Category  domain.Category
	Group     Group
	Keyword   string
	Threshold float64
}

// Engine evaluates an ordered rule list against page text. It holds no
// mutable state after construction and is safe for concurrent use.
type Engine struct {
	rules            []Rule
	defaultThreshold float64
	overrides        Overrides
}

type Option func(*Engine)

// WithDefaultThreshold sets the similarity used by keywords without their own.
func WithDefaultThreshold(threshold float64) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.defaultThreshold = threshold
		}
	}
}

// WithOverrides applies threshold overrides loaded from configuration.
func WithOverrides(o Overrides) Option {
	return func(e *Engine) {
		e.overrides = o
		if o.DefaultThreshold > 0 {
			e.defaultThreshold = o.DefaultThreshold
		}
	}
}

// NewEngine builds an engine over rules, evaluated in slice order.
func NewEngine(rules []Rule, opts ...Option) *Engine {
	e := &Engine{
		rules:            append([]Rule(nil), rules...),
		defaultThreshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New builds an engine over DefaultRules.
func New(opts ...Option) *Engine {
	return NewEngine(DefaultRules(), opts...)
}

// Rules returns a copy of the rule list in evaluation order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Classify returns the category of the first matching rule, or UNKNOWN.
func (e *Engine) Classify(text string) domain.Category {
	m, ok := e.Explain(text)
	if !ok {
		return domain.CategoryUnknown
	}
	return m.Category
}

// Explain is Classify with the matching rule details.
func (e *Engine) Explain(text string) (Match, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return Match{}, false
	}
	for _, rule := range e.rules {
		for _, k := range rule.Keywords {
			threshold := e.thresholdFor(rule, k)
			if !FuzzyContains(normalized, k.Phrase, threshold) {
				continue
			}
			category := rule.resolve(normalized)
			if !category.IsKnown() {
				category = domain.CategoryUnknown
			}
			return Match{
				Category:  category,
				Group:     rule.Group,
				Keyword:   k.Phrase,
				Threshold: threshold,
			}, true
		}
	}
	return Match{}, false
}

func (e *Engine) thresholdFor(rule Rule, k Keyword) float64 {
	if v, ok := e.overrides.Keywords[k.Phrase]; ok && v > 0 {
		return v
	}
	if v, ok := e.overrides.Categories[string(rule.Category)]; ok && v > 0 {
		return v
	}
	if k.Threshold > 0 {
		return k.Threshold
	}
	return e.defaultThreshold
}
