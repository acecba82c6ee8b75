package lint

import (
	"log/slog"

	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
)

// Linter scores documents against a rule registry.
type Linter struct {
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Linter.
type Option func(*Linter)

// WithLogger sets the logger used for per-rule debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLinter creates a linter over registry. A nil registry means DefaultRegistry.
func NewLinter(registry *Registry, opts ...Option) *Linter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	l := &Linter{registry: registry, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Registry returns the linter's rule registry.
func (l *Linter) Registry() *Registry {
	return l.registry
}

// Score runs every rule against doc.
func (l *Linter) Score(doc *htmldoc.Document) *Result {
	return l.run(doc, nil)
}

// ScoreSource runs every rule against doc, letting source-aware rules locate
// their findings in src.
func (l *Linter) ScoreSource(doc *htmldoc.Document, src *Source) *Result {
	return l.run(doc, src)
}

// run evaluates all rules in registry order. There is no short-circuit.
func (l *Linter) run(doc *htmldoc.Document, src *Source) *Result {
	result := &Result{Total: l.registry.Len()}

	for _, rule := range l.registry.rules {
		var outcome Outcome
		switch r := rule.(type) {
		case SourceRule:
			if src != nil {
				outcome = r.CheckSource(doc, src)
			} else {
				outcome = r.Check(doc)
			}
		default:
			outcome = r.Check(doc)
		}

		if outcome.Passed {
			result.Passed++
		} else {
			l.logger.Debug("Rule failed",
				logfields.Rule(rule.Name()),
				slog.Int("diagnostics", len(outcome.Diagnostics)))
		}
		result.Outcomes = append(result.Outcomes, RuleOutcome{
			Rule:        rule.Name(),
			Passed:      outcome.Passed,
			Diagnostics: outcome.Diagnostics,
		})
		result.Diagnostics = append(result.Diagnostics, outcome.Diagnostics...)
	}

	if result.Total > 0 {
		result.Score = float64(result.Passed) / float64(result.Total)
	}
	return result
}
