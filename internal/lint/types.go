// Package lint scores HTML documents against semantic-markup rules and applies
// automated corrections for the fixable ones.
package lint

import (
	"math"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
)

// Kind is the structured failure code of a diagnostic. The corrector dispatches
// on Kind; the display message is never used as a key.
type Kind string

const (
	KindMalformedTable     Kind = "malformed-table"
	KindMissingHeader      Kind = "missing-header"
	KindMissingMain        Kind = "missing-main"
	KindMissingFooter      Kind = "missing-footer"
	KindMissingSemanticTag Kind = "missing-semantic-tag"
	KindNoHeadings         Kind = "no-headings"
	KindDivAsNav           Kind = "div-as-nav"
	KindMissingFigcaption  Kind = "missing-figcaption"
	KindMissingSummary     Kind = "missing-summary"
	KindMissingBlockquote  Kind = "missing-blockquote"
	KindMissingCite        Kind = "missing-cite"
	KindMissingTime        Kind = "missing-time"
	KindMissingAddress     Kind = "missing-address"
	KindMissingAbbrTitle   Kind = "missing-abbr-title"
	KindMissingQ           Kind = "missing-q"
	KindMissingMark        Kind = "missing-mark"
	KindMissingDelIns      Kind = "missing-del-ins"
)

// Diagnostic represents a single rule failure.
type Diagnostic struct {
	Rule    string `json:"rule"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Index   int    `json:"index,omitempty"` // 1-based ordinal of the offending element, 0 for document-level
	Line    int    `json:"line,omitempty"`  // 1-based source line, 0 when unknown
	Tag     string `json:"tag,omitempty"`
}

// String returns the display message.
func (d Diagnostic) String() string {
	return d.Message
}

// Outcome is the verdict of one rule.
type Outcome struct {
	Passed      bool
	Diagnostics []Diagnostic
}

func pass() Outcome {
	return Outcome{Passed: true}
}

func fail(diags ...Diagnostic) Outcome {
	return Outcome{Passed: false, Diagnostics: diags}
}

// Rule checks a parsed document.
type Rule interface {
	// Name returns the unique identifier for this rule.
	Name() string

	// Check evaluates the document.
	Check(doc *htmldoc.Document) Outcome
}

// SourceRule is a Rule that can also use the raw source text, for example to
// attach line numbers to its diagnostics.
type SourceRule interface {
	Rule
	CheckSource(doc *htmldoc.Document, src *Source) Outcome
}

// Source is the raw text a document was parsed from.
type Source struct {
	Path string
	Text string
}

// LineOf returns the 1-based line of the n-th (1-based) match of pattern in
// the source text, or 0 if there are fewer matches.
func (s *Source) LineOf(pattern *regexp.Regexp, occurrence int) int {
	if s == nil || occurrence < 1 {
		return 0
	}
	locs := pattern.FindAllStringIndex(s.Text, occurrence)
	if len(locs) < occurrence {
		return 0
	}
	return strings.Count(s.Text[:locs[occurrence-1][0]], "\n") + 1
}

// RuleOutcome pairs a rule name with its outcome.
type RuleOutcome struct {
	Rule        string       `json:"rule"`
	Passed      bool         `json:"passed"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}

// Result contains the outcome of scoring one document.
type Result struct {
	Outcomes    []RuleOutcome
	Diagnostics []Diagnostic
	Passed      int
	Total       int
	Score       float64
}

// Rounded returns the score rounded to two decimals.
func (r *Result) Rounded() float64 {
	return Round2(r.Score)
}

// Messages flattens the diagnostics to their display messages.
func (r *Result) Messages() []string {
	return Messages(r.Diagnostics)
}

// FailedRules returns the names of failed rules in registry order.
func (r *Result) FailedRules() []string {
	var names []string
	for _, o := range r.Outcomes {
		if !o.Passed {
			names = append(names, o.Rule)
		}
	}
	return names
}

// Messages maps diagnostics to their display messages, preserving order.
func Messages(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

// Round2 rounds a score to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
