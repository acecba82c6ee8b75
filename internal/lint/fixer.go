package lint

import (
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
)

// Remediation is an automated tree rewrite resolving every diagnostic of one Kind.
type Remediation interface {
	Kind() Kind
	Apply(doc *htmldoc.Document) (RemediationResult, error)
}

// RemediationResult reports what a remediation changed.
type RemediationResult struct {
	Changes int // elements created or substituted
	Skipped int // matches that could not be acted on
}

// Fixer applies remediations for fixable diagnostics.
type Fixer struct {
	order        []Kind
	remediations map[Kind]Remediation
}

// NewFixer creates a fixer. A later remediation for an already registered Kind
// replaces the earlier one.
func NewFixer(remediations ...Remediation) *Fixer {
	f := &Fixer{remediations: make(map[Kind]Remediation, len(remediations))}
	for _, r := range remediations {
		if _, exists := f.remediations[r.Kind()]; !exists {
			f.order = append(f.order, r.Kind())
		}
		f.remediations[r.Kind()] = r
	}
	return f
}

// DefaultFixer returns a fixer with the standard remediations.
func DefaultFixer() *Fixer {
	return NewFixer(
		FigcaptionRemediation{},
		NavRemediation(),
		HeaderRemediation(),
		MainRemediation(),
		FooterRemediation(),
		&ContactRemediation{},
	)
}

// Kinds returns the fixable kinds in registration order.
func (f *Fixer) Kinds() []Kind {
	out := make([]Kind, len(f.order))
	copy(out, f.order)
	return out
}

// CanFix reports whether a remediation is registered for kind.
func (f *Fixer) CanFix(kind Kind) bool {
	_, ok := f.remediations[kind]
	return ok
}

// Fix applies remediations to doc in one pass over diags. The first diagnostic
// of a fixable kind runs its remediation once over the whole document; every
// diagnostic of that kind is then resolved. A failing remediation is recorded
// and leaves its diagnostics unresolved.
func (f *Fixer) Fix(doc *htmldoc.Document, diags []Diagnostic) *FixResult {
	result := &FixResult{}
	ran := make(map[Kind]bool)
	failed := make(map[Kind]bool)

	for _, d := range diags {
		rem, ok := f.remediations[d.Kind]
		if !ok {
			result.Remaining = append(result.Remaining, d)
			continue
		}

		if !ran[d.Kind] {
			ran[d.Kind] = true
			res, err := rem.Apply(doc)
			if err != nil {
				failed[d.Kind] = true
				result.Errors = append(result.Errors,
					errors.WrapError(err, errors.CategoryInternal, "remediation failed").
						WithContext("kind", string(d.Kind)).
						Build())
			} else {
				result.Applied = append(result.Applied, Applied{
					Kind:    d.Kind,
					Changes: res.Changes,
					Skipped: res.Skipped,
				})
			}
		}

		if failed[d.Kind] {
			result.Remaining = append(result.Remaining, d)
		} else {
			result.Resolved = append(result.Resolved, d)
		}
	}

	return result
}
