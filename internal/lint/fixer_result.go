package lint

import (
	"fmt"
	"strings"
)

// Applied records one remediation run.
type Applied struct {
	Kind    Kind `json:"kind"`
	Changes int  `json:"changes"`
	Skipped int  `json:"skipped,omitempty"`
}

// FixResult contains the results of a fix pass.
type FixResult struct {
	Applied   []Applied
	Resolved  []Diagnostic
	Remaining []Diagnostic
	Errors    []error
}

// HasErrors returns true if any remediation failed.
func (fr *FixResult) HasErrors() bool {
	return len(fr.Errors) > 0
}

// HasChanges returns true if any remediation changed the document.
func (fr *FixResult) HasChanges() bool {
	for _, a := range fr.Applied {
		if a.Changes > 0 {
			return true
		}
	}
	return false
}

// Changes returns the total number of substitutions across remediations.
func (fr *FixResult) Changes() int {
	total := 0
	for _, a := range fr.Applied {
		total += a.Changes
	}
	return total
}

// Summary returns a human-readable summary of the fix pass.
func (fr *FixResult) Summary() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Diagnostics resolved: %d\n", len(fr.Resolved)))
	b.WriteString(fmt.Sprintf("Diagnostics remaining: %d\n", len(fr.Remaining)))

	if len(fr.Applied) > 0 {
		b.WriteString("\nRemediations:\n")
		for _, a := range fr.Applied {
			b.WriteString(fmt.Sprintf("  • %s: %d change%s", a.Kind, a.Changes, pluralize(a.Changes)))
			if a.Skipped > 0 {
				b.WriteString(fmt.Sprintf(", %d skipped", a.Skipped))
			}
			b.WriteString("\n")
		}
	}

	if len(fr.Errors) > 0 {
		b.WriteString(fmt.Sprintf("\nErrors encountered: %d\n", len(fr.Errors)))
		for _, err := range fr.Errors {
			b.WriteString(fmt.Sprintf("  • %v\n", err))
		}
	}

	return b.String()
}
