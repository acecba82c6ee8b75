package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Report is the scoring outcome for one document.
type Report struct {
	Path   string
	Result *Result
	Fix    *FixResult // nil when correction was not requested
}

// Formatter formats scoring reports for output.
type Formatter interface {
	Format(w io.Writer, reports []Report) error
}

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	ok   *color.Color
	bad  *color.Color
	dim  *color.Color
	bold *color.Color
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor bool) *TextFormatter {
	f := &TextFormatter{
		ok:   color.New(color.FgGreen),
		bad:  color.New(color.FgRed),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
	if !useColor {
		for _, c := range []*color.Color{f.ok, f.bad, f.dim, f.bold} {
			c.DisableColor()
		}
	}
	return f
}

// Format outputs reports in human-readable text format.
func (f *TextFormatter) Format(w io.Writer, reports []Report) error {
	for _, rep := range reports {
		if err := f.formatReport(w, rep); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, strings.Repeat("━", 60)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Results:\n  %d file%s scored\n", len(reports), pluralize(len(reports))); err != nil {
		return err
	}
	if len(reports) > 0 {
		if _, err := fmt.Fprintf(w, "  average score %.2f\n", averageScore(reports)); err != nil {
			return err
		}
	}
	return nil
}

func (f *TextFormatter) formatReport(w io.Writer, rep Report) error {
	res := rep.Result
	if _, err := fmt.Fprintf(w, "%s  %s (%d/%d rules)\n",
		f.bold.Sprint(rep.Path), f.scoreColor(res.Score).Sprintf("%.2f", res.Rounded()), res.Passed, res.Total); err != nil {
		return err
	}

	for _, o := range res.Outcomes {
		icon := f.ok.Sprint("✓")
		if !o.Passed {
			icon = f.bad.Sprint("✗")
		}
		if _, err := fmt.Fprintf(w, "  %s %s\n", icon, o.Rule); err != nil {
			return err
		}
		for _, d := range o.Diagnostics {
			if _, err := fmt.Fprintf(w, "      %s\n", d.Message); err != nil {
				return err
			}
		}
	}

	if rep.Fix != nil {
		for _, a := range rep.Fix.Applied {
			if _, err := fmt.Fprintf(w, "  %s %s: %d change%s\n",
				f.dim.Sprint("fix"), a.Kind, a.Changes, pluralize(a.Changes)); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

func (f *TextFormatter) scoreColor(score float64) *color.Color {
	if score >= 0.5 {
		return f.ok
	}
	return f.bad
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	FilesTotal   int          `json:"files_total"`
	AverageScore float64      `json:"average_score"`
	Files        []JSONReport `json:"files"`
}

// JSONReport represents a single document in JSON format.
type JSONReport struct {
	Path        string        `json:"path"`
	Score       float64       `json:"score"`
	Passed      int           `json:"passed"`
	Total       int           `json:"total"`
	FailedRules []string      `json:"failed_rules"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	Fixes       []Applied     `json:"fixes,omitempty"`
	Remaining   []Diagnostic  `json:"remaining,omitempty"`
	Outcomes    []RuleOutcome `json:"outcomes"`
}

// Format outputs reports in JSON format.
func (f *JSONFormatter) Format(w io.Writer, reports []Report) error {
	output := JSONOutput{
		FilesTotal: len(reports),
		Files:      make([]JSONReport, 0, len(reports)),
	}
	if len(reports) > 0 {
		output.AverageScore = Round2(averageScore(reports))
	}

	for _, rep := range reports {
		jr := JSONReport{
			Path:        rep.Path,
			Score:       rep.Result.Rounded(),
			Passed:      rep.Result.Passed,
			Total:       rep.Result.Total,
			FailedRules: rep.Result.FailedRules(),
			Diagnostics: rep.Result.Diagnostics,
			Outcomes:    rep.Result.Outcomes,
		}
		if rep.Fix != nil {
			jr.Fixes = rep.Fix.Applied
			jr.Remaining = rep.Fix.Remaining
		}
		output.Files = append(output.Files, jr)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, useColor bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter(useColor)
	}
}

func averageScore(reports []Report) float64 {
	sum := 0.0
	for _, rep := range reports {
		sum += rep.Result.Score
	}
	return sum / float64(len(reports))
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
