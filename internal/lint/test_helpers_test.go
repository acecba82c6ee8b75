package lint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
)

func parseDoc(t *testing.T, s string) *htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.ParseString(s)
	require.NoError(t, err)
	return doc
}

func outcomeFor(t *testing.T, res *Result, rule string) RuleOutcome {
	t.Helper()
	for _, o := range res.Outcomes {
		if o.Rule == rule {
			return o
		}
	}
	t.Fatalf("no outcome for rule %s", rule)
	return RuleOutcome{}
}

func kindsOf(diags []Diagnostic) []Kind {
	kinds := make([]Kind, 0, len(diags))
	for _, d := range diags {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}
