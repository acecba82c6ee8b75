package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/lint"
	"git.home.luguber.info/inful/semcheck/internal/metrics"
)

type recorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	stages   []string
	outcomes []metrics.OutcomeLabel
	failures map[string]int
	changes  map[string]int
}

func newRecorder() *recorder {
	return &recorder{failures: map[string]int{}, changes: map[string]int{}}
}

func (r *recorder) ObserveStageDuration(stage string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *recorder) IncAnalysisOutcome(o metrics.OutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recorder) IncRuleFailure(rule string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[rule]++
}

func (r *recorder) IncRemediation(kind string, changes int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[kind] += changes
}

func TestProcess_EndToEnd(t *testing.T) {
	rec := newRecorder()
	p := New(nil, nil, WithRecorder(rec))

	res, err := p.Process(context.Background(), []byte(`<html><body><div class="nav-a">x</div></body></html>`))
	require.NoError(t, err)

	assert.Contains(t, res.CorrectedHTML, `<nav class="nav-a">x</nav>`)
	assert.InDelta(t, 0.2, res.Score, 1e-9)
	assert.InDelta(t, 5.0/15.0, res.CorrectedScore, 1e-9)
	assert.Equal(t, "utf-8", res.Encoding)
	assert.False(t, res.EncodingFallback)

	for _, d := range res.Remaining {
		assert.NotEqual(t, lint.RuleNavUsage, d.Rule)
		assert.NotEqual(t, lint.KindMissingAddress, d.Kind)
	}
	assert.Len(t, res.Diagnostics, len(res.Remaining))
	assert.Greater(t, len(res.Issues), len(res.Remaining))

	assert.Equal(t, []string{"decoded", "parsed", "scored", "corrected", "serialized"}, rec.stages)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeSuccess}, rec.outcomes)
	assert.Equal(t, 1, rec.failures[lint.RuleNavUsage])
	assert.Equal(t, 1, rec.changes[string(lint.KindDivAsNav)])
}

func TestProcess_PerfectDocumentHasEmptyDiagnostics(t *testing.T) {
	doc := `<html><body><header><h1>T</h1><nav>n</nav></header><main><article><section>` +
		`<p><mark>m</mark><q>q</q><ins>i</ins><abbr title="t">a</abbr></p></section></article>` +
		`<aside>a</aside><details><summary>s</summary></details><blockquote><cite>c</cite></blockquote>` +
		`<time>t</time></main><footer><address>a</address></footer></body></html>`

	res, err := New(nil, nil).Process(context.Background(), []byte(doc))
	require.NoError(t, err)

	assert.NotNil(t, res.Diagnostics)
	assert.Empty(t, res.Diagnostics)
	assert.InDelta(t, 1.0, res.Score, 1e-9)
	assert.InDelta(t, 1.0, res.CorrectedScore, 1e-9)
}

func TestProcess_Latin1Fallback(t *testing.T) {
	res, err := New(nil, nil).Process(context.Background(), []byte("<meta charset=\"utf-8\"><p>caf\xe9</p>"))
	require.NoError(t, err)

	assert.True(t, res.EncodingFallback)
	assert.Equal(t, "iso-8859-1", res.Encoding)
	assert.Contains(t, res.CorrectedHTML, "café")
}

func TestProcess_CanceledContext(t *testing.T) {
	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(nil, nil, WithRecorder(rec)).Process(ctx, []byte(`<p>x</p>`))

	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.HasCategory(err, errors.CategoryRuntime))
	assert.Empty(t, rec.stages)
	assert.Equal(t, []metrics.OutcomeLabel{metrics.OutcomeCanceled}, rec.outcomes)
}

func TestStates_Order(t *testing.T) {
	assert.Equal(t, []State{
		StateReceived, StateDecoded, StateParsed, StateScored, StateCorrected, StateSerialized,
	}, States())
	assert.Equal(t, "scored", StateScored.String())
}
