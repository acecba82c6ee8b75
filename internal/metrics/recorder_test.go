package metrics

import (
	"sync"
	"time"
)

// testRecorder is an in-memory Recorder for assertions in this package.
type testRecorder struct {
	mu             sync.Mutex
	stageDurations map[string]int
	outcomes       map[OutcomeLabel]int
	scores         []float64
	ruleFailures   map[string]int
	remediations   map[string]int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations: map[string]int{},
		outcomes:       map[OutcomeLabel]int{},
		ruleFailures:   map[string]int{},
		remediations:   map[string]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stageDurations[stage]++
}

func (t *testRecorder) IncAnalysisOutcome(outcome OutcomeLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.outcomes[outcome]++
}

func (t *testRecorder) ObserveScore(score float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scores = append(t.scores, score)
}

func (t *testRecorder) IncRuleFailure(rule string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ruleFailures[rule]++
}

func (t *testRecorder) IncRemediation(kind string, changes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remediations[kind] += changes
}

func (t *testRecorder) IncHTTPRequest(string, int) {}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
