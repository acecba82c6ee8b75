package metrics

import "time"

// OutcomeLabel enumerates final analysis outcomes for counters.
type OutcomeLabel string

const (
	OutcomeSuccess  OutcomeLabel = "success"
	OutcomeFailed   OutcomeLabel = "failed"
	OutcomeCanceled OutcomeLabel = "canceled"
)

// Recorder defines observability hooks for document analysis. Implementations
// may forward to Prometheus or another backend; NoopRecorder is the default.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncAnalysisOutcome(outcome OutcomeLabel)
	ObserveScore(score float64)
	IncRuleFailure(rule string)
	IncRemediation(kind string, changes int)
	IncHTTPRequest(route string, status int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncAnalysisOutcome(OutcomeLabel)            {}
func (NoopRecorder) ObserveScore(float64)                       {}
func (NoopRecorder) IncRuleFailure(string)                      {}
func (NoopRecorder) IncRemediation(string, int)                 {}
func (NoopRecorder) IncHTTPRequest(string, int)                 {}
