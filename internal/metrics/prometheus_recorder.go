package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "semcheck"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	outcomes      *prom.CounterVec
	scores        prom.Histogram
	ruleFailures  *prom.CounterVec
	remediations  *prom.CounterVec
	changes       *prom.CounterVec
	httpRequests  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.outcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_outcomes_total",
			Help:      "Document analyses by final outcome",
		}, []string{"outcome"})
		pr.scores = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "document_score",
			Help:      "Distribution of pre-correction document scores",
			Buckets:   prom.LinearBuckets(0, 0.1, 11),
		})
		pr.ruleFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rule_failures_total",
			Help:      "Rule failures by rule name",
		}, []string{"rule"})
		pr.remediations = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remediations_total",
			Help:      "Remediation runs by diagnostic kind",
		}, []string{"kind"})
		pr.changes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "remediation_changes_total",
			Help:      "Tree substitutions performed by remediations",
		}, []string{"kind"})
		pr.httpRequests = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "status"})
		reg.MustRegister(pr.stageDuration, pr.outcomes, pr.scores, pr.ruleFailures, pr.remediations, pr.changes, pr.httpRequests)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncAnalysisOutcome(outcome OutcomeLabel) {
	if p == nil || p.outcomes == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveScore(score float64) {
	if p == nil || p.scores == nil {
		return
	}
	p.scores.Observe(score)
}

func (p *PrometheusRecorder) IncRuleFailure(rule string) {
	if p == nil || p.ruleFailures == nil {
		return
	}
	p.ruleFailures.WithLabelValues(rule).Inc()
}

func (p *PrometheusRecorder) IncRemediation(kind string, changes int) {
	if p == nil || p.remediations == nil {
		return
	}
	p.remediations.WithLabelValues(kind).Inc()
	p.changes.WithLabelValues(kind).Add(float64(changes))
}

func (p *PrometheusRecorder) IncHTTPRequest(route string, status int) {
	if p == nil || p.httpRequests == nil {
		return
	}
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
