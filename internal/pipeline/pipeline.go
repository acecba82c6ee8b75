// Package pipeline runs a single uploaded document through decoding, parsing,
// scoring, correction and serialization.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/htmldoc"
	"git.home.luguber.info/inful/semcheck/internal/lint"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
	"git.home.luguber.info/inful/semcheck/internal/metrics"
	"git.home.luguber.info/inful/semcheck/internal/textenc"
)

// State is a pipeline stage. Stages run strictly in order with no retry.
type State string

const (
	StateReceived   State = "received"
	StateDecoded    State = "decoded"
	StateParsed     State = "parsed"
	StateScored     State = "scored"
	StateCorrected  State = "corrected"
	StateSerialized State = "serialized"
)

func (s State) String() string { return string(s) }

// States returns the stages in execution order.
func States() []State {
	return []State{StateReceived, StateDecoded, StateParsed, StateScored, StateCorrected, StateSerialized}
}

// Result is the outcome of processing one document.
type Result struct {
	CorrectedHTML    string
	Diagnostics      []string          // display messages remaining after correction
	Issues           []lint.Diagnostic // all diagnostics found before correction
	Remaining        []lint.Diagnostic
	FailedRules      []string
	Score            float64 // before correction
	CorrectedScore   float64
	Encoding         string
	EncodingFallback bool
	Fixes            []lint.Applied

	// Scored and Fix are the raw linter outputs behind the fields above.
	Scored *lint.Result
	Fix    *lint.FixResult
}

// Pipeline processes documents. It holds no per-document state and is safe
// for concurrent use.
type Pipeline struct {
	linter   *lint.Linter
	fixer    *lint.Fixer
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline. Nil linter or fixer select the defaults.
func New(linter *lint.Linter, fixer *lint.Fixer, opts ...Option) *Pipeline {
	if linter == nil {
		linter = lint.NewLinter(nil)
	}
	if fixer == nil {
		fixer = lint.DefaultFixer()
	}
	p := &Pipeline{
		linter:   linter,
		fixer:    fixer,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type step struct {
	state State
	run   func() error
}

// Process runs raw through every stage. Any failure is terminal and no
// partial result is returned.
func (p *Pipeline) Process(ctx context.Context, raw []byte) (*Result, error) {
	start := time.Now()

	var (
		decoded textenc.Decoded
		doc     *htmldoc.Document
		scored  *lint.Result
		fix     *lint.FixResult
		out     strings.Builder
	)

	steps := []step{
		{StateDecoded, func() error {
			decoded = textenc.Decode(raw)
			return nil
		}},
		{StateParsed, func() error {
			var err error
			doc, err = htmldoc.ParseString(decoded.Text)
			return err
		}},
		{StateScored, func() error {
			scored = p.linter.Score(doc)
			return nil
		}},
		{StateCorrected, func() error {
			fix = p.fixer.Fix(doc, scored.Diagnostics)
			return nil
		}},
		{StateSerialized, func() error {
			if err := doc.Render(&out); err != nil {
				return errors.WrapError(err, errors.CategoryInternal, "failed to serialize document").Build()
			}
			return nil
		}},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			p.recorder.IncAnalysisOutcome(metrics.OutcomeCanceled)
			return nil, errors.WrapError(err, errors.CategoryRuntime, "analysis canceled").
				WithContext("stage", s.state.String()).
				Build()
		}
		t0 := time.Now()
		err := s.run()
		p.recorder.ObserveStageDuration(s.state.String(), time.Since(t0))
		if err != nil {
			p.recorder.IncAnalysisOutcome(metrics.OutcomeFailed)
			p.logger.Warn("Analysis failed", logfields.Stage(s.state.String()), logfields.Error(err))
			return nil, stageError(err, s.state)
		}
	}

	for _, ferr := range fix.Errors {
		p.logger.Warn("Remediation failed", logfields.Error(ferr))
	}
	for _, a := range fix.Applied {
		p.recorder.IncRemediation(string(a.Kind), a.Changes)
	}
	for _, rule := range scored.FailedRules() {
		p.recorder.IncRuleFailure(rule)
	}
	p.recorder.ObserveScore(scored.Score)
	p.recorder.IncAnalysisOutcome(metrics.OutcomeSuccess)

	res := &Result{
		CorrectedHTML:    out.String(),
		Diagnostics:      lint.Messages(fix.Remaining),
		Issues:           scored.Diagnostics,
		Remaining:        fix.Remaining,
		FailedRules:      scored.FailedRules(),
		Score:            scored.Score,
		CorrectedScore:   p.linter.Score(doc).Score,
		Encoding:         decoded.Label,
		EncodingFallback: decoded.FellBack,
		Fixes:            fix.Applied,
		Scored:           scored,
		Fix:              fix,
	}
	if res.Diagnostics == nil {
		res.Diagnostics = []string{}
	}

	p.logger.Debug("Analysis complete",
		logfields.Score(res.Score),
		logfields.Encoding(res.Encoding),
		slog.Float64("corrected_score", res.CorrectedScore),
		slog.Int("remaining", len(res.Remaining)),
		logfields.Duration(time.Since(start)))
	return res, nil
}

func stageError(err error, state State) error {
	if ce, ok := errors.AsClassified(err); ok {
		return ce.WithContext("stage", state.String())
	}
	return errors.WrapError(err, errors.CategoryInternal, "analysis failed").
		WithContext("stage", state.String()).
		Build()
}
