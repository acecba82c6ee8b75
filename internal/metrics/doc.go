// Package metrics provides observability hooks for semcheck document analysis.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	p := pipeline.New(linter, fixer) // NoopRecorder
//	p = pipeline.New(linter, fixer, pipeline.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// When metrics are enabled in configuration, the server builds a
// PrometheusRecorder on its own registry and exposes it via HTTPHandler at
// /metrics.
package metrics
