// Package events publishes analysis results to interested consumers such as
// a NATS JetStream subject.
package events

import (
	"context"
	"time"
)

// EventAnalysisCompleted is the name of the event emitted after a stored analysis.
const EventAnalysisCompleted = "AnalysisCompleted"

// AnalysisEvent describes a finished analysis.
type AnalysisEvent struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Source         string    `json:"source"`
	Score          float64   `json:"score"`
	CorrectedScore float64   `json:"corrected_score"`
	FailedRules    []string  `json:"failed_rules"`
	Remaining      int       `json:"remaining"`
	Encoding       string    `json:"encoding"`
	Timestamp      time.Time `json:"timestamp"`
}

// Name returns the event name.
func (AnalysisEvent) Name() string { return EventAnalysisCompleted }

// Publisher delivers analysis events.
type Publisher interface {
	PublishAnalysis(ctx context.Context, e AnalysisEvent) error
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishAnalysis(context.Context, AnalysisEvent) error { return nil }
func (NoopPublisher) Close() error                                         { return nil }

var _ Publisher = NoopPublisher{}
