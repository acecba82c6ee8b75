package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
)

// DefaultSubject is the subject analysis events are published on.
const DefaultSubject = "semcheck.analyses"

// DefaultStream is the JetStream stream created for the subject.
const DefaultStream = "SEMCHECK_ANALYSES"

// streamPublisher is the part of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSPublisher publishes analysis events as JSON to a JetStream subject.
type NATSPublisher struct {
	conn    *nats.Conn
	js      streamPublisher
	subject string
	timeout time.Duration
}

// NewNATSPublisher connects to url and makes sure a stream captures subject.
func NewNATSPublisher(ctx context.Context, url, subject string) (*NATSPublisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url, nats.Name("semcheck"))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to create JetStream context").Build()
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
		Name:        DefaultStream,
		Description: "semcheck analysis results",
		Subjects:    []string{subject},
		MaxAge:      7 * 24 * time.Hour,
	}); err != nil {
		conn.Close()
		return nil, errors.WrapError(err, errors.CategoryMessaging, "failed to create stream").
			WithContext("subject", subject).
			Build()
	}

	slog.Info("NATS publisher initialized", slog.String("url", url), slog.String("subject", subject))
	return &NATSPublisher{conn: conn, js: js, subject: subject, timeout: 5 * time.Second}, nil
}

// PublishAnalysis publishes e. The analysis ID is used as the message ID so
// redelivered events are deduplicated by the server.
func (p *NATSPublisher) PublishAnalysis(ctx context.Context, e AnalysisEvent) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal event").Build()
	}

	pctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if _, err := p.js.Publish(pctx, p.subject, data, jetstream.WithMsgID(e.ID)); err != nil {
		return errors.WrapError(err, errors.CategoryMessaging, "failed to publish event").
			WithContext("subject", p.subject).
			Build()
	}

	slog.Debug("Published analysis event", logfields.AnalysisID(e.ID), slog.String("subject", p.subject))
	return nil
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string { return p.subject }

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}

var _ Publisher = (*NATSPublisher)(nil)
