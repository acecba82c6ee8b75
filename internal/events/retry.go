package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	ferrors "git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
)

// RetryPolicy defines retry behavior for failed handlers.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	IsRetryable func(error) bool
}

// DefaultRetryPolicy retries three times with exponential backoff starting
// at 100ms. Messaging and runtime failures are retried; anything else is not.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     100 * time.Millisecond,
		IsRetryable: func(err error) bool {
			if errors.Is(err, context.Canceled) {
				return false
			}
			return ferrors.HasCategory(err, ferrors.CategoryMessaging) ||
				ferrors.HasCategory(err, ferrors.CategoryRuntime)
		},
	}
}

// WithRetry wraps a handler with retry logic according to the policy.
// Events that still fail are placed on dlq when it is non-nil.
func WithRetry(h Handler, policy RetryPolicy, dlq *DeadLetterQueue) Handler {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return func(ctx context.Context, e AnalysisEvent) error {
		var (
			lastErr  error
			attempts int
		)
	loop:
		for attempts < policy.MaxAttempts {
			attempts++
			lastErr = h(ctx, e)
			if lastErr == nil {
				return nil
			}
			if policy.IsRetryable == nil || !policy.IsRetryable(lastErr) {
				slog.Warn("Non-retryable event failure", logfields.AnalysisID(e.ID), logfields.Error(lastErr))
				break
			}
			if attempts == policy.MaxAttempts {
				break
			}
			backoff := policy.Backoff * time.Duration(1<<uint(attempts-1))
			slog.Info("Retrying event delivery",
				logfields.AnalysisID(e.ID),
				slog.Int("attempt", attempts),
				slog.Duration("backoff", backoff),
				logfields.Error(lastErr))
			select {
			case <-ctx.Done():
				lastErr = errors.Join(lastErr, ctx.Err())
				break loop
			case <-time.After(backoff):
			}
		}

		slog.Error("Event delivery failed", logfields.AnalysisID(e.ID), slog.Int("attempts", attempts), logfields.Error(lastErr))
		if dlq != nil {
			dlq.Enqueue(FailedEvent{Event: e, Error: lastErr, Attempts: attempts, Timestamp: time.Now()})
		}
		return ferrors.WrapError(lastErr, ferrors.CategoryMessaging, "event delivery failed").
			WithContext("attempts", attempts).
			Build()
	}
}
