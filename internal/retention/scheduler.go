// Package retention periodically deletes old analyses.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
)

// Pruner deletes analyses created before cutoff.
type Pruner interface {
	DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler wraps a gocron scheduler running prune jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	pruner    Pruner
	now       func() time.Time
	timeout   time.Duration

	mu     sync.Mutex
	pruned int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source used to compute cutoffs.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScheduler creates a scheduler. Call Start to begin running jobs.
func NewScheduler(pruner Pruner, opts ...Option) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create gocron scheduler").Build()
	}
	s := &Scheduler{scheduler: gs, pruner: pruner, now: time.Now, timeout: time.Minute}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	slog.Info("Starting retention scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping retention scheduler")
	return s.scheduler.Shutdown()
}

// SchedulePrune runs a prune every interval, deleting analyses older than
// maxAge. The first run happens as soon as the scheduler starts. Returns the
// job ID.
func (s *Scheduler) SchedulePrune(interval, maxAge time.Duration) (string, error) {
	if interval <= 0 {
		return "", errors.ConfigError("retention interval must be positive").
			WithContext("interval", interval.String()).
			Build()
	}
	if maxAge <= 0 {
		return "", errors.ConfigError("retention max age must be positive").
			WithContext("max_age", maxAge.String()).
			Build()
	}

	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runPrune, maxAge),
		gocron.WithName("prune-analyses"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryConfig, "failed to create prune job").Build()
	}
	return job.ID().String(), nil
}

func (s *Scheduler) runPrune(maxAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.PruneOnce(ctx, maxAge); err != nil {
		slog.Error("Scheduled prune failed", logfields.Error(err))
	}
}

// PruneOnce deletes analyses older than maxAge now.
func (s *Scheduler) PruneOnce(ctx context.Context, maxAge time.Duration) (int64, error) {
	start := time.Now()
	cutoff := s.now().Add(-maxAge)
	n, err := s.pruner.DeleteAnalysesBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.pruned += n
	s.mu.Unlock()

	slog.Info("Pruned analyses",
		slog.Int64("deleted", n),
		slog.Time("cutoff", cutoff),
		logfields.Duration(time.Since(start)))
	return n, nil
}

// Pruned returns the total number of analyses deleted by this scheduler.
func (s *Scheduler) Pruned() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruned
}
