package commands

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/semcheck/internal/api"
	"git.home.luguber.info/inful/semcheck/internal/auth"
	"git.home.luguber.info/inful/semcheck/internal/config"
	"git.home.luguber.info/inful/semcheck/internal/events"
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
	"git.home.luguber.info/inful/semcheck/internal/logfields"
	"git.home.luguber.info/inful/semcheck/internal/metrics"
	"git.home.luguber.info/inful/semcheck/internal/pipeline"
	"git.home.luguber.info/inful/semcheck/internal/retention"
	"git.home.luguber.info/inful/semcheck/internal/store"
)

const (
	shutdownTimeout = 30 * time.Second
	deadLetterSize  = 1000
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

// Run starts the API and blocks until SIGINT or SIGTERM.
func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app, err := newApp(ctx, cfg, logger(g))
	if err != nil {
		return err
	}
	defer app.close()

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return errors.WrapError(err, errors.CategoryRuntime, "api server failed").Build()
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("Shutdown signal received, stopping server...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	if err := app.server.Shutdown(stopCtx); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to stop api server").Build()
	}
	app.logger.Info("Server stopped successfully")
	return nil
}

// app holds the long-lived collaborators of a running server.
type app struct {
	server    *api.Server
	store     *store.SQLiteStore
	bus       *events.Bus
	dlq       *events.DeadLetterQueue
	retention *retention.Scheduler
	logger    *slog.Logger
}

func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{logger: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.store, err = store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTAlgorithm, cfg.Auth.TokenTTL())
	if err != nil {
		return nil, err
	}
	manager := auth.NewManager(a.store, tokens, auth.WithLogger(log))

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		handler  http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheusRecorder(reg)
		handler = metrics.HTTPHandler(reg)
	}

	a.bus = events.NewBus()
	if cfg.NATS.URL != "" {
		pub, perr := events.NewNATSPublisher(ctx, cfg.NATS.URL, cfg.NATS.Subject)
		if perr != nil {
			return nil, perr
		}
		a.dlq = events.NewDeadLetterQueue(deadLetterSize)
		a.bus.Attach(pub, func(h events.Handler) events.Handler {
			return events.WithRetry(h, events.DefaultRetryPolicy(), a.dlq)
		})
		log.Info("Publishing analysis events", "url", cfg.NATS.URL, "subject", pub.Subject())
	}

	if cfg.Retention.MaxAge > 0 {
		a.retention, err = retention.NewScheduler(a.store)
		if err != nil {
			return nil, err
		}
		if _, err = a.retention.SchedulePrune(cfg.Retention.Interval, cfg.Retention.MaxAge); err != nil {
			return nil, err
		}
		a.retention.Start()
	}

	p := pipeline.New(nil, nil, pipeline.WithRecorder(recorder), pipeline.WithLogger(log))
	a.server = api.NewServer(api.Deps{
		Pipeline:  p,
		Auth:      manager,
		Analyses:  a.store,
		Publisher: a.bus,
		Recorder:  recorder,
		Metrics:   handler,
		Logger:    log,
	}, api.Options{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequireAuth:    cfg.Server.AuthRequired(),
	})
	return a, nil
}

func (a *app) close() {
	if a.retention != nil {
		if err := a.retention.Stop(); err != nil {
			a.logger.Warn("Failed to stop retention scheduler", logfields.Error(err))
		}
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.Warn("Failed to close event publishers", logfields.Error(err))
		}
	}
	if a.dlq != nil && a.dlq.Count() > 0 {
		a.logger.Warn("Undelivered analysis events", "count", a.dlq.Count())
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("Failed to close store", logfields.Error(err))
		}
	}
}
