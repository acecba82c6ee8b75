package events

import (
	"context"
	"errors"
	"sync"
)

// Handler processes an event; return an error to signal failure.
type Handler func(ctx context.Context, e AnalysisEvent) error

// Bus is a simple synchronous fan-out publisher. Every handler sees every
// event; handler errors are joined and returned after all handlers ran.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	closers  []func() error
}

// NewBus creates an empty bus.
func NewBus() *Bus { return &Bus{} }

// Subscribe registers a handler.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Attach subscribes p and closes it together with the bus.
func (b *Bus) Attach(p Publisher, wrap func(Handler) Handler) {
	if p == nil {
		return
	}
	h := Handler(p.PublishAnalysis)
	if wrap != nil {
		h = wrap(h)
	}
	b.Subscribe(h)
	b.mu.Lock()
	b.closers = append(b.closers, p.Close)
	b.mu.Unlock()
}

// PublishAnalysis delivers e to all handlers.
func (b *Bus) PublishAnalysis(ctx context.Context, e AnalysisEvent) error {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range hs {
		if err := h(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every attached publisher.
func (b *Bus) Close() error {
	b.mu.Lock()
	closers := b.closers
	b.closers = nil
	b.mu.Unlock()

	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Publisher = (*Bus)(nil)
