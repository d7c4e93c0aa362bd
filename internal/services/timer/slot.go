package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/quizgame/internal/dependencies/clock"
	"github.com/mcoot/quizgame/internal/middleware"
)

// TickFunc runs on every tick. Returning false stops the slot.
type TickFunc func(ctx context.Context) bool

// Slot holds at most one running interval: starting a new one always stops the previous.
// Once Stop returns no new callback begins, and the context handed to a running callback is cancelled.
type Slot struct {
	name   string
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	ticker clock.Ticker
	gen    uint64
}

// NewSlot creates an idle Slot
func NewSlot(name string, clk clock.Clock, logger *slog.Logger) *Slot {
	return &Slot{
		name:   name,
		clock:  clk,
		logger: logger.With(slog.String("component", "timer"), slog.String("timer", name)),
	}
}

// Start stops any running interval and begins a new one bound to ctx.
// With immediate set, fn also runs once before the first tick.
func (s *Slot) Start(ctx context.Context, interval time.Duration, immediate bool, fn TickFunc) {
	s.mu.Lock()
	s.stopLocked()
	runCtx, cancel := context.WithCancel(ctx)
	ticker := s.clock.NewTicker(interval)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.ticker = ticker
	s.mu.Unlock()

	s.logger.Debug("timer started", slog.Duration("interval", interval))

	middleware.Go(s.logger, s.name, func() {
		s.run(runCtx, gen, ticker, immediate, fn)
	})
}

// Stop cancels the running interval, if any
func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Running reports whether an interval is active
func (s *Slot) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Slot) run(ctx context.Context, gen uint64, ticker clock.Ticker, immediate bool, fn TickFunc) {
	defer s.finish(gen)

	if immediate && !s.fire(ctx, fn) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if !s.fire(ctx, fn) {
				return
			}
		}
	}
}

func (s *Slot) fire(ctx context.Context, fn TickFunc) bool {
	if ctx.Err() != nil {
		return false
	}
	return fn(ctx)
}

// finish releases the slot if it still belongs to generation gen
func (s *Slot) finish(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.stopLocked()
	}
}

func (s *Slot) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.ticker.Stop()
	s.cancel = nil
	s.ticker = nil
	s.logger.Debug("timer stopped")
}
