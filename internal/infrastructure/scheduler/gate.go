package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rocksoup/mbtheme/internal/ports"
)

// IntervalGate enforces a minimum pause between the end of one iteration
// (Done) and the start of the next (Wait). The first Wait returns immediately.
type IntervalGate struct {
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	last time.Time
}

var _ ports.Gate = (*IntervalGate)(nil)

// NewIntervalGate builds a gate backed by the wall clock.
func NewIntervalGate(interval time.Duration) *IntervalGate {
	return &IntervalGate{
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Interval is the configured minimum spacing.
func (g *IntervalGate) Interval() time.Duration {
	return g.interval
}

// Wait blocks until at least one interval has passed since the previous Done.
func (g *IntervalGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last.IsZero() || g.interval <= 0 {
		return nil
	}
	if remaining := g.interval - g.now().Sub(g.last); remaining > 0 {
		return g.sleep(ctx, remaining)
	}
	return nil
}

// Done records that the current iteration has finished.
func (g *IntervalGate) Done() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = g.now()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
