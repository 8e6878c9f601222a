// Package scheduler runs all core logic on one tick goroutine.
package scheduler

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// DefaultInterval is 20 ticks per second.
const DefaultInterval = 50 * time.Millisecond

type task struct {
	due uint64
	fn  func()
}

// Loop is a tick based task scheduler. RunAfter and Submit may be called
// from any goroutine; callbacks always run on the goroutine driving Step.
type Loop struct {
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once

	mu    sync.Mutex
	tick  uint64
	tasks []task
}

// NewLoop creates a loop ticking every interval (DefaultInterval if <= 0).
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// RunAfter schedules fn to run ticks ticks from now. Values below one mean
// the next tick.
func (l *Loop) RunAfter(ticks int, fn func()) {
	if ticks < 1 {
		ticks = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tasks = append(l.tasks, task{due: l.tick + uint64(ticks), fn: fn})
}

// Submit runs fn on the next tick.
func (l *Loop) Submit(fn func()) {
	l.RunAfter(1, fn)
}

// Tick returns the number of completed ticks.
func (l *Loop) Tick() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Pending returns the number of scheduled callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Step advances one tick and runs every callback due, in scheduling order.
// Callbacks scheduled while stepping run on a later tick.
func (l *Loop) Step() {
	l.mu.Lock()
	l.tick++
	now := l.tick
	var due []task
	kept := l.tasks[:0]
	for _, t := range l.tasks {
		if t.due <= now {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	clear(l.tasks[len(kept):])
	l.tasks = kept
	l.mu.Unlock()

	for _, t := range due {
		l.run(t.fn)
	}
}

// Start runs the tick loop (blocks until context is canceled or Stop).
func (l *Loop) Start(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("scheduler started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping", "pending", l.Pending())
			return ctx.Err()

		case <-l.stopCh:
			slog.Info("scheduler stopped", "pending", l.Pending())
			return nil

		case <-ticker.C:
			l.Step()
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled task panicked",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
