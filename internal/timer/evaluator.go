// Package timer implements the alarm engine's background machinery:
// the per-tick alarm evaluator, the ring controller that owns a
// sounding alarm, and the clock display loop.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
	"github.com/hammamikhairi/waker/internal/storage"
)

// WallClock supplies the engine's local wall-clock time. Satisfied by
// clock.Resolver in production and by fakes in tests.
type WallClock interface {
	Now() time.Time
}

// Evaluator scans the alarm store once per tick and fires at most one
// due alarm. It holds no goroutine of its own; the host drives Tick at
// about 1 Hz. Tick never blocks and never lets an error escape.
type Evaluator struct {
	store *storage.AlarmStore
	clock WallClock
	ring  *RingController
	log   *logger.Logger
}

// NewEvaluator creates an evaluator over the given store and ring
// controller.
func NewEvaluator(store *storage.AlarmStore, clock WallClock, ring *RingController, log *logger.Logger) *Evaluator {
	return &Evaluator{store: store, clock: clock, ring: ring, log: log}
}

// Tick runs one evaluation pass. While an alarm is already ringing the
// pass is skipped entirely, keeping the at-most-one-ringing invariant.
func (e *Evaluator) Tick() {
	if e.ring.Ringing() {
		return
	}

	now := e.clock.Now()

	for _, a := range e.store.List() {
		if !a.Active {
			continue
		}
		if a.Hour != now.Hour() || a.Minute != now.Minute() {
			continue
		}
		// An alarm is eligible for the whole target minute but only
		// fires once per calendar day.
		if a.FiredOn(now) {
			continue
		}
		if !dueToday(a, now) {
			continue
		}

		e.store.MarkTriggered(a.ID, now)
		e.log.Info("alarm %q due at %s, ringing", a.Name, a.TimeLabel())
		e.ring.Start(a.ID)
		// One alarm per tick, even if several are simultaneously due.
		return
	}
}

// dueToday applies the match policy for the current day. RepeatDays
// takes precedence over Date; an alarm with neither is a daily alarm.
func dueToday(a *domain.Alarm, now time.Time) bool {
	switch {
	case a.IsRecurring():
		return a.RepeatsOn(now.Weekday())
	case a.Date != nil:
		dy, dm, dd := a.Date.Date()
		ny, nm, nd := now.Date()
		return dy == ny && dm == nm && dd == nd
	default:
		return true
	}
}

// Runner drives an Evaluator from its own in-process ticker.
type Runner struct {
	eval     *Evaluator
	log      *logger.Logger
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewRunner creates a runner ticking at the given interval (1s if zero).
func NewRunner(eval *Evaluator, interval time.Duration, log *logger.Logger) *Runner {
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{eval: eval, interval: interval, log: log}
}

// Start begins the tick loop. Non-blocking; starting twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		r.log.Warn("evaluator runner already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	go r.loop(childCtx)
	r.log.Info("evaluator runner started (interval=%s)", r.interval)
}

// Stop shuts the tick loop down. Stopping twice is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.cancel()
	r.running = false
	r.log.Info("evaluator runner stopped")
}

func (r *Runner) loop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.eval.Tick()
		}
	}
}
