package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// ClockLoop pushes a formatted time string to the display once per
// second while running. It is independent of the alarm machinery and
// shares only the wall clock.
type ClockLoop struct {
	display  domain.DisplayPeripheral
	clock    WallClock
	log      *logger.Logger
	interval time.Duration
	stopWait time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// ClockLoopOption configures the clock loop.
type ClockLoopOption func(*ClockLoop)

// WithClockInterval sets the display refresh interval.
func WithClockInterval(d time.Duration) ClockLoopOption {
	return func(l *ClockLoop) {
		l.interval = d
	}
}

// WithStopWait bounds how long Stop waits for the worker to exit.
func WithStopWait(d time.Duration) ClockLoopOption {
	return func(l *ClockLoop) {
		l.stopWait = d
	}
}

// NewClockLoop creates a stopped clock loop.
func NewClockLoop(display domain.DisplayPeripheral, clock WallClock, log *logger.Logger, opts ...ClockLoopOption) *ClockLoop {
	l := &ClockLoop{
		display:  display,
		clock:    clock,
		log:      log,
		interval: time.Second,
		stopWait: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Running reports whether the loop is active.
func (l *ClockLoop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Start begins pushing the clock to the display. Starting an already
// running loop is a no-op.
func (l *ClockLoop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.done = make(chan struct{})

	go l.run(l.stopCh, l.done)
	l.log.Info("clock display started")
}

// Stop halts the loop and clears the display. It waits (bounded) for
// the worker to observe the stop signal, so no clock write lands on
// the display after Stop returns. Stopping a stopped loop is a no-op.
func (l *ClockLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	done := l.done
	l.mu.Unlock()

	select {
	case <-done:
	case <-time.After(l.stopWait):
		l.log.Warn("clock display worker slow to stop")
	}

	if err := l.display.DisplayMessage(""); err != nil {
		l.log.Warn("display unavailable on clock stop: %v", err)
	}
	l.log.Info("clock display stopped")
}

func (l *ClockLoop) run(stopCh, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// First frame immediately, then on the ticker.
	l.push()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			l.push()
		}
	}
}

func (l *ClockLoop) push() {
	now := l.clock.Now()
	msg := fmt.Sprintf("Time: %s\nDate: %s", now.Format("15:04:05"), now.Format("02/01/2006"))
	if err := l.display.DisplayMessage(msg); err != nil {
		l.log.Debug("clock push skipped: %v", err)
	}
}
