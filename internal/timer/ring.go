package timer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
	"github.com/hammamikhairi/waker/internal/storage"
)

// rampStartVolume is where the gradual profile begins.
const rampStartVolume = 0.2

// volumeStep is the increment for both the gradual ramp and manual
// volume adjustment.
const volumeStep = 0.1

// defaultSoundFile is the fallback when a profile's own file is missing.
const defaultSoundFile = "alarm.wav"

// RingOption configures the ring controller.
type RingOption func(*RingController)

// WithSoundDir sets the directory alarm sounds are loaded from.
func WithSoundDir(dir string) RingOption {
	return func(c *RingController) {
		c.soundDir = dir
	}
}

// WithRampStep sets the interval between gradual-volume increments.
func WithRampStep(d time.Duration) RingOption {
	return func(c *RingController) {
		c.rampStep = d
	}
}

// WithSuperviseInterval sets how often playback liveness is checked.
func WithSuperviseInterval(d time.Duration) RingOption {
	return func(c *RingController) {
		c.superviseEvery = d
	}
}

// WithRingClock sets the time source used for snooze scheduling.
func WithRingClock(clock domain.Clock) RingOption {
	return func(c *RingController) {
		c.clock = clock
	}
}

// WithNotifier sets the ring lifecycle notifier.
func WithNotifier(n domain.RingNotifier) RingOption {
	return func(c *RingController) {
		c.notifier = n
	}
}

// RingController owns the "alarm currently ringing" state. At most one
// alarm rings at a time, process-wide. All methods are safe for
// concurrent use.
type RingController struct {
	store   *storage.AlarmStore
	player  domain.AudioPlayer
	display domain.DisplayPeripheral
	notifier domain.RingNotifier
	clock   domain.Clock
	log     *logger.Logger

	soundDir       string
	rampStep       time.Duration
	superviseEvery time.Duration

	volMu  sync.Mutex
	volume float64 // playback target, [0,1]

	mu      sync.Mutex
	ringing bool
	current string
	stopCh  chan struct{}
}

// NewRingController creates a ring controller.
func NewRingController(store *storage.AlarmStore, player domain.AudioPlayer, display domain.DisplayPeripheral, log *logger.Logger, opts ...RingOption) *RingController {
	c := &RingController{
		store:          store,
		player:         player,
		display:        display,
		clock:          domain.SystemClock(),
		log:            log,
		soundDir:       "sounds",
		rampStep:       2 * time.Second,
		superviseEvery: time.Second,
		volume:         1.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ringing reports whether an alarm is currently sounding.
func (c *RingController) Ringing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ringing
}

// State returns a snapshot of the ringing state.
func (c *RingController) State() domain.RingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.RingState{Ringing: c.ringing, AlarmID: c.current}
}

// Start begins ringing the given alarm. Returns false if the alarm is
// unknown or another alarm already rings.
func (c *RingController) Start(id string) bool {
	a := c.store.Get(id)
	if a == nil {
		c.log.Warn("ring start for unknown alarm %s", id)
		return false
	}

	c.mu.Lock()
	if c.ringing {
		c.mu.Unlock()
		c.log.Warn("ring start ignored, %s already ringing", c.current)
		return false
	}
	c.ringing = true
	c.current = id
	stopCh := make(chan struct{})
	c.stopCh = stopCh
	c.mu.Unlock()

	if c.notifier != nil {
		c.notifier.RingStarted(a)
	}
	if err := c.display.DisplayMessage("⏰ " + a.Name); err != nil {
		c.log.Warn("display unavailable on ring start: %v", err)
	}

	go c.ringLoop(a, stopCh)

	c.log.Info("ringing alarm %q (profile=%s)", a.Name, a.Sound)
	return true
}

// ringLoop runs playback for one ring: sound selection, the gradual
// ramp when configured, and the liveness supervision loop. A missing
// sound file degrades to a silent ring; the state machine still works.
func (c *RingController) ringLoop(a *domain.Alarm, stopCh chan struct{}) {
	path := c.soundPath(a.Sound)
	if path == "" {
		c.log.Error("no playable sound for profile %s, ringing silently", a.Sound)
		return
	}

	if err := c.player.Load(path); err != nil {
		c.log.Error("loading %s: %v, ringing silently", path, err)
		return
	}

	// First playback start under the state lock: a Stop that races the
	// spawn either wins here (no playback at all) or halts the audio
	// with its own player.Stop afterwards.
	c.mu.Lock()
	if !c.ringing || c.stopCh != stopCh {
		c.mu.Unlock()
		return
	}
	if a.Sound == domain.SoundGradual {
		c.player.SetVolume(rampStartVolume)
	} else {
		c.player.SetVolume(c.Volume())
	}
	c.player.Play(true)
	c.mu.Unlock()

	if a.Sound == domain.SoundGradual {
		go c.ramp(stopCh)
	}

	ticker := time.NewTicker(c.superviseEvery)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !c.supervise(stopCh) {
				return
			}
		}
	}
}

// supervise restarts playback if the engine went quiet on its own
// (device hiccup, clip underrun). Returns false once this ring is
// over. The liveness check and the restart happen under the state
// lock, so a concurrent Stop either lands before (no restart, the
// ring is gone) or after (its player.Stop halts the restarted audio).
func (c *RingController) supervise(stopCh chan struct{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ringing || c.stopCh != stopCh {
		return false
	}
	if !c.player.IsPlaying() {
		c.log.Warn("playback stopped while ringing, restarting")
		c.player.Play(true)
	}
	return true
}

// ramp raises the volume in fixed steps until it reaches the target,
// bailing out as soon as the ring stops.
func (c *RingController) ramp(stopCh chan struct{}) {
	vol := rampStartVolume
	ticker := time.NewTicker(c.rampStep)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			target := c.Volume()
			if vol >= target {
				return
			}
			vol = clampVolume(vol + volumeStep)
			if vol > target {
				vol = target
			}
			c.player.SetVolume(vol)
			c.log.Debug("gradual ramp: volume %.1f", vol)
		}
	}
}

// soundPath picks the file for a profile, falling back to the default
// sound, then to nothing.
func (c *RingController) soundPath(p domain.SoundProfile) string {
	path := filepath.Join(c.soundDir, p.FileName())
	if _, err := os.Stat(path); err == nil {
		return path
	}
	c.log.Warn("sound file %s missing, trying default", path)

	fallback := filepath.Join(c.soundDir, defaultSoundFile)
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}

// Stop halts the current ring. Returns false when nothing is ringing.
// Idempotent.
func (c *RingController) Stop() bool {
	c.mu.Lock()
	if !c.ringing {
		c.mu.Unlock()
		return false
	}
	id := c.current
	c.ringing = false
	c.current = ""
	close(c.stopCh)
	c.stopCh = nil
	c.mu.Unlock()

	c.player.Stop()

	a := c.store.Get(id)
	if c.notifier != nil && a != nil {
		c.notifier.RingStopped(a)
	}
	if err := c.display.DisplayMessage("Sẵn sàng"); err != nil {
		c.log.Warn("display unavailable on ring stop: %v", err)
	}

	c.log.Info("ring stopped")
	return true
}

// Snooze stops the given ringing alarm and schedules a one-shot
// follow-up SnoozeMinutes from now. Returns false when the ID is not
// the ringing alarm, snooze is disabled, or the chain already used up
// its snoozes. The clone carries the chain's counter so total depth
// stays capped at domain.MaxSnoozes.
func (c *RingController) Snooze(id string) bool {
	c.mu.Lock()
	ringing, current := c.ringing, c.current
	c.mu.Unlock()

	if !ringing || current != id {
		return false
	}

	a := c.store.Get(id)
	if a == nil || !a.SnoozeEnabled {
		return false
	}
	if a.SnoozeCount >= domain.MaxSnoozes {
		c.log.Info("snooze rejected for %q, limit of %d reached", a.Name, domain.MaxSnoozes)
		return false
	}

	c.Stop()
	count := c.store.BumpSnooze(id)

	at := c.clock.Now().Add(time.Duration(a.SnoozeMinutes) * time.Minute)
	date := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())

	name := a.Name
	if !strings.HasSuffix(name, " (snoozed)") {
		name += " (snoozed)"
	}

	c.store.Add(&domain.Alarm{
		Hour:          at.Hour(),
		Minute:        at.Minute(),
		Date:          &date,
		Name:          name,
		Sound:         a.Sound,
		SnoozeEnabled: a.SnoozeEnabled,
		SnoozeMinutes: a.SnoozeMinutes,
		Active:        true,
		Snoozed:       true,
		SnoozeCount:   count,
	})

	c.log.Info("snoozed %q until %02d:%02d (%d/%d)", a.Name, at.Hour(), at.Minute(), count, domain.MaxSnoozes)
	return true
}

// Volume returns the current playback target volume.
func (c *RingController) Volume() float64 {
	c.volMu.Lock()
	defer c.volMu.Unlock()
	return c.volume
}

// AdjustVolume steps the target volume up or down, clamped to [0,1],
// and applies it immediately when an alarm is ringing.
func (c *RingController) AdjustVolume(increase bool) float64 {
	c.volMu.Lock()
	if increase {
		c.volume = clampVolume(c.volume + volumeStep)
	} else {
		c.volume = clampVolume(c.volume - volumeStep)
	}
	v := c.volume
	c.volMu.Unlock()

	if c.Ringing() {
		c.player.SetVolume(v)
	}
	c.log.Debug("volume adjusted to %.1f", v)
	return v
}

// stopPhrases are free-text fragments recognized as stop-the-alarm
// requests, Vietnamese first.
var stopPhrases = []string{
	"tắt báo thức",
	"tat bao thuc",
	"dừng báo thức",
	"tắt chuông",
	"stop alarm",
	"stop the alarm",
	"turn off the alarm",
}

// MatchStopCommand checks free text for a stop-alarm phrase. When one
// matches it stops the ring and returns a canned reply; the second
// return value reports whether the text matched at all.
func (c *RingController) MatchStopCommand(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range stopPhrases {
		if strings.Contains(lower, p) {
			if c.Stop() {
				return "Đã tắt báo thức.", true
			}
			return "Không có báo thức nào đang reo.", true
		}
	}
	return "", false
}

func clampVolume(v float64) float64 {
	// Round to one decimal so repeated 0.1 steps don't drift.
	v = math.Round(v*10) / 10
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
