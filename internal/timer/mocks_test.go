package timer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
	"github.com/hammamikhairi/waker/internal/storage"
)

// mockPlayer records audio engine calls for testing.
type mockPlayer struct {
	mu      sync.Mutex
	loads   []string
	plays   int
	volumes []float64
	playing bool
	loadErr error
}

func (m *mockPlayer) Load(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, path)
	return m.loadErr
}

func (m *mockPlayer) Play(loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	m.playing = true
}

func (m *mockPlayer) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volumes = append(m.volumes, v)
}

func (m *mockPlayer) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *mockPlayer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

func (m *mockPlayer) goSilent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
}

func (m *mockPlayer) playCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

func (m *mockPlayer) volumeTrace() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.volumes...)
}

func (m *mockPlayer) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loads)
}

// mockDisplay collects display messages.
type mockDisplay struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockDisplay) DisplayMessage(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, text)
	return nil
}

func (m *mockDisplay) IsConnected() bool { return true }

func (m *mockDisplay) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func (m *mockDisplay) last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1]
}

// mockRingNotifier counts ring lifecycle callbacks.
type mockRingNotifier struct {
	mu      sync.Mutex
	started []string
	stopped []string
}

func (m *mockRingNotifier) RingStarted(a *domain.Alarm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, a.Name)
}

func (m *mockRingNotifier) RingStopped(a *domain.Alarm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = append(m.stopped, a.Name)
}

func (m *mockRingNotifier) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.started), len(m.stopped)
}

// fakeClock is a settable wall clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// soundDir creates a temp dir holding the named sound files.
func soundDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("writing %s: %v", f, err)
		}
	}
	return dir
}

// testRig bundles the usual fixture: store, mocks, ring controller.
type testRig struct {
	store    *storage.AlarmStore
	player   *mockPlayer
	display  *mockDisplay
	notifier *mockRingNotifier
	clock    *fakeClock
	ring     *RingController
}

func newTestRig(t *testing.T, ringOpts ...RingOption) *testRig {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	rig := &testRig{
		store:    storage.NewAlarmStore(log),
		player:   &mockPlayer{},
		display:  &mockDisplay{},
		notifier: &mockRingNotifier{},
		clock:    newFakeClock(time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)), // a Monday
	}
	opts := append([]RingOption{
		WithSoundDir(soundDir(t, "alarm.wav", "music.wav", "vibration.wav")),
		WithRingClock(rig.clock),
		WithNotifier(rig.notifier),
		WithSuperviseInterval(10 * time.Millisecond),
		WithRampStep(10 * time.Millisecond),
	}, ringOpts...)
	rig.ring = NewRingController(rig.store, rig.player, rig.display, log, opts...)
	return rig
}
