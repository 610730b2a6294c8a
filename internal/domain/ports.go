package domain

import "time"

// DisplayPeripheral is the narrow capability interface over the attached
// display. Implementations can be a real peripheral driver, a terminal
// renderer, or a no-op stub for tests and headless runs.
type DisplayPeripheral interface {
	// DisplayMessage pushes text to the display. A disconnected
	// peripheral returns an error; callers log and move on.
	DisplayMessage(text string) error
	IsConnected() bool
}

// AudioPlayer abstracts the audio engine an alarm rings through.
// Implementations can be oto-backed or a silent mock.
type AudioPlayer interface {
	Load(path string) error
	Play(loop bool)
	SetVolume(v float64)
	IsPlaying() bool
	Stop()
}

// RingNotifier receives ring lifecycle callbacks so a host UI can
// update indicators. The engine renders nothing itself.
type RingNotifier interface {
	RingStarted(a *Alarm)
	RingStopped(a *Alarm)
}

// Clock supplies the current time. Production uses the system clock;
// tests substitute a fixed or stepping fake.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return ClockFunc(time.Now) }
