// Package domain defines the core types and interfaces for the alarm engine.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"fmt"
	"time"
)

// MaxSnoozes is the global cap on how many times a single alarm chain
// may be snoozed before further snooze requests are rejected.
const MaxSnoozes = 3

// Alarm is a single scheduled alarm. The zero LastTriggered time means
// the alarm has never fired.
type Alarm struct {
	ID     string
	Hour   int // 0-23
	Minute int // 0-59

	// Date, when non-nil, makes this a one-shot alarm firing only on
	// that calendar day. Ignored when RepeatDays is non-empty.
	Date *time.Time

	// RepeatDays lists the weekdays a recurring alarm fires on.
	// Empty RepeatDays together with nil Date means a plain daily alarm.
	RepeatDays []time.Weekday

	Name  string
	Sound SoundProfile

	SnoozeEnabled bool
	SnoozeMinutes int
	Active        bool

	LastTriggered time.Time

	// Snoozed marks an alarm created by snoozing another one. Its
	// SnoozeCount carries the chain's total, so the cap spans the whole
	// chain instead of resetting per clone.
	Snoozed     bool
	SnoozeCount int
}

// IsOneShot reports whether the alarm fires on a single calendar date.
func (a *Alarm) IsOneShot() bool {
	return a.Date != nil && len(a.RepeatDays) == 0
}

// IsRecurring reports whether the alarm repeats on fixed weekdays.
func (a *Alarm) IsRecurring() bool {
	return len(a.RepeatDays) > 0
}

// RepeatsOn reports whether the alarm's weekday set contains d.
func (a *Alarm) RepeatsOn(d time.Weekday) bool {
	for _, wd := range a.RepeatDays {
		if wd == d {
			return true
		}
	}
	return false
}

// FiredOn reports whether the alarm already fired on the calendar day of t.
func (a *Alarm) FiredOn(t time.Time) bool {
	if a.LastTriggered.IsZero() {
		return false
	}
	ly, lm, ld := a.LastTriggered.Date()
	ty, tm, td := t.Date()
	return ly == ty && lm == tm && ld == td
}

// TimeLabel returns the alarm time as "HH:MM".
func (a *Alarm) TimeLabel() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Clone returns a deep copy of the alarm.
func (a *Alarm) Clone() *Alarm {
	c := *a
	if a.Date != nil {
		d := *a.Date
		c.Date = &d
	}
	if a.RepeatDays != nil {
		c.RepeatDays = append([]time.Weekday(nil), a.RepeatDays...)
	}
	return &c
}

// SoundProfile selects which sound an alarm rings with.
type SoundProfile int

const (
	// SoundNormal plays the default alarm tone at full volume.
	SoundNormal SoundProfile = iota
	// SoundGradual starts quiet and ramps the volume up over time.
	SoundGradual
	// SoundVibration plays a short buzzing pattern.
	SoundVibration
	// SoundMusic plays a longer music clip.
	SoundMusic
)

// String returns a human-readable profile name.
func (p SoundProfile) String() string {
	switch p {
	case SoundNormal:
		return "normal"
	case SoundGradual:
		return "gradual"
	case SoundVibration:
		return "vibration"
	case SoundMusic:
		return "music"
	default:
		return "unknown"
	}
}

// FileName returns the sound file associated with the profile.
// Gradual shares the normal tone; the ramp is done in playback.
func (p SoundProfile) FileName() string {
	switch p {
	case SoundVibration:
		return "vibration.wav"
	case SoundMusic:
		return "music.wav"
	default:
		return "alarm.wav"
	}
}

// profileNames maps lowercase names to SoundProfile values.
var profileNames = map[string]SoundProfile{
	"normal":    SoundNormal,
	"gradual":   SoundGradual,
	"vibration": SoundVibration,
	"music":     SoundMusic,
}

// ProfileFromString converts a profile name to a SoundProfile.
// Returns SoundNormal for unrecognized names.
func ProfileFromString(name string) SoundProfile {
	if p, ok := profileNames[name]; ok {
		return p
	}
	return SoundNormal
}

// RingState is a snapshot of the process-wide ringing state. Owned by
// the ring controller; everyone else treats it as read-only.
type RingState struct {
	Ringing bool
	AlarmID string
}
