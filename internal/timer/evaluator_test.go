package timer

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

func newEvaluator(rig *testRig) *Evaluator {
	return NewEvaluator(rig.store, rig.clock, rig.ring, logger.New(logger.LevelOff, nil))
}

func TestRecurringAlarmFiresOnceInWindow(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	// Work alarm, weekdays at 07:30.
	rig.store.Add(&domain.Alarm{
		Hour:   7,
		Minute: 30,
		Name:   "Work",
		RepeatDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Active: true,
	})

	monday := time.Date(2026, 3, 9, 7, 29, 0, 0, time.UTC)
	if monday.Weekday() != time.Monday {
		t.Fatal("fixture date is not a Monday")
	}

	fire := func(at time.Time) bool {
		rig.clock.Set(at)
		eval.Tick()
		fired := rig.ring.Ringing()
		rig.ring.Stop()
		return fired
	}

	if fire(monday) {
		t.Fatal("must not fire at 07:29")
	}
	if !fire(monday.Add(time.Minute)) {
		t.Fatal("must fire at 07:30")
	}
	// More ticks inside the same minute: suppressed.
	if fire(monday.Add(time.Minute + 20*time.Second)) {
		t.Fatal("must not fire twice within the minute")
	}
	if fire(monday.Add(2 * time.Minute)) {
		t.Fatal("must not fire at 07:31")
	}

	// The following Monday the stale LastTriggered is a different
	// calendar day and must not suppress the fire.
	if !fire(monday.AddDate(0, 0, 7).Add(time.Minute)) {
		t.Fatal("must fire again the following Monday")
	}

	// Off-schedule weekday: Saturday.
	if fire(monday.AddDate(0, 0, 5).Add(time.Minute)) {
		t.Fatal("must not fire on Saturday")
	}
}

func TestDailyAlarmFiresOncePerDay(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	rig.store.Add(&domain.Alarm{Hour: 6, Minute: 0, Name: "Daily", Active: true})

	day := time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)

	for _, sec := range []int{0, 1, 30, 59} {
		rig.clock.Set(day.Add(time.Duration(sec) * time.Second))
		eval.Tick()
		if rig.ring.Ringing() {
			rig.ring.Stop()
		}
	}

	if started, _ := rig.notifier.counts(); started != 1 {
		t.Fatalf("expected exactly 1 fire within the day, got %d", started)
	}

	a := rig.store.List()[0]
	if a.LastTriggered.IsZero() {
		t.Fatal("daily alarm never fired")
	}
	firstFire := a.LastTriggered

	// Next day it fires again.
	rig.clock.Set(day.AddDate(0, 0, 1))
	eval.Tick()
	if !rig.ring.Ringing() {
		t.Fatal("daily alarm must fire again the next day")
	}
	rig.ring.Stop()

	a = rig.store.List()[0]
	if a.LastTriggered.Equal(firstFire) {
		t.Fatal("LastTriggered not advanced on second fire")
	}
}

func TestFreshFireRestoresSnoozeBudget(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	id := rig.store.Add(&domain.Alarm{
		Hour: 7, Minute: 0, Name: "Wake",
		SnoozeEnabled: true, SnoozeMinutes: 5, Active: true,
	})

	// Day one: fire, then snooze the ring.
	rig.clock.Set(time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC))
	eval.Tick()
	if !rig.ring.Ringing() {
		t.Fatal("expected day-one fire")
	}
	if !rig.ring.Snooze(id) {
		t.Fatal("day-one snooze should succeed")
	}
	if got := rig.store.Get(id).SnoozeCount; got != 1 {
		t.Fatalf("expected SnoozeCount 1 after day-one snooze, got %d", got)
	}

	// Day two: a fresh fire restores the full snooze budget instead of
	// letting yesterday's snooze eat into it permanently.
	rig.clock.Set(time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC))
	eval.Tick()
	if !rig.ring.Ringing() {
		t.Fatal("expected day-two fire")
	}
	if got := rig.store.Get(id).SnoozeCount; got != 0 {
		t.Fatalf("fresh fire must reset SnoozeCount, got %d", got)
	}
	if !rig.ring.Snooze(id) {
		t.Fatal("day-two snooze should succeed with a fresh budget")
	}
}

func TestOneShotAlarmMatchesDateOnly(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rig.store.Add(&domain.Alarm{Hour: 9, Minute: 0, Name: "Dentist", Date: &date, Active: true})

	// Right time, wrong day.
	rig.clock.Set(time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC))
	eval.Tick()
	if rig.ring.Ringing() {
		t.Fatal("one-shot must not fire the day before")
	}

	// The target day.
	rig.clock.Set(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	eval.Tick()
	if !rig.ring.Ringing() {
		t.Fatal("one-shot must fire on its date")
	}
	rig.ring.Stop()
}

func TestRepeatDaysIgnoreDate(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	// Date says Tuesday, RepeatDays say Monday. RepeatDays win.
	date := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	rig.store.Add(&domain.Alarm{
		Hour:       8,
		Minute:     0,
		Name:       "Conflicted",
		Date:       &date,
		RepeatDays: []time.Weekday{time.Monday},
		Active:     true,
	})

	rig.clock.Set(time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)) // Monday
	eval.Tick()
	if !rig.ring.Ringing() {
		t.Fatal("recurring semantics must win over the stray date")
	}
	rig.ring.Stop()

	rig.clock.Set(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)) // Tuesday, the date
	eval.Tick()
	if rig.ring.Ringing() {
		t.Fatal("the ignored date must not fire")
	}
}

func TestOnlyOneAlarmFiresPerTick(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	rig.store.Add(&domain.Alarm{Hour: 7, Minute: 0, Name: "first", Active: true})
	rig.store.Add(&domain.Alarm{Hour: 7, Minute: 0, Name: "second", Active: true})

	rig.clock.Set(time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC))
	eval.Tick()

	st := rig.ring.State()
	if !st.Ringing {
		t.Fatal("expected a ring")
	}
	if got := rig.store.Get(st.AlarmID).Name; got != "first" {
		t.Fatalf("store-order alarm must win, got %q", got)
	}
	// Only the winner was marked.
	if !rig.store.List()[1].LastTriggered.IsZero() {
		t.Fatal("second alarm must not be marked triggered")
	}
}

func TestTickSkippedWhileRinging(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	rig.store.Add(&domain.Alarm{Hour: 7, Minute: 0, Name: "first", Active: true})
	rig.store.Add(&domain.Alarm{Hour: 7, Minute: 1, Name: "second", Active: true})

	rig.clock.Set(time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC))
	eval.Tick()
	if !rig.ring.Ringing() {
		t.Fatal("expected first alarm ringing")
	}

	// Minute rolls over while the first is still ringing.
	rig.clock.Set(time.Date(2026, 3, 9, 7, 1, 0, 0, time.UTC))
	eval.Tick()

	if !rig.store.List()[1].LastTriggered.IsZero() {
		t.Fatal("evaluation must be skipped while an alarm rings")
	}
}

func TestRunnerTicksUntilStopped(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)
	runner := NewRunner(eval, 5*time.Millisecond, logger.New(logger.LevelOff, nil))

	rig.store.Add(&domain.Alarm{Hour: 7, Minute: 0, Name: "Wake", Active: true})
	rig.clock.Set(time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC))

	runner.Start(context.Background())
	runner.Start(context.Background()) // second start is a no-op
	waitFor(t, rig.ring.Ringing)
	runner.Stop()
	runner.Stop()
	rig.ring.Stop()
}

func TestInactiveAlarmNeverFires(t *testing.T) {
	rig := newTestRig(t)
	eval := newEvaluator(rig)

	rig.store.Add(&domain.Alarm{Hour: 7, Minute: 0, Name: "off", Active: false})

	rig.clock.Set(time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC))
	eval.Tick()
	if rig.ring.Ringing() {
		t.Fatal("inactive alarm must not fire")
	}
}
