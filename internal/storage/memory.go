// Package storage provides the in-memory alarm store.
package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/waker/internal/domain"
	"github.com/hammamikhairi/waker/internal/logger"
)

// AlarmStore holds alarms in memory, preserving insertion order.
// Safe for concurrent access. Callers always receive copies; the
// narrow mutators below are the only way to touch firing bookkeeping.
type AlarmStore struct {
	mu     sync.RWMutex
	alarms map[string]*domain.Alarm
	order  []string
	log    *logger.Logger
}

// NewAlarmStore creates an empty alarm store.
func NewAlarmStore(log *logger.Logger) *AlarmStore {
	return &AlarmStore{
		alarms: make(map[string]*domain.Alarm),
		log:    log,
	}
}

// Add inserts a new alarm, assigns it an ID, and returns the ID.
func (s *AlarmStore) Add(a *domain.Alarm) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := a.Clone()
	c.ID = uuid.NewString()
	// A new alarm has never fired. Snoozed and SnoozeCount are kept as
	// given so snooze clones carry the chain's counter in.
	c.LastTriggered = time.Time{}

	s.alarms[c.ID] = c
	s.order = append(s.order, c.ID)

	s.log.Debug("added alarm %s (%q at %s)", c.ID[:8], c.Name, c.TimeLabel())
	return c.ID
}

// Update replaces the mutable fields of an existing alarm. Returns
// false if the ID is absent. LastTriggered, Snoozed, and SnoozeCount
// are preserved from the stored alarm.
func (s *AlarmStore) Update(id string, a *domain.Alarm) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.alarms[id]
	if !ok {
		return false
	}

	c := a.Clone()
	c.ID = id
	c.LastTriggered = old.LastTriggered
	c.Snoozed = old.Snoozed
	c.SnoozeCount = old.SnoozeCount
	s.alarms[id] = c

	s.log.Debug("updated alarm %s (%q at %s)", id[:8], c.Name, c.TimeLabel())
	return true
}

// Delete removes an alarm. Returns false if the ID is absent.
// Stopping a ringing alarm before deleting it is the orchestrator's
// responsibility, not the store's.
func (s *AlarmStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alarms[id]; !ok {
		return false
	}
	delete(s.alarms, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Debug("deleted alarm %s", id[:8])
	return true
}

// Get returns a copy of the alarm with the given ID, or nil.
func (s *AlarmStore) Get(id string) *domain.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alarms[id]
	if !ok {
		return nil
	}
	return a.Clone()
}

// List returns copies of all alarms in insertion order.
func (s *AlarmStore) List() []*domain.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Alarm, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.alarms[id].Clone())
	}
	return out
}

// Len returns the number of stored alarms.
func (s *AlarmStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alarms)
}

// MarkTriggered records an actual fire for an alarm. A fresh fire
// restores the full snooze budget; a snooze clone keeps its chain's
// count. Returns false if the ID is absent.
func (s *AlarmStore) MarkTriggered(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		return false
	}
	a.LastTriggered = at
	if !a.Snoozed {
		a.SnoozeCount = 0
	}
	return true
}

// BumpSnooze increments an alarm's snooze counter and returns the new
// value, or -1 if the ID is absent.
func (s *AlarmStore) BumpSnooze(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alarms[id]
	if !ok {
		return -1
	}
	a.SnoozeCount++
	return a.SnoozeCount
}
