// Package history keeps the bounded, deduplicated list of scan events for an
// account together with its transient current selection.
package history

import (
	"sync"

	"back_scan/internal/models"
)

// MaxEntries bounds the history; the oldest events are evicted first
const MaxEntries = 100

// Store is the in-memory history of one account. It is the authoritative copy;
// persistence happens off to the side through the change callback.
type Store struct {
	mu       sync.RWMutex
	events   []models.ScanEvent // newest first
	current  *models.ScanEvent
	onChange func(models.HistorySnapshot)
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{}
}

// OnChange registers fn to receive a snapshot after every mutation of the event
// list. fn runs with the store locked, in mutation order, and must not call back
// into the store.
func (s *Store) OnChange(fn func(models.HistorySnapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Add inserts ev at the front. It is a no-op returning false when ev has no
// data or an event with the same data is already present.
func (s *Store) Add(ev models.ScanEvent) bool {
	if ev.Data == "" {
		return false
	}

	s.mu.Lock()
	for _, existing := range s.events {
		if existing.Data == ev.Data {
			s.mu.Unlock()
			return false
		}
	}
	events := make([]models.ScanEvent, 0, len(s.events)+1)
	events = append(events, ev)
	events = append(events, s.events...)
	if len(events) > MaxEntries {
		events = events[:MaxEntries]
	}
	s.events = events
	s.notifyLocked()
	s.mu.Unlock()
	return true
}

// Events returns a copy of the history, newest first
func (s *Store) Events() []models.ScanEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ScanEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Clear removes every event. The current selection is left alone.
func (s *Store) Clear() {
	s.mu.Lock()
	s.events = nil
	s.notifyLocked()
	s.mu.Unlock()
}

// Current returns the current selection, if any
func (s *Store) Current() (models.ScanEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.ScanEvent{}, false
	}
	return *s.current, true
}

// SetCurrent replaces the current selection
func (s *Store) SetCurrent(ev models.ScanEvent) {
	s.mu.Lock()
	s.current = &ev
	s.mu.Unlock()
}

// SetCurrentIfEmpty sets the current selection only when none is held and
// reports whether it did
func (s *Store) SetCurrentIfEmpty(ev models.ScanEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		return false
	}
	s.current = &ev
	return true
}

// ClearCurrent drops the current selection
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Hydrate replaces the event list with persisted events without notifying the
// change callback. Invalid and duplicate events are dropped and the bound applied.
func (s *Store) Hydrate(events []models.ScanEvent) {
	seen := make(map[string]struct{}, len(events))
	clean := make([]models.ScanEvent, 0, len(events))
	for _, ev := range events {
		if ev.Data == "" {
			continue
		}
		if _, dup := seen[ev.Data]; dup {
			continue
		}
		seen[ev.Data] = struct{}{}
		if !ev.SemanticType.Valid() {
			ev.SemanticType = models.SemanticText
		}
		clean = append(clean, ev)
		if len(clean) == MaxEntries {
			break
		}
	}

	s.mu.Lock()
	s.events = clean
	s.mu.Unlock()
}

// Snapshot returns the persistable form of the store
func (s *Store) Snapshot() models.HistorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) notifyLocked() {
	if s.onChange != nil {
		s.onChange(s.snapshotLocked())
	}
}

func (s *Store) snapshotLocked() models.HistorySnapshot {
	events := make([]models.ScanEvent, len(s.events))
	copy(events, s.events)
	return models.HistorySnapshot{
		Version: models.HistorySnapshotVersion,
		Events:  events,
	}
}
