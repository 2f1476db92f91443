// Package status tracks per-component lifecycle state for one run.
//
// The store is the only shared mutable resource between concurrent
// monitors and the dashboard; all access goes through a single mutex so
// writers never lose updates and readers always see a consistent snapshot.
package status

import (
	"sync"
	"time"
)

// State is a component lifecycle state.
type State string

const (
	StatePending     State = "Pending"
	StateWaiting     State = "Waiting"
	StateInstalling  State = "Installing"
	StateSyncing     State = "Syncing"
	StateProgressing State = "Progressing"
	StateSuccess     State = "Success"
	StateFailed      State = "Failed"
	StateAborted     State = "Aborted"
)

// Terminal reports whether the state ends a component's run.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed || s == StateAborted
}

// Record is a component's current state with the timestamp of the last
// state change. Since only moves when State changes; rewriting the same
// state updates Detail alone, preserving time-in-state.
type Record struct {
	ComponentID string
	State       State
	Detail      string
	Since       time.Time
}

// Store is a concurrent-safe map of component id to Record.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	start   time.Time
	now     func() time.Time
}

// NewStore creates a store anchored at the current time.
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates a store using the given clock. Tests inject a
// fake clock to make time-in-state assertions deterministic.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{
		records: make(map[string]Record),
		start:   now(),
		now:     now,
	}
}

// Update sets the component's state and detail. If the state is unchanged
// only the detail is rewritten and Since is preserved.
func (s *Store) Update(id string, state State, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if ok && rec.State == state {
		rec.Detail = detail
		s.records[id] = rec
		return
	}

	s.records[id] = Record{
		ComponentID: id,
		State:       state,
		Detail:      detail,
		Since:       s.now(),
	}
}

// Get returns the component's current record. Components never written
// report Pending anchored at run start.
func (s *Store) Get(id string) Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.records[id]; ok {
		return rec
	}
	return Record{ComponentID: id, State: StatePending, Since: s.start}
}

// Snapshot returns a copy of all records for atomic read-then-render.
func (s *Store) Snapshot() map[string]Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Record, len(s.records))
	for id, rec := range s.records {
		out[id] = rec
	}
	return out
}

// AllTerminal reports whether every listed component reached a terminal
// state. Components never written are Pending, hence not terminal.
func (s *Store) AllTerminal(ids []string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range ids {
		rec, ok := s.records[id]
		if !ok || !rec.State.Terminal() {
			return false
		}
	}
	return true
}

// CountIn returns how many of the listed components are in the given state.
func (s *Store) CountIn(state State, ids []string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, id := range ids {
		rec, ok := s.records[id]
		if !ok {
			rec.State = StatePending
		}
		if rec.State == state {
			n++
		}
	}
	return n
}

// AbortPending marks every listed component that has not reached a terminal
// state as Aborted. Used when the run is cancelled or an earlier stage
// fails before a component's monitor runs.
func (s *Store) AbortPending(ids []string, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		rec, ok := s.records[id]
		if ok && rec.State.Terminal() {
			continue
		}
		s.records[id] = Record{
			ComponentID: id,
			State:       StateAborted,
			Detail:      detail,
			Since:       s.now(),
		}
	}
}
