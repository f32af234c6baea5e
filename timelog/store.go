package timelog

import (
	"fmt"
	"log/slog"
	"sync"
)

// Store holds the ordered collection of time entries and is the single
// source of truth. Mutations persist the full snapshot before returning.
// Entries are never deleted; the only permitted mutation on an existing
// entry is the clock-out transition.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	snap    Snapshot
	logger  *slog.Logger
}

// NewStore creates a store backed by snap, restoring the last persisted
// snapshot. A missing or corrupt snapshot yields an empty store, never a
// startup failure.
func NewStore(snap Snapshot, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := snap.Load()
	if err != nil {
		logger.Warn("Snapshot unreadable, starting with empty store", "error", err)
		entries = []Entry{}
	}

	return &Store{
		entries: entries,
		snap:    snap,
		logger:  logger,
	}
}

// Len returns the number of entries in the log.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a copy of the full log in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// HasOpen reports whether the employee currently has an open session.
func (s *Store) HasOpen(employeeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.entries {
		if s.entries[i].EmployeeID == employeeID && s.entries[i].Open() {
			return true
		}
	}
	return false
}

// Append adds a new entry to the log and persists the snapshot.
// The entry stays in memory even if persistence fails; the error is
// returned so the caller can surface it.
func (s *Store) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if err := s.snap.Save(s.entries); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// UpdateFirst applies mutate to the first entry matching match and
// persists the snapshot. It returns the mutated entry and whether a
// match was found. No match leaves the store untouched.
func (s *Store) UpdateFirst(match func(*Entry) bool, mutate func(*Entry)) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if !match(&s.entries[i]) {
			continue
		}
		mutate(&s.entries[i])
		updated := s.entries[i]
		if err := s.snap.Save(s.entries); err != nil {
			return updated, true, fmt.Errorf("persist snapshot: %w", err)
		}
		return updated, true, nil
	}
	return Entry{}, false, nil
}

// Close closes the snapshot backend.
func (s *Store) Close() error {
	return s.snap.Close()
}
