package state

import (
	"log"
	"sync"

	"HomeDash/internal/model"
)

// Store owns the process-wide snapshot with concurrency safety. All mutation
// goes through Update, which persists before releasing the lock, so a
// concurrent reader never observes a half-written multi-field change.
type Store struct {
	mu       sync.Mutex
	snap     *model.Snapshot
	filePath string
}

// NewStore creates a Store, loading any prior snapshot from disk. A missing
// or malformed file yields defaults; load never fails startup.
func NewStore(filePath string) *Store {
	return &Store{
		snap:     LoadSnapshot(filePath),
		filePath: filePath,
	}
}

// View returns a deep copy of the current snapshot.
func (s *Store) View() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Update applies a mutation and persists the snapshot as one unit. A failed
// disk write is logged; the in-memory state stays authoritative until the
// next successful persist.
func (s *Store) Update(fn func(*model.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.snap)
	if err := SaveSnapshot(s.filePath, s.snap); err != nil {
		log.Printf("[ERROR] failed to save state: %v", err)
	}
}
