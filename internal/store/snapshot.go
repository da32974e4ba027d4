// Package store publishes the most recent complete result set to the
// serving layer. Snapshots are immutable; a refresh builds a whole new
// one and swaps the pointer, so in-flight readers always see a single
// internally consistent snapshot and reads need no locking.
package store

import (
	"sync/atomic"

	"kpi-master/internal/models"
)

// SnapshotStore holds the currently published snapshot, if any.
type SnapshotStore struct {
	current atomic.Pointer[models.Snapshot]
}

// New creates an empty store. Until the first Swap, Load reports no data
// and the HTTP layer answers "data unavailable".
func New() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns the published snapshot and whether one exists.
func (s *SnapshotStore) Load() (*models.Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Swap publishes a new snapshot.
func (s *SnapshotStore) Swap(snap *models.Snapshot) {
	s.current.Store(snap)
}
