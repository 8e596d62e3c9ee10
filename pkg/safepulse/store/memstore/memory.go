package memstore

import (
	"context"
	"sync"

	"github.com/gaurvviii/safepulse/pkg/safepulse/store"
)

// Snapshot is an in-memory store.Snapshot for tests and ephemeral runs.
type Snapshot struct {
	mu        sync.RWMutex
	incidents []store.Incident

	// FailSave, when set, makes every Save return this error. Used to
	// exercise the best-effort durability path.
	FailSave error
}

// New creates an empty in-memory snapshot.
func New() *Snapshot {
	return &Snapshot{}
}

// Load returns a copy of the stored list.
func (s *Snapshot) Load(ctx context.Context) ([]store.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Incident, len(s.incidents))
	copy(out, s.incidents)
	return out, nil
}

// Save replaces the stored list.
func (s *Snapshot) Save(ctx context.Context, incidents []store.Incident) error {
	if s.FailSave != nil {
		return s.FailSave
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents = make([]store.Incident, len(incidents))
	copy(s.incidents, incidents)
	return nil
}

// Close implements store.Snapshot.
func (s *Snapshot) Close() error { return nil }

// Len returns the number of persisted records.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.incidents)
}
