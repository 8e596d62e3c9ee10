package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gaurvviii/safepulse/internal/metrics"
	"github.com/gaurvviii/safepulse/pkg/safepulse/geo"
	"github.com/gaurvviii/safepulse/pkg/safepulse/internalerr"
)

// Incident is one geolocated news-derived safety incident. Records are
// read-only after creation; the store only replaces whole snapshots.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	SourceURL   string    `json:"source_url"`
	SourceName  string    `json:"source_name"`
	Coordinate  geo.Point `json:"coordinate"`
	PublishedAt time.Time `json:"published_at"`

	// DistanceKm is measured from the caller's reference point. It is
	// recomputed on every merge and projection, never authoritative.
	DistanceKm float64 `json:"distance_km"`
}

// Key is the composite identity used for deduplication: two records
// are the same only when id, title, source URL and published time all
// match.
func (i Incident) Key() string {
	return i.ID + "\x1f" + i.Title + "\x1f" + i.SourceURL + "\x1f" +
		strconv.FormatInt(i.PublishedAt.UnixNano(), 10)
}

// Snapshot persists one opaque incident list under a single key.
type Snapshot interface {
	Load(ctx context.Context) ([]Incident, error)
	Save(ctx context.Context, incidents []Incident) error
	Close() error
}

// DefaultCapacity bounds the store when no capacity is configured.
const DefaultCapacity = 50

// Store is the bounded, persisted incident collection. All mutation
// goes through Merge, which holds the store mutex for the whole cycle;
// the store is the sole writer of its snapshot.
type Store struct {
	mu       sync.Mutex
	snap     Snapshot
	capacity int
	log      *slog.Logger
}

// New creates a store over the given snapshot. capacity <= 0 selects
// DefaultCapacity. logger may be nil.
func New(snap Snapshot, capacity int, logger *slog.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{snap: snap, capacity: capacity, log: logger}
}

// Close closes the underlying snapshot.
func (s *Store) Close() error { return s.snap.Close() }

// Capacity returns the configured maximum size.
func (s *Store) Capacity() int { return s.capacity }

// Merge folds incoming records into the persisted collection:
// load, concatenate, dedupe on the composite key, recompute distances
// against ref, sort (distance ascending, published time descending on
// ties), truncate to capacity, persist atomically.
//
// A persistence failure is reported as an error wrapping
// internalerr.ErrPersist but the merged in-memory list is still
// returned; durability is best-effort within a cycle.
func (s *Store) Merge(ctx context.Context, ref geo.Point, incoming []Incident) ([]Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := s.snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}

	merged := dedupe(append(prev, incoming...))
	for i := range merged {
		merged[i].DistanceKm = geo.DistanceKm(ref, merged[i].Coordinate)
	}
	sortIncidents(merged)

	if len(merged) > s.capacity {
		metrics.IncidentsEvictedTotal.Add(float64(len(merged) - s.capacity))
		merged = merged[:s.capacity]
	}
	metrics.IncidentsMergedTotal.Add(float64(len(incoming)))

	if err := s.snap.Save(ctx, merged); err != nil {
		s.log.Warn("snapshot write failed, serving in-memory result", "error", err)
		return merged, fmt.Errorf("store: %w: %v", internalerr.ErrPersist, err)
	}
	return merged, nil
}

// Records returns the persisted collection re-projected against ref,
// optionally dropping records further than maxKm (0 disables the
// filter). It never mutates the snapshot.
func (s *Store) Records(ctx context.Context, ref geo.Point, maxKm float64) ([]Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	incidents, err := s.snap.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: load snapshot: %w", err)
	}

	for i := range incidents {
		incidents[i].DistanceKm = geo.DistanceKm(ref, incidents[i].Coordinate)
	}
	sortIncidents(incidents)

	if maxKm <= 0 {
		return incidents, nil
	}
	kept := incidents[:0]
	for _, inc := range incidents {
		if inc.DistanceKm <= maxKm {
			kept = append(kept, inc)
		}
	}
	return kept, nil
}

func dedupe(incidents []Incident) []Incident {
	seen := make(map[string]struct{}, len(incidents))
	out := make([]Incident, 0, len(incidents))
	for _, inc := range incidents {
		key := inc.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, inc)
	}
	return out
}

func sortIncidents(incidents []Incident) {
	sort.SliceStable(incidents, func(i, j int) bool {
		if incidents[i].DistanceKm != incidents[j].DistanceKm {
			return incidents[i].DistanceKm < incidents[j].DistanceKm
		}
		return incidents[i].PublishedAt.After(incidents[j].PublishedAt)
	})
}
