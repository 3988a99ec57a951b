package store

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/optimistic-forecast/internal/weather"
)

// ErrNotFound is returned when no snapshot is available for a tracked query.
var ErrNotFound = weather.ErrNoSnapshots

// SnapshotHistory holds a time-ordered list of forecast snapshots for one query and units pair.
type SnapshotHistory struct {
	Snapshots []weather.ForecastSnapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: weather.SnapshotKey, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per key
	maxAge     time.Duration // optional max age for snapshots

	clock clockwork.Clock
}

// Option customizes a MemoryStore.
type Option func(*MemoryStore)

// WithClock replaces the wall clock used for age-based retention.
func WithClock(c clockwork.Clock) Option {
	return func(s *MemoryStore) { s.clock = c }
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ weather.Store = (*MemoryStore)(nil)

// SaveSnapshot appends a snapshot for its query and enforces retention.
func (s *MemoryStore) SaveSnapshot(snapshot weather.ForecastSnapshot) {
	key := weather.SnapshotKey(snapshot.Query, snapshot.Units)
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = s.clock.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[key]
	if !ok {
		history = &SnapshotHistory{}
		s.data[key] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age. The newest snapshot is always kept.
	if s.maxAge > 0 {
		cutoff := s.clock.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots)-1; i++ {
			if !history.Snapshots[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		history.Snapshots = history.Snapshots[i:]
	}
}

// GetLatest returns the most recent snapshot for a query.
func (s *MemoryStore) GetLatest(query string, units weather.Units) (weather.ForecastSnapshot, error) {
	key := weather.SnapshotKey(query, units)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return weather.ForecastSnapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a query fetched between from and to (inclusive).
func (s *MemoryStore) GetRange(query string, units weather.Units, from, to time.Time) ([]weather.ForecastSnapshot, error) {
	key := weather.SnapshotKey(query, units)

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[key]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.ForecastSnapshot
	for _, snap := range history.Snapshots {
		if !snap.FetchedAt.Before(from) && !snap.FetchedAt.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
