package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	// ErrNotFound is returned when nothing has been committed yet.
	ErrNotFound = errors.New("weather data has not been loaded yet")
	// ErrStale is returned when the committed data is older than the configured max age.
	ErrStale = errors.New("weather data is stale")
)

// MemoryStore is a concurrency-safe in-memory holder of the latest committed
// reading and prediction pulls.
type MemoryStore struct {
	mu sync.RWMutex

	seq         uint64
	readings    *weather.Dataset
	predictions *weather.PredictionSet

	// optional max age of committed data (0 = unlimited)
	maxAge time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore. If maxAge is <= 0, committed data
// never goes stale.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxAge: maxAge,
		now:    time.Now,
	}
}

// NextSeq issues the next fetch sequence number. Numbers start at 1.
func (s *MemoryStore) NextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	return s.seq
}

// SaveReadings commits ds unless a dataset with the same or a newer sequence
// is already committed.
func (s *MemoryStore) SaveReadings(ds weather.Dataset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readings != nil && ds.Seq <= s.readings.Seq {
		return false
	}
	s.readings = &ds
	return true
}

// LatestReadings returns the committed dataset.
func (s *MemoryStore) LatestReadings() (weather.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.readings == nil {
		return weather.Dataset{}, ErrNotFound
	}
	if s.expired(s.readings.FetchedAt) {
		return weather.Dataset{}, ErrStale
	}
	return *s.readings, nil
}

// SavePredictions commits ps unless a set with the same or a newer sequence
// is already committed.
func (s *MemoryStore) SavePredictions(ps weather.PredictionSet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.predictions != nil && ps.Seq <= s.predictions.Seq {
		return false
	}
	s.predictions = &ps
	return true
}

// LatestPredictions returns the committed prediction set.
func (s *MemoryStore) LatestPredictions() (weather.PredictionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.predictions == nil {
		return weather.PredictionSet{}, ErrNotFound
	}
	if s.expired(s.predictions.FetchedAt) {
		return weather.PredictionSet{}, ErrStale
	}
	return *s.predictions, nil
}

func (s *MemoryStore) expired(fetchedAt time.Time) bool {
	return s.maxAge > 0 && s.now().Sub(fetchedAt) > s.maxAge
}
