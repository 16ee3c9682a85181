// Package eventstore supplies day buckets of raw event records to the
// pipeline. The store is the source of truth; buckets are read-only once
// written.
package eventstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/trustlens/internal/domain/model"
)

// Store is the event store accessor contract. Days are UTC midnights.
type Store interface {
	// Days returns every day with recorded events or malformed tallies,
	// sorted ascending.
	Days(ctx context.Context) ([]time.Time, error)

	// Bucket returns the day bucket for the given UTC day. A day with no
	// data yields an empty bucket, not an error; an empty day is itself
	// informative about instrumentation health.
	Bucket(ctx context.Context, day time.Time) (model.DayBucket, error)

	// Append stores events, bucketing each by its UTC calendar day.
	Append(ctx context.Context, events []model.Event) error

	// AddMalformed tallies records for a day that were dropped at ingest
	// because they could not be parsed.
	AddMalformed(ctx context.Context, day time.Time, n int) error

	Close() error
}

// day normalizes t to its UTC midnight.
func day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// MemoryStore implements Store in memory. Used by tests and as the
// generator's staging target.
type MemoryStore struct {
	mu        sync.RWMutex
	events    map[int64][]model.Event // unix day -> events
	malformed map[int64]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events:    make(map[int64][]model.Event),
		malformed: make(map[int64]int),
	}
}

// Days returns the sorted set of days present.
func (s *MemoryStore) Days(_ context.Context) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{}, len(s.events)+len(s.malformed))
	for d := range s.events {
		seen[d] = struct{}{}
	}
	for d := range s.malformed {
		seen[d] = struct{}{}
	}
	days := make([]time.Time, 0, len(seen))
	for d := range seen {
		days = append(days, time.Unix(d, 0).UTC())
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// Bucket returns the (possibly empty) bucket for one day.
func (s *MemoryStore) Bucket(_ context.Context, d time.Time) (model.DayBucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := day(d).Unix()
	events := s.events[key]
	out := make([]model.Event, len(events))
	copy(out, events)
	return model.DayBucket{
		Date:      day(d),
		Events:    out,
		Malformed: s.malformed[key],
	}, nil
}

// Append buckets events by UTC day.
func (s *MemoryStore) Append(_ context.Context, events []model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		key := e.Day().Unix()
		s.events[key] = append(s.events[key], e)
	}
	return nil
}

// AddMalformed tallies dropped records for a day.
func (s *MemoryStore) AddMalformed(_ context.Context, d time.Time, n int) error {
	if n <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.malformed[day(d).Unix()] += n
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
