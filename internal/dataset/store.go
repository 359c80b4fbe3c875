package dataset

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store keeps the latest snapshot of records in memory, keyed by slug.
type Store struct {
	source Source

	mu       sync.RWMutex
	bySlug   map[string]Record
	loadedAt time.Time
	now      func() time.Time
}

// NewStore returns an empty store; call Reload to populate it.
func NewStore(source Source) *Store {
	return &Store{
		source: source,
		bySlug: map[string]Record{},
		now:    time.Now,
	}
}

// Reload fetches a fresh snapshot from the source. On failure the previous
// snapshot stays in place.
func (s *Store) Reload(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, ErrNotConfigured
	}
	records, err := s.source.FetchRecords(ctx)
	if err != nil {
		return 0, err
	}
	next := make(map[string]Record, len(records))
	for _, rec := range records {
		if _, dup := next[rec.Slug]; dup {
			return 0, fmt.Errorf("dataset: duplicate slug %q", rec.Slug)
		}
		next[rec.Slug] = rec
	}

	s.mu.Lock()
	s.bySlug = next
	s.loadedAt = s.now()
	s.mu.Unlock()
	return len(next), nil
}

// Get returns the record for slug.
func (s *Store) Get(slug string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.bySlug[slug]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return rec, nil
}

// List returns all records sorted by slug.
func (s *Store) List() []Record {
	s.mu.RLock()
	out := make([]Record, 0, len(s.bySlug))
	for _, rec := range s.bySlug {
		out = append(out, rec)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// LoadedAt returns when the current snapshot was loaded; zero if never.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
