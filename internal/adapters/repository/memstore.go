package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/pkg/metrics"
)

// MemoryStore is a mutex-guarded Store.
//
// Ordering: periods DESC, abundance DESC, then common and scientific name ASC.
// Species with the same period count share a rank (dense ranking).
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Entry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Entry)}
}

// Upsert implements Store.Upsert.
func (s *MemoryStore) Upsert(_ context.Context, e Entry) error {
	if e.Species.Name == "" {
		metrics.RecordErrorByComponent("repository", "invalid_entry")
		return fmt.Errorf("%w: empty species name", ErrInvalidEntry)
	}
	if e.Periods < 0 || e.Abundance < 0 || e.Pictures < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_entry")
		return fmt.Errorf("%w: negative count for %s", ErrInvalidEntry, e.Species)
	}
	e.Rank = 0

	s.mu.Lock()
	s.byID[e.Species.Key()] = e
	s.mu.Unlock()
	return nil
}

// Rank implements Store.Rank.
func (s *MemoryStore) Rank(ctx context.Context, sp model.Species) (Entry, error) {
	for _, e := range s.All(ctx) {
		if e.Species.Equal(sp) {
			return e, nil
		}
	}
	metrics.RecordErrorByComponent("repository", "not_found")
	return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, sp)
}

// TopN implements Store.TopN.
func (s *MemoryStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	all := s.All(ctx)
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

// All implements Store.All.
func (s *MemoryStore) All(_ context.Context) []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sortEntries(out)
	assignRanksWithTies(out)
	return out
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Periods, a.Periods); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Abundance, a.Abundance); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Species.Name, b.Species.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Species.ScientificName, b.Species.ScientificName)
	})
}

// assignRanksWithTies gives equal period counts the same rank; the next
// distinct count takes the next consecutive rank.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Periods != entries[i-1].Periods {
			rank++
		}
		entries[i].Rank = rank
	}
}
