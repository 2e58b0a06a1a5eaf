package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/camtrap/internal/domain/model"
)

func sp(name string) model.Species { return model.Species{Name: name} }

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Upsert(ctx, Entry{Species: sp("Deer"), Periods: 4, Abundance: 7, Pictures: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, sp("Deer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 || entry.Periods != 4 || entry.Abundance != 7 {
		t.Errorf("unexpected entry %+v", entry)
	}

	if _, err := store.Rank(ctx, sp("Bear")); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Upsert_Replaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Upsert(ctx, Entry{Species: sp("Deer"), Periods: 4})
	_ = store.Upsert(ctx, Entry{Species: sp("Deer"), Periods: 2})

	entry, err := store.Rank(ctx, sp("Deer"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Periods != 2 {
		t.Errorf("expected replaced value 2, got %d", entry.Periods)
	}
	if store.Count(ctx) != 1 {
		t.Errorf("expected a single row, got %d", store.Count(ctx))
	}
}

func TestMemoryStore_OrderingAndTies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	rows := []Entry{
		{Species: sp("Fox"), Periods: 2, Abundance: 2},
		{Species: sp("Deer"), Periods: 4, Abundance: 7},
		{Species: sp("Bear"), Periods: 2, Abundance: 3},
		{Species: sp("Cougar"), Periods: 2, Abundance: 2},
		{Species: sp("Elk"), Periods: 1, Abundance: 1},
	}
	for _, r := range rows {
		if err := store.Upsert(ctx, r); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	all := store.All(ctx)
	wantNames := []string{"Deer", "Bear", "Cougar", "Fox", "Elk"}
	wantRanks := []int{1, 2, 2, 2, 3}
	for i, e := range all {
		if e.Species.Name != wantNames[i] || e.Rank != wantRanks[i] {
			t.Errorf("position %d: got %s rank %d, want %s rank %d", i, e.Species.Name, e.Rank, wantNames[i], wantRanks[i])
		}
	}

	top, err := store.TopN(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(top) != 2 || top[1].Species.Name != "Bear" {
		t.Errorf("unexpected top 2: %+v", top)
	}

	top, _ = store.TopN(ctx, 50)
	if len(top) != len(rows) {
		t.Errorf("expected %d rows, got %d", len(rows), len(top))
	}
}

func TestMemoryStore_ScientificNameDistinguishes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	a := model.Species{Name: "Deer", ScientificName: "Odocoileus virginianus"}
	b := model.Species{Name: "Deer", ScientificName: "Odocoileus hemionus"}
	_ = store.Upsert(ctx, Entry{Species: a, Periods: 1})
	_ = store.Upsert(ctx, Entry{Species: b, Periods: 1})

	if store.Count(ctx) != 2 {
		t.Fatalf("expected 2 rows, got %d", store.Count(ctx))
	}
	all := store.All(ctx)
	if !all[0].Species.Equal(b) {
		t.Errorf("expected hemionus first by scientific name, got %s", all[0].Species)
	}
}

func TestMemoryStore_EdgeCases(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if err := store.Upsert(ctx, Entry{}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for empty name, got %v", err)
	}
	if err := store.Upsert(ctx, Entry{Species: sp("Deer"), Periods: -1}); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for negative count, got %v", err)
	}
	if all := store.All(ctx); len(all) != 0 {
		t.Errorf("expected empty ranking, got %d rows", len(all))
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := store.Upsert(ctx, Entry{Species: sp(fmt.Sprintf("sp-%02d", i)), Periods: i % 5}); err != nil {
				t.Errorf("upsert: %v", err)
			}
			_ = store.All(ctx)
		}(i)
	}
	wg.Wait()

	if store.Count(ctx) != 50 {
		t.Errorf("expected 50 rows, got %d", store.Count(ctx))
	}
	all := store.All(ctx)
	if all[0].Periods != 4 || all[len(all)-1].Periods != 0 {
		t.Errorf("unexpected ordering: first %d last %d", all[0].Periods, all[len(all)-1].Periods)
	}
	if all[len(all)-1].Rank != 5 {
		t.Errorf("expected last rank 5, got %d", all[len(all)-1].Rank)
	}
}
