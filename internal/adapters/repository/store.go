// Package repository keeps the per-run species ranking built by the workers.
package repository

import (
	"context"

	"github.com/okian/camtrap/internal/domain/model"
)

// Entry is one ranking row. Rank is filled in on read.
type Entry struct {
	Rank      int
	Species   model.Species
	Periods   int // independent periods
	Abundance int
	Pictures  int
}

// Store provides read/write access to the ranking.
type Store interface {
	// Upsert inserts or replaces the row for e.Species.
	Upsert(ctx context.Context, e Entry) error

	// Rank returns the current row for a species.
	// Returns ErrNotFound if the species is unknown.
	Rank(ctx context.Context, sp model.Species) (Entry, error)

	// TopN returns the first n rows in ranking order.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// All returns every row in ranking order.
	All(ctx context.Context) []Entry

	// Count returns the number of species tracked.
	Count(ctx context.Context) int
}
