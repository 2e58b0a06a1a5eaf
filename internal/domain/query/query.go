// Package query narrows photo record sequences with composable predicates.
//
// A Filter is immutable once built: predicates are fixed by New and every
// Query call is a pure, order-preserving pass over its input.
package query

import (
	"slices"
	"strings"

	"github.com/okian/camtrap/internal/domain/model"
)

type predicate struct {
	name  string
	match func(*model.PhotoRecord) bool
}

// Filter is a conjunction of predicates over photo records.
type Filter struct {
	preds []predicate
}

// New builds a Filter from options. With no options it is the identity filter.
func New(opts ...Option) (*Filter, error) {
	f := &Filter{}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// MustNew is New for statically known options; it panics on error.
func MustNew(opts ...Option) *Filter {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// With returns a new Filter holding f's predicates plus opts. f is unchanged.
func (f *Filter) With(opts ...Option) (*Filter, error) {
	next := &Filter{preds: slices.Clip(slices.Clone(f.preds))}
	for _, opt := range opts {
		if err := opt(next); err != nil {
			return nil, err
		}
	}
	return next, nil
}

func (f *Filter) add(name string, match func(*model.PhotoRecord) bool) {
	f.preds = append(f.preds, predicate{name: name, match: match})
}

// Len returns the number of predicates.
func (f *Filter) Len() int { return len(f.preds) }

// Match reports whether r satisfies every predicate.
func (f *Filter) Match(r *model.PhotoRecord) bool {
	for _, p := range f.preds {
		if !p.match(r) {
			return false
		}
	}
	return true
}

// Query returns the records that satisfy every predicate, in input order.
// The result never aliases records' backing array.
func (f *Filter) Query(records []model.PhotoRecord) []model.PhotoRecord {
	if len(f.preds) == 0 {
		return slices.Clone(records)
	}
	out := make([]model.PhotoRecord, 0, len(records))
	for i := range records {
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Count returns how many records satisfy the filter without copying them.
func (f *Filter) Count(records []model.PhotoRecord) int {
	n := 0
	for i := range records {
		if f.Match(&records[i]) {
			n++
		}
	}
	return n
}

func (f *Filter) String() string {
	if len(f.preds) == 0 {
		return "all"
	}
	names := make([]string, len(f.preds))
	for i, p := range f.preds {
		names[i] = p.name
	}
	return strings.Join(names, "&")
}
