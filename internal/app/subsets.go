package service

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/okian/camtrap/internal/domain/model"
	"github.com/okian/camtrap/internal/domain/query"
	"github.com/okian/camtrap/pkg/metrics"
)

// subsets memoises the per-species and per-location record slices of one
// run. Workers share it; a concurrent miss computes the slice twice, which
// yields the same value.
type subsets struct {
	records []model.PhotoRecord
	c       *cache.Cache
}

func newSubsets(records []model.PhotoRecord, ttl time.Duration) *subsets {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	// no janitor: the cache lives for one run only
	return &subsets{records: records, c: cache.New(ttl, 0)}
}

func (s *subsets) species(sp model.Species) []model.PhotoRecord {
	return s.get("species:"+sp.Key(), query.SpeciesOnly(sp))
}

func (s *subsets) location(id string) []model.PhotoRecord {
	return s.get("location:"+id, query.LocationIDOnly(id))
}

func (s *subsets) get(key string, opt query.Option) []model.PhotoRecord {
	if v, ok := s.c.Get(key); ok {
		metrics.RecordCacheHit()
		return v.([]model.PhotoRecord)
	}
	metrics.RecordCacheMiss()
	recs := query.MustNew(opt).Query(s.records)
	s.c.Set(key, recs, cache.DefaultExpiration)
	return recs
}

func (s *subsets) size() int { return s.c.ItemCount() }
