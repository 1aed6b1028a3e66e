// Package store persists songs, quiz history and the set of recently played tracks.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// RecentPlays remembers the last capacity track ids handed out to quizzes. A
// Bloom filter answers most negative lookups; the LRU cache is authoritative.
type RecentPlays struct {
	mu       sync.RWMutex
	capacity int
	fpRate   float64
	filter   *bloom.BloomFilter
	cache    *lru.Cache[string, struct{}]
	evicted  int
}

func NewRecentPlays(capacity int, falsePositiveRate float64) *RecentPlays {
	if capacity <= 0 {
		capacity = 1
	}
	cache, _ := lru.New[string, struct{}](capacity)

	return &RecentPlays{
		capacity: capacity,
		fpRate:   falsePositiveRate,
		filter:   bloom.NewWithEstimates(uint(capacity), falsePositiveRate),
		cache:    cache,
	}
}

func (r *RecentPlays) Has(trackID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.filter.TestString(trackID) {
		return false
	}
	return r.cache.Contains(trackID)
}

// Add records trackID as the most recent play.
func (r *RecentPlays) Add(trackID string) {
	if trackID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(trackID)
}

// Load replaces the contents with trackIDs, oldest first.
func (r *RecentPlays) Load(trackIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Purge()
	r.resetFilter()
	for _, trackID := range trackIDs {
		if trackID != "" {
			r.add(trackID)
		}
	}
}

func (r *RecentPlays) Size() int {
	return r.cache.Len()
}

func (r *RecentPlays) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Purge()
	r.resetFilter()
}

func (r *RecentPlays) add(trackID string) {
	if evicted := r.cache.Add(trackID, struct{}{}); evicted {
		r.evicted++
	}
	r.filter.AddString(trackID)

	// Bloom filters cannot forget; rebuild once the evicted ids could
	// noticeably raise the false positive rate.
	if r.evicted >= r.capacity {
		r.resetFilter()
		for _, key := range r.cache.Keys() {
			r.filter.AddString(key)
		}
	}
}

func (r *RecentPlays) resetFilter() {
	r.filter = bloom.NewWithEstimates(uint(r.capacity), r.fpRate)
	r.evicted = 0
}
