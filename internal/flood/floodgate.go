// Package flood limits how often a single client may hit a guarded endpoint.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window requests are counted in
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle clients are dropped
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a client may stay silent before it is forgotten
	idleTimeout = 10 * time.Minute
)

// Floodgate applies a sliding one-minute limit per (scope, client) pair.
// Scopes keep endpoints independent: a client exhausting "songs" can still
// post to "debug".
type Floodgate struct {
	limitPerMinute int
	entries        map[string]*clientEntry
	mutex          sync.Mutex
	now            func() time.Time
	stopCleanup    chan struct{}
	stopOnce       sync.Once
}

type clientEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a Floodgate and starts its background cleanup. Call Stop to
// release it.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*clientEntry),
		now:            time.Now,
		stopCleanup:    make(chan struct{}),
	}

	go fg.cleanup()

	return fg
}

func (fg *Floodgate) Stop() {
	fg.stopOnce.Do(func() { close(fg.stopCleanup) })
}

// Allow records a request from client in scope and reports whether it is
// within the limit. Rejected requests are not counted.
func (fg *Floodgate) Allow(scope, client string) bool {
	key := scope + "|" + client
	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[key]
	if !exists {
		entry = &clientEntry{
			timestamps: make([]time.Time, 0, max(fg.limitPerMinute, 0)+1),
		}
		fg.entries[key] = entry
	}
	entry.lastSeen = now
	entry.prune(now)

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

// RetryAfter is how long client has to wait before scope accepts it again.
// It is zero when the next request would be allowed.
func (fg *Floodgate) RetryAfter(scope, client string) time.Duration {
	now := fg.now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[scope+"|"+client]
	if !exists {
		return 0
	}
	entry.prune(now)
	if len(entry.timestamps) < fg.limitPerMinute || len(entry.timestamps) == 0 {
		return 0
	}
	return entry.timestamps[0].Add(windowDuration).Sub(now)
}

func (e *clientEntry) prune(now time.Time) {
	windowStart := now.Add(-windowDuration)
	valid := e.timestamps[:0]
	for _, ts := range e.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	e.timestamps = valid
}

func (fg *Floodgate) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fg.performCleanup()
		case <-fg.stopCleanup:
			return
		}
	}
}

func (fg *Floodgate) performCleanup() {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	cutoff := fg.now().Add(-idleTimeout)
	for key, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
}

// GetStats returns statistics about the floodgate for monitoring/debugging
func (fg *Floodgate) GetStats() Stats {
	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	return Stats{
		ActiveClients:  len(fg.entries),
		LimitPerMinute: fg.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

type Stats struct {
	ActiveClients  int `json:"active_clients"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
