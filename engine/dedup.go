package engine

import (
	"strings"
	"sync"
	"time"
)

// RecentEvents remembers event keys for a window so webhook redeliveries
// don't fire the same automation twice.
type RecentEvents struct {
	window     time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]time.Time
}

func NewRecentEvents(window time.Duration, maxEntries int) *RecentEvents {
	if window <= 0 {
		window = 10 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 4096
	}
	return &RecentEvents{
		window:     window,
		maxEntries: maxEntries,
		now:        func() time.Time { return time.Now().UTC() },
		entries:    map[string]time.Time{},
	}
}

// Seen marks key and reports whether it was already marked within the
// window. Empty keys are never seen. A nil receiver disables dedup.
func (r *RecentEvents) Seen(key string) bool {
	if r == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}

	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	seenAt, exists := r.entries[key]
	if exists && now.Sub(seenAt) < r.window {
		return true
	}
	r.entries[key] = now
	r.cleanup(now)
	return false
}

func (r *RecentEvents) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *RecentEvents) cleanup(now time.Time) {
	if len(r.entries) <= r.maxEntries {
		return
	}
	for key, seenAt := range r.entries {
		if now.Sub(seenAt) >= r.window {
			delete(r.entries, key)
		}
	}
	for len(r.entries) > r.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for key, seenAt := range r.entries {
			if oldestKey == "" || seenAt.Before(oldest) {
				oldestKey, oldest = key, seenAt
			}
		}
		delete(r.entries, oldestKey)
	}
}
