package app

import (
	"sync"
	"time"
)

// TriggerLimiter caps how many sound triggers one client may fire inside a
// sliding window. Excess triggers are dropped, never queued.
type TriggerLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	limit   int
	window  time.Duration
}

func NewTriggerLimiter(limit int, window time.Duration) *TriggerLimiter {
	return &TriggerLimiter{
		history: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
	}
}

func (tl *TriggerLimiter) Allow(key string) bool {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-tl.window)

	attempts := tl.history[key]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= tl.limit {
		tl.history[key] = fresh
		return false
	}

	fresh = append(fresh, now)
	tl.history[key] = fresh
	return true
}
