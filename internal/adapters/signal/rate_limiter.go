package signal

import (
	"sync"
	"time"

	"github.com/Ditoo31/Dadu-RAP/internal/domain"
)

// RollLimiter throttles roll attempts per player over a sliding window.
type RollLimiter struct {
	mu       sync.Mutex
	history  map[domain.PlayerID][]time.Time
	limit    int
	interval time.Duration
}

func NewRollLimiter(limit int, interval time.Duration) *RollLimiter {
	return &RollLimiter{
		history:  make(map[domain.PlayerID][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *RollLimiter) Allow(id domain.PlayerID) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[id] = fresh
	return true
}

func (rl *RollLimiter) Forget(id domain.PlayerID) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.history, id)
}
