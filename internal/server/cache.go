package server

import (
	"sync"
	"time"

	"github.com/wnt/stablewatch/internal/aggregate"
)

// dashboardCache holds the last computed aggregate together with the
// time it was computed. A zero or negative TTL disables caching.
type dashboardCache struct {
	mu         sync.Mutex
	value      *aggregate.Dashboard
	computedAt time.Time
	ttl        time.Duration
	now        func() time.Time
}

func newDashboardCache(ttl time.Duration) *dashboardCache {
	return &dashboardCache{
		ttl: ttl,
		now: time.Now,
	}
}

// get returns the cached aggregate if it is still fresh
func (c *dashboardCache) get() (*aggregate.Dashboard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value == nil || c.ttl <= 0 {
		return nil, false
	}
	if c.now().Sub(c.computedAt) >= c.ttl {
		return nil, false
	}
	return c.value, true
}

func (c *dashboardCache) set(value *aggregate.Dashboard) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = value
	c.computedAt = c.now()
}

// invalidate drops the cached value so the next read recomputes it
func (c *dashboardCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
}
