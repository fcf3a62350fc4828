package services

import (
	"context"
	"sync"
	"time"
)

// DefaultHealthCacheTTL is how long a backend probe result is reused.
const DefaultHealthCacheTTL = 30 * time.Second

// HealthResult is the outcome of one backend probe
type HealthResult struct {
	Available bool      `json:"available"`
	Endpoint  string    `json:"endpoint"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checked_at"`
}

// HealthCache remembers the last probe so frequent status checks
// do not hit the backend every time.
type HealthCache struct {
	mu      sync.RWMutex
	result  HealthResult
	checked bool
	ttl     time.Duration
	now     func() time.Time
}

// NewHealthCache creates a cache. A TTL of 0 disables caching.
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (c *HealthCache) validLocked() bool {
	return c.checked && c.now().Sub(c.result.CheckedAt) < c.ttl
}

// Get returns the cached result and whether it is still fresh.
func (c *HealthCache) Get() (HealthResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result, c.validLocked()
}

func (c *HealthCache) Set(result HealthResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if result.CheckedAt.IsZero() {
		result.CheckedAt = c.now()
	}
	c.result = result
	c.checked = true
}

// Invalidate forces the next Check to probe again.
func (c *HealthCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = false
}

func (c *HealthCache) TTL() time.Duration {
	return c.ttl
}

// Check returns the cached result when fresh, otherwise probes the backend
// through the client and stores the answer.
func (c *HealthCache) Check(ctx context.Context, client *GraphQLClient) HealthResult {
	if result, ok := c.Get(); ok {
		return result
	}

	result := HealthResult{Available: true, Message: "Connected"}
	if err := client.Probe(ctx); err != nil {
		result.Available = false
		result.Message = err.Error()
	}
	result.Endpoint = client.Provider().Current()
	result.CheckedAt = c.now()
	c.Set(result)
	return result
}
