package policy

import (
	"context"
	"sync"
	"time"
)

// Cache holds one Gate per site root so a ruleset is fetched at most
// once for the process lifetime. It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	gates   map[string]*Gate
	agent   string
	enabled bool
	timeout time.Duration
}

// NewCache creates a gate cache sharing one agent token and policy
// toggle across sites.
func NewCache(agent string, enabled bool, timeout time.Duration) *Cache {
	return &Cache{
		gates:   make(map[string]*Gate),
		agent:   agent,
		enabled: enabled,
		timeout: timeout,
	}
}

// Gate returns the gate for siteRoot, constructing (and fetching the
// ruleset for) it on first use.
func (c *Cache) Gate(ctx context.Context, siteRoot string) *Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.gates[siteRoot]; ok {
		return g
	}
	g := NewGate(ctx, siteRoot, c.agent, c.enabled, c.timeout)
	c.gates[siteRoot] = g
	return g
}
