// Package proxypool discovers, validates, and rotates network egress
// paths. The direct connection is always a pool member, so the system
// degrades to "no proxy" rather than failing when no candidate
// validates. Failure marks are per logical fetch, not persisted.
package proxypool

import (
	"math/rand/v2"
)

// Endpoint is an optional network route for a request. The empty
// string is the direct connection.
type Endpoint string

// Direct is the implicit no-proxy member of every pool.
const Direct Endpoint = ""

// Pool is a fixed set of validated endpoints. The set never changes
// after discovery; transient failure marks live with the caller.
type Pool struct {
	endpoints []Endpoint
}

// NewPool builds a pool from validated proxy URLs. The direct
// connection is prepended; duplicates are dropped.
func NewPool(proxies []Endpoint) *Pool {
	eps := []Endpoint{Direct}
	seen := map[Endpoint]struct{}{Direct: {}}
	for _, p := range proxies {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		eps = append(eps, p)
	}
	return &Pool{endpoints: eps}
}

// Size returns the pool size, direct connection included.
func (p *Pool) Size() int { return len(p.endpoints) }

// Endpoints returns a copy of the member list.
func (p *Pool) Endpoints() []Endpoint {
	out := make([]Endpoint, len(p.endpoints))
	copy(out, p.endpoints)
	return out
}

// Choose returns a uniformly random member outside the exclusion set.
// When the exclusions cover the whole pool the manager resets: it
// ignores them, picks from the full pool, and reports reset=true so
// the caller applies an extra cooldown before the next attempt.
func (p *Pool) Choose(excluding map[Endpoint]struct{}) (Endpoint, bool) {
	candidates := make([]Endpoint, 0, len(p.endpoints))
	for _, ep := range p.endpoints {
		if _, ok := excluding[ep]; !ok {
			candidates = append(candidates, ep)
		}
	}
	if len(candidates) == 0 {
		return p.endpoints[rand.IntN(len(p.endpoints))], true
	}
	return candidates[rand.IntN(len(candidates))], false
}
