package zkp

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/genesisreloop-alt/G3ZKPBETAFINAL-sub000/internal/domain"
)

// Cache tuning. On overflow the oldest evictBatch entries go at once rather
// than one at a time, amortising cleanup cost.
const (
	defaultCacheCapacity = 500
	defaultEvictBatch    = 100
	defaultFreshness     = 5 * time.Minute
)

type cacheEntry struct {
	proof domain.ZKProof
	at    time.Time
}

// proofCache is a bounded map keyed by hash(circuitID, canonical inputs).
// Only map mutation is synchronised; proving itself runs outside the lock.
type proofCache struct {
	mu        sync.Mutex
	entries   map[string]cacheEntry
	order     []string // insertion order, oldest first
	capacity  int
	evict     int
	freshness time.Duration
}

func newProofCache(capacity, evict int, freshness time.Duration) *proofCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	if evict <= 0 || evict > capacity {
		evict = defaultEvictBatch
	}
	if freshness <= 0 {
		freshness = defaultFreshness
	}
	return &proofCache{
		entries:   make(map[string]cacheEntry),
		capacity:  capacity,
		evict:     evict,
		freshness: freshness,
	}
}

// get returns a cached proof only while it is within the freshness window.
// A miss or a stale entry is never an error; callers fall back to proving.
func (c *proofCache) get(key string) (domain.ZKProof, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || time.Since(e.at) > c.freshness {
		return domain.ZKProof{}, false
	}
	return e.proof, true
}

func (c *proofCache) put(key string, proof domain.ZKProof) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.removeFromOrder(key)
	} else if len(c.entries) >= c.capacity {
		n := c.evict
		if n > len(c.order) {
			n = len(c.order)
		}
		for _, old := range c.order[:n] {
			delete(c.entries, old)
		}
		c.order = c.order[n:]
		log.WithField("evicted", n).Debug("proof cache bulk eviction")
	}

	c.entries[key] = cacheEntry{proof: proof, at: time.Now()}
	c.order = append(c.order, key)
}

func (c *proofCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *proofCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
