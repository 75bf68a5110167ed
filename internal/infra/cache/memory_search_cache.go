package cache

import (
	"slices"
	"sync"
	"time"

	"github.com/DioGolang/GoPlaces/internal/domain/entity"
	"github.com/DioGolang/GoPlaces/pkg/clock"
)

const DefaultTTL = 10 * time.Minute

type entry struct {
	places   []entity.Place
	storedAt time.Time
}

// MemorySearchCache keeps resolved result sets, empty ones included, for a
// fixed TTL. Expired entries are swept on write; there is no background timer.
type MemorySearchCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	clock   clock.Clock
}

func NewMemorySearchCache(ttl time.Duration, clk clock.Clock) *MemorySearchCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.New()
	}
	return &MemorySearchCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		clock:   clk,
	}
}

// Get never deletes; a stale entry simply reads as absent until the next Set sweeps it.
func (c *MemorySearchCache) Get(query string) ([]entity.Place, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[query]
	if !ok || c.clock.Now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return slices.Clone(e.places), true
}

func (c *MemorySearchCache) Set(query string, places []entity.Place) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	stored := slices.Clone(places)
	if stored == nil {
		stored = []entity.Place{}
	}
	c.entries[query] = entry{places: stored, storedAt: now}

	for key, e := range c.entries {
		if now.Sub(e.storedAt) > c.ttl {
			delete(c.entries, key)
		}
	}
}

func (c *MemorySearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
