package serving

import (
	"fmt"
	"sync"

	"github.com/greencell/hydrozone/internal/domain"
)

// cachedResult stores clamped model outputs for a coordinate. Timestamps are
// not cached; each response is stamped fresh.
type cachedResult struct {
	efficiency float64
	cost       float64
	zone       domain.Zone
}

// resultCache is a thread-safe LRU cache for prediction results. Caching is
// sound because attribute synthesis is deterministic per coordinate.
type resultCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cachedResult
	prev  *entry
	next  *entry
}

func newResultCache(maxEntries int) *resultCache {
	return &resultCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%v,%v", lat, lng)
}

func (c *resultCache) get(lat, lng float64) (cachedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(lat, lng)]
	if !ok {
		return cachedResult{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *resultCache) put(lat, lng float64, value cachedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(lat, lng)
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *resultCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *resultCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *resultCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *resultCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
