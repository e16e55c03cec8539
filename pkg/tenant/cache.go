package tenant

import (
	"container/list"
	"sync"
	"time"
)

// resolutionCache is a bounded TTL cache for resolved tenant contexts, keyed
// by the raw external identifier. It keeps registry lookups off the hot path
// without ever trusting caller-supplied data beyond the key itself.
type resolutionCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List
	maxSize  int
	ttl      time.Duration
}

type resolutionEntry struct {
	key       string
	tc        Context
	expiresAt time.Time
}

func newResolutionCache(maxSize int, ttl time.Duration) *resolutionCache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &resolutionCache{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		maxSize:  maxSize,
		ttl:      ttl,
	}
}

func (c *resolutionCache) get(key string) (Context, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		return Context{}, false
	}
	entry := elem.Value.(*resolutionEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		return Context{}, false
	}

	c.eviction.MoveToFront(elem)
	return entry.tc, true
}

func (c *resolutionCache) set(key string, tc Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, exists := c.items[key]; exists {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*resolutionEntry)
		entry.tc = tc
		entry.expiresAt = expiresAt
		return
	}

	elem := c.eviction.PushFront(&resolutionEntry{key: key, tc: tc, expiresAt: expiresAt})
	c.items[key] = elem

	if c.eviction.Len() > c.maxSize {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Must be called with lock held.
func (c *resolutionCache) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*resolutionEntry).key)
}
