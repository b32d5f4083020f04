package watch

import (
	"hash/fnv"
	"sync"
)

// Cache remembers the content digest of the last converted version of each
// scene file, so saves that do not change a file are skipped.
type Cache struct {
	digests map[string]uint64
	mu      sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		digests: make(map[string]uint64),
	}
}

func digest(data []byte) uint64 {
	h := fnv.New64a()
	h.Write(data)
	return h.Sum64()
}

// Unchanged reports whether data matches the last content stored for path.
func (c *Cache) Unchanged(path string, data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, ok := c.digests[path]
	if ok && d == digest(data) {
		c.hits++
		return true
	}
	c.misses++
	return false
}

// Set stores the content converted for path.
func (c *Cache) Set(path string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.digests[path] = digest(data)
}

// Remove forgets path.
func (c *Cache) Remove(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.digests, path)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
