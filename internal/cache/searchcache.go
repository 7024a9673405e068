package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SearchCache is a bounded in-memory LRU for search responses and preview
// bytes. Entries are keyed by a digest of the request that produced them,
// so identical searches within a session never hit the catalog twice.
type SearchCache struct {
	entries *lru.Cache[string, []byte]
	maxSize int

	hits   atomic.Int64
	misses atomic.Int64
}

// DefaultMaxEntries bounds the cache when settings give no limit
const DefaultMaxEntries = 256

// NewSearchCache creates a cache holding at most maxEntries values
func NewSearchCache(maxEntries int) (*SearchCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	entries, err := lru.New[string, []byte](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU: %w", err)
	}

	return &SearchCache{
		entries: entries,
		maxSize: maxEntries,
	}, nil
}

// Key derives a stable cache key from arbitrary request material
func Key(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// Get returns the cached value for key, if present
func (c *SearchCache) Get(key string) ([]byte, bool) {
	value, ok := c.entries.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return value, ok
}

// Put stores a value, evicting the least recently used entry if full
func (c *SearchCache) Put(key string, value []byte) {
	c.entries.Add(key, value)
}

// Clear removes all cached entries
func (c *SearchCache) Clear() {
	c.entries.Purge()
	log.Printf("[SearchCache] Cleared")
}

// Stats returns entry count, capacity, and hit/miss counters
func (c *SearchCache) Stats() (entries, capacity int, hits, misses int64) {
	return c.entries.Len(), c.maxSize, c.hits.Load(), c.misses.Load()
}
