package utils

import (
	"os"
	"sync"
	"time"
)

type cacheItem[V any] struct {
	value   V
	modTime time.Time
	size    int64
}

// FileCache memoizes values derived from files. An entry is dropped as soon
// as the file's size or modification time no longer matches.
type FileCache[V any] struct {
	mu     sync.RWMutex
	items  map[string]cacheItem[V]
	hits   int
	misses int
}

// NewFileCache creates an empty cache
func NewFileCache[V any]() *FileCache[V] {
	return &FileCache[V]{items: make(map[string]cacheItem[V])}
}

// Get returns the value cached for path while the file is unchanged
func (c *FileCache[V]) Get(path string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[path]
	c.mu.RUnlock()

	var zero V
	if !exists {
		c.count(false)
		return zero, false
	}

	if stat, err := os.Stat(path); err == nil && stat.ModTime().Equal(item.modTime) && stat.Size() == item.size {
		c.count(true)
		return item.value, true
	}

	c.mu.Lock()
	delete(c.items, path)
	c.misses++
	c.mu.Unlock()
	return zero, false
}

// Put caches value for path together with the file's current metadata
func (c *FileCache[V]) Put(path string, value V) error {
	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[path] = cacheItem[V]{value: value, modTime: stat.ModTime(), size: stat.Size()}
	return nil
}

// Delete removes the entry for path
func (c *FileCache[V]) Delete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, path)
}

// Clear removes every entry and resets the counters
func (c *FileCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem[V])
	c.hits, c.misses = 0, 0
}

func (c *FileCache[V]) count(hit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

// Stats returns the entry count and hit/miss counters
func (c *FileCache[V]) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
}

// CacheStats provides cache statistics
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}
