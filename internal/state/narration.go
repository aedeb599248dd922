package state

import (
	"maps"
	"slices"
	"sync"
)

// NarrationCache maps slide numbers to audio for one deck version.
// Entries written for any other version are discarded.
type NarrationCache struct {
	mu      sync.RWMutex
	version int64
	entries map[int][]byte
}

func NewNarrationCache() *NarrationCache {
	return &NarrationCache{entries: make(map[int][]byte)}
}

// Reset drops every entry and binds the cache to version.
func (c *NarrationCache) Reset(version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = version
	c.entries = make(map[int][]byte)
}

// Clear drops every entry for the current version.
func (c *NarrationCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[int][]byte)
	return n
}

func (c *NarrationCache) Get(version int64, slide int) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if version != c.version {
		return nil, false
	}
	audio, ok := c.entries[slide]
	return audio, ok
}

// Put stores audio unless the deck was replaced since version was read.
func (c *NarrationCache) Put(version int64, slide int, audio []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		return false
	}
	c.entries[slide] = audio
	return true
}

func (c *NarrationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *NarrationCache) Version() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Slides returns cached slide numbers in ascending order.
func (c *NarrationCache) Slides() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.entries))
}
