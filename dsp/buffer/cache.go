package buffer

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache deduplicates decoded buffers by key. It holds no ownership itself:
// an entry disappears as soon as the buffer's last owner releases it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*PCM
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*PCM)}
}

// Acquire returns a retained buffer for key, calling load on a miss.
// The caller owns one reference in both cases. hit reports whether an
// existing buffer was reused.
func (c *Cache) Acquire(key string, load func() (*PCM, error)) (pcm *PCM, hit bool, err error) {
	if pcm := c.lookup(key); pcm != nil {
		return pcm, true, nil
	}

	loaded, err := load()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	if existing := c.entries[key]; existing != nil {
		// Lost a race with a concurrent load of the same key.
		if retained := existing.Retain(); retained != nil {
			c.mu.Unlock()
			loaded.Release()

			return retained, true, nil
		}
	}

	c.entries[key] = loaded
	c.mu.Unlock()

	loaded.OnRelease(func() { c.evict(key, loaded) })

	return loaded, false, nil
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *Cache) lookup(key string) *PCM {
	c.mu.Lock()
	defer c.mu.Unlock()

	pcm := c.entries[key]
	if pcm == nil {
		return nil
	}

	return pcm.Retain()
}

func (c *Cache) evict(key string, pcm *PCM) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries[key] == pcm {
		delete(c.entries, key)
	}
}

// ContentKey derives a cache key from encoded audio bytes.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:16])
}
