package tiles

import (
	"image"
	"sync"
)

const DefaultCacheSize = 512

// ImageCache is a bounded Cache that evicts the oldest insertion first.
type ImageCache struct {
	cache map[string]image.Image
	order []string
	limit int
	mu    sync.RWMutex
}

func NewImageCache(limit int) *ImageCache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &ImageCache{
		cache: make(map[string]image.Image),
		limit: limit,
	}
}

func (c *ImageCache) Get(key string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.cache[key]
	return val, ok
}

func (c *ImageCache) Set(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[key]; !ok {
		c.order = append(c.order, key)
	}
	c.cache[key] = img
	for len(c.order) > c.limit {
		delete(c.cache, c.order[0])
		c.order = c.order[1:]
	}
}

func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.cache = make(map[string]image.Image)
	c.order = nil
	c.mu.Unlock()
}

func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
