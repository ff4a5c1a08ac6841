package tiles

import (
	"image"
	"sync"

	"gioui.org/op/paint"
)

// ImageOpCache keeps the paint.ImageOp uploaded for each tile so a frame does
// not rebuild ops for tiles it already drew. It holds at most limit ops and
// evicts the oldest insertion first.
type ImageOpCache struct {
	cache map[string]paint.ImageOp
	order []string
	limit int
	mu    sync.RWMutex
}

func NewImageOpCache(limit int) *ImageOpCache {
	if limit <= 0 {
		limit = DefaultCacheSize
	}
	return &ImageOpCache{
		cache: make(map[string]paint.ImageOp),
		limit: limit,
	}
}

// Op returns the cached op for key, building it from img on a miss.
func (c *ImageOpCache) Op(key string, img image.Image) paint.ImageOp {
	c.mu.RLock()
	imgOp, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return imgOp
	}
	imgOp = paint.NewImageOp(img)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[key]; !ok {
		c.order = append(c.order, key)
	}
	c.cache[key] = imgOp
	for len(c.order) > c.limit {
		delete(c.cache, c.order[0])
		c.order = c.order[1:]
	}
	return imgOp
}

// Retain drops every op whose key is not in keep.
func (c *ImageOpCache) Retain(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order := c.order[:0]
	for _, key := range c.order {
		if keep[key] {
			order = append(order, key)
			continue
		}
		delete(c.cache, key)
	}
	c.order = order
}

func (c *ImageOpCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[key]; !ok {
		return
	}
	delete(c.cache, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *ImageOpCache) Clear() {
	c.mu.Lock()
	c.cache = make(map[string]paint.ImageOp)
	c.order = nil
	c.mu.Unlock()
}

func (c *ImageOpCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
