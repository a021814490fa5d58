package tiles

import (
	"gioui.org/op/paint"
)

// ImageOpCache keeps tiles already uploaded as paint operations, so redraws
// skip the image conversion.
type ImageOpCache struct {
	entries *lru[paint.ImageOp]
}

func NewImageOpCache(size int) *ImageOpCache {
	return &ImageOpCache{entries: newLRU[paint.ImageOp](size)}
}

func (c *ImageOpCache) Get(key string) (interface{}, bool) {
	return c.entries.get(key)
}

func (c *ImageOpCache) Set(key string, value interface{}) {
	if imageOp, ok := value.(paint.ImageOp); ok {
		c.entries.set(key, imageOp)
	}
}

func (c *ImageOpCache) Len() int { return c.entries.len() }

func (c *ImageOpCache) Clear() { c.entries.clear() }

func (c *ImageOpCache) GetType() CacheType {
	return CacheImageOp
}
