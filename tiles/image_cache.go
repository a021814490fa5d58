package tiles

import (
	"image"
)

type ImageCache struct {
	entries *lru[image.Image]
}

// NewImageCache returns a cache holding at most size decoded tiles.
func NewImageCache(size int) *ImageCache {
	return &ImageCache{entries: newLRU[image.Image](size)}
}

func (c *ImageCache) Get(key string) (interface{}, bool) {
	return c.entries.get(key)
}

func (c *ImageCache) Set(key string, value interface{}) {
	if img, ok := value.(image.Image); ok {
		c.entries.set(key, img)
	}
}

func (c *ImageCache) Len() int { return c.entries.len() }

func (c *ImageCache) Clear() { c.entries.clear() }

func (c *ImageCache) GetType() CacheType {
	return CacheImage
}
