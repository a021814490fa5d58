package tiles

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"gioui.org/op/paint"
)

type TileProvider interface {
	GetTile(tile Tile) (image.Image, error)
}

type resetter interface {
	Reset()
}

// TileManager caches tiles in front of a provider. Tiles returned together
// with ErrTilePending or ErrTileFailed are placeholders and never cached.
type TileManager struct {
	cache    Cache
	provider TileProvider

	mu       sync.Mutex
	revision uint64
	onLoad   func()
}

func NewTileManager(provider TileProvider, cacheType CacheType, cacheSize int) *TileManager {
	var cache Cache
	switch cacheType {
	case CacheImageOp:
		cache = NewImageOpCache(cacheSize)
	default:
		cache = NewImageCache(cacheSize)
	}

	tm := &TileManager{
		cache:    cache,
		provider: provider,
	}
	if r, ok := provider.(revisioned); ok {
		tm.revision = r.Revision()
	}
	return tm
}

func (tm *TileManager) GetCache() Cache {
	return tm.cache
}

func (tm *TileManager) SetOnLoadCallback(callback func()) {
	tm.mu.Lock()
	tm.onLoad = callback
	tm.mu.Unlock()
}

// GetTileKey returns a unique string key for a tile
func GetTileKey(tile Tile) string {
	return fmt.Sprintf("%d/%d/%d", tile.Zoom, tile.X, tile.Y)
}

// sync drops cached tiles when the provider's url changed.
func (tm *TileManager) sync() {
	r, ok := tm.provider.(revisioned)
	if !ok {
		return
	}
	rev := r.Revision()
	tm.mu.Lock()
	stale := rev != tm.revision
	tm.revision = rev
	tm.mu.Unlock()
	if !stale {
		return
	}
	tm.cache.Clear()
	if rs, ok := tm.provider.(resetter); ok {
		rs.Reset()
	}
}

func isPlaceholder(err error) bool {
	return errors.Is(err, ErrTilePending) || errors.Is(err, ErrTileFailed)
}

func (tm *TileManager) load(tile Tile) (image.Image, error) {
	img, err := tm.provider.GetTile(tile)
	if err != nil {
		return img, err
	}

	key := GetTileKey(tile)
	switch tm.cache.GetType() {
	case CacheImage:
		tm.cache.Set(key, img)
	case CacheImageOp:
		tm.cache.Set(key, paint.NewImageOp(img))
	}

	tm.mu.Lock()
	onLoad := tm.onLoad
	tm.mu.Unlock()
	if onLoad != nil {
		onLoad()
	}
	return img, nil
}

// GetTile returns the decoded tile. With an ImageOp cache the image is not
// kept, so cached tiles are reloaded from the provider.
func (tm *TileManager) GetTile(tile Tile) (image.Image, error) {
	tm.sync()
	if tm.cache.GetType() == CacheImage {
		if cached, ok := tm.cache.Get(GetTileKey(tile)); ok {
			return cached.(image.Image), nil
		}
	}
	img, err := tm.load(tile)
	if err != nil && !isPlaceholder(err) {
		return nil, err
	}
	return img, err
}

// GetImageOp returns the tile as a paint operation. Placeholder tiles are
// returned with their ErrTilePending or ErrTileFailed status.
func (tm *TileManager) GetImageOp(tile Tile) (paint.ImageOp, error) {
	tm.sync()
	if cached, ok := tm.cache.Get(GetTileKey(tile)); ok {
		switch v := cached.(type) {
		case paint.ImageOp:
			return v, nil
		case image.Image:
			return paint.NewImageOp(v), nil
		}
	}
	img, err := tm.load(tile)
	if img == nil {
		return paint.ImageOp{}, err
	}
	return paint.NewImageOp(img), err
}
