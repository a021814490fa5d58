package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/olablt/gio-tiles/tiles/worker"
)

var (
	// ErrTilePending accompanies a fallback image while the primary tile loads.
	ErrTilePending = errors.New("tile pending")
	// ErrTileFailed accompanies a fallback image after the primary tile failed.
	ErrTileFailed = errors.New("tile failed")
)

type revisioned interface {
	Revision() uint64
}

type contextProvider interface {
	GetTileContext(ctx context.Context, tile Tile) (image.Image, error)
}

// CombinedTileProvider loads primary tiles in the background and answers
// with fallback tiles until they arrive.
type CombinedTileProvider struct {
	primary  TileProvider
	fallback TileProvider
	pool     *worker.Pool

	mu         sync.Mutex
	loading    map[string]bool
	ready      map[string]image.Image
	failed     map[string]error
	onLoadFunc func()
}

// NewCombinedTileProvider creates a provider. When pool is nil every load
// runs on its own goroutine.
func NewCombinedTileProvider(primary, fallback TileProvider, pool *worker.Pool) *CombinedTileProvider {
	return &CombinedTileProvider{
		primary:  primary,
		fallback: fallback,
		pool:     pool,
		loading:  make(map[string]bool),
		ready:    make(map[string]image.Image),
		failed:   make(map[string]error),
	}
}

func (p *CombinedTileProvider) SetOnLoadCallback(callback func()) {
	p.mu.Lock()
	p.onLoadFunc = callback
	p.mu.Unlock()
}

// Revision reports the primary provider's revision, or 0.
func (p *CombinedTileProvider) Revision() uint64 {
	if r, ok := p.primary.(revisioned); ok {
		return r.Revision()
	}
	return 0
}

// Reset forgets loaded and failed primary tiles.
func (p *CombinedTileProvider) Reset() {
	p.mu.Lock()
	p.ready = make(map[string]image.Image)
	p.failed = make(map[string]error)
	p.mu.Unlock()
}

// GetTile returns the primary tile once it has loaded. Until then it returns
// the fallback tile together with ErrTilePending or ErrTileFailed.
func (p *CombinedTileProvider) GetTile(tile Tile) (image.Image, error) {
	key := GetTileKey(tile)

	p.mu.Lock()
	if img, ok := p.ready[key]; ok {
		delete(p.ready, key)
		p.mu.Unlock()
		return img, nil
	}
	status := ErrTilePending
	if err, ok := p.failed[key]; ok {
		status = fmt.Errorf("%w: %v", ErrTileFailed, err)
	} else if !p.loading[key] {
		p.loading[key] = true
		p.mu.Unlock()
		p.load(tile, key)
		p.mu.Lock()
	}
	p.mu.Unlock()

	img, err := p.fallback.GetTile(tile)
	if err != nil {
		return nil, fmt.Errorf("both primary and fallback providers failed: %w", err)
	}
	return img, status
}

func (p *CombinedTileProvider) load(tile Tile, key string) {
	rev := p.Revision()
	var img image.Image
	work := func(ctx context.Context) error {
		var err error
		if cp, ok := p.primary.(contextProvider); ok {
			img, err = cp.GetTileContext(ctx, tile)
		} else {
			img, err = p.primary.GetTile(tile)
		}
		return err
	}
	done := func(err error) {
		p.mu.Lock()
		delete(p.loading, key)
		if p.Revision() != rev {
			p.mu.Unlock()
			return
		}
		if err != nil {
			p.failed[key] = err
		} else {
			p.ready[key] = img
		}
		onLoad := p.onLoadFunc
		p.mu.Unlock()

		if err != nil {
			log.Printf("Primary tile %s failed: %v", key, err)
		}
		if onLoad != nil {
			onLoad()
		}
	}

	if p.pool == nil {
		go func() { done(work(context.Background())) }()
		return
	}
	if !p.pool.Submit(worker.Task{Work: work, Done: done}) {
		// queue full, retry on the next request
		p.mu.Lock()
		delete(p.loading, key)
		p.mu.Unlock()
	}
}
