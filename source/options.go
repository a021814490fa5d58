package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olablt/gio-tiles/proj"
	"github.com/olablt/gio-tiles/tiles"
)

const (
	DefaultMinZoom    = 0
	DefaultMaxZoom    = 42
	DefaultProjection = proj.EPSG3857
)

var (
	ErrURLRequired     = errors.New("url is required")
	ErrTileSize        = errors.New("tile size must have exactly two positive elements")
	ErrGridResolutions = errors.New("grid options must carry a non-empty resolutions list")
	ErrZoomRange       = errors.New("zoom bounds must satisfy 0 <= min zoom <= max zoom")
	ErrCacheSize       = errors.New("cache size must be positive")
)

// Options is the configuration surface of a tile source.
type Options struct {
	URL        string
	MinZoom    int
	MaxZoom    int
	TileSize   []int
	Projection string
	CacheSize  int
	// GridOptions, when set, override the grid derived from the projection.
	GridOptions *tiles.GridOptions
	// Params hold the values of the source's url tokens.
	Params map[string]string
}

func DefaultOptions() Options {
	return Options{
		MinZoom:    DefaultMinZoom,
		MaxZoom:    DefaultMaxZoom,
		TileSize:   []int{tiles.TileSize, tiles.TileSize},
		Projection: DefaultProjection,
		CacheSize:  tiles.DefaultCacheSize,
		Params:     map[string]string{},
	}
}

func ValidateURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrURLRequired
	}
	return nil
}

func ValidateTileSize(size []int) error {
	if len(size) != 2 || size[0] <= 0 || size[1] <= 0 {
		return fmt.Errorf("%w: %v", ErrTileSize, size)
	}
	return nil
}

// ValidateGridOptions accepts nil; a non-nil override must list resolutions.
func ValidateGridOptions(opts *tiles.GridOptions) error {
	if opts != nil && len(opts.Resolutions) == 0 {
		return ErrGridResolutions
	}
	return nil
}

func ValidateZoomRange(minZoom, maxZoom int) error {
	if minZoom < 0 || maxZoom < minZoom {
		return fmt.Errorf("%w: min %d, max %d", ErrZoomRange, minZoom, maxZoom)
	}
	return nil
}

func ValidateCacheSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrCacheSize, size)
	}
	return nil
}

// Validate checks every field and joins all failures.
func (o Options) Validate() error {
	return errors.Join(
		ValidateURL(o.URL),
		ValidateZoomRange(o.MinZoom, o.MaxZoom),
		ValidateTileSize(o.TileSize),
		ValidateGridOptions(o.GridOptions),
		ValidateCacheSize(o.CacheSize),
	)
}

func (o Options) clone() Options {
	out := o
	out.TileSize = append([]int(nil), o.TileSize...)
	if o.GridOptions != nil {
		g := tiles.GridOptions{}.Merge(*o.GridOptions)
		out.GridOptions = &g
	}
	out.Params = make(map[string]string, len(o.Params))
	for k, v := range o.Params {
		out.Params[k] = v
	}
	return out
}
