package tiles

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoResolutions            = errors.New("tile grid: resolutions must not be empty")
	ErrResolutionsNotDescending = errors.New("tile grid: resolutions must be sorted in descending order")
	ErrNoOrigin                 = errors.New("tile grid: either origin or extent must be set")
	ErrMinZoomOutOfRange        = errors.New("tile grid: min zoom out of range")
	ErrBadTileSize              = errors.New("tile grid: tile size must be two positive numbers")
)

// Extent is a bounding box: minX, minY, maxX, maxY.
type Extent [4]float64

func (e Extent) Width() float64 { return e[2] - e[0] }
func (e Extent) Height() float64 { return e[3] - e[1] }

// TopLeft returns the corner tile rows and columns are counted from.
func (e Extent) TopLeft() [2]float64 { return [2]float64{e[0], e[3]} }

// ResolutionsFromExtent returns one resolution per zoom level in [0, maxZoom].
// Zoom 0 fits the whole extent into a single tile, every further level halves
// the resolution.
func ResolutionsFromExtent(extent Extent, maxZoom int, tileSize [2]int) []float64 {
	if maxZoom < 0 || tileSize[0] <= 0 || tileSize[1] <= 0 {
		return nil
	}
	maxResolution := math.Max(
		extent.Width()/float64(tileSize[0]),
		extent.Height()/float64(tileSize[1]),
	)
	resolutions := make([]float64, maxZoom+1)
	for z := range resolutions {
		resolutions[z] = maxResolution / math.Pow(2, float64(z))
	}
	return resolutions
}

// GridOptions configure a TileGrid. Nil fields are unset.
type GridOptions struct {
	Resolutions []float64
	MinZoom     *int
	Extent      *Extent
	Origin      *[2]float64
	TileSize    []int
}

// Merge returns a copy of o with every field set in override replacing the
// corresponding field of o.
func (o GridOptions) Merge(override GridOptions) GridOptions {
	out := o
	if override.Resolutions != nil {
		out.Resolutions = append([]float64(nil), override.Resolutions...)
	}
	if override.MinZoom != nil {
		v := *override.MinZoom
		out.MinZoom = &v
	}
	if override.Extent != nil {
		v := *override.Extent
		out.Extent = &v
	}
	if override.Origin != nil {
		v := *override.Origin
		out.Origin = &v
	}
	if override.TileSize != nil {
		out.TileSize = append([]int(nil), override.TileSize...)
	}
	return out
}

// TileRange is an inclusive range of tile columns and rows at one zoom level.
type TileRange struct {
	MinX, MaxX, MinY, MaxY int
}

// Contains reports whether the tile column and row fall inside the range.
func (r TileRange) Contains(x, y int) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// TileGrid describes the resolutions and tiling scheme of a layer. Rows grow
// downward from the origin.
type TileGrid struct {
	resolutions []float64
	minZoom     int
	extent      *Extent
	origin      [2]float64
	tileSize    [2]int
}

// NewTileGrid builds a grid from opts.
func NewTileGrid(opts GridOptions) (*TileGrid, error) {
	if len(opts.Resolutions) == 0 {
		return nil, ErrNoResolutions
	}
	for i := 1; i < len(opts.Resolutions); i++ {
		if opts.Resolutions[i] >= opts.Resolutions[i-1] {
			return nil, ErrResolutionsNotDescending
		}
	}

	g := &TileGrid{
		resolutions: append([]float64(nil), opts.Resolutions...),
		tileSize:    [2]int{TileSize, TileSize},
	}

	if opts.TileSize != nil {
		if len(opts.TileSize) != 2 || opts.TileSize[0] <= 0 || opts.TileSize[1] <= 0 {
			return nil, fmt.Errorf("%w: %v", ErrBadTileSize, opts.TileSize)
		}
		g.tileSize = [2]int{opts.TileSize[0], opts.TileSize[1]}
	}

	if opts.MinZoom != nil {
		g.minZoom = *opts.MinZoom
	}
	if g.minZoom < 0 || g.minZoom > g.MaxZoom() {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrMinZoomOutOfRange, g.minZoom, g.MaxZoom())
	}

	if opts.Extent != nil {
		e := *opts.Extent
		g.extent = &e
	}
	switch {
	case opts.Origin != nil:
		g.origin = *opts.Origin
	case g.extent != nil:
		g.origin = g.extent.TopLeft()
	default:
		return nil, ErrNoOrigin
	}
	return g, nil
}

func (g *TileGrid) MinZoom() int { return g.minZoom }
func (g *TileGrid) MaxZoom() int { return len(g.resolutions) - 1 }
func (g *TileGrid) Origin() [2]float64 { return g.origin }
func (g *TileGrid) TileSize() [2]int { return g.tileSize }

// Resolutions returns a copy of the grid's resolutions, highest first.
func (g *TileGrid) Resolutions() []float64 {
	return append([]float64(nil), g.resolutions...)
}

// Extent returns the grid extent and whether one was configured.
func (g *TileGrid) Extent() (Extent, bool) {
	if g.extent == nil {
		return Extent{}, false
	}
	return *g.extent, true
}

// Resolution returns the resolution of zoom level z, clamped to the grid.
func (g *TileGrid) Resolution(z int) float64 {
	z = max(0, min(z, g.MaxZoom()))
	return g.resolutions[z]
}

// ZForResolution returns the zoom level whose resolution is closest to res,
// clamped to [MinZoom, MaxZoom].
func (g *TileGrid) ZForResolution(res float64) int {
	best := 0
	bestDiff := math.Inf(1)
	for z, r := range g.resolutions {
		if d := math.Abs(r - res); d < bestDiff {
			best, bestDiff = z, d
		}
	}
	return max(g.minZoom, best)
}

// TileCoordExtent returns the extent covered by tile.
func (g *TileGrid) TileCoordExtent(tile Tile) Extent {
	res := g.Resolution(tile.Zoom)
	w := float64(g.tileSize[0]) * res
	h := float64(g.tileSize[1]) * res
	minX := g.origin[0] + float64(tile.X)*w
	maxY := g.origin[1] - float64(tile.Y)*h
	return Extent{minX, maxY - h, minX + w, maxY}
}

// TileCoordForCoordAndZ returns the tile at zoom z containing the point (x, y).
func (g *TileGrid) TileCoordForCoordAndZ(x, y float64, z int) Tile {
	res := g.Resolution(z)
	w := float64(g.tileSize[0]) * res
	h := float64(g.tileSize[1]) * res
	return Tile{
		X:    int(math.Floor((x - g.origin[0]) / w)),
		Y:    int(math.Floor((g.origin[1] - y) / h)),
		Zoom: z,
	}
}

// TileRangeForExtentAndZ returns the tiles at zoom z that intersect extent.
// Tiles that only touch the extent's right or bottom edge are excluded.
func (g *TileGrid) TileRangeForExtentAndZ(extent Extent, z int) TileRange {
	res := g.Resolution(z)
	w := float64(g.tileSize[0]) * res
	h := float64(g.tileSize[1]) * res
	return TileRange{
		MinX: int(math.Floor((extent[0] - g.origin[0]) / w)),
		MaxX: int(math.Ceil((extent[2]-g.origin[0])/w)) - 1,
		MinY: int(math.Floor((g.origin[1] - extent[3]) / h)),
		MaxY: int(math.Ceil((g.origin[1]-extent[1])/h)) - 1,
	}
}
