// Package mapview is a Gio widget drawing a tile source with pan and zoom.
package mapview

import (
	"errors"
	"image"
	"log"
	"math"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"

	"github.com/olablt/gio-tiles/proj"
	"github.com/olablt/gio-tiles/source"
	"github.com/olablt/gio-tiles/tiles"
	"github.com/olablt/gio-tiles/tiles/worker"
)

var (
	ErrNotInitialized        = errors.New("mapview: source is not initialized")
	ErrUnsupportedProjection = errors.New("mapview: projection has no lon/lat transform")
)

const (
	loadWorkers = 4
	loadQueue   = 256

	// initialZoom is the quadtree level (city scale) the view starts at.
	initialZoom = 12
)

// MapView draws the tiles of a source's grid. The view center is kept in
// projection coordinates; Zoom indexes the grid's resolutions.
type MapView struct {
	TileManager *tiles.TileManager
	Zoom        int
	MinZoom     int
	MaxZoom     int

	grid         *tiles.TileGrid
	projection   string
	pool         *worker.Pool
	center       [2]float64
	size         image.Point
	visibleTiles []tiles.Tile
	//
	clickPos    f32.Point
	dragging    bool
	lastDragPos f32.Point
	released    bool
}

// New creates a view over an initialized source. refresh receives a value
// whenever a tile finished loading and the window should be redrawn.
func New(src *source.TileSource, refresh chan<- struct{}) (*MapView, error) {
	provider := src.Provider()
	grid := src.TileGrid()
	if provider == nil || grid == nil {
		return nil, ErrNotInitialized
	}
	code := src.Options().Projection
	center, err := proj.FromLonLat(code, -0.1275, 51.507222) // London
	if errors.Is(err, proj.ErrNoTransform) {
		return nil, ErrUnsupportedProjection
	}
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool(loadWorkers, loadQueue)
	combined := tiles.NewCombinedTileProvider(provider, tiles.NewLocalTileProvider(grid.TileSize()), pool)
	combined.SetOnLoadCallback(func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	})

	mv := &MapView{
		TileManager: tiles.NewTileManager(combined, tiles.CacheImageOp, src.Options().CacheSize),
		MinZoom:     grid.MinZoom(),
		MaxZoom:     grid.MaxZoom(),
		grid:        grid,
		projection:  code,
		pool:        pool,
		center:      center,
	}
	mv.setZoom(grid.ZForResolution(initialResolution(grid)))
	return mv, nil
}

// initialResolution is the resolution of initialZoom on a quadtree covering
// the grid's extent, or the grid's middle resolution without an extent.
func initialResolution(grid *tiles.TileGrid) float64 {
	extent, ok := grid.Extent()
	if !ok {
		return grid.Resolution(grid.MaxZoom() / 2)
	}
	return extent.Width() / float64(grid.TileSize()[0]) / math.Pow(2, initialZoom)
}

// Close stops background tile loading.
func (mv *MapView) Close() {
	mv.pool.Shutdown()
}

// Center returns the view center as longitude and latitude.
func (mv *MapView) Center() tiles.LatLng {
	lng, lat, err := proj.ToLonLat(mv.projection, mv.center)
	if err != nil {
		return tiles.LatLng{}
	}
	return tiles.LatLng{Lat: lat, Lng: lng}
}

// SetCenter moves the view to ll.
func (mv *MapView) SetCenter(ll tiles.LatLng) error {
	c, err := proj.FromLonLat(mv.projection, ll.Lng, ll.Lat)
	if err != nil {
		return err
	}
	mv.setCenter(c)
	return nil
}

// SetZoom changes the zoom level, clamped to the grid.
func (mv *MapView) SetZoom(z int) {
	mv.setZoom(z)
}

func (mv *MapView) resolution() float64 {
	return mv.grid.Resolution(mv.Zoom)
}

// viewExtent returns the projected extent covered by the window.
func (mv *MapView) viewExtent() tiles.Extent {
	res := mv.resolution()
	hw := float64(mv.size.X) / 2 * res
	hh := float64(mv.size.Y) / 2 * res
	return tiles.Extent{mv.center[0] - hw, mv.center[1] - hh, mv.center[0] + hw, mv.center[1] + hh}
}

// TileAt returns the tile under the window position pos.
func (mv *MapView) TileAt(pos image.Point) tiles.Tile {
	view := mv.viewExtent()
	res := mv.resolution()
	return mv.grid.TileCoordForCoordAndZ(
		view[0]+(float64(pos.X)+0.5)*res,
		view[3]-(float64(pos.Y)+0.5)*res,
		mv.Zoom,
	)
}

// tileOrigin returns the window position of the top-left corner of tile.
func (mv *MapView) tileOrigin(tile tiles.Tile) image.Point {
	view := mv.viewExtent()
	res := mv.resolution()
	ext := mv.grid.TileCoordExtent(tile)
	return image.Point{
		X: int(math.Round((ext[0] - view[0]) / res)),
		Y: int(math.Round((view[3] - ext[3]) / res)),
	}
}

func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	tag := mv

	// process events
	dragDelta := f32.Point{}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Scroll | pointer.Drag | pointer.Press | pointer.Release | pointer.Cancel,
			ScrollY: pointer.ScrollRange{Min: -10, Max: 10},
		})
		if !ok {
			break
		}

		x, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch x.Kind {
		case pointer.Press:
			mv.clickPos = x.Position
			mv.dragging = true
		case pointer.Scroll:
			mv.zoomAround(x.Position, x.Scroll.Y)
		case pointer.Drag:
			dragDelta = x.Position.Sub(mv.clickPos)
		case pointer.Release, pointer.Cancel:
			mv.dragging = false
			mv.released = true
		}
	}

	if mv.dragging {
		if mv.released {
			mv.lastDragPos = dragDelta
			mv.released = false
		}
		if dragDelta != mv.lastDragPos {
			mv.pan(dragDelta.Sub(mv.lastDragPos))
			mv.lastDragPos = dragDelta
		}
	}

	if mv.size != gtx.Constraints.Max {
		mv.size = gtx.Constraints.Max
		mv.updateVisibleTiles()
	}

	defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, tag)

	for _, tile := range mv.visibleTiles {
		imageOp, err := mv.TileManager.GetImageOp(tile)
		if err != nil && !errors.Is(err, tiles.ErrTilePending) && !errors.Is(err, tiles.ErrTileFailed) {
			log.Printf("Error loading tile %v: %v", tile, err)
			continue
		}

		transform := op.Offset(mv.tileOrigin(tile)).Push(gtx.Ops)
		imageOp.Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
		transform.Pop()
	}

	return layout.Dimensions{Size: mv.size}
}

// pan moves the map with the pointer by delta window pixels.
func (mv *MapView) pan(delta f32.Point) {
	res := mv.resolution()
	mv.setCenter([2]float64{
		mv.center[0] - float64(delta.X)*res,
		mv.center[1] + float64(delta.Y)*res,
	})
}

// zoomAround changes the zoom level keeping the point under pos fixed.
func (mv *MapView) zoomAround(pos f32.Point, scroll float32) {
	offsetX := float64(pos.X) - float64(mv.size.X)/2
	offsetY := float64(pos.Y) - float64(mv.size.Y)/2

	oldRes := mv.resolution()
	anchorX := mv.center[0] + offsetX*oldRes
	anchorY := mv.center[1] - offsetY*oldRes

	oldZoom := mv.Zoom
	if scroll < 0 {
		mv.setZoom(mv.Zoom + 1)
	} else if scroll > 0 {
		mv.setZoom(mv.Zoom - 1)
	}
	if oldZoom == mv.Zoom {
		return
	}

	newRes := mv.resolution()
	mv.setCenter([2]float64{anchorX - offsetX*newRes, anchorY + offsetY*newRes})
}

// setCenter moves the center, keeping it inside the grid extent.
func (mv *MapView) setCenter(c [2]float64) {
	if ext, ok := mv.grid.Extent(); ok {
		c[0] = max(ext[0], min(c[0], ext[2]))
		c[1] = max(ext[1], min(c[1], ext[3]))
	}
	mv.center = c
	mv.updateVisibleTiles()
}

func (mv *MapView) setZoom(newZoom int) {
	mv.Zoom = max(mv.MinZoom, min(newZoom, mv.MaxZoom))
	mv.updateVisibleTiles()
}

func (mv *MapView) updateVisibleTiles() {
	r := mv.grid.TileRangeForExtentAndZ(mv.viewExtent(), mv.Zoom)
	if ext, ok := mv.grid.Extent(); ok {
		full := mv.grid.TileRangeForExtentAndZ(ext, mv.Zoom)
		r.MinX, r.MaxX = max(r.MinX, full.MinX), min(r.MaxX, full.MaxX)
		r.MinY, r.MaxY = max(r.MinY, full.MinY), min(r.MaxY, full.MaxY)
	}

	mv.visibleTiles = mv.visibleTiles[:0]
	for x := r.MinX; x <= r.MaxX; x++ {
		for y := r.MinY; y <= r.MaxY; y++ {
			mv.visibleTiles = append(mv.visibleTiles, tiles.Tile{X: x, Y: y, Zoom: mv.Zoom})
		}
	}

	// queue loads for tiles not cached yet
	for _, tile := range mv.visibleTiles {
		_, _ = mv.TileManager.GetImageOp(tile)
	}
}
