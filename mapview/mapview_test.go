package mapview

import (
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olablt/gio-tiles/proj"
	"github.com/olablt/gio-tiles/source"
	"github.com/olablt/gio-tiles/tiles"
)

func newSource(t *testing.T, url, projection string, maxZoom int) *source.TileSource {
	t.Helper()
	opts := source.DefaultOptions()
	opts.URL = url
	opts.Projection = projection
	opts.MaxZoom = maxZoom
	s, err := source.NewXYZ(opts)
	require.NoError(t, err)
	return s
}

// newServedView returns a view over an initialized source whose tiles are
// served (as 404s) by a local server.
func newServedView(t *testing.T, opts source.Options) *MapView {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	opts.URL = srv.URL + "/{z}/{x}/{y}.png"
	s, err := source.NewXYZ(opts)
	require.NoError(t, err)
	s.SetHTTPClient(srv.Client())
	require.NoError(t, s.Init())
	t.Cleanup(s.Deinit)

	mv, err := New(s, make(chan struct{}, 1))
	require.NoError(t, err)
	t.Cleanup(mv.Close)
	return mv
}

// coordAt returns the projected coordinate under the window position pos.
func coordAt(mv *MapView, pos f32.Point) [2]float64 {
	view := mv.viewExtent()
	res := mv.resolution()
	return [2]float64{view[0] + float64(pos.X)*res, view[3] - float64(pos.Y)*res}
}

func TestNewRequiresInitializedSource(t *testing.T) {
	s := newSource(t, "https://t/{z}/{x}/{y}.png", "EPSG:3857", 5)
	_, err := New(s, make(chan struct{}, 1))
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestNewRejectsProjectionWithoutTransform(t *testing.T) {
	proj.Add(&proj.Projection{Code: "LOCAL:site", Units: proj.UnitsMeters, Extent: [4]float64{0, 0, 1000, 1000}})
	s := newSource(t, "https://t/{z}/{x}/{y}.png", "LOCAL:site", 5)
	require.NoError(t, s.Init())
	defer s.Deinit()

	_, err := New(s, make(chan struct{}, 1))
	assert.ErrorIs(t, err, ErrUnsupportedProjection)
}

func TestNewGeographicGrid(t *testing.T) {
	opts := source.DefaultOptions()
	opts.Projection = proj.EPSG4326
	opts.MaxZoom = 8
	mv := newServedView(t, opts)

	center := mv.Center()
	assert.InDelta(t, -0.1275, center.Lng, 1e-9)
	assert.InDelta(t, 51.507222, center.Lat, 1e-9)
}

func TestNewClampsZoomToGrid(t *testing.T) {
	opts := source.DefaultOptions()
	opts.MaxZoom = 5
	mv := newServedView(t, opts)

	assert.Equal(t, 5, mv.Zoom)
	assert.Equal(t, 0, mv.MinZoom)
	assert.Equal(t, 5, mv.MaxZoom)
	assert.NotEmpty(t, mv.visibleTiles)

	mv.setZoom(-3)
	assert.Equal(t, 0, mv.Zoom)
}

func TestTileAtMatchesQuadtree(t *testing.T) {
	mv := newServedView(t, source.DefaultOptions())
	mv.size = image.Pt(512, 512)

	center := mv.Center()
	assert.Equal(t, tiles.LatLngToTile(center, mv.Zoom), mv.TileAt(image.Pt(256, 256)))
}

func TestVisibleTilesFollowGridResolutions(t *testing.T) {
	opts := source.DefaultOptions()
	opts.GridOptions = &tiles.GridOptions{Resolutions: []float64{8, 4}}
	mv := newServedView(t, opts)
	require.Equal(t, 1, mv.MaxZoom)

	mv.size = image.Pt(512, 512)
	mv.setZoom(1)

	// 512px at 4m/px spans two 1024m tiles, so at most three per axis
	require.NotEmpty(t, mv.visibleTiles)
	assert.LessOrEqual(t, len(mv.visibleTiles), 9)

	screen := image.Rect(0, 0, 512, 512)
	for _, tile := range mv.visibleTiles {
		assert.Equal(t, 1, tile.Zoom)
		// far past the 2x2 tiles a quadtree has at level 1
		assert.Greater(t, tile.X, 1)
		origin := mv.tileOrigin(tile)
		rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(256, 256))}
		assert.True(t, rect.Overlaps(screen), "tile %v at %v", tile, rect)
	}

	centerTile := mv.TileAt(image.Pt(256, 256))
	assert.Contains(t, mv.visibleTiles, centerTile)
	origin := mv.tileOrigin(centerTile)
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(256, 256))}
	assert.True(t, image.Pt(256, 256).In(rect), "center tile at %v", rect)
}

func TestZoomAroundKeepsPointerAnchored(t *testing.T) {
	opts := source.DefaultOptions()
	opts.MaxZoom = 14
	mv := newServedView(t, opts)
	mv.size = image.Pt(800, 600)
	mv.setZoom(10)

	pos := f32.Pt(120, 450)
	before := coordAt(mv, pos)
	mv.zoomAround(pos, -1)
	require.Equal(t, 11, mv.Zoom)

	after := coordAt(mv, pos)
	assert.InDelta(t, before[0], after[0], 1e-6)
	assert.InDelta(t, before[1], after[1], 1e-6)
}

func TestPanMovesCenterByResolution(t *testing.T) {
	opts := source.DefaultOptions()
	opts.MaxZoom = 10
	mv := newServedView(t, opts)
	mv.size = image.Pt(400, 400)

	start := mv.center
	res := mv.resolution()
	mv.pan(f32.Pt(10, -20))
	assert.InDelta(t, start[0]-10*res, mv.center[0], 1e-6)
	assert.InDelta(t, start[1]-20*res, mv.center[1], 1e-6)
}

func TestSetCenterStaysInsideGridExtent(t *testing.T) {
	opts := source.DefaultOptions()
	opts.MaxZoom = 3
	mv := newServedView(t, opts)

	mv.setCenter([2]float64{1e9, -1e9})
	assert.Equal(t, [2]float64{proj.HalfSize, -proj.HalfSize}, mv.center)

	require.NoError(t, mv.SetCenter(tiles.LatLng{Lat: 48.8566, Lng: 2.3522}))
	center := mv.Center()
	assert.InDelta(t, 48.8566, center.Lat, 1e-9)
	assert.InDelta(t, 2.3522, center.Lng, 1e-9)
}
