package tiles

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const half = 20037508.342789244

var mercatorExtent = Extent{-half, -half, half, half}

func mercatorGrid(t *testing.T, maxZoom int) *TileGrid {
	t.Helper()
	g, err := NewTileGrid(GridOptions{
		Resolutions: ResolutionsFromExtent(mercatorExtent, maxZoom, [2]int{256, 256}),
		Extent:      &mercatorExtent,
	})
	require.NoError(t, err)
	return g
}

func TestResolutionsFromExtent(t *testing.T) {
	res := ResolutionsFromExtent(mercatorExtent, 3, [2]int{256, 256})
	require.Len(t, res, 4)
	assert.InDelta(t, 156543.03392804097, res[0], 1e-6)
	for z := 1; z < len(res); z++ {
		assert.InDelta(t, res[z-1]/2, res[z], 1e-9)
	}

	// the larger of the two axis ratios wins
	res = ResolutionsFromExtent(Extent{0, 0, 1000, 500}, 0, [2]int{100, 100})
	assert.Equal(t, []float64{10}, res)

	assert.Nil(t, ResolutionsFromExtent(mercatorExtent, -1, [2]int{256, 256}))
	assert.Nil(t, ResolutionsFromExtent(mercatorExtent, 3, [2]int{0, 256}))
}

func TestGridOptionsMerge(t *testing.T) {
	minZoom, overrideZoom := 0, 3
	base := GridOptions{
		Resolutions: []float64{4, 2, 1},
		MinZoom:     &minZoom,
		Extent:      &mercatorExtent,
		TileSize:    []int{256, 256},
	}
	merged := base.Merge(GridOptions{MinZoom: &overrideZoom, Resolutions: []float64{8, 4}})

	want := GridOptions{
		Resolutions: []float64{8, 4},
		MinZoom:     &overrideZoom,
		Extent:      &mercatorExtent,
		TileSize:    []int{256, 256},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged options mismatch (-want +got):\n%s", diff)
	}
	// base untouched
	assert.Equal(t, 0, *base.MinZoom)
	assert.Equal(t, []float64{4, 2, 1}, base.Resolutions)
}

func TestNewTileGridErrors(t *testing.T) {
	negative, tooHigh := -1, 5
	cases := []struct {
		name string
		opts GridOptions
		err  error
	}{
		{"no resolutions", GridOptions{Extent: &mercatorExtent}, ErrNoResolutions},
		{"ascending", GridOptions{Resolutions: []float64{1, 2}, Extent: &mercatorExtent}, ErrResolutionsNotDescending},
		{"no origin", GridOptions{Resolutions: []float64{2, 1}}, ErrNoOrigin},
		{"negative min zoom", GridOptions{Resolutions: []float64{2, 1}, Extent: &mercatorExtent, MinZoom: &negative}, ErrMinZoomOutOfRange},
		{"min zoom above max", GridOptions{Resolutions: []float64{2, 1}, Extent: &mercatorExtent, MinZoom: &tooHigh}, ErrMinZoomOutOfRange},
		{"bad tile size", GridOptions{Resolutions: []float64{2, 1}, Extent: &mercatorExtent, TileSize: []int{256}}, ErrBadTileSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTileGrid(tc.opts)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestTileGridOriginFromOption(t *testing.T) {
	origin := [2]float64{10, 20}
	g, err := NewTileGrid(GridOptions{Resolutions: []float64{1}, Origin: &origin})
	require.NoError(t, err)
	assert.Equal(t, origin, g.Origin())
	_, ok := g.Extent()
	assert.False(t, ok)
}

func TestTileGridQueries(t *testing.T) {
	g := mercatorGrid(t, 2)
	assert.Equal(t, 0, g.MinZoom())
	assert.Equal(t, 2, g.MaxZoom())
	assert.Equal(t, [2]float64{-half, half}, g.Origin())
	assert.Equal(t, [2]int{256, 256}, g.TileSize())

	assert.Equal(t, Tile{X: 1, Y: 1, Zoom: 1}, g.TileCoordForCoordAndZ(0, 0, 1))
	assert.Equal(t, Tile{X: 0, Y: 0, Zoom: 1}, g.TileCoordForCoordAndZ(-half+1, half-1, 1))

	ext := g.TileCoordExtent(Tile{X: 0, Y: 0, Zoom: 1})
	assert.InDelta(t, -half, ext[0], 1e-6)
	assert.InDelta(t, 0, ext[1], 1e-6)
	assert.InDelta(t, 0, ext[2], 1e-6)
	assert.InDelta(t, half, ext[3], 1e-6)

	assert.Equal(t, TileRange{MinX: 0, MaxX: 3, MinY: 0, MaxY: 3}, g.TileRangeForExtentAndZ(mercatorExtent, 2))

	assert.Equal(t, 1, g.ZForResolution(g.Resolution(1)*1.1))
	assert.Equal(t, 2, g.ZForResolution(0.001))
	assert.Equal(t, g.Resolution(2), g.Resolution(10))
}

func TestTileGridMinZoomClampsZForResolution(t *testing.T) {
	minZoom := 1
	g, err := NewTileGrid(GridOptions{
		Resolutions: ResolutionsFromExtent(mercatorExtent, 3, [2]int{256, 256}),
		Extent:      &mercatorExtent,
		MinZoom:     &minZoom,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, g.ZForResolution(g.Resolution(0)))
}
