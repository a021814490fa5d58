package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olablt/gio-tiles/source"
	"github.com/olablt/gio-tiles/tiles"
)

func TestLoadOSMDefaults(t *testing.T) {
	layer, err := Load(filepath.Join("testdata", "osm.toml"))
	require.NoError(t, err)

	assert.Equal(t, source.VariantOSM, layer.Variant)
	assert.Equal(t, source.OSMURL, layer.Options.URL)
	assert.Equal(t, source.OSMMaxZoom, layer.Options.MaxZoom)
	assert.Equal(t, 512, layer.Options.CacheSize)
	assert.Equal(t, []int{256, 256}, layer.Options.TileSize)
	assert.Equal(t, "x", layer.Options.Params["unused"])
	assert.Nil(t, layer.Options.GridOptions)
}

func TestNewSourceMapbox(t *testing.T) {
	s, err := NewSource(filepath.Join("testdata", "mapbox.toml"))
	require.NoError(t, err)

	opts := s.Options()
	assert.Equal(t, 1, opts.MinZoom)
	assert.Equal(t, 18, opts.MaxZoom)
	assert.Equal(t, []int{512, 512}, opts.TileSize)
	assert.Equal(t,
		"https://{a-c}.tiles.mapbox.com/v4/mapbox.satellite/{z}/{x}/{y}.jpg90?access_token=pk.test",
		s.URLTemplate())
}

func TestLoadCustomGrid(t *testing.T) {
	layer, err := Load(filepath.Join("testdata", "custom_grid.toml"))
	require.NoError(t, err)
	require.NotNil(t, layer.Options.GridOptions)

	grid := layer.Options.GridOptions
	assert.Equal(t, []float64{0.703125, 0.3515625, 0.17578125}, grid.Resolutions)
	assert.Equal(t, tiles.Extent{-180, -90, 180, 90}, *grid.Extent)
	assert.Equal(t, [2]float64{-180, 90}, *grid.Origin)
	assert.Nil(t, grid.MinZoom)
	assert.Nil(t, grid.TileSize)

	s, err := source.New(layer.Variant, layer.Options)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	defer s.Deinit()

	g := s.TileGrid()
	assert.Equal(t, 2, g.MaxZoom())
	assert.Equal(t, 0, g.MinZoom())
	url, err := s.Provider().TileURL(tiles.Tile{X: 1, Y: 0, Zoom: 0})
	require.NoError(t, err)
	assert.Equal(t, "https://tiles.example/0/1/0.png", url)
}

func TestDecodeRejectsBadInput(t *testing.T) {
	_, err := Decode(`url = "x"` + "\n" + `colour = "red"`)
	assert.ErrorContains(t, err, "colour")

	_, err = Decode("[grid]\nextent = [1.0, 2.0]")
	assert.ErrorContains(t, err, "grid.extent")

	_, err = Decode("[grid]\norigin = [1.0]")
	assert.ErrorContains(t, err, "grid.origin")

	_, err = Decode("url = ")
	assert.Error(t, err)
}

func TestDecodedGridWithoutResolutionsFailsValidation(t *testing.T) {
	layer, err := Decode("url = \"https://t/{z}/{x}/{y}.png\"\n[grid]\nmin_zoom = 2")
	require.NoError(t, err)
	_, err = source.New(layer.Variant, layer.Options)
	assert.ErrorIs(t, err, source.ErrGridResolutions)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExampleLayerLoads(t *testing.T) {
	s, err := NewSource(filepath.Join("..", "cmd", "tileview", "ex.layer.toml"))
	require.NoError(t, err)
	assert.Equal(t, "https://{a-c}.tile.openstreetmap.org/{z}/{x}/{y}.png", s.URLTemplate())
	assert.Equal(t, 2, s.Options().MinZoom)
	assert.Equal(t, 1024, s.Options().CacheSize)
}
