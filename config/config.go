// Package config loads tile layer definitions from TOML files.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/olablt/gio-tiles/source"
	"github.com/olablt/gio-tiles/tiles"
)

// Layer is a decoded layer file.
type Layer struct {
	Variant string
	Options source.Options
}

type gridConfig struct {
	Resolutions []float64 `toml:"resolutions"`
	MinZoom     int       `toml:"min_zoom"`
	Extent      []float64 `toml:"extent"`
	Origin      []float64 `toml:"origin"`
	TileSize    []int     `toml:"tile_size"`
}

type fileConfig struct {
	Variant    string            `toml:"variant"`
	URL        string            `toml:"url"`
	MinZoom    int               `toml:"min_zoom"`
	MaxZoom    int               `toml:"max_zoom"`
	TileSize   []int             `toml:"tile_size"`
	Projection string            `toml:"projection"`
	CacheSize  int               `toml:"cache_size"`
	Tokens     map[string]string `toml:"tokens"`
	Grid       gridConfig        `toml:"grid"`
}

// Load reads a layer file.
func Load(path string) (Layer, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Layer{}, fmt.Errorf("load layer config: %w", err)
	}
	return build(raw, meta)
}

// Decode parses a layer definition from TOML text.
func Decode(data string) (Layer, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return Layer{}, fmt.Errorf("decode layer config: %w", err)
	}
	return build(raw, meta)
}

func build(raw fileConfig, meta toml.MetaData) (Layer, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Layer{}, fmt.Errorf("unknown layer config keys: %v", undecoded)
	}

	layer := Layer{Variant: source.VariantXYZ}
	if meta.IsDefined("variant") {
		layer.Variant = strings.ToLower(strings.TrimSpace(raw.Variant))
	}

	cfg := source.DefaultOptions()
	if layer.Variant == source.VariantOSM {
		cfg = source.DefaultOSMOptions()
	}

	if meta.IsDefined("url") {
		cfg.URL = strings.TrimSpace(raw.URL)
	}
	if meta.IsDefined("min_zoom") {
		cfg.MinZoom = raw.MinZoom
	}
	if meta.IsDefined("max_zoom") {
		cfg.MaxZoom = raw.MaxZoom
	}
	if meta.IsDefined("tile_size") {
		cfg.TileSize = raw.TileSize
	}
	if meta.IsDefined("projection") {
		cfg.Projection = strings.TrimSpace(raw.Projection)
	}
	if meta.IsDefined("cache_size") {
		cfg.CacheSize = raw.CacheSize
	}
	for k, v := range raw.Tokens {
		cfg.Params[k] = v
	}

	if meta.IsDefined("grid") {
		grid, err := buildGrid(raw.Grid, meta)
		if err != nil {
			return Layer{}, err
		}
		cfg.GridOptions = &grid
	}

	layer.Options = cfg
	return layer, nil
}

func buildGrid(raw gridConfig, meta toml.MetaData) (tiles.GridOptions, error) {
	var grid tiles.GridOptions
	if meta.IsDefined("grid", "resolutions") {
		grid.Resolutions = raw.Resolutions
	}
	if meta.IsDefined("grid", "min_zoom") {
		z := raw.MinZoom
		grid.MinZoom = &z
	}
	if meta.IsDefined("grid", "extent") {
		if len(raw.Extent) != 4 {
			return grid, fmt.Errorf("grid.extent: want 4 numbers, got %d", len(raw.Extent))
		}
		e := tiles.Extent{raw.Extent[0], raw.Extent[1], raw.Extent[2], raw.Extent[3]}
		grid.Extent = &e
	}
	if meta.IsDefined("grid", "origin") {
		if len(raw.Origin) != 2 {
			return grid, fmt.Errorf("grid.origin: want 2 numbers, got %d", len(raw.Origin))
		}
		o := [2]float64{raw.Origin[0], raw.Origin[1]}
		grid.Origin = &o
	}
	if meta.IsDefined("grid", "tile_size") {
		grid.TileSize = raw.TileSize
	}
	return grid, nil
}

// NewSource loads path and builds the layer's tile source.
func NewSource(path string) (*source.TileSource, error) {
	layer, err := Load(path)
	if err != nil {
		return nil, err
	}
	s, err := source.New(layer.Variant, layer.Options)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", path, err)
	}
	return s, nil
}
