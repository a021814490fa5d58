package source

import "fmt"

const (
	OSMURL     = "https://{a-c}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	OSMMaxZoom = 19

	MapboxURL        = "https://{a-c}.tiles.mapbox.com/v4/{mapId}/{z}/{x}/{y}.{tileFormat}?access_token={accessToken}"
	MapboxTileFormat = "png"
)

// Variant names accepted by New.
const (
	VariantXYZ    = "xyz"
	VariantOSM    = "osm"
	VariantMapbox = "mapbox"
)

// NewXYZ creates a source for a plain {z}/{x}/{y} template.
func NewXYZ(opts Options) (*TileSource, error) {
	return NewTileSource(opts)
}

// DefaultOSMOptions are the defaults of the OpenStreetMap source.
func DefaultOSMOptions() Options {
	opts := DefaultOptions()
	opts.URL = OSMURL
	opts.MaxZoom = OSMMaxZoom
	return opts
}

// NewOSM creates an OpenStreetMap source. An empty URL selects the public
// OSM tile servers, and the generic default max zoom is lowered to the
// deepest level they serve.
func NewOSM(opts Options) (*TileSource, error) {
	if opts.URL == "" {
		opts.URL = OSMURL
	}
	if opts.MaxZoom == DefaultMaxZoom {
		opts.MaxZoom = OSMMaxZoom
	}
	return NewTileSource(opts)
}

// NewMapbox creates a source for Mapbox raster tiles addressed by the mapId,
// accessToken and tileFormat params.
func NewMapbox(opts Options) (*TileSource, error) {
	if opts.URL == "" {
		opts.URL = MapboxURL
	}
	params := make(map[string]string, len(opts.Params)+1)
	for k, v := range opts.Params {
		params[k] = v
	}
	if params["tileFormat"] == "" {
		params["tileFormat"] = MapboxTileFormat
	}
	opts.Params = params
	return NewTileSource(opts, "mapId", "accessToken", "tileFormat")
}

// New creates a source of the named variant.
func New(variant string, opts Options) (*TileSource, error) {
	switch variant {
	case "", VariantXYZ:
		return NewXYZ(opts)
	case VariantOSM:
		return NewOSM(opts)
	case VariantMapbox:
		return NewMapbox(opts)
	default:
		return nil, fmt.Errorf("unknown source variant %q", variant)
	}
}
