package source

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/olablt/gio-tiles/proj"
	"github.com/olablt/gio-tiles/tiles"
)

// TileSource adapts Options into a tile grid and a templated URL, and hands
// both to a live tiles.URLTileProvider.
type TileSource struct {
	Base

	opts      Options
	urlTokens []string
	grid      *tiles.TileGrid
	urlTmpl   string
	client    *http.Client
	newLive   func(s *TileSource) (Live, error)
}

// NewTileSource validates opts. urlTokens name the placeholders of opts.URL
// resolved from Params before the URL reaches the provider.
func NewTileSource(opts Options, urlTokens ...string) (*TileSource, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &TileSource{
		opts:      opts.clone(),
		urlTokens: append([]string(nil), urlTokens...),
		newLive:   newURLProvider,
	}
	s.urlTmpl = s.URLTemplate()
	return s, nil
}

func newURLProvider(s *TileSource) (Live, error) {
	return tiles.NewURLTileProvider(s.urlTmpl, s.grid, s.client), nil
}

// SetHTTPClient sets the client used by providers created on later Inits.
func (s *TileSource) SetHTTPClient(c *http.Client) {
	s.client = c
}

// Options returns a copy of the current options.
func (s *TileSource) Options() Options {
	return s.opts.clone()
}

func (s *TileSource) URLTokens() []string {
	return append([]string(nil), s.urlTokens...)
}

// tokenValues resolves each url token from Params, falling back to the
// option of the same name. Options without a string form (gridOptions,
// params) resolve to "".
func (s *TileSource) tokenValues() map[string]string {
	values := make(map[string]string, len(s.urlTokens))
	for _, name := range s.urlTokens {
		if v, ok := s.opts.Params[name]; ok {
			values[name] = v
			continue
		}
		switch name {
		case "projection":
			values[name] = s.opts.Projection
		case "minZoom":
			values[name] = strconv.Itoa(s.opts.MinZoom)
		case "maxZoom":
			values[name] = strconv.Itoa(s.opts.MaxZoom)
		case "tileSize":
			values[name] = strconv.Itoa(s.opts.TileSize[0]) + "," + strconv.Itoa(s.opts.TileSize[1])
		case "cacheSize":
			values[name] = strconv.Itoa(s.opts.CacheSize)
		default:
			values[name] = ""
		}
	}
	return values
}

// URLTemplate returns the configured URL with the source's tokens replaced.
func (s *TileSource) URLTemplate() string {
	return ReplaceTokens(s.opts.URL, s.tokenValues())
}

// ProjectionExtent returns the extent of the configured projection.
func (s *TileSource) ProjectionExtent() (tiles.Extent, error) {
	p, err := proj.Get(s.opts.Projection)
	if err != nil {
		return tiles.Extent{}, err
	}
	return tiles.Extent(p.GetExtent()), nil
}

// PreparedGridOptions derives resolutions, min zoom and extent from the
// projection and zoom bounds. Fields set in the GridOptions override win.
func (s *TileSource) PreparedGridOptions() (tiles.GridOptions, error) {
	extent, err := s.ProjectionExtent()
	if err != nil {
		return tiles.GridOptions{}, err
	}
	minZoom := s.opts.MinZoom
	size := [2]int{s.opts.TileSize[0], s.opts.TileSize[1]}
	prepared := tiles.GridOptions{
		Resolutions: tiles.ResolutionsFromExtent(extent, s.opts.MaxZoom, size),
		MinZoom:     &minZoom,
		Extent:      &extent,
		TileSize:    []int{size[0], size[1]},
	}
	if s.opts.GridOptions != nil {
		prepared = prepared.Merge(*s.opts.GridOptions)
	}
	return prepared, nil
}

// TileGrid returns the grid built by Init, or nil.
func (s *TileSource) TileGrid() *tiles.TileGrid {
	return s.grid
}

// Provider returns the live URL provider, or nil before Init.
func (s *TileSource) Provider() *tiles.URLTileProvider {
	p, _ := s.Live().(*tiles.URLTileProvider)
	return p
}

// Init builds the tile grid and the live provider.
func (s *TileSource) Init() error {
	if s.Initialized() {
		return ErrAlreadyInitialized
	}
	opts, err := s.PreparedGridOptions()
	if err != nil {
		return fmt.Errorf("prepare tile grid: %w", err)
	}
	grid, err := tiles.NewTileGrid(opts)
	if err != nil {
		return fmt.Errorf("create tile grid: %w", err)
	}
	s.grid = grid

	s.urlTmpl = s.URLTemplate()
	if err := s.Base.Init(func() (Live, error) { return s.newLive(s) }); err != nil {
		s.grid = nil
		return err
	}
	return nil
}

// Deinit clears the tile grid and releases the live provider.
func (s *TileSource) Deinit() {
	s.grid = nil
	s.Base.Deinit()
}

// refreshURL recomputes the URL template and pushes it to the live provider
// when it changed.
func (s *TileSource) refreshURL() {
	tmpl := s.URLTemplate()
	if tmpl == s.urlTmpl {
		return
	}
	s.urlTmpl = tmpl
	if live := s.Live(); live != nil {
		live.SetURL(tmpl)
	}
}

func (s *TileSource) SetURL(url string) error {
	if err := ValidateURL(url); err != nil {
		return err
	}
	s.opts.URL = url
	s.refreshURL()
	return nil
}

// SetParam sets the value of a url token.
func (s *TileSource) SetParam(name, value string) {
	s.opts.Params[name] = value
	s.refreshURL()
}

// Params returns a copy of the token values.
func (s *TileSource) Params() map[string]string {
	return s.opts.clone().Params
}

// The setters below validate and store their value. Grid related options
// take effect on the next Init.

func (s *TileSource) SetMinZoom(z int) error {
	if err := ValidateZoomRange(z, s.opts.MaxZoom); err != nil {
		return err
	}
	s.opts.MinZoom = z
	s.refreshURL()
	return nil
}

func (s *TileSource) SetMaxZoom(z int) error {
	if err := ValidateZoomRange(s.opts.MinZoom, z); err != nil {
		return err
	}
	s.opts.MaxZoom = z
	s.refreshURL()
	return nil
}

func (s *TileSource) SetTileSize(size []int) error {
	if err := ValidateTileSize(size); err != nil {
		return err
	}
	s.opts.TileSize = append([]int(nil), size...)
	s.refreshURL()
	return nil
}

// SetProjection fails with proj.ErrUnknownProjection for unregistered codes.
func (s *TileSource) SetProjection(code string) error {
	if _, err := proj.Get(code); err != nil {
		return err
	}
	s.opts.Projection = code
	s.refreshURL()
	return nil
}

// SetGridOptions replaces the grid override; nil removes it.
func (s *TileSource) SetGridOptions(opts *tiles.GridOptions) error {
	if err := ValidateGridOptions(opts); err != nil {
		return err
	}
	if opts == nil {
		s.opts.GridOptions = nil
	} else {
		g := tiles.GridOptions{}.Merge(*opts)
		s.opts.GridOptions = &g
	}
	s.refreshURL()
	return nil
}
