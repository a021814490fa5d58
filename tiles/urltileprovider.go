package tiles

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds a single tile download.
const DefaultRequestTimeout = 10 * time.Second

var (
	ErrNoURL          = errors.New("tile provider: no url template")
	ErrTileOutOfRange = errors.New("tile provider: tile outside of grid")
)

var (
	letterRange = regexp.MustCompile(`\{([a-z])-([a-z])\}`)
	numberRange = regexp.MustCompile(`\{(\d+)-(\d+)\}`)
)

// ExpandURL expands a single {a-c} or {1-4} range in tmpl into one template
// per value. Templates without a range are returned as is.
func ExpandURL(tmpl string) []string {
	if m := letterRange.FindStringSubmatchIndex(tmpl); m != nil {
		start, stop := tmpl[m[2]], tmpl[m[4]]
		urls := make([]string, 0, int(stop-start)+1)
		for c := start; c <= stop; c++ {
			urls = append(urls, tmpl[:m[0]]+string(c)+tmpl[m[1]:])
		}
		return urls
	}
	if m := numberRange.FindStringSubmatchIndex(tmpl); m != nil {
		start, _ := strconv.Atoi(tmpl[m[2]:m[3]])
		stop, _ := strconv.Atoi(tmpl[m[4]:m[5]])
		urls := make([]string, 0, max(stop-start+1, 0))
		for i := start; i <= stop; i++ {
			urls = append(urls, tmpl[:m[0]]+strconv.Itoa(i)+tmpl[m[1]:])
		}
		return urls
	}
	return []string{tmpl}
}

// URLTileProvider downloads tiles addressed by a {z}/{x}/{y} url template.
// The template may be replaced while tiles are being fetched.
type URLTileProvider struct {
	client  *http.Client
	grid    *TileGrid
	timeout time.Duration

	mu        sync.RWMutex
	tmpl      string
	urls      []string
	revision  uint64
	userAgent string
}

// NewURLTileProvider creates a provider for tmpl. grid may be nil, in which
// case every tile coordinate is requested.
func NewURLTileProvider(tmpl string, grid *TileGrid, client *http.Client) *URLTileProvider {
	if client == nil {
		client = &http.Client{}
	}
	p := &URLTileProvider{
		client:    client,
		grid:      grid,
		userAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
		timeout:   DefaultRequestTimeout,
	}
	p.SetURL(tmpl)
	return p
}

// SetUserAgent replaces the User-Agent sent with tile requests.
func (p *URLTileProvider) SetUserAgent(ua string) {
	p.mu.Lock()
	p.userAgent = ua
	p.mu.Unlock()
}

// URL returns the current template.
func (p *URLTileProvider) URL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tmpl
}

// SetURL replaces the template. Tiles cached for the previous template are
// invalidated through Revision.
func (p *URLTileProvider) SetURL(tmpl string) {
	p.mu.Lock()
	p.tmpl = tmpl
	p.urls = ExpandURL(tmpl)
	p.revision++
	p.mu.Unlock()
}

// Revision changes every time the template is replaced.
func (p *URLTileProvider) Revision() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.revision
}

// Grid returns the tile grid the provider was created with, or nil.
func (p *URLTileProvider) Grid() *TileGrid {
	return p.grid
}

// TileURL returns the download URL for tile.
func (p *URLTileProvider) TileURL(tile Tile) (string, error) {
	if p.grid != nil {
		if tile.Zoom < p.grid.MinZoom() || tile.Zoom > p.grid.MaxZoom() {
			return "", fmt.Errorf("%w: zoom %d", ErrTileOutOfRange, tile.Zoom)
		}
		if extent, ok := p.grid.Extent(); ok {
			if !p.grid.TileRangeForExtentAndZ(extent, tile.Zoom).Contains(tile.X, tile.Y) {
				return "", fmt.Errorf("%w: %s", ErrTileOutOfRange, GetTileKey(tile))
			}
		}
	}

	p.mu.RLock()
	urls := p.urls
	p.mu.RUnlock()
	if len(urls) == 0 || urls[0] == "" {
		return "", ErrNoURL
	}

	// unsigned arithmetic wraps instead of going negative at high zooms
	h := uint64(tile.X)<<uint(tile.Zoom) + uint64(tile.Y)
	tmpl := urls[h%uint64(len(urls))]

	r := strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
		"{-y}", strconv.Itoa(TMSRow(tile)),
	)
	return r.Replace(tmpl), nil
}

func (p *URLTileProvider) GetTile(tile Tile) (image.Image, error) {
	return p.GetTileContext(context.Background(), tile)
}

// GetTileContext downloads and decodes tile.
func (p *URLTileProvider) GetTileContext(ctx context.Context, tile Tile) (image.Image, error) {
	url, err := p.TileURL(tile)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request for tile %v: %w", tile, err)
	}

	p.mu.RLock()
	ua := p.userAgent
	p.mu.RUnlock()

	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "image/png,image/jpeg,*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")

	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("Error fetching tile %v: %v", tile, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Tile %v: unexpected status %s", tile, resp.Status)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode tile %v: %w", tile, err)
	}
	return img, nil
}
