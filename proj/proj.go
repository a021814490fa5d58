// Package proj is a small registry of coordinate reference systems keyed by
// their code (e.g. "EPSG:3857").
package proj

import (
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

var (
	// ErrUnknownProjection is returned by Get for codes that were never registered.
	ErrUnknownProjection = errors.New("unknown projection")
	// ErrNoTransform is returned for projections without a lon/lat transform.
	ErrNoTransform = errors.New("no lon/lat transform")
)

const (
	EPSG3857 = "EPSG:3857"
	EPSG4326 = "EPSG:4326"

	// HalfSize is half the width of the spherical mercator world in meters.
	HalfSize = 20037508.342789244
)

type Units string

const (
	UnitsMeters  Units = "m"
	UnitsDegrees Units = "degrees"
)

// Projection describes a coordinate reference system and its valid domain.
type Projection struct {
	Code  string
	Units Units
	// Extent is minX, minY, maxX, maxY.
	Extent [4]float64
}

// GetExtent returns the bounding extent of the projection.
func (p *Projection) GetExtent() [4]float64 {
	return p.Extent
}

type registry struct {
	mu    sync.RWMutex
	codes map[string]*Projection
}

var defaultRegistry = newRegistry()

func newRegistry() *registry {
	r := &registry{codes: make(map[string]*Projection)}

	mercator := &Projection{
		Code:   EPSG3857,
		Units:  UnitsMeters,
		Extent: [4]float64{-HalfSize, -HalfSize, HalfSize, HalfSize},
	}
	r.add(mercator)
	r.alias(mercator,
		"EPSG:102100",
		"EPSG:102113",
		"EPSG:900913",
		"urn:ogc:def:crs:EPSG:6.18:3:3857",
		"urn:ogc:def:crs:EPSG::3857",
		"http://www.opengis.net/gml/srs/epsg.xml#3857",
	)

	geographic := &Projection{
		Code:   EPSG4326,
		Units:  UnitsDegrees,
		Extent: [4]float64{-180, -90, 180, 90},
	}
	r.add(geographic)
	r.alias(geographic,
		"CRS:84",
		"urn:ogc:def:crs:EPSG::4326",
		"urn:ogc:def:crs:EPSG:6.6:4326",
		"urn:ogc:def:crs:OGC:1.3:CRS84",
		"urn:ogc:def:crs:OGC:2:84",
		"http://www.opengis.net/gml/srs/epsg.xml#4326",
		"urn:x-ogc:def:crs:EPSG:4326",
	)
	return r
}

func (r *registry) add(p *Projection) {
	r.mu.Lock()
	r.codes[p.Code] = p
	r.mu.Unlock()
}

func (r *registry) alias(p *Projection, codes ...string) {
	r.mu.Lock()
	for _, code := range codes {
		r.codes[code] = p
	}
	r.mu.Unlock()
}

func (r *registry) get(code string) (*Projection, error) {
	r.mu.RLock()
	p, ok := r.codes[code]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProjection, code)
	}
	return p, nil
}

// Get looks up a projection by code.
func Get(code string) (*Projection, error) {
	return defaultRegistry.get(code)
}

// Add registers p under its own code, replacing any previous entry.
func Add(p *Projection) {
	defaultRegistry.add(p)
}

// AddEquivalent makes every code in codes resolve to the projection already
// registered under code.
func AddEquivalent(code string, codes ...string) error {
	p, err := defaultRegistry.get(code)
	if err != nil {
		return err
	}
	defaultRegistry.alias(p, codes...)
	return nil
}

// FromLonLat projects a WGS84 longitude and latitude into the coordinates of
// the projection registered under code.
func FromLonLat(code string, lng, lat float64) ([2]float64, error) {
	p, err := Get(code)
	if err != nil {
		return [2]float64{}, err
	}
	switch p.Code {
	case EPSG3857:
		pt := project.Point(orb.Point{lng, lat}, project.WGS84.ToMercator)
		return [2]float64{pt.X(), pt.Y()}, nil
	case EPSG4326:
		return [2]float64{lng, lat}, nil
	}
	return [2]float64{}, fmt.Errorf("%w: %s", ErrNoTransform, p.Code)
}

// ToLonLat is the inverse of FromLonLat.
func ToLonLat(code string, coord [2]float64) (lng, lat float64, err error) {
	p, err := Get(code)
	if err != nil {
		return 0, 0, err
	}
	switch p.Code {
	case EPSG3857:
		pt := project.Point(orb.Point{coord[0], coord[1]}, project.Mercator.ToWGS84)
		return pt.Lon(), pt.Lat(), nil
	case EPSG4326:
		return coord[0], coord[1], nil
	}
	return 0, 0, fmt.Errorf("%w: %s", ErrNoTransform, p.Code)
}
