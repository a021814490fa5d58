package tiles

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const TileSize = 256

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// LatLng represents a geographical point
type LatLng struct {
	Lat, Lng float64
}

// LatLngToTile returns the spherical mercator quadtree tile containing ll.
func LatLngToTile(ll LatLng, zoom int) Tile {
	t := maptile.At(orb.Point{ll.Lng, ll.Lat}, maptile.Zoom(zoom))
	return Tile{X: int(t.X), Y: int(t.Y), Zoom: int(t.Z)}
}

// TileToLatLng returns the top-left corner of a spherical mercator quadtree tile.
func TileToLatLng(tile Tile) LatLng {
	b := maptile.New(uint32(tile.X), uint32(tile.Y), maptile.Zoom(tile.Zoom)).Bound()
	return LatLng{Lat: b.Max.Lat(), Lng: b.Min.Lon()}
}

// TMSRow returns the row of tile counted from the bottom of the grid.
func TMSRow(tile Tile) int {
	return (1 << uint(tile.Zoom)) - 1 - tile.Y
}
