// Command tileview opens a window showing the tile layer described by a TOML file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"

	"github.com/olablt/gio-tiles/config"
	"github.com/olablt/gio-tiles/mapview"
	"github.com/olablt/gio-tiles/source"
	"github.com/olablt/gio-tiles/tiles"
)

func main() {
	configPath := flag.String("config", "", "layer config file (TOML); defaults to OpenStreetMap")
	startTile := flag.String("tile", "", "open at the corner of a web mercator tile given as z/x/y")
	flag.Parse()

	src, err := loadSource(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tileview: %v\n", err)
		os.Exit(1)
	}
	if err := src.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "tileview: %v\n", err)
		os.Exit(1)
	}

	refresh := make(chan struct{}, 1)
	mv, err := mapview.New(src, refresh)
	if err != nil {
		src.Deinit()
		fmt.Fprintf(os.Stderr, "tileview: %v\n", err)
		os.Exit(1)
	}
	if *startTile != "" {
		tile, err := parseTile(*startTile)
		if err == nil {
			err = mv.SetCenter(tiles.TileToLatLng(tile))
		}
		if err != nil {
			mv.Close()
			src.Deinit()
			fmt.Fprintf(os.Stderr, "tileview: -tile: %v\n", err)
			os.Exit(1)
		}
		mv.SetZoom(tile.Zoom)
	}
	log.Printf("tileview: zoom %d, quadtree tile %v", mv.Zoom, tiles.LatLngToTile(mv.Center(), mv.Zoom))

	go func() {
		w := new(app.Window)
		w.Option(app.Title("Tile Viewer"), app.Size(unit.Dp(800), unit.Dp(600)))

		go func() {
			for range refresh {
				w.Invalidate()
			}
		}()

		var ops op.Ops
		for {
			switch e := w.Event().(type) {
			case app.DestroyEvent:
				mv.Close()
				src.Deinit()
				if e.Err != nil {
					fmt.Fprintf(os.Stderr, "tileview: %v\n", e.Err)
					os.Exit(1)
				}
				os.Exit(0)
			case app.FrameEvent:
				gtx := app.NewContext(&ops, e)
				mv.Layout(gtx)
				e.Frame(gtx.Ops)
			}
		}
	}()
	app.Main()
}

func loadSource(path string) (*source.TileSource, error) {
	if path == "" {
		return source.NewOSM(source.DefaultOSMOptions())
	}
	return config.NewSource(path)
}

// parseTile reads a tile address written as z/x/y.
func parseTile(s string) (tiles.Tile, error) {
	var t tiles.Tile
	if _, err := fmt.Sscanf(s, "%d/%d/%d", &t.Zoom, &t.X, &t.Y); err != nil {
		return tiles.Tile{}, fmt.Errorf("parse tile %q: %w", s, err)
	}
	if t.Zoom < 0 || t.Zoom > 32 || t.X < 0 || t.Y < 0 || t.X >= 1<<uint(t.Zoom) || t.Y >= 1<<uint(t.Zoom) {
		return tiles.Tile{}, fmt.Errorf("tile %q out of range", s)
	}
	return t, nil
}
