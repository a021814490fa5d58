package tiles

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// LocalTileProvider renders debug tiles labelled with their z/x/y address.
type LocalTileProvider struct {
	size [2]int
}

func NewLocalTileProvider(size [2]int) *LocalTileProvider {
	if size[0] <= 0 || size[1] <= 0 {
		size = [2]int{TileSize, TileSize}
	}
	return &LocalTileProvider{size: size}
}

func (p *LocalTileProvider) GetTile(tile Tile) (image.Image, error) {
	w, h := p.size[0], p.size[1]
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	// Fill with light blue background
	bgColor := color.RGBA{200, 220, 255, 255}
	draw.Draw(img, img.Bounds(), &image.Uniform{bgColor}, image.Point{}, draw.Src)

	drawText(img, GetTileKey(tile))

	borderColor := color.RGBA{100, 100, 100, 255}
	borders := []image.Rectangle{
		image.Rect(0, 0, w, 1),   // Top
		image.Rect(0, h-1, w, h), // Bottom
		image.Rect(0, 0, 1, h),   // Left
		image.Rect(w-1, 0, w, h), // Right
	}
	for _, rect := range borders {
		draw.Draw(img, rect, &image.Uniform{borderColor}, image.Point{}, draw.Src)
	}
	return img, nil
}

func drawText(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
	}

	b := img.Bounds()
	textWidth := d.MeasureString(text).Round()
	textHeight := face.Metrics().Height.Round()
	cx, cy := b.Dx()/2, b.Dy()/2

	padding := 10
	textBgRect := image.Rect(
		cx-textWidth/2-padding,
		cy-textHeight/2-padding,
		cx+textWidth/2+padding,
		cy+textHeight/2+padding,
	)
	textBgColor := color.RGBA{255, 255, 255, 220}
	draw.Draw(img, textBgRect, &image.Uniform{textBgColor}, image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(cx - textWidth/2),
		Y: fixed.I(cy + textHeight/2),
	}
	d.DrawString(text)
}
