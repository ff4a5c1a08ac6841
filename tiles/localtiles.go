package tiles

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// gridStep is the spacing of the loading grid drawn on placeholder tiles.
const gridStep = TileSize / 8

// LocalTileProvider draws a placeholder tile: a light grid labelled with the
// tile's z/x/y. It serves offline mode and tiles still in flight.
type LocalTileProvider struct {
	Background color.RGBA
	Grid       color.RGBA
	Label      bool
}

func NewLocalTileProvider() *LocalTileProvider {
	return &LocalTileProvider{
		Background: color.RGBA{0xf2, 0xef, 0xe9, 0xff},
		Grid:       color.RGBA{0xdd, 0xd9, 0xd0, 0xff},
		Label:      true,
	}
}

func (p *LocalTileProvider) GetTile(_ context.Context, tile Tile) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{p.Background}, image.Point{}, draw.Src)

	grid := &image.Uniform{p.Grid}
	for v := 0; v < TileSize; v += gridStep {
		draw.Draw(img, image.Rect(v, 0, v+1, TileSize), grid, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(0, v, TileSize, v+1), grid, image.Point{}, draw.Src)
	}
	if p.Label {
		drawLabel(img, GetTileKey(tile))
	}
	return img, nil
}

// drawLabel centers text on a translucent white plate.
func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0x55, 0x55, 0x55, 0xff}),
		Face: face,
	}
	w := d.MeasureString(text).Round()
	h := face.Metrics().Height.Round()
	mid := TileSize / 2
	const pad = 6

	plate := image.Rect(mid-w/2-pad, mid-h/2-pad, mid+w/2+pad, mid+h/2+pad)
	draw.Draw(img, plate, &image.Uniform{color.RGBA{0xff, 0xff, 0xff, 0xcc}}, image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(mid - w/2),
		Y: fixed.I(mid + h/2 - face.Descent),
	}
	d.DrawString(text)
}
