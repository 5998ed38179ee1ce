package inspect

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	crosshairColor = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xff}
	readoutColor   = color.RGBA{A: 0xff}
	readoutBack    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xe0}
)

// Annotate copies img and overlays a crosshair with a coordinate
// readout at the data position (x, y). Frames come out of Frame
// unannotated, so a caller tracking the pointer can redraw the cursor
// without rebuilding the plots. Positions outside the heatmap's data
// area return a plain copy.
func Annotate(img image.Image, g Geometry, x, y float64) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)

	px, py, ok := g.PixelAt(x, y)
	if !ok {
		return out
	}

	drawCrosshair(out, g.Heatmap, px, py)
	drawReadout(out, g, px, py, fmt.Sprintf("x = %.4g, y = %.4g", x, y))
	return out
}

// drawCrosshair draws a line pair through (px, py) across area.
func drawCrosshair(dst draw.Image, area image.Rectangle, px, py int) {
	for xx := area.Min.X; xx < area.Max.X; xx++ {
		dst.Set(xx, py, crosshairColor)
	}
	for yy := area.Min.Y; yy < area.Max.Y; yy++ {
		dst.Set(px, yy, crosshairColor)
	}
}

// markSelection stamps the crosshair of the clicked cell onto a
// finished frame, in place when the frame is mutable.
func markSelection(img image.Image, g Geometry, x, y float64) {
	dst, ok := img.(draw.Image)
	if !ok {
		return
	}
	if px, py, ok := g.PixelAt(x, y); ok {
		drawCrosshair(dst, g.Heatmap, px, py)
	}
}

// drawReadout stamps text near the cursor on a translucent backing so
// it stays legible over dark cells, nudged to stay inside the frame.
func drawReadout(dst *image.RGBA, g Geometry, px, py int, s string) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, s).Ceil()
	h := face.Height

	tx := px + 10
	ty := py - 8
	if tx+w+4 > g.Frame.Max.X {
		tx = px - w - 10
	}
	if ty-h < g.Frame.Min.Y {
		ty = py + h + 8
	}

	back := image.Rect(tx-2, ty-face.Ascent-1, tx+w+2, ty+face.Height-face.Ascent+1)
	draw.Draw(dst, back.Intersect(g.Frame), image.NewUniform(readoutBack), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(readoutColor),
		Face: face,
		Dot:  fixed.P(tx, ty),
	}
	d.DrawString(s)
}
