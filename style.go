package liveplot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// A Style controls how a Surface is laid out and drawn.
type Style struct {
	Background color.Color

	Title struct {
		draw.TextStyle
		// Height is the band reserved above the subplot grid when a
		// title is set.
		Height vg.Length
	}

	Figure struct {
		// MaxColumns caps how many subplots are placed side by side
		// before a new row is started.
		MaxColumns int

		// Default figure size grows with the grid, ExtraWidth +
		// BaseWidth per column, but never beyond MaxWidth.
		BaseWidth   vg.Length
		BaseHeight  vg.Length
		ExtraWidth  vg.Length
		ExtraHeight vg.Length
		MaxWidth    vg.Length

		// DPI used for raster export.
		DPI float64
	}

	Line struct {
		Width vg.Length
		// Colors is the cycle assigned to traces without an explicit
		// color, keyed by the order they were added.
		Colors []color.Color
	}

	Marker struct {
		Radius vg.Length
	}

	Mesh struct {
		// Palette returns a fresh color map. Each color scale owns its
		// map since the map carries the scale's value limits.
		Palette func() palette.ColorMap

		// EdgeWidth strokes every cell outline in the cell's own fill
		// color. Rasterizers leave hairline seams between abutting
		// quads otherwise.
		EdgeWidth vg.Length
	}

	ColorBar struct {
		// Width of the strip split off a subplot cell for the bar and
		// its value axis.
		Width vg.Length
		Pad   vg.Length
	}

	// Expand is the relative margin added around line data when
	// autoscaling. Heatmap extents are sticky and get no margin.
	Expand float64
}

// DefaultStyle returns the house style: three subplot columns, hot
// palette, 5% line margins. The baseFontSize is the axis font size,
// titles are a bit bigger.
func DefaultStyle(baseFontSize vg.Length) Style {
	scale := func(x vg.Length, f float64) vg.Length {
		return vg.Length(math.Round(f * float64(x)))
	}

	s := Style{}
	s.Background = color.White

	s.Title.Color = color.Black
	s.Title.Font = font.From(plot.DefaultFont, scale(baseFontSize, 1.2))
	s.Title.XAlign = draw.XCenter
	s.Title.YAlign = draw.YTop
	s.Title.Handler = text.Plain{Fonts: font.DefaultCache}
	s.Title.Height = scale(baseFontSize, 2.5)

	s.Figure.MaxColumns = 3
	s.Figure.BaseWidth = 3 * vg.Inch
	s.Figure.BaseHeight = 3 * vg.Inch
	s.Figure.ExtraWidth = 3 * vg.Inch
	s.Figure.ExtraHeight = 1 * vg.Inch
	s.Figure.MaxWidth = 12 * vg.Inch
	s.Figure.DPI = 96

	s.Line.Width = vg.Points(1.5)
	s.Line.Colors = plotutil.SoftColors

	s.Marker.Radius = vg.Points(2.5)

	s.Mesh.Palette = func() palette.ColorMap { return moreland.ExtendedBlackBody() }
	s.Mesh.EdgeWidth = vg.Points(0.3)

	s.ColorBar.Width = scale(baseFontSize, 5.5)
	s.ColorBar.Pad = scale(baseFontSize, 0.5)

	s.Expand = 0.05

	return s
}

// FigureSize returns the default figure size for a rows x cols grid.
func (s Style) FigureSize(rows, cols int) (w, h vg.Length) {
	w = s.Figure.ExtraWidth + vg.Length(cols)*s.Figure.BaseWidth
	if w > s.Figure.MaxWidth {
		w = s.Figure.MaxWidth
	}
	h = s.Figure.ExtraHeight + vg.Length(rows)*s.Figure.BaseHeight
	return w, h
}
