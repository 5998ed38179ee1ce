// Package mesh renders gridded measurement data as colored cells.
//
// Measurement sweeps record cell-center coordinates, one per sample,
// while a quad mesh is built from cell corners. Edges derives n+1
// corner positions from n centers so that every sample sits inside its
// own cell, with masked (NaN) samples poisoning only the edges they
// touch. Grid is the plotter that paints the cells, following the
// plotter conventions of gonum.org/v1/plot.
package mesh

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Edges turns n cell-center coordinates into n+1 cell-edge
// coordinates.
//
// With at least two usable samples each interior edge is the midpoint
// of its neighbors and the outer edges are extrapolated from the local
// spacing, so a uniformly spaced axis yields uniformly spaced edges
// shifted by half a step. With fewer than two usable samples there is
// no spacing to extrapolate from and the single cell is given unit
// width, half a unit on either side of the sample.
//
// Masked samples flow through the arithmetic: an edge computed from a
// NaN center is NaN and the adjacent cells are not drawn.
func Edges(centers []float64) []float64 {
	n := len(centers)
	if n == 0 {
		return nil
	}
	if countFinite(centers) < 2 {
		e := make([]float64, n+1)
		e[0] = centers[0] - 0.5
		e[1] = centers[0] + 0.5
		copy(e[2:], centers[1:])
		return e
	}

	// Pad with a mirrored sample on each end, then move the pads
	// outward by the local difference.
	p := make([]float64, n+2)
	copy(p[1:], centers)
	p[0] = 2*centers[0] - centers[1]
	p[n+1] = 2*centers[n-1] - centers[n-2]

	e := make([]float64, n+1)
	e[0] = (p[0] + p[1]) / 2
	for i := 1; i <= n; i++ {
		e[i] = p[i] + (p[i]-p[i-1])/2
	}
	return e
}

// UnitEdges returns edges for n cells on the implicit integer grid,
// cell i spanning [i, i+1].
func UnitEdges(n int) []float64 {
	e := make([]float64, n+1)
	for i := range e {
		e[i] = float64(i)
	}
	return e
}

// Grid is a plot.Plotter drawing a value grid as filled quads.
//
// With len(XEdges) == cols+1 and len(YEdges) == rows+1 the edges are
// cell corners and every value is drawn. Edge slices matching the grid
// dimensions exactly are also accepted; the coordinates are then taken
// as corners directly and the final row and column of Z stay undrawn.
type Grid struct {
	XEdges, YEdges []float64
	Z              [][]float64

	// ColorMap maps values to colors. Its Min and Max must be set
	// before drawing.
	ColorMap palette.ColorMap

	// EdgeWidth, when positive, strokes each cell outline in the
	// cell's fill color to cover rasterization seams between
	// neighboring quads.
	EdgeWidth vg.Length

	// EdgeColor, when set, strokes the outlines in a fixed color
	// instead of each cell's fill color.
	EdgeColor color.Color
}

// NewCentered builds a mesh from cell-center axes. A nil axis falls
// back to the implicit integer grid. Axis lengths must match the
// value grid.
func NewCentered(x, y []float64, z [][]float64, cm palette.ColorMap) (*Grid, error) {
	rows, cols := dims(z)
	if x != nil && len(x) != cols {
		return nil, errors.Errorf("mesh: x has %d centers for %d columns", len(x), cols)
	}
	if y != nil && len(y) != rows {
		return nil, errors.Errorf("mesh: y has %d centers for %d rows", len(y), rows)
	}
	g := &Grid{Z: z, ColorMap: cm}
	if x == nil {
		g.XEdges = UnitEdges(cols)
	} else {
		g.XEdges = Edges(x)
	}
	if y == nil {
		g.YEdges = UnitEdges(rows)
	} else {
		g.YEdges = Edges(y)
	}
	return g, nil
}

// NewCorners builds a mesh whose coordinates are used as cell corners
// as they are, without center-to-edge correction. The axes must match
// the value grid dimensions; the last row and column of z are not
// drawn.
func NewCorners(x, y []float64, z [][]float64, cm palette.ColorMap) (*Grid, error) {
	rows, cols := dims(z)
	if len(x) != cols {
		return nil, errors.Errorf("mesh: x has %d corners for %d columns", len(x), cols)
	}
	if len(y) != rows {
		return nil, errors.Errorf("mesh: y has %d corners for %d rows", len(y), rows)
	}
	return &Grid{XEdges: x, YEdges: y, Z: z, ColorMap: cm}, nil
}

// Plot implements plot.Plotter.
func (g *Grid) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	lo, hi := g.ColorMap.Min(), g.ColorMap.Max()
	ny := len(g.YEdges) - 1
	if ny > len(g.Z) {
		ny = len(g.Z)
	}
	for r := 0; r < ny; r++ {
		y0, y1 := g.YEdges[r], g.YEdges[r+1]
		if !isFinite(y0) || !isFinite(y1) {
			continue
		}
		nx := len(g.XEdges) - 1
		if nx > len(g.Z[r]) {
			nx = len(g.Z[r])
		}
		for j := 0; j < nx; j++ {
			v := g.Z[r][j]
			if !isFinite(v) {
				continue
			}
			x0, x1 := g.XEdges[j], g.XEdges[j+1]
			if !isFinite(x0) || !isFinite(x1) {
				continue
			}
			if v < lo {
				v = lo
			} else if v > hi {
				v = hi
			}
			col, err := g.ColorMap.At(v)
			if err != nil {
				continue
			}
			rect := vg.Rectangle{
				Min: vg.Point{X: trX(x0), Y: trY(y0)},
				Max: vg.Point{X: trX(x1), Y: trY(y1)},
			}
			rect = clipRect(canonic(rect), c)
			if rect.Min.X >= rect.Max.X || rect.Min.Y >= rect.Max.Y {
				continue
			}
			c.SetColor(col)
			c.Fill(rect.Path())
			if g.EdgeWidth > 0 {
				if g.EdgeColor != nil {
					c.SetColor(g.EdgeColor)
				}
				c.SetLineWidth(g.EdgeWidth)
				c.Stroke(rect.Path())
			}
		}
	}
}

// DataRange implements plot.DataRanger, covering all finite edges.
func (g *Grid) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = finiteRange(g.XEdges)
	ymin, ymax = finiteRange(g.YEdges)
	return xmin, xmax, ymin, ymax
}

// ZRange returns the finite value range of the grid. ok is false if
// every value is masked.
func (g *Grid) ZRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.Z {
		for _, v := range row {
			if !isFinite(v) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			ok = true
		}
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return lo, hi, true
}

func dims(z [][]float64) (rows, cols int) {
	rows = len(z)
	if rows > 0 {
		cols = len(z[0])
	}
	return rows, cols
}

// canonic orders the rectangle corners, needed for descending axes.
func canonic(r vg.Rectangle) vg.Rectangle {
	if r.Min.X > r.Max.X {
		r.Min.X, r.Max.X = r.Max.X, r.Min.X
	}
	if r.Min.Y > r.Max.Y {
		r.Min.Y, r.Max.Y = r.Max.Y, r.Min.Y
	}
	return r
}

// clipRect clips rect to the canvas, assuming canonical form.
func clipRect(rect vg.Rectangle, c draw.Canvas) vg.Rectangle {
	if rect.Min.X < c.Min.X {
		rect.Min.X = c.Min.X
	}
	if rect.Min.Y < c.Min.Y {
		rect.Min.Y = c.Min.Y
	}
	if rect.Max.X > c.Max.X {
		rect.Max.X = c.Max.X
	}
	if rect.Max.Y > c.Max.Y {
		rect.Max.Y = c.Max.Y
	}
	return rect
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func countFinite(vals []float64) int {
	n := 0
	for _, v := range vals {
		if isFinite(v) {
			n++
		}
	}
	return n
}

func finiteRange(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if !isFinite(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi
}
