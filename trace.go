package liveplot

import (
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/qmeas/liveplot/data"
	"github.com/qmeas/liveplot/mesh"
)

// Config describes one trace on a Surface. It is one of LineConfig or
// MeshConfig and is treated as immutable once the trace is added:
// to change a trace, clear the surface and add it again.
type Config interface {
	// SubplotIndex is the row-major index of the subplot the trace is
	// drawn on.
	SubplotIndex() int

	traceConfig()
}

// LineConfig puts a 1-d trace of Y against X on a subplot. A nil X
// plots Y against its sample index.
type LineConfig struct {
	Subplot int
	X, Y    *data.Array

	// Fmt selects line and marker drawing with matplotlib-style
	// shorthand: "-" line, "o" markers, ".-" both. Empty means line.
	Fmt string

	Color color.Color
	Width vg.Length

	// Explicit axis metadata wins over whatever X and Y suggest.
	XLabel, XUnit string
	YLabel, YUnit string

	// Extra carries style options that have no field of their own.
	// Recognized keys: "markersize" (marker radius in points) and
	// "dashes" (a dash pattern in points). Unknown keys are ignored
	// with a warning.
	Extra map[string]interface{}
}

func (c LineConfig) SubplotIndex() int { return c.Subplot }
func (c LineConfig) traceConfig()      {}

// MeshConfig puts a heatmap of Z on a subplot. X and Y hold the cell
// centers; either may be nil to fall back to a setpoint grid, to Z's
// own axes and, failing that, to the implicit integer grid.
type MeshConfig struct {
	Subplot int
	X, Y    *data.Array
	Z       *data.Grid

	// XGrid and YGrid accept setpoint records logged once per sample,
	// the shape of Z. Sweeps repeat the x centers in every row and the
	// y centers in every column, so the first row and the first column
	// are taken as the axes, re-sliced on every draw while the record
	// fills. Ignored when the matching 1-d axis is set.
	XGrid, YGrid *data.Grid

	// Palette overrides the surface palette for the color scale this
	// trace creates. Ignored if the subplot already has a scale.
	Palette palette.ColorMap

	XLabel, XUnit string
	YLabel, YUnit string
	ZLabel, ZUnit string

	// Extra carries style options that have no field of their own.
	// Recognized keys: "edgecolor" (a color.Color stroking the cell
	// outlines instead of each cell's fill color) and "edgewidth"
	// (points, 0 disables the outline stroke). Unknown keys are
	// ignored with a warning.
	Extra map[string]interface{}
}

func (c MeshConfig) SubplotIndex() int { return c.Subplot }
func (c MeshConfig) traceConfig()      {}

// Trace pairs a Config with its current drawing artifacts. Line
// artifacts persist across updates and get their sample data swapped
// in place; mesh artifacts are discarded and rebuilt on every update.
// A nil mesh artifact means the trace is currently not drawable.
type Trace struct {
	Config Config

	line   *plotter.Line
	points *plotter.Scatter
	mesh   *mesh.Grid
}

// parseFmt interprets a matplotlib-style format shorthand.
func parseFmt(s string) (line, markers bool) {
	if s == "" {
		return true, false
	}
	for _, r := range s {
		switch r {
		case '-':
			line = true
		case 'o', '.', '*', '+', 'x', 's', 'd', '^', 'v':
			markers = true
		}
	}
	if !line && !markers {
		line = true
	}
	return line, markers
}

var (
	lineExtraKeys = map[string]bool{"markersize": true, "dashes": true}
	meshExtraKeys = map[string]bool{"edgecolor": true, "edgewidth": true}
)

func checkExtraKeys(extra map[string]interface{}, known map[string]bool) {
	for k := range extra {
		if !known[k] {
			Warnf("ignoring unknown trace option %q", k)
		}
	}
}

// extraLength reads a size in points from a trace's extra options.
func extraLength(extra map[string]interface{}, key string) (vg.Length, bool) {
	v, ok := extra[key]
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case vg.Length:
		return t, true
	case float64:
		return vg.Points(t), true
	case int:
		return vg.Points(float64(t)), true
	}
	Warnf("trace option %q: cannot use %T as a length", key, v)
	return 0, false
}

func extraColor(extra map[string]interface{}, key string) (color.Color, bool) {
	v, ok := extra[key]
	if !ok {
		return nil, false
	}
	if c, ok := v.(color.Color); ok {
		return c, true
	}
	Warnf("trace option %q: cannot use %T as a color", key, v)
	return nil, false
}

func extraDashes(extra map[string]interface{}) ([]vg.Length, bool) {
	v, ok := extra["dashes"]
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case []vg.Length:
		return t, true
	case []float64:
		d := make([]vg.Length, len(t))
		for i, f := range t {
			d[i] = vg.Points(f)
		}
		return d, true
	}
	Warnf("trace option %q: cannot use %T as a dash pattern", "dashes", v)
	return nil, false
}

// pairXYs collects the drawable samples of a line trace. Pairs with a
// masked member are skipped; a nil x axis enumerates the samples.
func pairXYs(x, y *data.Array) plotter.XYs {
	if y == nil {
		return nil
	}
	n := y.Len()
	if x != nil && x.Len() < n {
		n = x.Len()
	}
	xys := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		xv := float64(i)
		if x != nil {
			xv = x.V[i]
		}
		yv := y.V[i]
		if !isFinite(xv) || !isFinite(yv) {
			continue
		}
		xys = append(xys, plotter.XY{X: xv, Y: yv})
	}
	return xys
}

func boundsOfXYs(xys plotter.XYs) Bounds {
	b := unsetBounds()
	for _, xy := range xys {
		b.X.Update(xy.X)
		b.Y.Update(xy.Y)
	}
	return b
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
