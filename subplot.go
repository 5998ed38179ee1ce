package liveplot

import (
	"gonum.org/v1/plot/palette"

	"github.com/qmeas/liveplot/data"
)

// A Subplot is one cell of a Surface's grid. It keeps the state that
// must survive redraws: resolved axis titles, the current view limits
// and the color scale shared by the subplot's heatmaps.
type Subplot struct {
	index int

	// autoscale re-derives the view limits from the data on every
	// update. Setting explicit limits turns it off.
	autoscale bool

	xTitle, yTitle string

	xLimits, yLimits Interval

	scale *ColorScale

	// Scratch state of the running update pass.
	meshBounds Bounds
	meshDrawn  bool
}

func newSubplot(index int) *Subplot {
	return &Subplot{
		index:      index,
		autoscale:  true,
		xLimits:    unsetInterval(),
		yLimits:    unsetInterval(),
		meshBounds: unsetBounds(),
	}
}

// Index returns the subplot's row-major position on the surface.
func (sp *Subplot) Index() int { return sp.index }

// XTitle returns the resolved x axis title.
func (sp *Subplot) XTitle() string { return sp.xTitle }

// YTitle returns the resolved y axis title.
func (sp *Subplot) YTitle() string { return sp.yTitle }

// Limits returns the current view limits. Unset edges are NaN.
func (sp *Subplot) Limits() (x, y Interval) { return sp.xLimits, sp.yLimits }

// SetXLimits fixes the x view and turns autoscaling off.
func (sp *Subplot) SetXLimits(min, max float64) {
	sp.xLimits = Interval{min, max}
	sp.autoscale = false
}

// SetYLimits fixes the y view and turns autoscaling off.
func (sp *Subplot) SetYLimits(min, max float64) {
	sp.yLimits = Interval{min, max}
	sp.autoscale = false
}

// EnableAutoscale resumes following the data on the next update.
func (sp *Subplot) EnableAutoscale() { sp.autoscale = true }

// ColorScale returns the subplot's color scale, or nil while no
// heatmap has been drawn on it.
func (sp *Subplot) ColorScale() *ColorScale { return sp.scale }

// resolveAxisTitles fills in axis titles that are still empty. The
// first trace to deliver a label for an axis wins; later traces only
// fill axes that are still blank.
func (sp *Subplot) resolveAxisTitles(xSrc, ySrc data.Labeled, xl, xu, yl, yu string) {
	if sp.xTitle == "" {
		label, unit := data.Resolve(xSrc, xl, xu)
		sp.xTitle = data.AxisTitle(label, unit)
	}
	if sp.yTitle == "" {
		label, unit := data.Resolve(ySrc, yl, yu)
		sp.yTitle = data.AxisTitle(label, unit)
	}
}

// ensureColorScale returns the subplot's color scale, creating it on
// the first heatmap. The scale's value title is resolved exactly once,
// here, and never overwritten by later traces.
func (sp *Subplot) ensureColorScale(st Style, cfg MeshConfig) *ColorScale {
	if sp.scale != nil {
		return sp.scale
	}
	cm := cfg.Palette
	if cm == nil {
		cm = st.Mesh.Palette()
	}
	label, unit := data.Resolve(cfg.Z, cfg.ZLabel, cfg.ZUnit)
	sp.scale = &ColorScale{
		cmap:   cm,
		title:  data.AxisTitle(label, unit),
		limits: unsetInterval(),
	}
	return sp.scale
}

// applyAutoscale folds the bounds gathered during an update into the
// view limits. Heatmap extents are sticky: when a mesh was drawn the
// limits hug the merged bounds exactly, otherwise line data gets a
// relative margin. Without any drawable data the previous limits
// survive.
func (sp *Subplot) applyAutoscale(b Bounds, meshDrawn bool, expand float64) {
	if !sp.autoscale || !b.Valid() {
		return
	}
	if meshDrawn {
		sp.xLimits, sp.yLimits = b.X, b.Y
		return
	}
	sp.xLimits = b.X.Expand(expand)
	sp.yLimits = b.Y.Expand(expand)
}

// A ColorScale is the shared value-to-color mapping of one subplot,
// shown as a bar beside it. All heatmaps on the subplot draw through
// the same scale; each rescale overwrites the limits, so with several
// heatmaps the last one drawn wins.
type ColorScale struct {
	cmap   palette.ColorMap
	title  string
	limits Interval
}

// Title returns the value axis title resolved at creation.
func (cs *ColorScale) Title() string { return cs.title }

// Limits returns the currently applied value range.
func (cs *ColorScale) Limits() Interval { return cs.limits }

// ColorMap exposes the underlying map, for drawing the bar.
func (cs *ColorScale) ColorMap() palette.ColorMap { return cs.cmap }

// rescale applies a fresh value range. A degenerate range is widened
// to a unit span so the mapping stays defined.
func (cs *ColorScale) rescale(lo, hi float64) {
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	cs.cmap.SetMin(lo)
	cs.cmap.SetMax(hi)
	cs.limits = Interval{lo, hi}
}
