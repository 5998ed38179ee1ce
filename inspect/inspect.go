// Package inspect provides interactive slicing of one completed
// two-dimensional sweep: a heatmap with optional side panels showing
// either axis sums or the cross sections through a clicked point.
//
// The Inspector itself is a plain state machine. It consumes events,
// renders frames and reports the frame geometry; wiring it to an
// actual window, pointer and buttons is the caller's job.
package inspect

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/vg"

	"github.com/qmeas/liveplot"
	"github.com/qmeas/liveplot/data"
)

// State identifies what the inspector currently shows.
type State int

const (
	// HeatmapOnly shows the full heatmap and nothing else.
	HeatmapOnly State = iota
	// PanelsSum adds two panels holding the sums along each axis.
	PanelsSum
	// PanelsCross adds two panels following clicked cross sections.
	PanelsCross
)

func (s State) String() string {
	return []string{"heatmap", "panels+sum", "panels+cross"}[int(s)]
}

// An Inspector holds one dataset and the display state of its
// inspection window.
type Inspector struct {
	grid  *data.Grid
	title string
	loc   *data.Location
	style liveplot.Style

	width, height vg.Length

	panels bool
	sum    bool

	// Nearest-sample indices of the last click, -1 before any click.
	// A click draws the cross-section lines; any toggle tears them
	// down again and the panels stay empty until the next click.
	xsel, ysel int
	lineShown  bool

	geom Geometry
}

// An Option configures an Inspector at construction.
type Option func(*Inspector) error

// WithTitle names the dataset for save files.
func WithTitle(title string) Option {
	return func(ins *Inspector) error {
		ins.title = title
		return nil
	}
}

// WithLocation attaches a run location; default save paths land in
// the location's current run directory.
func WithLocation(loc *data.Location) Option {
	return func(ins *Inspector) error {
		ins.loc = loc
		return nil
	}
}

// WithStyle replaces the default drawing style.
func WithStyle(st liveplot.Style) Option {
	return func(ins *Inspector) error {
		ins.style = st
		return nil
	}
}

// WithSize fixes the frame size in inches.
func WithSize(w, h float64) Option {
	return func(ins *Inspector) error {
		if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
			return errors.Errorf("inspect: frame size must be a pair of positive numbers, got %v x %v", w, h)
		}
		ins.width = vg.Length(w) * vg.Inch
		ins.height = vg.Length(h) * vg.Inch
		return nil
	}
}

// New returns an inspector for one gridded dataset. The grid must
// carry both cell-center axes, matching its dimensions, since clicks
// are resolved against them.
func New(g *data.Grid, opts ...Option) (*Inspector, error) {
	if g == nil {
		return nil, errors.New("inspect: nil grid")
	}
	if g.X == nil || g.Y == nil {
		return nil, errors.New("inspect: grid without cell-center axes")
	}
	rows, cols := g.Dims()
	if g.X.Len() != cols {
		return nil, errors.Errorf("inspect: x has %d samples for %d columns", g.X.Len(), cols)
	}
	if g.Y.Len() != rows {
		return nil, errors.Errorf("inspect: y has %d samples for %d rows", g.Y.Len(), rows)
	}
	ins := &Inspector{
		grid:   g,
		style:  liveplot.DefaultStyle(12),
		width:  8 * vg.Inch,
		height: 6 * vg.Inch,
		xsel:   -1,
		ysel:   -1,
	}
	for _, opt := range opts {
		if err := opt(ins); err != nil {
			return nil, err
		}
	}
	return ins, nil
}

// Grid returns the inspected dataset.
func (ins *Inspector) Grid() *data.Grid { return ins.grid }

// Title returns the dataset title used in save names.
func (ins *Inspector) Title() string { return ins.title }

// State reports the current display state.
func (ins *Inspector) State() State {
	switch {
	case !ins.panels:
		return HeatmapOnly
	case ins.sum:
		return PanelsSum
	default:
		return PanelsCross
	}
}

// Selection returns the nearest-sample indices of the currently shown
// cross section. ok is false while the panels are empty.
func (ins *Inspector) Selection() (xi, yi int, ok bool) {
	if !ins.lineShown {
		return -1, -1, false
	}
	return ins.xsel, ins.ysel, true
}

// An Event is one input to the inspector state machine: TogglePanels,
// ToggleSum, Click, SaveHeatmap, SaveRow or SaveCol.
type Event interface {
	inspectorEvent()
}

// TogglePanels shows or hides the side panels.
type TogglePanels struct{ Show bool }

// ToggleSum switches the panels between axis sums and clicked cross
// sections.
type ToggleSum struct{ Sum bool }

// Click reports a pointer press at a data coordinate on the heatmap.
type Click struct{ X, Y float64 }

// SaveHeatmap writes the heatmap panel to a file. An empty path
// derives one from the dataset title.
type SaveHeatmap struct{ Path string }

// SaveRow writes the vertical panel, the one plotted against y.
type SaveRow struct{ Path string }

// SaveCol writes the horizontal panel, the one plotted against x.
type SaveCol struct{ Path string }

func (TogglePanels) inspectorEvent() {}
func (ToggleSum) inspectorEvent()    {}
func (Click) inspectorEvent()        {}
func (SaveHeatmap) inspectorEvent()  {}
func (SaveRow) inspectorEvent()      {}
func (SaveCol) inspectorEvent()      {}

// HandleEvent feeds one event through the state machine. Toggles tear
// down any cross-section lines; clicks are ignored unless the panels
// are in cross-section mode. Only save events can fail.
func (ins *Inspector) HandleEvent(ev Event) error {
	switch e := ev.(type) {
	case TogglePanels:
		ins.panels = e.Show
		ins.lineShown = false
		liveplot.Debugf("inspector: panels %v, state %v", e.Show, ins.State())
	case ToggleSum:
		ins.sum = e.Sum
		ins.lineShown = false
		liveplot.Debugf("inspector: sum %v, state %v", e.Sum, ins.State())
	case Click:
		if ins.State() != PanelsCross {
			return nil
		}
		xi := nearestIndex(ins.grid.X.V, e.X)
		yi := nearestIndex(ins.grid.Y.V, e.Y)
		if xi < 0 || yi < 0 {
			return nil
		}
		ins.xsel, ins.ysel = xi, yi
		ins.lineShown = true
		liveplot.Debugf("inspector: selected sample (%d, %d)", xi, yi)
	case SaveHeatmap:
		return ins.saveHeatmap(e.Path)
	case SaveRow:
		return ins.saveRow(e.Path)
	case SaveCol:
		return ins.saveCol(e.Path)
	default:
		return errors.Errorf("inspect: unknown event %T", ev)
	}
	return nil
}

// nearestIndex finds the sample closest to v by absolute distance.
// Masked samples are skipped and the first of equally distant samples
// wins. It returns -1 when no sample is usable.
func nearestIndex(vals []float64, v float64) int {
	best, bestD := -1, math.Inf(1)
	for i, x := range vals {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		d := math.Abs(x - v)
		if d < bestD {
			best, bestD = i, d
		}
	}
	return best
}
