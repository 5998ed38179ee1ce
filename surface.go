package liveplot

import (
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pplcc/plotext"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/qmeas/liveplot/data"
	"github.com/qmeas/liveplot/mesh"
)

// A Surface is a live figure: a grid of subplots holding traces whose
// backing arrays keep filling while the figure is on screen. Adding a
// trace draws it once; Update re-derives every drawing artifact from
// the current array contents and re-autoscales, so a measurement loop
// can call it after each batch of points.
//
// A Surface is not safe for concurrent use. Acquisition and display
// are expected to run on one goroutine, with the arrays mutated
// between calls to Update, never during one.
type Surface struct {
	rows, cols    int
	width, height vg.Length
	style         Style

	subplots []*Subplot
	traces   []*Trace

	title        string
	defaultTitle string

	loc *data.Location

	// Redraw, when set, receives a fresh rendering at the end of
	// every Update.
	Redraw func(image.Image)
}

// An Option configures a Surface at construction, or on Clear.
type Option func(*Surface) error

// WithStyle replaces the default style.
func WithStyle(st Style) Option {
	return func(s *Surface) error {
		s.style = st
		return nil
	}
}

// WithSize fixes the figure size in inches instead of deriving it from
// the grid shape.
func WithSize(w, h float64) Option {
	return func(s *Surface) error {
		if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
			return errors.Errorf("liveplot: figure size must be a pair of positive numbers, got %v x %v", w, h)
		}
		s.width = vg.Length(w) * vg.Inch
		s.height = vg.Length(h) * vg.Inch
		return nil
	}
}

// WithLocation attaches a run location. Default save paths land in the
// location's current run directory.
func WithLocation(loc *data.Location) Option {
	return func(s *Surface) error {
		s.loc = loc
		return nil
	}
}

// WithTitle sets an explicit figure title. It sticks until it is
// changed again or the surface is cleared.
func WithTitle(title string) Option {
	return func(s *Surface) error {
		s.title = title
		return nil
	}
}

func newSurface(opts []Option) (*Surface, error) {
	s := &Surface{style: DefaultStyle(12)}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// New returns an empty surface with a rows x cols subplot grid.
func New(rows, cols int, opts ...Option) (*Surface, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.Errorf("liveplot: invalid subplot grid %d x %d", rows, cols)
	}
	s, err := newSurface(opts)
	if err != nil {
		return nil, err
	}
	s.init(rows, cols)
	return s, nil
}

// NewN returns an empty surface with count subplots, laid out row
// major with at most Style.Figure.MaxColumns side by side.
func NewN(count int, opts ...Option) (*Surface, error) {
	if count < 1 {
		return nil, errors.Errorf("liveplot: invalid subplot count %d", count)
	}
	s, err := newSurface(opts)
	if err != nil {
		return nil, err
	}
	maxc := s.style.Figure.MaxColumns
	if maxc < 1 {
		maxc = 1
	}
	rows := (count + maxc - 1) / maxc
	cols := count
	if cols > maxc {
		cols = maxc
	}
	s.init(rows, cols)
	return s, nil
}

func (s *Surface) init(rows, cols int) {
	s.rows, s.cols = rows, cols
	s.subplots = make([]*Subplot, rows*cols)
	for i := range s.subplots {
		s.subplots[i] = newSubplot(i)
	}
	if s.width == 0 || s.height == 0 {
		s.width, s.height = s.style.FigureSize(rows, cols)
	}
}

// Shape returns the subplot grid dimensions.
func (s *Surface) Shape() (rows, cols int) { return s.rows, s.cols }

// Size returns the figure size.
func (s *Surface) Size() (w, h vg.Length) { return s.width, s.height }

// Subplot returns subplot i, or nil when i is out of range.
func (s *Surface) Subplot(i int) *Subplot {
	if i < 0 || i >= len(s.subplots) {
		return nil
	}
	return s.subplots[i]
}

// Traces returns the registered traces in add order.
func (s *Surface) Traces() []*Trace { return s.traces }

// Title returns the current figure title.
func (s *Surface) Title() string { return s.title }

// SetTitle sets an explicit figure title. An explicit title sticks
// across updates; setting it to the current default title resumes
// following the traces.
func (s *Surface) SetTitle(title string) { s.title = title }

// Add registers a trace and draws it from the current array contents.
// The config is validated up front: a bad subplot index or mismatched
// array lengths fail here, before anything is drawn.
func (s *Surface) Add(cfg Config) error {
	if cfg == nil {
		return errors.New("liveplot: nil trace config")
	}
	idx := cfg.SubplotIndex()
	if idx < 0 || idx >= len(s.subplots) {
		return errors.Errorf("liveplot: subplot %d out of range, surface has %d subplots",
			idx, len(s.subplots))
	}
	sp := s.subplots[idx]
	tr := &Trace{Config: cfg}

	switch c := cfg.(type) {
	case LineConfig:
		if c.Y == nil {
			return errors.New("liveplot: line trace without y data")
		}
		if c.X != nil && c.X.Len() != c.Y.Len() {
			return errors.Errorf("liveplot: line trace with %d x and %d y samples",
				c.X.Len(), c.Y.Len())
		}
		checkExtraKeys(c.Extra, lineExtraKeys)
		sp.resolveAxisTitles(c.X, c.Y, c.XLabel, c.XUnit, c.YLabel, c.YUnit)
		s.buildLine(tr, c)
	case MeshConfig:
		if c.Z == nil {
			return errors.New("liveplot: mesh trace without z data")
		}
		rows, cols := c.Z.Dims()
		cx, cy := meshAxes(c)
		if cx != nil && cx.Len() != cols {
			return errors.Errorf("liveplot: mesh trace with %d x samples for %d columns",
				cx.Len(), cols)
		}
		if cy != nil && cy.Len() != rows {
			return errors.Errorf("liveplot: mesh trace with %d y samples for %d rows",
				cy.Len(), rows)
		}
		checkExtraKeys(c.Extra, meshExtraKeys)
		sp.resolveAxisTitles(cx, cy, c.XLabel, c.XUnit, c.YLabel, c.YUnit)
		s.drawMesh(tr, sp, c)
	default:
		return errors.Errorf("liveplot: unknown trace config %T", cfg)
	}

	s.traces = append(s.traces, tr)
	s.retitle()
	s.autoscalePass()
	return nil
}

// meshAxes resolves the cell-center axes of a mesh trace: an
// explicitly named axis wins, then a setpoint grid condensed to its
// first row or first column, then the value grid's own attached axes.
// Setpoint grids are condensed anew on every call since their
// contents keep filling while the sweep runs.
func meshAxes(c MeshConfig) (x, y *data.Array) {
	x, y = c.X, c.Y
	if x == nil && c.XGrid != nil {
		x = &data.Array{Name: c.XGrid.Name, Label: c.XGrid.Label, Unit: c.XGrid.Unit,
			V: data.FirstRow(c.XGrid.V)}
	}
	if x == nil {
		x = c.Z.X
	}
	if y == nil && c.YGrid != nil {
		y = &data.Array{Name: c.YGrid.Name, Label: c.YGrid.Label, Unit: c.YGrid.Unit,
			V: data.FirstCol(c.YGrid.V)}
	}
	if y == nil {
		y = c.Z.Y
	}
	return x, y
}

func (s *Surface) buildLine(tr *Trace, c LineConfig) {
	col := c.Color
	if col == nil {
		cycle := s.style.Line.Colors
		col = cycle[len(s.traces)%len(cycle)]
	}
	w := c.Width
	if w == 0 {
		w = s.style.Line.Width
	}
	xys := pairXYs(c.X, c.Y)
	doLine, doMarkers := parseFmt(c.Fmt)
	if doLine {
		l := &plotter.Line{XYs: xys, LineStyle: plotter.DefaultLineStyle}
		l.LineStyle.Color = col
		l.LineStyle.Width = w
		if d, ok := extraDashes(c.Extra); ok {
			l.LineStyle.Dashes = d
		}
		tr.line = l
	}
	if doMarkers {
		pts := &plotter.Scatter{XYs: xys, GlyphStyle: plotter.DefaultGlyphStyle}
		pts.GlyphStyle.Color = col
		pts.GlyphStyle.Radius = s.style.Marker.Radius
		if r, ok := extraLength(c.Extra, "markersize"); ok {
			pts.GlyphStyle.Radius = r
		}
		tr.points = pts
	}
}

// drawMesh rebuilds the mesh artifact of one heatmap trace from the
// current data. An undrawable trace, all cell values masked or either
// coordinate axis fully masked, leaves the artifact nil and must not
// create a color scale.
func (s *Surface) drawMesh(tr *Trace, sp *Subplot, c MeshConfig) {
	tr.mesh = nil
	if c.Z.AllMasked() {
		Debugf("subplot %d: heatmap has no drawable values yet", sp.index)
		return
	}
	cx, cy := meshAxes(c)
	if cx != nil && cx.AllMasked() {
		Debugf("subplot %d: heatmap x axis fully masked", sp.index)
		return
	}
	if cy != nil && cy.AllMasked() {
		Debugf("subplot %d: heatmap y axis fully masked", sp.index)
		return
	}

	var xs, ys []float64
	if cx != nil {
		xs = cx.V
	}
	if cy != nil {
		ys = cy.V
	}
	g, err := mesh.NewCentered(xs, ys, c.Z.V, nil)
	if err != nil {
		Warnf("subplot %d: %v", sp.index, err)
		return
	}

	cs := sp.ensureColorScale(s.style, c)
	g.ColorMap = cs.cmap
	g.EdgeWidth = s.style.Mesh.EdgeWidth
	if w, ok := extraLength(c.Extra, "edgewidth"); ok {
		g.EdgeWidth = w
	}
	if ec, ok := extraColor(c.Extra, "edgecolor"); ok {
		g.EdgeColor = ec
	}
	lo, hi, _ := c.Z.FiniteRange()
	cs.rescale(lo, hi)

	tr.mesh = g
	sp.meshDrawn = true
	b := unsetBounds()
	b.X.Update(g.XEdges...)
	b.Y.Update(g.YEdges...)
	sp.meshBounds.Union(b)
}

// Update re-derives all drawing artifacts from the current array
// contents: line traces get their sample data swapped in place, mesh
// traces are dropped and redrawn. Afterwards every autoscaling subplot
// refits its view and, when a Redraw hook is set, a fresh rendering is
// pushed out.
//
// Update never fails. Traces that are momentarily undrawable are
// skipped and picked up again on a later update once data arrives.
func (s *Surface) Update() {
	defer TimeTrack(time.Now(), "surface update")

	for _, sp := range s.subplots {
		sp.meshBounds = unsetBounds()
		sp.meshDrawn = false
	}
	for _, tr := range s.traces {
		sp := s.subplots[tr.Config.SubplotIndex()]
		switch c := tr.Config.(type) {
		case LineConfig:
			xys := pairXYs(c.X, c.Y)
			if tr.line != nil {
				tr.line.XYs = xys
			}
			if tr.points != nil {
				tr.points.XYs = xys
			}
		case MeshConfig:
			s.drawMesh(tr, sp, c)
		}
	}
	s.autoscalePass()

	if s.Redraw != nil {
		s.Redraw(s.Image())
	}
}

// autoscalePass refits the view limits of every autoscaling subplot.
// The box of the line data is the starting point; heatmap bounds are
// merged into it, replacing it outright when no line contributed
// anything finite.
func (s *Surface) autoscalePass() {
	lineBounds := make([]Bounds, len(s.subplots))
	for i := range lineBounds {
		lineBounds[i] = unsetBounds()
	}
	for _, tr := range s.traces {
		i := tr.Config.SubplotIndex()
		if tr.line != nil {
			lineBounds[i].Union(boundsOfXYs(tr.line.XYs))
		}
		if tr.points != nil {
			lineBounds[i].Union(boundsOfXYs(tr.points.XYs))
		}
	}
	for i, sp := range s.subplots {
		b := lineBounds[i]
		b.Union(sp.meshBounds)
		sp.applyAutoscale(b, sp.meshDrawn, s.style.Expand)
	}
}

// retitle recomputes the default title from the traces. The visible
// title follows the default until it is set to something else.
func (s *Surface) retitle() {
	prev := s.defaultTitle
	s.defaultTitle = s.deriveTitle()
	if s.title == prev {
		s.title = s.defaultTitle
	}
}

// deriveTitle joins the distinct source names of all traces.
func (s *Surface) deriveTitle() string {
	var names []string
	seen := map[string]bool{}
	for _, tr := range s.traces {
		var name string
		switch c := tr.Config.(type) {
		case LineConfig:
			name = c.Y.DisplayLabel()
		case MeshConfig:
			name = c.Z.DisplayLabel()
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

// Clear removes every trace and resets all subplot state, keeping the
// grid shape. Options may adjust style or size for the next use.
func (s *Surface) Clear(opts ...Option) error {
	return s.reshape(s.rows, s.cols, false, opts)
}

// Reshape clears the surface and rebuilds it with a new subplot grid.
// The figure size is re-derived from the new shape unless an option
// fixes it.
func (s *Surface) Reshape(rows, cols int, opts ...Option) error {
	if rows < 1 || cols < 1 {
		return errors.Errorf("liveplot: invalid subplot grid %d x %d", rows, cols)
	}
	return s.reshape(rows, cols, true, opts)
}

func (s *Surface) reshape(rows, cols int, resize bool, opts []Option) error {
	if resize {
		s.width, s.height = 0, 0
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	s.traces = nil
	s.title, s.defaultTitle = "", ""
	s.init(rows, cols)
	Debugf("surface cleared to %d x %d", rows, cols)
	return nil
}

// Render draws the whole figure onto c: the title band, then the
// subplot grid, each cell losing a strip on the right when it carries
// a color scale.
func (s *Surface) Render(c draw.Canvas) {
	if s.style.Background != nil {
		c.SetColor(s.style.Background)
		c.Fill(c.Rectangle.Path())
	}
	if s.title != "" {
		c.FillText(s.style.Title.TextStyle, vg.Point{X: c.Center().X, Y: c.Max.Y}, s.title)
		c.Max.Y -= s.style.Title.Height
	}

	plots := make([][]*plot.Plot, s.rows)
	for r := 0; r < s.rows; r++ {
		plots[r] = make([]*plot.Plot, s.cols)
		for col := 0; col < s.cols; col++ {
			plots[r][col] = s.subplotPlot(s.subplots[r*s.cols+col])
		}
	}

	tbl := plotext.Table{RowHeights: ones(s.rows), ColWidths: ones(s.cols)}
	canvases := tbl.Align(plots, c)
	for r := 0; r < s.rows; r++ {
		for col := 0; col < s.cols; col++ {
			sp := s.subplots[r*s.cols+col]
			cv := canvases[r][col]
			if sp.scale == nil {
				plots[r][col].Draw(cv)
				continue
			}
			main, strip := splitColorBar(cv, s.style)
			plots[r][col].Draw(main)
			drawColorBar(strip, sp.scale)
		}
	}
}

// subplotPlot assembles the throwaway plot.Plot for one subplot. All
// state that matters lives on the Subplot and the trace artifacts; the
// plot object itself is rebuilt for every rendering.
func (s *Surface) subplotPlot(sp *Subplot) *plot.Plot {
	p := plot.New()
	p.X.Label.Text = sp.xTitle
	p.Y.Label.Text = sp.yTitle
	for _, tr := range s.traces {
		if tr.Config.SubplotIndex() != sp.index {
			continue
		}
		if tr.mesh != nil {
			p.Add(tr.mesh)
		}
		if tr.line != nil {
			p.Add(tr.line)
		}
		if tr.points != nil {
			p.Add(tr.points)
		}
	}
	xl := sp.xLimits.deDegenerate()
	yl := sp.yLimits.deDegenerate()
	p.X.Min, p.X.Max = xl.Min, xl.Max
	p.Y.Min, p.Y.Max = yl.Min, yl.Max
	return p
}

func splitColorBar(cv draw.Canvas, st Style) (main, strip draw.Canvas) {
	main, strip = cv, cv
	main.Max.X -= st.ColorBar.Width + st.ColorBar.Pad
	strip.Min.X = main.Max.X + st.ColorBar.Pad
	return main, strip
}

func drawColorBar(strip draw.Canvas, cs *ColorScale) {
	cb := &plotter.ColorBar{ColorMap: cs.cmap}
	cb.Vertical = true
	p := plot.New()
	p.Add(cb)
	p.HideX()
	p.Y.Label.Text = cs.title
	p.Draw(strip)
}

// Image renders the figure into a fresh raster image.
func (s *Surface) Image() image.Image {
	defer TimeTrack(time.Now(), "surface render")
	c := vgimg.NewWith(vgimg.UseWH(s.width, s.height), vgimg.UseDPI(int(s.style.Figure.DPI)))
	s.Render(draw.New(c))
	return c.Image()
}

// Save writes the figure to path. The format follows the extension,
// .png or .pdf. An empty path derives "<title>.png" from the default
// trace-derived title, even while a custom title is displayed, and
// places it in the run directory when the surface has a location.
func (s *Surface) Save(path string) error {
	if path == "" {
		name := s.defaultTitle
		if name == "" {
			name = "plot"
		}
		if s.loc != nil {
			path = s.loc.FilePath(name + ".png")
		} else {
			path = name + ".png"
		}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		c := vgimg.PngCanvas{
			Canvas: vgimg.NewWith(vgimg.UseWH(s.width, s.height), vgimg.UseDPI(int(s.style.Figure.DPI))),
		}
		s.Render(draw.New(c.Canvas))
		return writeCanvas(path, c)
	case ".pdf":
		c := vgpdf.New(s.width, s.height)
		s.Render(draw.New(c))
		return writeCanvas(path, c)
	default:
		return errors.Errorf("liveplot: unsupported image format %q", filepath.Ext(path))
	}
}

func writeCanvas(path string, c io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "liveplot: save")
	}
	defer f.Close()
	if _, err := c.WriteTo(f); err != nil {
		return errors.Wrapf(err, "liveplot: save %s", path)
	}
	Infof("saved %s", path)
	return nil
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
