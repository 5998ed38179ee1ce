package inspect

import (
	"fmt"
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

	"github.com/qmeas/liveplot"
	"github.com/qmeas/liveplot/data"
	"github.com/qmeas/liveplot/mesh"
)

// Geometry locates the heatmap's data area within a rendered frame,
// in image pixel coordinates with y growing downward, together with
// the data intervals the area spans.
type Geometry struct {
	Frame   image.Rectangle
	Heatmap image.Rectangle
	XRange  liveplot.Interval
	YRange  liveplot.Interval
}

// DataAt maps a frame pixel to data coordinates. ok is false outside
// the heatmap's data area.
func (g Geometry) DataAt(px, py int) (x, y float64, ok bool) {
	if !image.Pt(px, py).In(g.Heatmap) {
		return 0, 0, false
	}
	dx, dy := g.pixelIntervals()
	x = liveplot.Linear.Inverse(g.XRange, dx, float64(px))
	y = liveplot.Linear.Inverse(g.YRange, dy, float64(py))
	return x, y, true
}

// PixelAt maps data coordinates to a frame pixel. ok is false outside
// the heatmap's data area.
func (g Geometry) PixelAt(x, y float64) (px, py int, ok bool) {
	dx, dy := g.pixelIntervals()
	px = int(math.Round(liveplot.Linear.Map(g.XRange, dx, x)))
	py = int(math.Round(liveplot.Linear.Map(g.YRange, dy, y)))
	return px, py, image.Pt(px, py).In(g.Heatmap)
}

// pixelIntervals returns the heatmap's pixel extent per axis. The y
// interval is stored inverted so that the linear transform flips
// between image rows and upward-growing data coordinates.
func (g Geometry) pixelIntervals() (dx, dy liveplot.Interval) {
	dx = liveplot.Interval{Min: float64(g.Heatmap.Min.X), Max: float64(g.Heatmap.Max.X)}
	dy = liveplot.Interval{Min: float64(g.Heatmap.Max.Y), Max: float64(g.Heatmap.Min.Y)}
	return dx, dy
}

// Frame renders the current state into a raster image and records its
// geometry. Every frame is rebuilt from scratch; nothing carries over
// from the previous one.
func (ins *Inspector) Frame() image.Image {
	defer liveplot.TimeTrack(time.Now(), "inspector frame")

	c := vgimg.NewWith(vgimg.UseWH(ins.width, ins.height), vgimg.UseDPI(int(ins.style.Figure.DPI)))
	dc := draw.New(c)
	if ins.style.Background != nil {
		dc.SetColor(ins.style.Background)
		dc.Fill(dc.Rectangle.Path())
	}

	heat := ins.heatPlot()
	var heatCell draw.Canvas
	if !ins.panels {
		heat.Draw(dc)
		heatCell = dc
	} else {
		row := ins.rowPanel()
		col := ins.colPanel()
		blank := plot.New()
		blank.HideAxes()

		plotext.UniteAxisRanges([]*plot.Axis{&heat.X, &col.X})
		plotext.UniteAxisRanges([]*plot.Axis{&heat.Y, &row.Y})

		plots := [][]*plot.Plot{{heat, row}, {col, blank}}
		tbl := plotext.Table{RowHeights: []float64{1, 1}, ColWidths: []float64{1, 1}}
		cells := tbl.Align(plots, dc)
		heat.Draw(cells[0][0])
		row.Draw(cells[0][1])
		col.Draw(cells[1][0])
		heatCell = cells[0][0]
	}

	img := c.Image()
	ins.geom = ins.computeGeometry(heat, heatCell, img.Bounds())
	if ins.State() == PanelsCross && ins.lineShown {
		markSelection(img, ins.geom, ins.grid.X.V[ins.xsel], ins.grid.Y.V[ins.ysel])
	}
	return img
}

// Geometry returns the geometry of the last rendered frame.
func (ins *Inspector) Geometry() Geometry { return ins.geom }

func (ins *Inspector) computeGeometry(heat *plot.Plot, cell draw.Canvas, b image.Rectangle) Geometry {
	dataC := heat.DataCanvas(cell)
	sx := float64(b.Dx()) / ins.width.Points()
	sy := float64(b.Dy()) / ins.height.Points()
	x0 := int(math.Round(dataC.Min.X.Points() * sx))
	x1 := int(math.Round(dataC.Max.X.Points() * sx))
	yTop := b.Dy() - int(math.Round(dataC.Max.Y.Points()*sy))
	yBot := b.Dy() - int(math.Round(dataC.Min.Y.Points()*sy))
	return Geometry{
		Frame:   b,
		Heatmap: image.Rect(x0, yTop, x1, yBot),
		XRange:  liveplot.Interval{Min: heat.X.Min, Max: heat.X.Max},
		YRange:  liveplot.Interval{Min: heat.Y.Min, Max: heat.Y.Max},
	}
}

// heatPlot builds the heatmap panel. The dataset's coordinates are
// used as cell corners directly, so the final row and column of
// values stay undrawn, and the view hugs the coordinate range.
func (ins *Inspector) heatPlot() *plot.Plot {
	g := ins.grid
	p := plot.New()
	p.X.Label.Text = g.X.DisplayLabel()
	p.Y.Label.Text = g.Y.DisplayLabel()

	if !g.AllMasked() {
		cm := ins.style.Mesh.Palette()
		m, err := mesh.NewCorners(g.X.V, g.Y.V, g.V, cm)
		if err == nil {
			lo, hi, _ := g.FiniteRange()
			if lo == hi {
				lo, hi = lo-0.5, hi+0.5
			}
			cm.SetMin(lo)
			cm.SetMax(hi)
			m.EdgeWidth = ins.style.Mesh.EdgeWidth
			p.Add(m)
		}
	}

	xl := rangeOf(g.X.V)
	yl := rangeOf(g.Y.V)
	p.X.Min, p.X.Max = xl.Min, xl.Max
	p.Y.Min, p.Y.Max = yl.Min, yl.Max
	return p
}

// rowPanel builds the vertical panel: the value axis runs along x and
// the dataset's y axis runs along y. In sum mode it shows the sum of
// every row; in cross mode the clicked column, or nothing before the
// first click. The value axis is pinned per mode, not per click, so
// the view stays comparable across clicks.
func (ins *Inspector) rowPanel() *plot.Plot {
	g := ins.grid
	p := plot.New()
	p.Y.Label.Text = g.Y.DisplayLabel()

	if ins.sum {
		p.X.Label.Text = "sum of " + g.DisplayLabel()
		sums := g.SumOverX()
		addPanelLine(p, pairFinite(sums, g.Y.V), ins.style)
		max, ok := data.MaxOf(sums)
		p.X.Min, p.X.Max = valueSpan(max, ok)
	} else {
		p.X.Label.Text = g.DisplayLabel()
		if ins.lineShown {
			addPanelLine(p, pairFinite(g.Col(ins.xsel), g.Y.V), ins.style)
			p.Title.Text = fmt.Sprintf("%s = %g", g.X.DisplayLabel(), g.X.V[ins.xsel])
		}
		_, zmax, ok := g.FiniteRange()
		p.X.Min, p.X.Max = valueSpan(zmax, ok)
	}

	yl := rangeOf(g.Y.V)
	p.Y.Min, p.Y.Max = yl.Min, yl.Max
	return p
}

// colPanel builds the horizontal panel: the dataset's x axis runs
// along x and the value axis along y.
func (ins *Inspector) colPanel() *plot.Plot {
	g := ins.grid
	p := plot.New()
	p.X.Label.Text = g.X.DisplayLabel()

	if ins.sum {
		p.Y.Label.Text = "sum of " + g.DisplayLabel()
		sums := g.SumOverY()
		addPanelLine(p, pairFinite(g.X.V, sums), ins.style)
		max, ok := data.MaxOf(sums)
		p.Y.Min, p.Y.Max = valueSpan(max, ok)
	} else {
		p.Y.Label.Text = g.DisplayLabel()
		if ins.lineShown {
			addPanelLine(p, pairFinite(g.X.V, g.Row(ins.ysel)), ins.style)
			p.Title.Text = fmt.Sprintf("%s = %g", g.Y.DisplayLabel(), g.Y.V[ins.ysel])
		}
		_, zmax, ok := g.FiniteRange()
		p.Y.Min, p.Y.Max = valueSpan(zmax, ok)
	}

	xl := rangeOf(g.X.V)
	p.X.Min, p.X.Max = xl.Min, xl.Max
	return p
}

func addPanelLine(p *plot.Plot, xys plotter.XYs, st liveplot.Style) {
	if len(xys) == 0 {
		return
	}
	l := &plotter.Line{XYs: xys, LineStyle: plotter.DefaultLineStyle}
	l.LineStyle.Color = st.Line.Colors[0]
	l.LineStyle.Width = st.Line.Width
	pts := &plotter.Scatter{XYs: xys, GlyphStyle: plotter.DefaultGlyphStyle}
	pts.GlyphStyle.Color = st.Line.Colors[0]
	pts.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(l, pts)
}

// pairFinite zips two sample slices into drawable points, skipping
// pairs with a masked member.
func pairFinite(xs, ys []float64) plotter.XYs {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	xys := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsInf(xs[i], 0) || math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: xs[i], Y: ys[i]})
	}
	return xys
}

// valueSpan returns the pinned value-axis limits, zero to 1.05 times
// the data maximum, ordered for negative maxima.
func valueSpan(max float64, ok bool) (lo, hi float64) {
	if !ok || max == 0 {
		return 0, 1
	}
	hi = 1.05 * max
	if hi < 0 {
		return hi, 0
	}
	return 0, hi
}

// rangeOf returns the finite range of vals, widened when degenerate so
// an axis can display it.
func rangeOf(vals []float64) liveplot.Interval {
	i := liveplot.Interval{Min: math.NaN(), Max: math.NaN()}
	i.Update(vals...)
	if !i.Valid() {
		return liveplot.Interval{Min: -1, Max: 1}
	}
	if i.Min == i.Max {
		return liveplot.Interval{Min: i.Min - 0.5, Max: i.Max + 0.5}
	}
	return i
}

// ----------------------------------------------------------------------------
// Saving

func (ins *Inspector) saveHeatmap(path string) error {
	w, h := ins.width, ins.height
	if ins.panels {
		w, h = w/2, h/2
	}
	if path == "" {
		path = ins.savePath(strings.TrimSpace(ins.title + " heatmap"))
	}
	return writePlot(path, ins.heatPlot(), w, h)
}

func (ins *Inspector) saveRow(path string) error {
	if !ins.panels {
		return errors.New("inspect: no panel to save")
	}
	if path == "" {
		name, err := ins.panelName(ins.grid.X, ins.xsel)
		if err != nil {
			return err
		}
		path = ins.savePath(name)
	}
	return writePlot(path, ins.rowPanel(), ins.width/2, ins.height/2)
}

func (ins *Inspector) saveCol(path string) error {
	if !ins.panels {
		return errors.New("inspect: no panel to save")
	}
	if path == "" {
		name, err := ins.panelName(ins.grid.Y, ins.ysel)
		if err != nil {
			return err
		}
		path = ins.savePath(name)
	}
	return writePlot(path, ins.colPanel(), ins.width/2, ins.height/2)
}

// panelName derives the save name of one panel from the current mode,
// "<title> sum over <label>" or "<title> cross section <label> = <value>".
func (ins *Inspector) panelName(axis *data.Array, sel int) (string, error) {
	if ins.sum {
		return strings.TrimSpace(fmt.Sprintf("%s sum over %s", ins.title, axis.DisplayLabel())), nil
	}
	if !ins.lineShown {
		return "", errors.New("inspect: no cross section selected")
	}
	return strings.TrimSpace(fmt.Sprintf("%s cross section %s = %g",
		ins.title, axis.DisplayLabel(), axis.V[sel])), nil
}

func (ins *Inspector) savePath(name string) string {
	if name == "" {
		name = "panel"
	}
	if ins.loc != nil {
		return ins.loc.FilePath(name + ".pdf")
	}
	return name + ".pdf"
}

func writePlot(path string, p *plot.Plot, w, h vg.Length) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		c := vgpdf.New(w, h)
		p.Draw(draw.New(c))
		return writeTo(path, c)
	case ".png":
		c := vgimg.PngCanvas{Canvas: vgimg.New(w, h)}
		p.Draw(draw.New(c.Canvas))
		return writeTo(path, c)
	default:
		return errors.Errorf("inspect: unsupported image format %q", filepath.Ext(path))
	}
}

func writeTo(path string, wt io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "inspect: save")
	}
	defer f.Close()
	if _, err := wt.WriteTo(f); err != nil {
		return errors.Wrapf(err, "inspect: save %s", path)
	}
	liveplot.Infof("saved %s", path)
	return nil
}
