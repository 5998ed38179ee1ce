package inspect

import (
	"image"
	"image/color"
	"math"
	"os"
	"strconv"
	"testing"

	"github.com/qmeas/liveplot"
	"github.com/qmeas/liveplot/data"
)

var nan = math.NaN()

func equal64(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= 1e-9
}

// testGrid returns a 3x5 sweep with distinct cell values r*5+c.
func testGrid() *data.Grid {
	g := data.NewGrid("cond", 3, 5)
	g.Label = "Conductance"
	g.Unit = "e^2/h"
	g.X = &data.Array{Name: "gate", Label: "Gate", Unit: "V", V: []float64{0, 2, 4, 6, 8}}
	g.Y = &data.Array{Name: "bias", Label: "Bias", Unit: "mV", V: []float64{0, 5, 10}}
	for r := 0; r < 3; r++ {
		for c := 0; c < 5; c++ {
			g.Set(r, c, float64(r*5+c))
		}
	}
	return g
}

var newValidationTests = []struct {
	name string
	grid func() *data.Grid
}{
	{"nil grid", func() *data.Grid { return nil }},
	{"no x axis", func() *data.Grid { g := testGrid(); g.X = nil; return g }},
	{"no y axis", func() *data.Grid { g := testGrid(); g.Y = nil; return g }},
	{"x too short", func() *data.Grid { g := testGrid(); g.X = data.NewArray("gate", 4); return g }},
	{"y too long", func() *data.Grid { g := testGrid(); g.Y = data.NewArray("bias", 7); return g }},
}

func TestNewValidation(t *testing.T) {
	for i, tt := range newValidationTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if _, err := New(tt.grid()); err == nil {
				t.Errorf("%s: expected an error", tt.name)
			}
		})
	}
}

func TestStateMachine(t *testing.T) {
	ins, err := New(testGrid())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s := ins.State(); s != HeatmapOnly {
		t.Fatalf("initial state %v", s)
	}
	if _, _, ok := ins.Selection(); ok {
		t.Fatalf("selection before any click")
	}

	// Panels default to cross-section mode, empty until a click.
	ins.HandleEvent(TogglePanels{Show: true})
	if s := ins.State(); s != PanelsCross {
		t.Fatalf("state after showing panels: %v", s)
	}
	ins.HandleEvent(Click{X: 3.0, Y: 7.0})
	xi, yi, ok := ins.Selection()
	if !ok || xi != 1 || yi != 1 {
		t.Fatalf("selection after click = (%d, %d, %v), want (1, 1, true)", xi, yi, ok)
	}

	// Any toggle tears the lines down.
	ins.HandleEvent(ToggleSum{Sum: true})
	if s := ins.State(); s != PanelsSum {
		t.Fatalf("state after sum toggle: %v", s)
	}
	if _, _, ok := ins.Selection(); ok {
		t.Errorf("selection survived the sum toggle")
	}
	ins.HandleEvent(ToggleSum{Sum: false})
	if _, _, ok := ins.Selection(); ok {
		t.Errorf("panels are not empty after returning to cross mode")
	}

	ins.HandleEvent(Click{X: 8.5, Y: -1})
	if xi, yi, ok := ins.Selection(); !ok || xi != 4 || yi != 0 {
		t.Fatalf("selection = (%d, %d, %v), want (4, 0, true)", xi, yi, ok)
	}
	ins.HandleEvent(TogglePanels{Show: false})
	if s := ins.State(); s != HeatmapOnly {
		t.Fatalf("state after hiding panels: %v", s)
	}
	if _, _, ok := ins.Selection(); ok {
		t.Errorf("selection survived hiding the panels")
	}
}

func TestClickIgnored(t *testing.T) {
	ins, err := New(testGrid())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Heatmap only.
	ins.HandleEvent(Click{X: 3, Y: 7})
	if _, _, ok := ins.Selection(); ok {
		t.Errorf("click landed without panels")
	}

	// Sum mode.
	ins.HandleEvent(TogglePanels{Show: true})
	ins.HandleEvent(ToggleSum{Sum: true})
	ins.HandleEvent(Click{X: 3, Y: 7})
	if _, _, ok := ins.Selection(); ok {
		t.Errorf("click landed in sum mode")
	}
}

var nearestIndexTests = []struct {
	vals []float64
	v    float64
	want int
}{
	{[]float64{0, 2, 4, 6, 8}, 3, 1}, // exact tie, the first one wins
	{[]float64{0, 5, 10}, 7, 1},
	{[]float64{0, 2, 4}, -100, 0},
	{[]float64{0, 2, 4}, 100, 2},
	{[]float64{nan, 2, 4}, 0, 1},
	{[]float64{8, 6, 4, 2}, 3, 2}, // ties on a descending axis too
	{[]float64{8, 6, 4, 2}, 2.9, 3},
	{[]float64{nan, nan}, 1, -1},
	{nil, 1, -1},
}

func TestNearestIndex(t *testing.T) {
	for i, tt := range nearestIndexTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if got := nearestIndex(tt.vals, tt.v); got != tt.want {
				t.Errorf("nearestIndex(%v, %g) = %d, want %d", tt.vals, tt.v, got, tt.want)
			}
		})
	}
}

var valueSpanTests = []struct {
	max    float64
	ok     bool
	lo, hi float64
}{
	{10, true, 0, 10.5},
	{-4, true, -4.2, 0},
	{0, true, 0, 1},
	{5, false, 0, 1},
}

func TestValueSpan(t *testing.T) {
	for i, tt := range valueSpanTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			lo, hi := valueSpan(tt.max, tt.ok)
			if !equal64(lo, tt.lo) || !equal64(hi, tt.hi) {
				t.Errorf("valueSpan(%g, %v) = (%g, %g), want (%g, %g)",
					tt.max, tt.ok, lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

var rangeOfTests = []struct {
	vals []float64
	want liveplot.Interval
}{
	{[]float64{3, 1, 2}, liveplot.Interval{Min: 1, Max: 3}},
	{[]float64{2, 2, 2}, liveplot.Interval{Min: 1.5, Max: 2.5}},
	{[]float64{nan, 4, nan, 6}, liveplot.Interval{Min: 4, Max: 6}},
	{[]float64{nan, nan}, liveplot.Interval{Min: -1, Max: 1}},
	{nil, liveplot.Interval{Min: -1, Max: 1}},
}

func TestRangeOf(t *testing.T) {
	for i, tt := range rangeOfTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := rangeOf(tt.vals)
			if !equal64(got.Min, tt.want.Min) || !equal64(got.Max, tt.want.Max) {
				t.Errorf("rangeOf(%v) = %v, want %v", tt.vals, got, tt.want)
			}
		})
	}
}

func TestGeometryMapping(t *testing.T) {
	g := Geometry{
		Frame:   image.Rect(0, 0, 800, 600),
		Heatmap: image.Rect(100, 50, 700, 500),
		XRange:  liveplot.Interval{Min: 0, Max: 8},
		YRange:  liveplot.Interval{Min: 0, Max: 10},
	}

	x, y, ok := g.DataAt(400, 275)
	if !ok || !equal64(x, 4) || !equal64(y, 5) {
		t.Errorf("DataAt(400, 275) = (%g, %g, %v), want (4, 5, true)", x, y, ok)
	}
	// The top edge in pixels is the data maximum.
	if x, y, ok = g.DataAt(100, 50); !ok || !equal64(x, 0) || !equal64(y, 10) {
		t.Errorf("DataAt(100, 50) = (%g, %g, %v), want (0, 10, true)", x, y, ok)
	}
	if _, _, ok = g.DataAt(99, 275); ok {
		t.Errorf("DataAt left of the heatmap reported ok")
	}
	if _, _, ok = g.DataAt(400, 500); ok {
		t.Errorf("DataAt below the heatmap reported ok")
	}

	px, py, ok := g.PixelAt(4, 5)
	if !ok || px != 400 || py != 275 {
		t.Errorf("PixelAt(4, 5) = (%d, %d, %v), want (400, 275, true)", px, py, ok)
	}
	if _, _, ok = g.PixelAt(20, 5); ok {
		t.Errorf("PixelAt outside the data range reported ok")
	}
}

func TestFrameGeometry(t *testing.T) {
	ins, err := New(testGrid(), WithSize(4, 3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img := ins.Frame()
	if img.Bounds().Empty() {
		t.Fatalf("empty frame")
	}
	geom := ins.Geometry()
	if geom.Frame != img.Bounds() {
		t.Errorf("geometry frame %v does not match image bounds %v", geom.Frame, img.Bounds())
	}
	if geom.Heatmap.Empty() || !geom.Heatmap.In(geom.Frame) {
		t.Fatalf("heatmap area %v outside frame %v", geom.Heatmap, geom.Frame)
	}
	if !equal64(geom.XRange.Min, 0) || !equal64(geom.XRange.Max, 8) {
		t.Errorf("x range %v, want [0, 8]", geom.XRange)
	}
	if !equal64(geom.YRange.Min, 0) || !equal64(geom.YRange.Max, 10) {
		t.Errorf("y range %v, want [0, 10]", geom.YRange)
	}

	// With the panels on the heatmap shrinks into the top left cell.
	full := geom.Heatmap
	ins.HandleEvent(TogglePanels{Show: true})
	if ins.Frame().Bounds() != geom.Frame {
		t.Errorf("frame size changed with panels")
	}
	quarter := ins.Geometry().Heatmap
	if quarter.Dx() >= full.Dx() || quarter.Dy() >= full.Dy() {
		t.Errorf("heatmap area %v did not shrink from %v", quarter, full)
	}

	// Cross-section frames render with and without a selection.
	ins.Frame()
	ins.HandleEvent(Click{X: 3, Y: 7})
	ins.Frame()
}

func TestAnnotate(t *testing.T) {
	ins, err := New(testGrid(), WithSize(4, 3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	img := ins.Frame()
	geom := ins.Geometry()

	out := Annotate(img, geom, 4, 5)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("annotated bounds %v, want %v", out.Bounds(), img.Bounds())
	}
	_, py, ok := geom.PixelAt(4, 5)
	if !ok {
		t.Fatalf("cursor position left the heatmap")
	}
	if got := out.RGBAAt(geom.Heatmap.Min.X, py); got != crosshairColor {
		t.Errorf("no crosshair at the heatmap edge, got %v", got)
	}

	// Outside the data area the frame comes back untouched.
	plain := Annotate(img, geom, 100, 100)
	if got := plain.RGBAAt(geom.Heatmap.Min.X, py); got == crosshairColor {
		t.Errorf("crosshair drawn for an off-grid position")
	}
}

// Panel value limits depend on the mode, not on the selection, so
// toggling away and back lands on identical axes.
func TestPanelLimitsStable(t *testing.T) {
	ins, err := New(testGrid())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ins.HandleEvent(TogglePanels{Show: true})
	ins.HandleEvent(ToggleSum{Sum: true})

	sum := ins.rowPanel()
	if !equal64(sum.X.Min, 0) || !equal64(sum.X.Max, 63) {
		t.Fatalf("sum limits = [%g, %g], want [0, 63]", sum.X.Min, sum.X.Max)
	}

	// Cross mode pins the value axis to the full data range even
	// before the first click.
	ins.HandleEvent(ToggleSum{Sum: false})
	before := ins.rowPanel()
	if before.Title.Text != "" {
		t.Errorf("cross panel titled %q before any click", before.Title.Text)
	}
	if !equal64(before.X.Min, 0) || !equal64(before.X.Max, 14.7) {
		t.Errorf("cross limits = [%g, %g], want [0, 14.7]", before.X.Min, before.X.Max)
	}

	ins.HandleEvent(Click{X: 3, Y: 7})
	after := ins.rowPanel()
	if after.Title.Text != "Gate = 2" {
		t.Errorf("cross panel title = %q, want %q", after.Title.Text, "Gate = 2")
	}
	if !equal64(after.X.Min, before.X.Min) || !equal64(after.X.Max, before.X.Max) {
		t.Errorf("click moved the value axis from [%g, %g] to [%g, %g]",
			before.X.Min, before.X.Max, after.X.Min, after.X.Max)
	}

	// Back in sum mode the limits reproduce exactly.
	ins.HandleEvent(ToggleSum{Sum: true})
	again := ins.rowPanel()
	if again.X.Min != sum.X.Min || again.X.Max != sum.X.Max {
		t.Errorf("sum limits drifted to [%g, %g]", again.X.Min, again.X.Max)
	}
}

func TestFrameMarksSelection(t *testing.T) {
	ins, err := New(testGrid(), WithSize(4, 3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	at := func(m image.Image, x, y int) color.RGBA {
		return color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
	}

	ins.HandleEvent(TogglePanels{Show: true})
	img := ins.Frame()
	geom := ins.Geometry()
	_, py, ok := geom.PixelAt(2, 5)
	if !ok {
		t.Fatalf("cell (2, 5) left the heatmap")
	}
	if at(img, geom.Heatmap.Min.X, py) == crosshairColor {
		t.Fatalf("selection mark drawn before any click")
	}

	ins.HandleEvent(Click{X: 3, Y: 7})
	img = ins.Frame()
	geom = ins.Geometry()
	px, py, ok := geom.PixelAt(2, 5)
	if !ok {
		t.Fatalf("cell (2, 5) left the heatmap")
	}
	if got := at(img, geom.Heatmap.Min.X, py); got != crosshairColor {
		t.Errorf("no mark on the selected row, got %v", got)
	}
	if got := at(img, px, geom.Heatmap.Min.Y); got != crosshairColor {
		t.Errorf("no mark on the selected column, got %v", got)
	}
}

func TestSaveDefaults(t *testing.T) {
	dir := t.TempDir()
	loc, err := data.NewLocation(dir, "sample")
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}
	if _, err := loc.NextRun(); err != nil {
		t.Fatalf("NextRun: %v", err)
	}
	ins, err := New(testGrid(), WithTitle("demo"), WithLocation(loc))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := ins.HandleEvent(SaveHeatmap{}); err != nil {
		t.Fatalf("save heatmap: %v", err)
	}
	if _, err := os.Stat(loc.FilePath("demo heatmap.pdf")); err != nil {
		t.Errorf("heatmap file: %v", err)
	}

	// Panel saves need panels.
	if err := ins.HandleEvent(SaveRow{}); err == nil {
		t.Errorf("row save succeeded without panels")
	}

	ins.HandleEvent(TogglePanels{Show: true})
	ins.HandleEvent(ToggleSum{Sum: true})
	if err := ins.HandleEvent(SaveRow{}); err != nil {
		t.Fatalf("save sum panel: %v", err)
	}
	if _, err := os.Stat(loc.FilePath("demo sum over Gate.pdf")); err != nil {
		t.Errorf("sum panel file: %v", err)
	}

	// A cross-section save without a click has nothing to name.
	ins.HandleEvent(ToggleSum{Sum: false})
	if err := ins.HandleEvent(SaveCol{}); err == nil {
		t.Errorf("cross-section save succeeded without a selection")
	}
	ins.HandleEvent(Click{X: 3, Y: 7})
	if err := ins.HandleEvent(SaveCol{}); err != nil {
		t.Fatalf("save cross section: %v", err)
	}
	if _, err := os.Stat(loc.FilePath("demo cross section Bias = 5.pdf")); err != nil {
		t.Errorf("cross-section file: %v", err)
	}
}
