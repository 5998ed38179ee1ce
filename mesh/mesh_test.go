package mesh

import (
	"math"
	"strconv"
	"testing"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var nan = math.NaN()

func equal64(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}

func equalSlice(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equal64(a[i], b[i]) {
			return false
		}
	}
	return true
}

var edgesTests = []struct {
	centers []float64
	want    []float64
}{
	// Uniform spacing: edges at the midpoints, half a step beyond the
	// ends, spacing preserved exactly.
	{[]float64{0, 2, 4, 6}, []float64{-1, 1, 3, 5, 7}},
	{[]float64{10, 20}, []float64{5, 15, 25}},
	// Non-uniform spacing.
	{[]float64{0, 1, 4}, []float64{-0.5, 0.5, 1.5, 5.5}},
	// Descending axes work the same way.
	{[]float64{8, 6, 4}, []float64{9, 7, 5, 3}},
	// Fewer than two usable samples: the lone cell gets unit width.
	{[]float64{3}, []float64{2.5, 3.5}},
	{[]float64{3, nan, nan}, []float64{2.5, 3.5, nan, nan}},
	// A masked sample poisons every edge computed from it, including
	// the left boundary extrapolated across it.
	{[]float64{0, nan, 2, 4}, []float64{nan, nan, nan, nan, 5}},
	// Fully masked input stays masked end to end.
	{[]float64{nan, nan}, []float64{nan, nan, nan}},
	// Empty input has no cells.
	{nil, nil},
}

func TestEdges(t *testing.T) {
	for i, tc := range edgesTests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := Edges(tc.centers)
			if tc.centers != nil && len(got) != len(tc.centers)+1 {
				t.Fatalf("Edges(%v) has %d edges, want %d",
					tc.centers, len(got), len(tc.centers)+1)
			}
			if !equalSlice(got, tc.want) {
				t.Errorf("Edges(%v) = %v, want %v", tc.centers, got, tc.want)
			}
		})
	}
}

// Every usable sample must end up strictly inside its own cell.
func TestEdgesContainment(t *testing.T) {
	centers := []float64{-2, 0, 1.5, 3, 10}
	e := Edges(centers)
	for i, c := range centers {
		if !(e[i] < c && c < e[i+1]) {
			t.Errorf("center %v not inside cell [%v, %v]", c, e[i], e[i+1])
		}
	}
}

func TestUnitEdges(t *testing.T) {
	if got := UnitEdges(3); !equalSlice(got, []float64{0, 1, 2, 3}) {
		t.Errorf("UnitEdges(3) = %v", got)
	}
}

func TestNewCenteredShape(t *testing.T) {
	z := [][]float64{{1, 2, 3}, {4, 5, 6}}
	g, err := NewCentered([]float64{0, 1, 2}, []float64{0, 1}, z, moreland.ExtendedBlackBody())
	if err != nil {
		t.Fatal(err)
	}
	if len(g.XEdges) != 4 || len(g.YEdges) != 3 {
		t.Errorf("edge lengths %d, %d, want 4, 3", len(g.XEdges), len(g.YEdges))
	}

	if _, err := NewCentered([]float64{0, 1}, nil, z, moreland.ExtendedBlackBody()); err == nil {
		t.Error("expected error for too short x")
	}
	if _, err := NewCentered(nil, []float64{0, 1, 2}, z, moreland.ExtendedBlackBody()); err == nil {
		t.Error("expected error for too long y")
	}

	// Without axes the cells sit on the integer grid.
	g, err = NewCentered(nil, nil, z, moreland.ExtendedBlackBody())
	if err != nil {
		t.Fatal(err)
	}
	if !equalSlice(g.XEdges, []float64{0, 1, 2, 3}) || !equalSlice(g.YEdges, []float64{0, 1, 2}) {
		t.Errorf("implicit edges = %v, %v", g.XEdges, g.YEdges)
	}
}

func TestNewCorners(t *testing.T) {
	z := [][]float64{{1, 2}, {3, 4}}
	g, err := NewCorners([]float64{0, 1}, []float64{0, 1}, z, moreland.ExtendedBlackBody())
	if err != nil {
		t.Fatal(err)
	}
	// Coordinates pass through untouched.
	if !equalSlice(g.XEdges, []float64{0, 1}) {
		t.Errorf("XEdges = %v", g.XEdges)
	}
	if _, err := NewCorners([]float64{0}, []float64{0, 1}, z, moreland.ExtendedBlackBody()); err == nil {
		t.Error("expected error for short corner axis")
	}
}

func TestZRange(t *testing.T) {
	g := &Grid{Z: [][]float64{{nan, 2}, {-1, nan}}}
	lo, hi, ok := g.ZRange()
	if !ok || lo != -1 || hi != 2 {
		t.Errorf("ZRange = %v, %v, %v, want -1, 2, true", lo, hi, ok)
	}
	g = &Grid{Z: [][]float64{{nan}, {nan}}}
	if _, _, ok := g.ZRange(); ok {
		t.Error("all-masked grid must have no value range")
	}
}

func TestDataRangeSkipsMasked(t *testing.T) {
	g := &Grid{
		XEdges: []float64{nan, 1, 2},
		YEdges: []float64{0, 5},
	}
	xmin, xmax, ymin, ymax := g.DataRange()
	if xmin != 1 || xmax != 2 || ymin != 0 || ymax != 5 {
		t.Errorf("DataRange = %v, %v, %v, %v", xmin, xmax, ymin, ymax)
	}
}

// Drawing must cope with masked cells and masked edges.
func TestGridPlot(t *testing.T) {
	z := [][]float64{
		{1, nan, 3},
		{4, 5, 6},
	}
	cm := moreland.ExtendedBlackBody()
	g, err := NewCentered([]float64{0, 1, 2}, []float64{0, 1}, z, cm)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi, _ := g.ZRange()
	cm.SetMin(lo)
	cm.SetMax(hi)
	g.EdgeWidth = vg.Points(0.3)

	p := plot.New()
	p.Add(g)
	img := vgimg.New(3*vg.Inch, 2*vg.Inch)
	p.Draw(draw.New(img))
}
