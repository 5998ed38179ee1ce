// Package data holds the measurement arrays a live plot draws from.
//
// Arrays are preallocated to their final size before a sweep starts and
// filled in as points arrive. Samples not yet measured, and samples the
// instrument rejected, are NaN. All consumers in this module treat NaN
// as "masked": masked samples are skipped when summing, ranging and
// drawing.
package data

import "math"

// Array is a one-dimensional measurement column: a sweep axis or a
// measured quantity. Label and Unit are optional display metadata.
type Array struct {
	Name  string
	Label string
	Unit  string
	V     []float64
}

// NewArray returns an n-element array with every sample masked.
func NewArray(name string, n int) *Array {
	v := make([]float64, n)
	for i := range v {
		v[i] = math.NaN()
	}
	return &Array{Name: name, V: v}
}

func (a *Array) Len() int { return len(a.V) }

// Set stores one sample. Index errors panic like any slice access.
func (a *Array) Set(i int, v float64) { a.V[i] = v }

// AllMasked reports whether the array contains no finite sample.
// An empty array counts as all masked.
func (a *Array) AllMasked() bool { return countFinite(a.V) == 0 }

// Filled returns the number of finite samples.
func (a *Array) Filled() int { return countFinite(a.V) }

// FiniteRange returns the smallest and largest finite sample.
// ok is false if every sample is masked.
func (a *Array) FiniteRange() (lo, hi float64, ok bool) {
	return finiteRange(a.V)
}

// DisplayLabel returns the label to show on an axis, falling back to
// the array name.
func (a *Array) DisplayLabel() string {
	if a == nil {
		return ""
	}
	if a.Label != "" {
		return a.Label
	}
	return a.Name
}

// DisplayUnit returns the physical unit, or "".
func (a *Array) DisplayUnit() string {
	if a == nil {
		return ""
	}
	return a.Unit
}

// Grid is a two-dimensional measured quantity sampled on a rectangular
// sweep. V is indexed [row][col], row i belonging to Y.V[i] and column
// j to X.V[j]. The X and Y cell-center axes are optional: a grid
// without axes is drawn on an implicit integer grid.
type Grid struct {
	Name  string
	Label string
	Unit  string
	X, Y  *Array
	V     [][]float64
}

// NewGrid returns a rows x cols grid with every cell masked.
func NewGrid(name string, rows, cols int) *Grid {
	v := make([][]float64, rows)
	for i := range v {
		v[i] = make([]float64, cols)
		for j := range v[i] {
			v[i][j] = math.NaN()
		}
	}
	return &Grid{Name: name, V: v}
}

// Dims returns the number of rows and columns. A grid with no rows has
// zero columns.
func (g *Grid) Dims() (rows, cols int) {
	rows = len(g.V)
	if rows > 0 {
		cols = len(g.V[0])
	}
	return rows, cols
}

func (g *Grid) At(r, c int) float64 { return g.V[r][c] }

// Set stores one cell. Index errors panic like any slice access.
func (g *Grid) Set(r, c int, v float64) { g.V[r][c] = v }

// Row returns a copy of row r, the cross section at fixed y.
func (g *Grid) Row(r int) []float64 {
	out := make([]float64, len(g.V[r]))
	copy(out, g.V[r])
	return out
}

// Col returns a copy of column c, the cross section at fixed x.
func (g *Grid) Col(c int) []float64 {
	out := make([]float64, len(g.V))
	for r := range g.V {
		out[r] = g.V[r][c]
	}
	return out
}

// SumOverY collapses the y axis: element j is the sum of column j over
// all rows. Masked cells are skipped; a fully masked column sums to NaN.
func (g *Grid) SumOverY() []float64 {
	rows, cols := g.Dims()
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		sum, n := 0.0, 0
		for i := 0; i < rows; i++ {
			if v := g.V[i][j]; isFinite(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out[j] = math.NaN()
		} else {
			out[j] = sum
		}
	}
	return out
}

// SumOverX collapses the x axis: element i is the sum of row i.
// Masked cells are skipped; a fully masked row sums to NaN.
func (g *Grid) SumOverX() []float64 {
	out := make([]float64, len(g.V))
	for i, row := range g.V {
		sum, n := 0.0, 0
		for _, v := range row {
			if isFinite(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum
		}
	}
	return out
}

// AllMasked reports whether the grid contains no finite cell.
func (g *Grid) AllMasked() bool {
	for _, row := range g.V {
		if countFinite(row) > 0 {
			return false
		}
	}
	return true
}

// FiniteRange returns the smallest and largest finite cell value.
// ok is false if every cell is masked.
func (g *Grid) FiniteRange() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, row := range g.V {
		l, h, k := finiteRange(row)
		if !k {
			continue
		}
		lo, hi = math.Min(lo, l), math.Max(hi, h)
		ok = true
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return lo, hi, true
}

// DisplayLabel returns the label to show next to the grid's values,
// falling back to the grid name.
func (g *Grid) DisplayLabel() string {
	if g == nil {
		return ""
	}
	if g.Label != "" {
		return g.Label
	}
	return g.Name
}

// DisplayUnit returns the physical unit, or "".
func (g *Grid) DisplayUnit() string {
	if g == nil {
		return ""
	}
	return g.Unit
}

// Labeled is any data carrier that can suggest a display label and a
// physical unit for itself.
type Labeled interface {
	DisplayLabel() string
	DisplayUnit() string
}

// Resolve combines caller-supplied display metadata with metadata
// inferred from the data. An explicit label or unit always wins; the
// data is consulted only for the pieces the caller left empty.
func Resolve(src Labeled, label, unit string) (string, string) {
	if src != nil {
		if label == "" {
			label = src.DisplayLabel()
		}
		if unit == "" {
			unit = src.DisplayUnit()
		}
	}
	return label, unit
}

// AxisTitle formats a label and unit for an axis, "label (unit)".
// An empty unit yields the bare label.
func AxisTitle(label, unit string) string {
	if unit == "" {
		return label
	}
	return label + " (" + unit + ")"
}

// FirstRow extracts the x centers from a two-dimensional setpoint
// record. Sweeps that log their x axis once per row store the same
// values in every row, so the first row is the axis.
func FirstRow(m [][]float64) []float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([]float64, len(m[0]))
	copy(out, m[0])
	return out
}

// FirstCol extracts the y centers from a two-dimensional setpoint
// record, the column-major counterpart of FirstRow.
func FirstCol(m [][]float64) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		if len(row) == 0 {
			return nil
		}
		out[i] = row[0]
	}
	return out
}

// MaxOf returns the largest finite value, skipping masked samples.
// ok is false if there is none.
func MaxOf(vals []float64) (max float64, ok bool) {
	max = math.Inf(-1)
	for _, v := range vals {
		if isFinite(v) && v > max {
			max = v
			ok = true
		}
	}
	if !ok {
		return math.NaN(), false
	}
	return max, true
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

func finiteRange(vals []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if !isFinite(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
		ok = true
	}
	if !ok {
		return math.NaN(), math.NaN(), false
	}
	return lo, hi, true
}
