package liveplot

import (
	"fmt"
	"math"
)

// ----------------------------------------------------------------------------
// Interval

// Interval represents a (potentially degenerate) real interval.
// Both edges of the interval may be NaN indicating this edge is not
// set yet.
type Interval struct {
	Min, Max float64
}

func unsetInterval() Interval {
	return Interval{math.NaN(), math.NaN()}
}

// Update expands i to include x. NaN values are ignored.
func (i *Interval) Update(x ...float64) {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !(i.Min < v) {
			i.Min = v
		}
		if !(i.Max > v) {
			i.Max = v
		}
	}
}

// Valid reports whether both edges of i are set and finite.
func (i Interval) Valid() bool {
	return !math.IsNaN(i.Min) && !math.IsInf(i.Min, 0) &&
		!math.IsNaN(i.Max) && !math.IsInf(i.Max, 0)
}

// Span returns Max - Min, or 0 for an unset interval.
func (i Interval) Span() float64 {
	if !i.Valid() {
		return 0
	}
	return i.Max - i.Min
}

// Expand grows both edges by rel times the span. Degenerate and unset
// intervals are returned unchanged.
func (i Interval) Expand(rel float64) Interval {
	if !i.Valid() || i.Min == i.Max {
		return i
	}
	ext := rel * (i.Max - i.Min)
	return Interval{i.Min - ext, i.Max + ext}
}

// Lerp maps t in [0,1] linearly onto i.
func (i Interval) Lerp(t float64) float64 {
	return i.Min + t*(i.Max-i.Min)
}

func (i Interval) Equal(j Interval) bool {
	if math.IsNaN(i.Min) {
		return math.IsNaN(j.Min)
	}
	if math.IsNaN(i.Max) {
		return math.IsNaN(j.Max)
	}
	return i.Min == j.Min && i.Max == j.Max
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g:%g]", i.Min, i.Max)
}

// deDegenerate turns i into something an axis can display: unset edges
// fall back to [-1,1] and a single point is widened by half a unit on
// both sides.
func (i Interval) deDegenerate() Interval {
	if math.IsNaN(i.Min) {
		i.Min = -1
	}
	if math.IsNaN(i.Max) {
		i.Max = 1
	}
	if i.Min == i.Max {
		i.Min -= 0.5
		i.Max += 0.5
	}
	return i
}

// ----------------------------------------------------------------------------
// Bounds

// Bounds is the bounding box of some drawn data in data coordinates.
type Bounds struct {
	X, Y Interval
}

func unsetBounds() Bounds {
	return Bounds{unsetInterval(), unsetInterval()}
}

// Valid reports whether both axes of b are set and finite.
func (b Bounds) Valid() bool { return b.X.Valid() && b.Y.Valid() }

// Union expands b to cover o. A receiver that is not yet valid is
// replaced outright, so a box of infinities never survives a union
// with real data.
func (b *Bounds) Union(o Bounds) {
	if !b.Valid() {
		*b = o
		return
	}
	b.X.Update(o.X.Min, o.X.Max)
	b.Y.Update(o.Y.Min, o.Y.Max)
}

func (b Bounds) Equal(o Bounds) bool {
	return b.X.Equal(o.X) && b.Y.Equal(o.Y)
}
