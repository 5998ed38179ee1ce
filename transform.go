// Coordinate transforms between data space and device space.
//
// A rendered frame knows which pixel rectangle a panel occupies and
// which data interval each of its axes covers. Transform connects the
// two, in both directions, so a viewer can turn pointer positions back
// into data coordinates.
package liveplot

import "math"

// A Transform bundles a forward mapping of one interval onto another
// with its inverse.
type Transform struct {
	Name string
	// Map maps x out of from onto to.
	Map func(from, to Interval, x float64) float64
	// Inverse maps y out of to back onto from.
	Inverse func(from, to Interval, y float64) float64
}

// Linear maps the intervals onto each other linearly. An inverted to
// interval (Min > Max) flips the axis, which is how device y
// coordinates growing downwards are handled.
var Linear = Transform{
	Name: "Linear",
	Map: func(from, to Interval, x float64) float64 {
		return to.Min + (to.Max-to.Min)*(x-from.Min)/(from.Max-from.Min)
	},
	Inverse: func(from, to Interval, y float64) float64 {
		return from.Min + (from.Max-from.Min)*(y-to.Min)/(to.Max-to.Min)
	},
}

// Log10 maps from logarithmically onto to. Only meaningful for a from
// interval of one sign and nonzero edges.
var Log10 = Transform{
	Name: "Log10",
	Map: func(from, to Interval, x float64) float64 {
		t := math.Log10(x/from.Min) / math.Log10(from.Max/from.Min)
		return to.Min + t*(to.Max-to.Min)
	},
	Inverse: func(from, to Interval, y float64) float64 {
		t := (y - to.Min) / (to.Max - to.Min)
		return from.Min * math.Pow(10, t*math.Log10(from.Max/from.Min))
	},
}
