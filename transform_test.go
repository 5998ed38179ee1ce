package liveplot

import (
	"fmt"
	"math"
	"testing"
)

var transformTests = []struct {
	trans   Transform
	a, b    float64 // from
	u, v    float64 // to
	x, want float64
}{
	{Linear, 10, 20, 10, 20, 12, 12},
	{Linear, 10, 20, 100, 200, 12, 120},
	{Linear, 3, 5, 0, 1, 3, 0},
	{Linear, 3, 5, 0, 1, 4, 0.5},
	{Linear, 3, 5, 0, 1, 5, 1},
	// An inverted target interval flips the axis.
	{Linear, 0, 10, 100, 0, 2, 80},
	{Linear, 0, 10, 480, 40, 10, 40},

	{Log10, 1, 100, 0, 2, 10, 1},
	{Log10, 1, 1000, 0, 3, 100, 2},
	{Log10, 0.1, 10, 0, 4, 1, 2},
}

func equal64(a, b float64) bool {
	ai, af := math.Modf(a)
	bi, bf := math.Modf(b)
	if af == 0 && bf == 0 {
		return ai == bi
	}
	return math.Abs(a-b) < 0.006
}

func TestTransformMap(t *testing.T) {
	for i, tc := range transformTests {
		t.Run(fmt.Sprintf("%s/%d", tc.trans.Name, i), func(t *testing.T) {
			from, to := Interval{tc.a, tc.b}, Interval{tc.u, tc.v}
			if got := tc.trans.Map(from, to, tc.x); !equal64(got, tc.want) {
				t.Errorf("%s.Map(%v,%v,%f) = %f, want %f",
					tc.trans.Name, from, to, tc.x, got, tc.want)
			}
		})
	}
}

func TestTransformInverse(t *testing.T) {
	for i, tc := range transformTests {
		t.Run(fmt.Sprintf("%s/%d", tc.trans.Name, i), func(t *testing.T) {
			from, to := Interval{tc.a, tc.b}, Interval{tc.u, tc.v}
			if got := tc.trans.Inverse(from, to, tc.want); !equal64(got, tc.x) {
				t.Errorf("%s.Inverse(%v,%v,%f) = %f, want %f",
					tc.trans.Name, from, to, tc.want, got, tc.x)
			}
		})
	}
}
