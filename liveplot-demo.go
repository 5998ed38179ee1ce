//go:build ignore
// +build ignore

package main

import (
	"math"
	"math/rand"

	"github.com/qmeas/liveplot"
	"github.com/qmeas/liveplot/data"
)

// Simulates a two-axis sweep: a 1-d current trace and a 2-d
// conductance map filling row by row, with the figure redrawn after
// every row the way a running measurement would.
func main() {
	liveplot.SetLogLevel("info")

	loc, err := data.NewLocation("testdata", "demo")
	if err != nil {
		panic(err)
	}
	if _, err = loc.NextRun(); err != nil {
		panic(err)
	}

	const nx, ny = 41, 21
	gate := data.NewArray("gate", nx)
	gate.Label, gate.Unit = "Gate", "V"
	current := data.NewArray("current", nx)
	current.Label, current.Unit = "Current", "nA"

	bias := data.NewArray("bias", ny)
	bias.Label, bias.Unit = "Bias", "mV"
	cond := data.NewGrid("cond", ny, nx)
	cond.Label, cond.Unit = "Conductance", "e^2/h"
	cond.X, cond.Y = gate, bias

	s, err := liveplot.NewN(2, liveplot.WithLocation(loc), liveplot.WithTitle(loc.Title()))
	if err != nil {
		panic(err)
	}
	if err = s.Add(liveplot.LineConfig{Subplot: 0, X: gate, Y: current, Fmt: ".-"}); err != nil {
		panic(err)
	}
	if err = s.Add(liveplot.MeshConfig{Subplot: 1, Z: cond}); err != nil {
		panic(err)
	}

	for r := 0; r < ny; r++ {
		b := -1.0 + 0.1*float64(r)
		bias.Set(r, b)
		for c := 0; c < nx; c++ {
			g := -2.0 + 0.1*float64(c)
			if r == 0 {
				gate.Set(c, g)
				current.Set(c, 3*math.Exp(-g*g)+0.1*rand.NormFloat64())
			}
			cond.Set(r, c, math.Exp(-(g*g+b*b))+0.05*rand.NormFloat64())
		}
		s.Update()
	}

	if err = s.Save(""); err != nil {
		panic(err)
	}
}
