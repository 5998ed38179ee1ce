//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"github.com/qmeas/liveplot/data"
	"github.com/qmeas/liveplot/inspect"
)

// Walks an inspector through its display states over a synthetic
// completed sweep, writing one frame per state and the saved panels.
func main() {
	const nx, ny = 61, 41
	gate := data.NewArray("gate", nx)
	gate.Label, gate.Unit = "Gate", "V"
	bias := data.NewArray("bias", ny)
	bias.Label, bias.Unit = "Bias", "mV"
	cond := data.NewGrid("cond", ny, nx)
	cond.Label, cond.Unit = "Conductance", "e^2/h"
	cond.X, cond.Y = gate, bias

	for c := 0; c < nx; c++ {
		gate.Set(c, -1.5+0.05*float64(c))
	}
	for r := 0; r < ny; r++ {
		bias.Set(r, -1.0+0.05*float64(r))
		for c := 0; c < nx; c++ {
			g, b := gate.V[c], bias.V[r]
			cond.Set(r, c, math.Exp(-(g*g+2*b*b))*(1+0.3*math.Sin(5*g)))
		}
	}

	ins, err := inspect.New(cond, inspect.WithTitle("demo"))
	if err != nil {
		panic(err)
	}

	writePNG(ins.Frame(), "testdata/inspect-00.png")

	must(ins.HandleEvent(inspect.TogglePanels{Show: true}))
	must(ins.HandleEvent(inspect.ToggleSum{Sum: true}))
	writePNG(ins.Frame(), "testdata/inspect-01.png")

	must(ins.HandleEvent(inspect.ToggleSum{Sum: false}))
	must(ins.HandleEvent(inspect.Click{X: 0.4, Y: -0.2}))
	writePNG(ins.Frame(), "testdata/inspect-02.png")
	if xi, yi, ok := ins.Selection(); ok {
		fmt.Printf("cross section through sample (%d, %d)\n", xi, yi)
	}

	// The cursor overlay is stamped on top of a finished frame.
	frame := ins.Frame()
	writePNG(inspect.Annotate(frame, ins.Geometry(), 0.4, -0.2), "testdata/inspect-03.png")

	must(ins.HandleEvent(inspect.SaveHeatmap{Path: "testdata/inspect-heatmap.pdf"}))
	must(ins.HandleEvent(inspect.SaveRow{Path: "testdata/inspect-row.pdf"}))
	must(ins.HandleEvent(inspect.SaveCol{Path: "testdata/inspect-col.pdf"}))
}

func writePNG(img image.Image, name string) {
	w, err := os.Create(name)
	if err != nil {
		panic(err)
	}
	defer w.Close()
	if err = png.Encode(w, img); err != nil {
		panic(err)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
