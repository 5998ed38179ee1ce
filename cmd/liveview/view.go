package main

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/qmeas/liveplot/inspect"
)

// sweepView shows the inspector frames and turns pointer input into
// inspector events. The image is letterboxed into the widget, so every
// pointer position goes through the contain-rect math before the frame
// geometry resolves it to data coordinates.
type sweepView struct {
	widget.BaseWidget
	state *viewerState
	img   *canvas.Image
}

func newSweepView(state *viewerState) *sweepView {
	v := &sweepView{state: state, img: canvas.NewImageFromImage(blank(640, 480))}
	v.img.FillMode = canvas.ImageFillContain
	v.img.ScaleMode = canvas.ImageScaleSmooth
	v.img.SetMinSize(fyne.NewSize(480, 360))
	v.ExtendBaseWidget(v)
	return v
}

func (v *sweepView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.img)
}

func (v *sweepView) setImage(img image.Image) {
	v.img.Image = img
	v.img.Refresh()
}

// dataAt maps a pointer position inside the widget to dataset
// coordinates. ok is false without a dataset or outside the heatmap's
// data area.
func (v *sweepView) dataAt(pos fyne.Position) (x, y float64, ok bool) {
	st := v.state
	if st.ins == nil || st.frame == nil {
		return 0, 0, false
	}
	b := st.frame.Bounds()
	sz := v.Size()
	px, py, ok := viewToImage(pos.X, pos.Y, float32(b.Dx()), float32(b.Dy()), sz.Width, sz.Height)
	if !ok {
		return 0, 0, false
	}
	return st.ins.Geometry().DataAt(px, py)
}

func (v *sweepView) Tapped(ev *fyne.PointEvent) {
	x, y, ok := v.dataAt(ev.Position)
	if !ok {
		return
	}
	v.state.handle(inspect.Click{X: x, Y: y})
}

func (v *sweepView) MouseMoved(ev *desktop.MouseEvent) {
	st := v.state
	if st.ins == nil || st.frame == nil {
		return
	}
	x, y, ok := v.dataAt(ev.Position)
	if !ok {
		v.setImage(st.frame)
		return
	}
	v.setImage(inspect.Annotate(st.frame, st.ins.Geometry(), x, y))
}

func (v *sweepView) MouseIn(*desktop.MouseEvent) {}

func (v *sweepView) MouseOut() {
	if v.state.frame != nil {
		v.setImage(v.state.frame)
	}
}

var (
	_ fyne.Tappable     = (*sweepView)(nil)
	_ desktop.Hoverable = (*sweepView)(nil)
)

// containRect returns the offset and scale of a FillContain image
// inside a view.
func containRect(imgW, imgH, viewW, viewH float32) (drawX, drawY, scale float32) {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return 0, 0, 1
	}
	scale = viewW / imgW
	if s := viewH / imgH; s < scale {
		scale = s
	}
	drawX = (viewW - imgW*scale) / 2
	drawY = (viewH - imgH*scale) / 2
	return drawX, drawY, scale
}

// viewToImage maps view coordinates to image pixels, false outside the
// drawn image.
func viewToImage(vx, vy, imgW, imgH, viewW, viewH float32) (px, py int, ok bool) {
	drawX, drawY, scale := containRect(imgW, imgH, viewW, viewH)
	fx := (vx - drawX) / scale
	fy := (vy - drawY) / scale
	if fx < 0 || fy < 0 || fx >= imgW || fy >= imgH {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

func blank(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 0xfa, G: 0xfa, B: 0xfa, A: 0xff})
		}
	}
	return img
}
