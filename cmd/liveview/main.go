// Command liveview is a desktop viewer for saved sweep datasets. It
// loads one gridded dataset and wires an inspect.Inspector to a
// window: checkboxes drive the panel state, clicks on the heatmap pick
// cross sections and the pointer drags a crosshair.
package main

import (
	"flag"
	"image"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/qmeas/liveplot"
	"github.com/qmeas/liveplot/data"
	"github.com/qmeas/liveplot/inspect"
)

type viewerState struct {
	app    fyne.App
	window fyne.Window

	filePath string
	ins      *inspect.Inspector

	// frame is the last unannotated rendering; the hover crosshair is
	// stamped onto copies of it.
	frame image.Image

	view      *sweepView
	fileLabel *widget.Label
	panelsChk *widget.Check
	sumChk    *widget.Check
}

func main() {
	var fileFlag, logFlag string
	flag.StringVar(&fileFlag, "file", "", "Path to a saved dataset (.json)")
	flag.StringVar(&logFlag, "log", "warn", "Log level: debug, info, warn or error")
	flag.Parse()
	liveplot.SetLogLevel(logFlag)

	a := app.NewWithID("io.qmeas.liveview")
	w := a.NewWindow("Liveview")
	w.Resize(fyne.NewSize(1000, 760))

	state := &viewerState{app: a, window: w, filePath: fileFlag}
	state.fileLabel = widget.NewLabel("no dataset")
	state.view = newSweepView(state)

	// Create the checks without callbacks, restore the persisted state,
	// then wire the events so restoring does not fire them.
	state.panelsChk = widget.NewCheck("Cross section", nil)
	state.sumChk = widget.NewCheck("Sum", nil)
	state.panelsChk.SetChecked(a.Preferences().BoolWithFallback("panels", false))
	state.sumChk.SetChecked(a.Preferences().BoolWithFallback("sum", false))
	if !state.panelsChk.Checked {
		state.sumChk.Disable()
	}
	saveRowBtn := widget.NewButton("Save vertical…", func() {
		saveDialog(state, "vertical.pdf", func(p string) inspect.Event { return inspect.SaveRow{Path: p} })
	})
	saveColBtn := widget.NewButton("Save horizontal…", func() {
		saveDialog(state, "horizontal.pdf", func(p string) inspect.Event { return inspect.SaveCol{Path: p} })
	})
	if !state.panelsChk.Checked {
		saveRowBtn.Disable()
		saveColBtn.Disable()
	}
	state.panelsChk.OnChanged = func(on bool) {
		state.handle(inspect.TogglePanels{Show: on})
		if on {
			state.sumChk.Enable()
			saveRowBtn.Enable()
			saveColBtn.Enable()
		} else {
			state.sumChk.Disable()
			saveRowBtn.Disable()
			saveColBtn.Disable()
		}
		a.Preferences().SetBool("panels", on)
	}
	state.sumChk.OnChanged = func(on bool) {
		state.handle(inspect.ToggleSum{Sum: on})
		a.Preferences().SetBool("sum", on)
	}

	top := container.NewHBox(
		widget.NewButton("Open…", func() { openFileDialog(state) }),
		state.fileLabel,
		state.panelsChk,
		state.sumChk,
		widget.NewButton("Save heatmap…", func() {
			saveDialog(state, "heatmap.pdf", func(p string) inspect.Event { return inspect.SaveHeatmap{Path: p} })
		}),
		saveRowBtn,
		saveColBtn,
	)
	w.SetContent(container.NewBorder(top, nil, nil, nil, state.view))

	if state.filePath != "" {
		loadDataset(state)
	}
	w.ShowAndRun()
}

// handle feeds one event to the inspector and refreshes the view.
func (s *viewerState) handle(ev inspect.Event) {
	if s.ins == nil {
		return
	}
	if err := s.ins.HandleEvent(ev); err != nil {
		dialog.ShowError(err, s.window)
		return
	}
	s.redraw()
}

func (s *viewerState) redraw() {
	if s.ins == nil {
		return
	}
	s.frame = s.ins.Frame()
	s.view.setImage(s.frame)
}

func openFileDialog(state *viewerState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.filePath = rc.URI().Path()
		loadDataset(state)
	}, state.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func loadDataset(state *viewerState) {
	ds, err := data.LoadDataset(state.filePath)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	title := ds.Title
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(state.filePath), filepath.Ext(state.filePath))
	}
	ins, err := inspect.New(ds.Grid, inspect.WithTitle(title))
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.ins = ins
	state.fileLabel.SetText(filepath.Base(state.filePath))
	state.window.SetTitle("Liveview - " + title)

	// Replay the persisted display state onto the fresh inspector.
	if state.panelsChk.Checked {
		ins.HandleEvent(inspect.TogglePanels{Show: true})
		if state.sumChk.Checked {
			ins.HandleEvent(inspect.ToggleSum{Sum: true})
		}
	}
	state.redraw()
}

func saveDialog(state *viewerState, defaultName string, ev func(path string) inspect.Event) {
	if state.ins == nil {
		return
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		wc.Close()
		if err := state.ins.HandleEvent(ev(path)); err != nil {
			dialog.ShowError(err, state.window)
		}
	}, state.window)
	fs.SetFileName(defaultName)
	fs.Show()
}
