// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	"path/filepath"

	"mini-annotator/internal/app"
	"mini-annotator/internal/validate"
	"mini-annotator/internal/version"
	"mini-annotator/ui/canvas"
	"mini-annotator/ui/panels"
	"mini-annotator/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.AnnotationCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label
	zoomLabel *widget.Label

	toolSelect *widget.RadioGroup
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("Mini Annotator")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restoreSession()

	win.SetCloseIntercept(func() {
		mw.saveSession()
		fyneApp.Quit()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewAnnotationCanvas(mw.state.Editor)

	mw.sidePanel = panels.NewSidePanel(mw.state, mw.canvas)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Open a photo folder to start")

	toolbar := mw.createToolbar()

	canvasArea := container.NewBorder(
		toolbar,
		nil, nil, nil,
		mw.canvas,
	)

	split := container.NewHSplit(
		mw.sidePanel.Container(),
		canvasArea,
	)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil, nil,
		split,
	)

	mw.SetContent(content)

	w := float32(mw.prefs.Float(prefs.KeyWindowWidth, 1200))
	h := float32(mw.prefs.Float(prefs.KeyWindowHeight, 800))
	mw.Resize(fyne.NewSize(w, h))
}

// createToolbar creates the toolbar with tool and zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	mw.toolSelect = widget.NewRadioGroup([]string{"Draw", "Pan"}, func(selected string) {
		if selected == "Pan" {
			mw.canvas.SetTool(canvas.ToolPan)
		} else {
			mw.canvas.SetTool(canvas.ToolDraw)
		}
	})
	mw.toolSelect.SetSelected("Draw")
	mw.toolSelect.Horizontal = true

	zoomOutBtn := widget.NewButton("-", mw.canvas.ZoomOut)
	zoomInBtn := widget.NewButton("+", mw.canvas.ZoomIn)
	fitBtn := widget.NewButton("Fit", mw.canvas.FitToWindow)

	mw.zoomLabel = widget.NewLabel("100%")
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})

	saveBtn := widget.NewButton("Save", mw.onSave)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		mw.toolSelect,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		mw.zoomLabel,
		widget.NewSeparator(),
		saveBtn,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Photo Folder...", mw.onOpenCorpus),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Annotations", mw.onSave),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.saveSession()
			mw.app.Quit()
		}),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItem("Redo", mw.onRedo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Delete Box", func() {
			mw.state.Editor.DeleteSelected()
			mw.canvas.Refresh()
		}),
		fyne.NewMenuItem("Delete Base", func() {
			mw.state.Editor.DeleteSelectedBase()
			mw.canvas.Refresh()
		}),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit to Window", mw.canvas.FitToWindow),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mainMenu := fyne.NewMainMenu(fileMenu, editMenu, viewMenu, helpMenu)
	mw.SetMainMenu(mainMenu)
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventCorpusOpened, func(data interface{}) {
		if dir, ok := data.(string); ok {
			mw.SetTitle("Mini Annotator - " + filepath.Base(dir))
			mw.updateStatus("Opened " + dir)
		}
	})

	mw.state.On(app.EventImageLoaded, func(data interface{}) {
		id, ok := data.(string)
		if !ok {
			return
		}
		img, err := mw.state.Corpus.Load(id)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.canvas.SetPhoto(img)
		mw.canvas.FitToWindow()
		mw.updateStatus("Editing " + id)
		mw.prefs.SetString(prefs.KeyLastImage, id)
	})

	mw.state.On(app.EventIssuesFound, func(data interface{}) {
		if issues, ok := data.([]validate.Issue); ok && len(issues) > 0 {
			mw.updateStatus(issues[0].Message)
		}
	})

	mw.state.On(app.EventSaved, func(data interface{}) {
		if id, ok := data.(string); ok {
			mw.updateStatus("Saved " + id)
		}
	})

	mw.state.On(app.EventExported, func(interface{}) {
		mw.updateStatus("Dataset exported")
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// restoreSession reopens the corpus from the previous run.
func (mw *MainWindow) restoreSession() {
	dir := mw.prefs.String(prefs.KeyLastCorpusDir, mw.state.Config.CorpusDir)
	if dir == "" {
		return
	}
	if err := mw.openCorpus(dir); err != nil {
		mw.updateStatus("Could not reopen " + dir)
		return
	}
	if last := mw.prefs.String(prefs.KeyLastImage, ""); last != "" {
		if err := mw.state.OpenImage(last); err != nil {
			fyne.LogError("restore image", err)
		}
	}
}

// saveSession persists window size and the open corpus for next time.
func (mw *MainWindow) saveSession() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		fyne.LogError("save preferences", err)
	}
}

// openCorpus opens the image directory with its annotation store beside it.
func (mw *MainWindow) openCorpus(dir string) error {
	annotationDir := mw.state.Config.AnnotationDir
	if annotationDir == "" {
		annotationDir = filepath.Join(dir, "annotations")
	}
	if err := mw.state.OpenCorpus(dir, annotationDir); err != nil {
		return err
	}
	mw.prefs.SetString(prefs.KeyLastCorpusDir, dir)
	return nil
}

// Menu action handlers

func (mw *MainWindow) onOpenCorpus() {
	fd := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		if err := mw.openCorpus(uri.Path()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	if dir := mw.prefs.String(prefs.KeyLastCorpusDir, ""); dir != "" {
		if loc, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(loc)
		}
	}
	fd.Show()
}

func (mw *MainWindow) onSave() {
	issues, err := mw.state.SaveCurrent()
	if err != nil {
		dialog.ShowError(err, mw.Window)
		return
	}
	if len(issues) > 0 {
		mw.updateStatus(fmt.Sprintf("Saved with %d warnings: %s", len(issues), issues[0].Message))
	}
}

func (mw *MainWindow) onUndo() {
	if mw.state.Editor.Undo() {
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onRedo() {
	if mw.state.Editor.Redo() {
		mw.canvas.Refresh()
	}
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About Mini Annotator",
		fmt.Sprintf("Mini Annotator v%s\n\n"+
			"Bounding-box annotation for miniature photo datasets.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
