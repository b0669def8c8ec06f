// Package panels provides UI panels for the application.
package panels

import (
	"mini-annotator/internal/app"
	"mini-annotator/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	canvas    *canvas.AnnotationCanvas
	container *container.AppTabs

	galleryPanel     *GalleryPanel
	annotationsPanel *AnnotationsPanel
	exportPanel      *ExportPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State, cvs *canvas.AnnotationCanvas) *SidePanel {
	sp := &SidePanel{
		state:  state,
		canvas: cvs,
	}

	sp.galleryPanel = NewGalleryPanel(state)
	sp.annotationsPanel = NewAnnotationsPanel(state, cvs)
	sp.exportPanel = NewExportPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Gallery", sp.galleryPanel.Container()),
		container.NewTabItem("Annotations", sp.annotationsPanel.Container()),
		container.NewTabItem("Export", sp.exportPanel.Container()),
	)

	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.exportPanel.SetWindow(w)
}
