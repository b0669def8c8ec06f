// Package canvas provides the annotation canvas with pan, zoom, and
// box drawing.
package canvas

import (
	"image"

	"mini-annotator/internal/editor"
	"mini-annotator/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Tool represents the current interaction tool.
type Tool int

const (
	ToolDraw Tool = iota
	ToolPan
)

// AnnotationCanvas displays the current photo with its bounding boxes
// and forwards pointer gestures to the editor. All coordinates handed
// to the editor are widget-local; the editor's viewport owns the
// screen-to-image transform.
type AnnotationCanvas struct {
	widget.BaseWidget

	editor *editor.Editor
	photo  image.Image

	raster *fynecanvas.Raster

	tool     Tool
	dragging bool
	lastDrag fyne.Position

	// Callbacks
	onZoomChange func(zoom float64)
}

// NewAnnotationCanvas creates a canvas bound to the given editor.
func NewAnnotationCanvas(ed *editor.Editor) *AnnotationCanvas {
	ac := &AnnotationCanvas{
		editor: ed,
		tool:   ToolDraw,
	}
	ac.raster = fynecanvas.NewRaster(ac.draw)
	ac.raster.ScaleMode = fynecanvas.ImageScalePixels
	ac.ExtendBaseWidget(ac)
	return ac
}

// SetPhoto sets the photo to display. The editor is expected to have
// been loaded with the matching record already.
func (ac *AnnotationCanvas) SetPhoto(img image.Image) {
	ac.photo = img
	ac.fitIfSized()
	ac.Refresh()
}

// SetTool sets the current interaction tool.
func (ac *AnnotationCanvas) SetTool(tool Tool) {
	ac.tool = tool
}

// GetTool returns the current interaction tool.
func (ac *AnnotationCanvas) GetTool() Tool {
	return ac.tool
}

// OnZoomChange sets a callback for zoom changes.
func (ac *AnnotationCanvas) OnZoomChange(callback func(zoom float64)) {
	ac.onZoomChange = callback
}

// ZoomIn increases the zoom level, anchored at the widget center.
func (ac *AnnotationCanvas) ZoomIn() {
	ac.editor.Viewport.ZoomInAt(ac.center())
	ac.zoomChanged()
}

// ZoomOut decreases the zoom level, anchored at the widget center.
func (ac *AnnotationCanvas) ZoomOut() {
	ac.editor.Viewport.ZoomOutAt(ac.center())
	ac.zoomChanged()
}

// FitToWindow resets zoom and pan so the whole photo is visible.
func (ac *AnnotationCanvas) FitToWindow() {
	size := ac.Size()
	w, h := ac.editor.ImageSize()
	ac.editor.Viewport.Fit(w, h, float64(size.Width), float64(size.Height))
	ac.zoomChanged()
	ac.Refresh()
}

// Zoom returns the current zoom factor on top of the fit scale.
func (ac *AnnotationCanvas) Zoom() float64 {
	return ac.editor.Viewport.Zoom
}

func (ac *AnnotationCanvas) center() geometry.Point2D {
	size := ac.Size()
	return geometry.NewPoint2D(float64(size.Width)/2, float64(size.Height)/2)
}

func (ac *AnnotationCanvas) zoomChanged() {
	if ac.onZoomChange != nil {
		ac.onZoomChange(ac.editor.Viewport.Zoom)
	}
	ac.Refresh()
}

func (ac *AnnotationCanvas) fitIfSized() {
	size := ac.Size()
	if size.Width > 0 && size.Height > 0 {
		w, h := ac.editor.ImageSize()
		if w > 0 && h > 0 {
			ac.editor.Viewport.Fit(w, h, float64(size.Width), float64(size.Height))
			ac.zoomChanged()
		}
	}
}

// Tapped selects the topmost box under the cursor, or clears the
// selection on empty space. A tap is a down and up at the same point,
// which stays under the drag threshold.
func (ac *AnnotationCanvas) Tapped(ev *fyne.PointEvent) {
	p := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	ac.editor.PointerDown(p, ac.tool == ToolPan)
	ac.editor.PointerUp(p)
	ac.Refresh()
}

// Dragged feeds the drag gesture to the editor. The first event of a
// gesture opens it at the pre-delta position.
func (ac *AnnotationCanvas) Dragged(ev *fyne.DragEvent) {
	pos := ev.Position
	if !ac.dragging {
		ac.dragging = true
		start := geometry.NewPoint2D(
			float64(pos.X-ev.Dragged.DX),
			float64(pos.Y-ev.Dragged.DY),
		)
		ac.editor.PointerDown(start, ac.tool == ToolPan)
	}
	ac.lastDrag = pos
	ac.editor.PointerMove(geometry.NewPoint2D(float64(pos.X), float64(pos.Y)))
	ac.Refresh()
}

// DragEnd closes the current gesture.
func (ac *AnnotationCanvas) DragEnd() {
	if !ac.dragging {
		return
	}
	ac.dragging = false
	ac.editor.PointerUp(geometry.NewPoint2D(float64(ac.lastDrag.X), float64(ac.lastDrag.Y)))
	ac.Refresh()
}

// Scrolled zooms around the cursor so the point under it stays put.
func (ac *AnnotationCanvas) Scrolled(ev *fyne.ScrollEvent) {
	anchor := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	if ev.Scrolled.DY > 0 {
		ac.editor.Viewport.ZoomInAt(anchor)
	} else if ev.Scrolled.DY < 0 {
		ac.editor.Viewport.ZoomOutAt(anchor)
	}
	ac.zoomChanged()
}

// MouseIn implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable.
func (ac *AnnotationCanvas) MouseOut() {}

// Refresh redraws the canvas.
func (ac *AnnotationCanvas) Refresh() {
	if ac.raster != nil {
		ac.raster.Refresh()
	}
	ac.BaseWidget.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (ac *AnnotationCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &annotationCanvasRenderer{canvas: ac}
}

type annotationCanvasRenderer struct {
	canvas *AnnotationCanvas
}

func (r *annotationCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *annotationCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(200, 200)
}

func (r *annotationCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *annotationCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *annotationCanvasRenderer) Destroy() {}
