// Package editor implements the annotation editing core: the screen/image
// coordinate transform, the undo/redo command log, and the pointer-gesture
// state machine that turns drags into committed box edits.
package editor

import (
	"math"

	"mini-annotator/pkg/geometry"
)

const (
	// MinZoom and MaxZoom clamp user zoom so the effective scale stays
	// bounded away from zero and the transform is always invertible.
	MinZoom = 0.1
	MaxZoom = 10.0

	// ZoomStep is the multiplicative step for wheel zoom.
	ZoomStep = 1.25

	fitMargin = 0.95
)

// Viewport holds the zoom/pan state governing the mapping between screen
// coordinates and image pixel coordinates. FitScale is the scale that fits
// the image to its container; Zoom is the user zoom on top of that.
type Viewport struct {
	FitScale float64
	Zoom     float64
	PanX     float64
	PanY     float64
}

// NewViewport creates a viewport at 1:1 scale with no pan.
func NewViewport() *Viewport {
	return &Viewport{FitScale: 1, Zoom: 1}
}

// EffectiveScale returns the combined fit and user scale.
func (v *Viewport) EffectiveScale() float64 {
	return v.FitScale * v.Zoom
}

// ToImage converts a screen point to image pixel coordinates.
func (v *Viewport) ToImage(p geometry.Point2D) geometry.Point2D {
	s := v.EffectiveScale()
	return geometry.Point2D{
		X: (p.X - v.PanX) / s,
		Y: (p.Y - v.PanY) / s,
	}
}

// ToScreen converts an image pixel point to screen coordinates.
func (v *Viewport) ToScreen(p geometry.Point2D) geometry.Point2D {
	s := v.EffectiveScale()
	return geometry.Point2D{
		X: p.X*s + v.PanX,
		Y: p.Y*s + v.PanY,
	}
}

// RectToScreen converts an image-space rectangle to screen space.
func (v *Viewport) RectToScreen(r geometry.Rect) geometry.Rect {
	tl := v.ToScreen(r.TopLeft())
	s := v.EffectiveScale()
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: r.Width * s, Height: r.Height * s}
}

// SetZoom sets the user zoom, clamped to [MinZoom, MaxZoom].
func (v *Viewport) SetZoom(zoom float64) {
	v.Zoom = clampZoom(zoom)
}

// ZoomAt transitions to a new zoom level anchored at the given screen
// point: the image point under the cursor stays fixed on screen.
func (v *Viewport) ZoomAt(p geometry.Point2D, newZoom float64) {
	newZoom = clampZoom(newZoom)
	if v.Zoom == 0 {
		v.Zoom = newZoom
		return
	}
	ratio := newZoom / v.Zoom
	v.PanX = p.X - (p.X-v.PanX)*ratio
	v.PanY = p.Y - (p.Y-v.PanY)*ratio
	v.Zoom = newZoom
}

// ZoomInAt zooms in one step anchored at a screen point.
func (v *Viewport) ZoomInAt(p geometry.Point2D) {
	v.ZoomAt(p, v.Zoom*ZoomStep)
}

// ZoomOutAt zooms out one step anchored at a screen point.
func (v *Viewport) ZoomOutAt(p geometry.Point2D) {
	v.ZoomAt(p, v.Zoom/ZoomStep)
}

// Pan shifts the viewport by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// Fit computes the fit-to-container scale for an image of the given pixel
// size, resets user zoom to 1, and centers the image in the view.
func (v *Viewport) Fit(imageW, imageH, viewW, viewH float64) {
	if imageW <= 0 || imageH <= 0 || viewW <= 0 || viewH <= 0 {
		v.FitScale = 1
		v.Zoom = 1
		v.PanX, v.PanY = 0, 0
		return
	}
	scale := math.Min(viewW/imageW, viewH/imageH) * fitMargin
	v.FitScale = scale
	v.Zoom = 1
	v.PanX = (viewW - imageW*scale) / 2
	v.PanY = (viewH - imageH*scale) / 2
}

func clampZoom(zoom float64) float64 {
	if zoom < MinZoom {
		return MinZoom
	}
	if zoom > MaxZoom {
		return MaxZoom
	}
	return zoom
}
