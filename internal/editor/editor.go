package editor

import (
	"math"

	"mini-annotator/internal/annotation"
	"mini-annotator/pkg/geometry"
)

// Mode is the editor's gesture state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeDrawing:
		return "drawing"
	case ModePanning:
		return "panning"
	default:
		return "idle"
	}
}

// minDragPx is the screen-space extent below which a draw gesture is
// treated as an accidental click and silently discarded.
const minDragPx = 4.0

// Editor owns the current image's annotation collection and turns pointer
// gestures into committed edits through the command log. Exactly one
// editor exists per open image; all calls happen on the UI event loop.
type Editor struct {
	Viewport *Viewport

	collection *annotation.Collection
	history    *History
	imageW     float64
	imageH     float64

	mode     Mode
	selected int
	baseMode bool
	label    string

	// Drawing gesture state
	downScreen geometry.Point2D
	anchor     geometry.Point2D
	preview    *geometry.Rect

	// Panning gesture state
	lastPan geometry.Point2D

	// OnCommit fires after every committed edit with the affected box,
	// so the caller can run single-annotation validation for feedback.
	OnCommit func(box annotation.Box)
	// OnChanged fires whenever the collection content changes.
	OnChanged func()
	// OnSelect fires when the selection moves; index is -1 for none.
	OnSelect func(index int)
}

// New creates an editor with no image loaded.
func New() *Editor {
	return &Editor{
		Viewport:   NewViewport(),
		collection: annotation.NewCollection(),
		history:    NewHistory(),
		selected:   -1,
		label:      "miniature",
	}
}

// LoadImage replaces the working collection with the record's boxes and
// resets history, selection, and any in-flight gesture. The command log
// from the previous image never survives a switch.
func (e *Editor) LoadImage(rec *annotation.Record) {
	e.collection = rec.Collection()
	e.history.Reset()
	e.imageW = float64(rec.Width)
	e.imageH = float64(rec.Height)
	e.mode = ModeIdle
	e.preview = nil
	e.baseMode = false
	e.setSelected(-1)
	e.notifyChanged()
}

// Collection returns the working collection.
func (e *Editor) Collection() *annotation.Collection {
	return e.collection
}

// History returns the editor's command log.
func (e *Editor) History() *History {
	return e.history
}

// ImageSize returns the loaded image's pixel dimensions.
func (e *Editor) ImageSize() (w, h float64) {
	return e.imageW, e.imageH
}

// Mode returns the current gesture state.
func (e *Editor) Mode() Mode {
	return e.mode
}

// Selected returns the selected box index, or -1.
func (e *Editor) Selected() int {
	return e.selected
}

// SelectedBox returns the selected box, if any.
func (e *Editor) SelectedBox() (annotation.Box, bool) {
	if e.selected < 0 || e.selected >= e.collection.Len() {
		return annotation.Box{}, false
	}
	return e.collection.At(e.selected), true
}

// SetLabel sets the class label applied to newly drawn boxes.
func (e *Editor) SetLabel(label string) {
	e.label = label
}

// SetBaseMode toggles the base sub-mode: with a box selected, the next
// draw gesture places its base rectangle instead of a new box.
func (e *Editor) SetBaseMode(on bool) {
	e.baseMode = on && e.selected >= 0
}

// BaseMode reports whether the editor is in base sub-mode.
func (e *Editor) BaseMode() bool {
	return e.baseMode
}

// Preview returns the live preview rectangle in image space while a draw
// gesture is in progress, or nil.
func (e *Editor) Preview() *geometry.Rect {
	return e.preview
}

// PointerDown starts a gesture at a screen point. An alt (or modifier)
// press starts panning; a press inside an existing box selects it; a
// press over empty space starts drawing.
func (e *Editor) PointerDown(screen geometry.Point2D, alt bool) {
	if e.mode != ModeIdle {
		return
	}

	if alt {
		e.mode = ModePanning
		e.lastPan = screen
		return
	}

	img := e.Viewport.ToImage(screen)
	e.downScreen = screen

	if e.baseMode && e.selected >= 0 {
		parent := e.collection.At(e.selected).Bounds
		e.mode = ModeDrawing
		e.anchor = clampPoint(img, parent)
		e.preview = nil
		return
	}

	if hit := e.collection.FindAt(img); hit >= 0 {
		// Selection is direct state, not a logged command.
		e.setSelected(hit)
		return
	}

	e.setSelected(-1)
	e.mode = ModeDrawing
	e.anchor = img
	e.preview = nil
}

// PointerMove updates the in-flight gesture.
func (e *Editor) PointerMove(screen geometry.Point2D) {
	switch e.mode {
	case ModePanning:
		e.Viewport.Pan(screen.X-e.lastPan.X, screen.Y-e.lastPan.Y)
		e.lastPan = screen

	case ModeDrawing:
		img := e.Viewport.ToImage(screen)
		if e.baseMode && e.selected >= 0 {
			// Clamp the live rectangle into the parent as the user drags,
			// so a base can never be drawn outside its box.
			parent := e.collection.At(e.selected).Bounds
			img = clampPoint(img, parent)
		}
		r := geometry.RectFromPoints(e.anchor, img)
		e.preview = &r
	}
}

// PointerUp finishes the gesture. Draw gestures below the minimum
// screen-space extent are discarded without comment.
func (e *Editor) PointerUp(screen geometry.Point2D) {
	switch e.mode {
	case ModePanning:
		e.mode = ModeIdle

	case ModeDrawing:
		e.mode = ModeIdle
		preview := e.preview
		e.preview = nil
		if preview == nil {
			return
		}
		dx := math.Abs(screen.X - e.downScreen.X)
		dy := math.Abs(screen.Y - e.downScreen.Y)
		if math.Max(dx, dy) < minDragPx {
			return
		}
		if e.baseMode && e.selected >= 0 {
			e.commitBase(*preview)
		} else {
			e.commitBox(*preview)
		}
	}
}

// commitBox adds a new manually drawn box through the command log.
func (e *Editor) commitBox(r geometry.Rect) {
	box := annotation.NewBox(r, e.label)
	cmd := &AddBoxCommand{Index: e.collection.Len(), Box: box}
	e.history.Execute(cmd, e.collection)
	e.setSelected(cmd.Index)
	e.notifyCommit(box)
}

// commitBase attaches the drawn rectangle as the selected box's base. A
// redrawn base on a suggested box marks its disposition accordingly.
func (e *Editor) commitBase(r geometry.Rect) {
	box := e.collection.At(e.selected)
	cmd := &SetBaseCommand{Index: e.selected, Base: r}
	e.history.Execute(cmd, e.collection)
	if box.Suggestion != nil && box.Suggestion.Disposition == annotation.DispositionPending {
		e.history.Execute(&SetDispositionCommand{
			Index:       e.selected,
			Disposition: annotation.DispositionRedrawn,
		}, e.collection)
	}
	e.notifyCommit(e.collection.At(e.selected))
}

// Select sets the selection directly (e.g. from the list panel).
func (e *Editor) Select(index int) {
	if index < -1 || index >= e.collection.Len() {
		index = -1
	}
	e.setSelected(index)
}

// DeleteSelected removes the selected box through the command log.
func (e *Editor) DeleteSelected() {
	if e.selected < 0 {
		return
	}
	box := e.collection.At(e.selected)
	e.history.Execute(&RemoveBoxCommand{Index: e.selected}, e.collection)
	e.setSelected(-1)
	e.notifyCommit(box)
}

// DeleteSelectedBase removes the selected box's base rectangle.
func (e *Editor) DeleteSelectedBase() {
	if e.selected < 0 {
		return
	}
	if e.collection.At(e.selected).Base == nil {
		return
	}
	e.history.Execute(&RemoveBaseCommand{Index: e.selected}, e.collection)
	e.notifyCommit(e.collection.At(e.selected))
}

// SetSelectedLabel changes the selected box's class label.
func (e *Editor) SetSelectedLabel(label string) {
	if e.selected < 0 {
		return
	}
	if e.collection.At(e.selected).Label == label {
		return
	}
	e.history.Execute(&SetLabelCommand{Index: e.selected, Label: label}, e.collection)
	e.notifyCommit(e.collection.At(e.selected))
}

// ReviewSelected records the annotator's verdict on a suggested box.
func (e *Editor) ReviewSelected(d annotation.Disposition) {
	if e.selected < 0 {
		return
	}
	box := e.collection.At(e.selected)
	if box.Suggestion == nil {
		return
	}
	e.history.Execute(&SetDispositionCommand{Index: e.selected, Disposition: d}, e.collection)
	e.notifyCommit(e.collection.At(e.selected))
}

// Undo reverts the latest edit. No-op on empty history.
func (e *Editor) Undo() bool {
	if e.history.Undo(e.collection) == nil {
		return false
	}
	e.clampSelection()
	e.notifyChanged()
	return true
}

// Redo re-applies the latest undone edit. No-op when nothing was undone.
func (e *Editor) Redo() bool {
	if e.history.Redo(e.collection) == nil {
		return false
	}
	e.clampSelection()
	e.notifyChanged()
	return true
}

func (e *Editor) clampSelection() {
	if e.selected >= e.collection.Len() {
		e.setSelected(-1)
	}
}

func (e *Editor) setSelected(index int) {
	if e.selected == index {
		return
	}
	e.selected = index
	if index < 0 {
		e.baseMode = false
	}
	if e.OnSelect != nil {
		e.OnSelect(index)
	}
}

func (e *Editor) notifyCommit(box annotation.Box) {
	if e.OnCommit != nil {
		e.OnCommit(box)
	}
	e.notifyChanged()
}

func (e *Editor) notifyChanged() {
	if e.OnChanged != nil {
		e.OnChanged()
	}
}

// clampPoint constrains a point to lie within a rectangle.
func clampPoint(p geometry.Point2D, r geometry.Rect) geometry.Point2D {
	if p.X < r.X {
		p.X = r.X
	}
	if p.X > r.X+r.Width {
		p.X = r.X + r.Width
	}
	if p.Y < r.Y {
		p.Y = r.Y
	}
	if p.Y > r.Y+r.Height {
		p.Y = r.Y + r.Height
	}
	return p
}
