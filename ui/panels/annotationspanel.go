package panels

import (
	"fmt"
	"strings"

	"mini-annotator/internal/annotation"
	"mini-annotator/internal/app"
	"mini-annotator/internal/validate"
	"mini-annotator/ui/canvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// AnnotationsPanel lists the current image's boxes and edits the
// selected one.
type AnnotationsPanel struct {
	state     *app.State
	canvas    *canvas.AnnotationCanvas
	container fyne.CanvasObject

	list        *widget.List
	labelEntry  *widget.Entry
	baseCheck   *widget.Check
	acceptBtn   *widget.Button
	rejectBtn   *widget.Button
	deleteBtn   *widget.Button
	delBaseBtn  *widget.Button
	issuesLabel *widget.Label

	syncing bool
}

// NewAnnotationsPanel creates a new annotations panel.
func NewAnnotationsPanel(state *app.State, cvs *canvas.AnnotationCanvas) *AnnotationsPanel {
	ap := &AnnotationsPanel{
		state:  state,
		canvas: cvs,
	}

	ap.list = widget.NewList(
		func() int {
			return state.Editor.Collection().Len()
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("box")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			coll := state.Editor.Collection()
			if id >= coll.Len() {
				return
			}
			obj.(*widget.Label).SetText(describeBox(coll.At(id)))
		},
	)
	ap.list.OnSelected = func(id widget.ListItemID) {
		if ap.syncing {
			return
		}
		state.Editor.Select(id)
		cvs.Refresh()
	}

	ap.labelEntry = widget.NewEntry()
	ap.labelEntry.SetPlaceHolder("class label")
	ap.labelEntry.OnSubmitted = func(label string) {
		label = strings.TrimSpace(label)
		if label == "" {
			return
		}
		state.Editor.SetSelectedLabel(label)
		ap.refresh()
	}

	ap.baseCheck = widget.NewCheck("Draw base region", func(on bool) {
		state.Editor.SetBaseMode(on)
	})

	ap.acceptBtn = widget.NewButton("Accept", func() {
		state.Editor.ReviewSelected(annotation.DispositionAccepted)
		ap.refresh()
	})
	ap.rejectBtn = widget.NewButton("Reject", func() {
		state.Editor.ReviewSelected(annotation.DispositionRejected)
		ap.refresh()
	})

	ap.deleteBtn = widget.NewButton("Delete Box", func() {
		state.Editor.DeleteSelected()
		ap.refresh()
	})
	ap.delBaseBtn = widget.NewButton("Delete Base", func() {
		state.Editor.DeleteSelectedBase()
		ap.refresh()
	})

	ap.issuesLabel = widget.NewLabel("")
	ap.issuesLabel.Wrapping = fyne.TextWrapWord

	ap.container = container.NewBorder(
		nil,
		container.NewVBox(
			widget.NewCard("Selected", "", container.NewVBox(
				ap.labelEntry,
				ap.baseCheck,
				container.NewHBox(ap.acceptBtn, ap.rejectBtn),
				container.NewHBox(ap.deleteBtn, ap.delBaseBtn),
			)),
			ap.issuesLabel,
		),
		nil, nil,
		ap.list,
	)

	state.On(app.EventAnnotationsChanged, func(interface{}) { ap.refresh() })
	state.On(app.EventImageLoaded, func(interface{}) {
		ap.issuesLabel.SetText("")
		ap.refresh()
	})
	state.On(app.EventSelectionChanged, func(data interface{}) {
		ap.syncSelection(data)
	})
	state.On(app.EventIssuesFound, func(data interface{}) {
		if issues, ok := data.([]validate.Issue); ok {
			ap.showIssues(issues)
		}
	})

	ap.syncSelection(-1)
	return ap
}

// Container returns the panel container.
func (ap *AnnotationsPanel) Container() fyne.CanvasObject {
	return ap.container
}

func (ap *AnnotationsPanel) refresh() {
	ap.list.Refresh()
	ap.canvas.Refresh()
}

func (ap *AnnotationsPanel) syncSelection(data interface{}) {
	index, _ := data.(int)

	ap.syncing = true
	if index < 0 {
		ap.list.UnselectAll()
	} else {
		ap.list.Select(index)
	}
	ap.syncing = false

	box, ok := ap.state.Editor.SelectedBox()
	if !ok {
		ap.labelEntry.SetText("")
		ap.labelEntry.Disable()
		ap.baseCheck.Disable()
		ap.acceptBtn.Disable()
		ap.rejectBtn.Disable()
		ap.deleteBtn.Disable()
		ap.delBaseBtn.Disable()
		return
	}

	ap.labelEntry.Enable()
	ap.labelEntry.SetText(box.Label)
	ap.baseCheck.Enable()
	ap.deleteBtn.Enable()
	if box.Base != nil {
		ap.delBaseBtn.Enable()
	} else {
		ap.delBaseBtn.Disable()
	}
	if box.IsSuggested() && box.Suggestion.Disposition == annotation.DispositionPending {
		ap.acceptBtn.Enable()
		ap.rejectBtn.Enable()
	} else {
		ap.acceptBtn.Disable()
		ap.rejectBtn.Disable()
	}
	ap.canvas.Refresh()
}

func (ap *AnnotationsPanel) showIssues(issues []validate.Issue) {
	var lines []string
	for _, issue := range issues {
		prefix := "warning"
		if issue.Blocking() {
			prefix = "error"
		}
		lines = append(lines, prefix+": "+issue.Message)
	}
	ap.issuesLabel.SetText(strings.Join(lines, "\n"))
}

// describeBox formats a list row for a box.
func describeBox(box annotation.Box) string {
	desc := fmt.Sprintf("%s %.0fx%.0f", box.Label, box.Bounds.Width, box.Bounds.Height)
	if box.Base != nil {
		desc += " +base"
	}
	if box.IsSuggested() {
		desc += fmt.Sprintf(" [%s %.0f%%]", box.Suggestion.Disposition, box.Suggestion.Confidence*100)
	}
	return desc
}
