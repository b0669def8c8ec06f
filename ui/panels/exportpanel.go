package panels

import (
	"errors"
	"fmt"

	"mini-annotator/internal/app"
	"mini-annotator/internal/export"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// ExportPanel writes the YOLO dataset from the saved annotations.
type ExportPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	dirEntry      *widget.Entry
	fractionLabel *widget.Label
	fraction      *widget.Slider
	exportBtn     *widget.Button
	statusLabel   *widget.Label
}

// NewExportPanel creates a new export panel.
func NewExportPanel(state *app.State) *ExportPanel {
	ep := &ExportPanel{
		state: state,
	}

	ep.dirEntry = widget.NewEntry()
	ep.dirEntry.SetPlaceHolder("output directory")

	browseBtn := widget.NewButton("Browse...", func() {
		if ep.window == nil {
			return
		}
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			ep.dirEntry.SetText(uri.Path())
		}, ep.window)
	})

	ep.fraction = widget.NewSlider(0.5, 0.95)
	ep.fraction.Step = 0.05
	ep.fraction.SetValue(state.Config.TrainFraction)
	ep.fractionLabel = widget.NewLabel(fractionText(state.Config.TrainFraction))
	ep.fraction.OnChanged = func(val float64) {
		ep.fractionLabel.SetText(fractionText(val))
	}

	ep.exportBtn = widget.NewButton("Export Dataset", func() {
		ep.onExport()
	})

	ep.statusLabel = widget.NewLabel("")
	ep.statusLabel.Wrapping = fyne.TextWrapWord

	ep.container = container.NewVBox(
		widget.NewCard("Output", "", container.NewVBox(
			ep.dirEntry,
			browseBtn,
		)),
		widget.NewCard("Split", "", container.NewVBox(
			ep.fractionLabel,
			ep.fraction,
		)),
		ep.exportBtn,
		ep.statusLabel,
	)

	return ep
}

// Container returns the panel container.
func (ep *ExportPanel) Container() fyne.CanvasObject {
	return ep.container
}

// SetWindow sets the parent window for dialogs.
func (ep *ExportPanel) SetWindow(w fyne.Window) {
	ep.window = w
}

func (ep *ExportPanel) onExport() {
	dir := ep.dirEntry.Text
	if dir == "" {
		ep.statusLabel.SetText("Choose an output directory first")
		return
	}

	ep.exportBtn.Disable()
	ep.statusLabel.SetText("Exporting...")

	go func() {
		result, err := ep.state.ExportDataset(dir, ep.fraction.Value)

		ep.exportBtn.Enable()
		if err != nil {
			ep.statusLabel.SetText(exportErrorText(err))
			return
		}
		ep.statusLabel.SetText(fmt.Sprintf(
			"Exported %d train / %d val images, %d classes",
			result.TrainCount, result.ValCount, len(result.Classes)))
	}()
}

// exportErrorText renders an export failure, listing per-image issues
// when validation blocked the run.
func exportErrorText(err error) string {
	var verr *export.ValidationError
	if errors.As(err, &verr) {
		text := fmt.Sprintf("Validation failed: %d errors, %d warnings",
			verr.Report.ErrorCount, verr.Report.WarningCount)
		for imageID, issues := range verr.Report.PerImage {
			for _, issue := range issues {
				if issue.Blocking() {
					text += fmt.Sprintf("\n%s: %s", imageID, issue.Message)
				}
			}
		}
		return text
	}
	return "Export failed: " + err.Error()
}

func fractionText(val float64) string {
	return fmt.Sprintf("Train fraction: %.0f%%", val*100)
}
