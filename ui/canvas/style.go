package canvas

import (
	"image/color"

	"mini-annotator/internal/annotation"
)

// Overlay palette. Suggested boxes get their own hues so a reviewer can
// spot unreviewed machine output at a glance.
var (
	manualColor   = color.RGBA{R: 0x2e, G: 0xcc, B: 0x40, A: 255} // green
	selectedColor = color.RGBA{R: 0xff, G: 0xdc, B: 0x00, A: 255} // yellow
	pendingColor  = color.RGBA{R: 0xff, G: 0x85, B: 0x1b, A: 255} // orange
	rejectedColor = color.RGBA{R: 0xff, G: 0x41, B: 0x36, A: 255} // red
	baseColor     = color.RGBA{R: 0x00, G: 0x74, B: 0xd9, A: 255} // blue
	previewColor  = color.RGBA{R: 0xff, G: 0xdc, B: 0x00, A: 255} // yellow
)

// boxColor picks the outline color for a box from its selection state
// and suggestion disposition.
func boxColor(box annotation.Box, selected bool) color.RGBA {
	if selected {
		return selectedColor
	}
	if box.Suggestion == nil {
		return manualColor
	}
	switch box.Suggestion.Disposition {
	case annotation.DispositionPending:
		return pendingColor
	case annotation.DispositionRejected:
		return rejectedColor
	default:
		// Accepted or redrawn suggestions read as regular annotations.
		return manualColor
	}
}
