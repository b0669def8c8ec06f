// Package validate checks annotation geometry before save and export.
// Blocking errors prevent persistence and export; advisory warnings are
// surfaced but never block.
package validate

import (
	"fmt"

	"mini-annotator/internal/annotation"
	"mini-annotator/pkg/geometry"
)

// Severity classifies an issue as blocking or advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks save/export
	SeverityWarning                 // surfaced, never blocks
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Issue codes form a closed set.
const (
	CodeOutOfBounds  = "BBOX_OUT_OF_BOUNDS"
	CodeTooSmall     = "BBOX_TOO_SMALL"
	CodeBaseOutside  = "BASE_OUTSIDE_MODEL"
	CodeDuplicateBox = "DUPLICATE_BOX"
)

const (
	// minBoxSize is the edge length below which a box is advisory-flagged
	// as too small to train on.
	minBoxSize = 10.0

	// duplicateIoU is the overlap ratio above which a pair of boxes is
	// flagged as a probable duplicate instance. Two boxes of the same
	// size offset by ~5% of their edge overlap at roughly 0.83.
	duplicateIoU = 0.8
)

// Issue describes one validation finding. It always names the rule and
// the offending box so feedback is never generic. Issues are transient
// and never persisted.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	BoxID    string   `json:"box_id,omitempty"`
}

// Blocking reports whether the issue prevents save/export.
func (i Issue) Blocking() bool {
	return i.Severity == SeverityError
}

// CheckBox runs the single-annotation checks against image bounds:
// out-of-bounds (blocking), minimum size (advisory), and base
// containment (blocking).
func CheckBox(box annotation.Box, imageW, imageH int) []Issue {
	var issues []Issue
	b := box.Bounds

	if b.X < 0 || b.Y < 0 || b.X+b.Width > float64(imageW) || b.Y+b.Height > float64(imageH) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeOutOfBounds,
			Message: fmt.Sprintf("box %s (%.0f,%.0f %.0fx%.0f) extends outside the %dx%d image",
				shortID(box.ID), b.X, b.Y, b.Width, b.Height, imageW, imageH),
			BoxID: box.ID,
		})
	}

	if b.Width < minBoxSize || b.Height < minBoxSize {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Code:     CodeTooSmall,
			Message: fmt.Sprintf("box %s is %.0fx%.0f px, smaller than the %.0f px minimum",
				shortID(box.ID), b.Width, b.Height, minBoxSize),
			BoxID: box.ID,
		})
	}

	if box.Base != nil && !b.ContainsRect(*box.Base) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Code:     CodeBaseOutside,
			Message: fmt.Sprintf("base of box %s (%.0f,%.0f %.0fx%.0f) is not fully inside its box",
				shortID(box.ID), box.Base.X, box.Base.Y, box.Base.Width, box.Base.Height),
			BoxID: box.ID,
		})
	}

	return issues
}

// CheckRecord validates every box in a record plus all cross-box overlap
// checks. A record with zero boxes is valid: it means nothing is present
// in the image.
func CheckRecord(rec *annotation.Record) []Issue {
	var issues []Issue
	for _, box := range rec.Boxes {
		issues = append(issues, CheckBox(box, rec.Width, rec.Height)...)
	}

	for i := 0; i < len(rec.Boxes); i++ {
		for j := i + 1; j < len(rec.Boxes); j++ {
			a, b := rec.Boxes[i], rec.Boxes[j]
			if iou := geometry.IoU(a.Bounds, b.Bounds); iou > duplicateIoU {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Code:     CodeDuplicateBox,
					Message: fmt.Sprintf("boxes %s and %s overlap with IoU %.2f, probable duplicate",
						shortID(a.ID), shortID(b.ID), iou),
					BoxID: b.ID,
				})
			}
		}
	}

	return issues
}

// HasBlocking reports whether any issue in the list is blocking.
func HasBlocking(issues []Issue) bool {
	for _, i := range issues {
		if i.Blocking() {
			return true
		}
	}
	return false
}

// shortID abbreviates a uuid for messages.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
