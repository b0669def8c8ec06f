// Package annotation defines the bounding-box annotation model and its
// per-image persistence.
package annotation

import (
	"github.com/google/uuid"

	"mini-annotator/pkg/geometry"
)

// Disposition records what the annotator did with a suggested box.
type Disposition string

const (
	DispositionPending  Disposition = "pending"
	DispositionAccepted Disposition = "accepted"
	DispositionRejected Disposition = "rejected"
	DispositionRedrawn  Disposition = "redrawn"
)

// Suggestion carries provenance for a machine-suggested box. A manual box
// has no Suggestion at all, so confidence and disposition cannot exist
// without a suggestion origin.
type Suggestion struct {
	Confidence  float64     `json:"confidence"`
	Disposition Disposition `json:"disposition"`
}

// Box is a single bounding-box annotation in image pixel coordinates.
// Base, when present, is a nested rectangle that must lie fully inside
// the outer bounds; it is exported as four corner keypoints.
type Box struct {
	ID         string         `json:"id"`
	Bounds     geometry.Rect  `json:"bounds"`
	Label      string         `json:"label"`
	Base       *geometry.Rect `json:"base,omitempty"`
	Suggestion *Suggestion    `json:"suggestion,omitempty"`
}

// NewBox creates a manually drawn box with a fresh id.
func NewBox(bounds geometry.Rect, label string) Box {
	return Box{
		ID:     uuid.NewString(),
		Bounds: bounds.Normalized(),
		Label:  label,
	}
}

// NewSuggestedBox creates a box originating from an external suggestion
// source, awaiting review.
func NewSuggestedBox(bounds geometry.Rect, label string, confidence float64) Box {
	return Box{
		ID:     uuid.NewString(),
		Bounds: bounds.Normalized(),
		Label:  label,
		Suggestion: &Suggestion{
			Confidence:  confidence,
			Disposition: DispositionPending,
		},
	}
}

// IsSuggested reports whether the box came from a suggestion source.
func (b Box) IsSuggested() bool {
	return b.Suggestion != nil
}

// Collection is an ordered sequence of boxes for one image. Order is
// creation order and carries no semantic meaning. A Collection is owned
// by exactly one editor at a time and is never shared across images.
type Collection struct {
	boxes []Box
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// CollectionOf creates a collection holding the given boxes.
func CollectionOf(boxes []Box) *Collection {
	c := &Collection{boxes: make([]Box, len(boxes))}
	copy(c.boxes, boxes)
	return c
}

// Len returns the number of boxes.
func (c *Collection) Len() int {
	return len(c.boxes)
}

// At returns the box at index i.
func (c *Collection) At(i int) Box {
	return c.boxes[i]
}

// Boxes returns a copy of the underlying slice.
func (c *Collection) Boxes() []Box {
	out := make([]Box, len(c.boxes))
	copy(out, c.boxes)
	return out
}

// Add appends a box and returns its index.
func (c *Collection) Add(b Box) int {
	c.boxes = append(c.boxes, b)
	return len(c.boxes) - 1
}

// Insert places a box at index i, shifting later boxes up.
func (c *Collection) Insert(i int, b Box) {
	c.boxes = append(c.boxes, Box{})
	copy(c.boxes[i+1:], c.boxes[i:])
	c.boxes[i] = b
}

// RemoveAt deletes the box at index i and returns it.
func (c *Collection) RemoveAt(i int) Box {
	b := c.boxes[i]
	c.boxes = append(c.boxes[:i], c.boxes[i+1:]...)
	return b
}

// Replace swaps the box at index i for b, returning the previous value.
func (c *Collection) Replace(i int, b Box) Box {
	old := c.boxes[i]
	c.boxes[i] = b
	return old
}

// IndexOf returns the index of the box with the given id, or -1.
func (c *Collection) IndexOf(id string) int {
	for i, b := range c.boxes {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// FindAt returns the index of the topmost box containing the point, or -1.
// Later boxes are drawn on top, so the search runs newest-first.
func (c *Collection) FindAt(p geometry.Point2D) int {
	for i := len(c.boxes) - 1; i >= 0; i-- {
		if c.boxes[i].Bounds.Contains(p) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	out := &Collection{boxes: make([]Box, len(c.boxes))}
	copy(out.boxes, c.boxes)
	for i := range out.boxes {
		if c.boxes[i].Base != nil {
			base := *c.boxes[i].Base
			out.boxes[i].Base = &base
		}
		if c.boxes[i].Suggestion != nil {
			s := *c.boxes[i].Suggestion
			out.boxes[i].Suggestion = &s
		}
	}
	return out
}
