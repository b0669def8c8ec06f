package annotation

import (
	"encoding/json"
	"time"
)

// Record is the persisted annotation set for one image: the image's
// identity and pixel dimensions plus every box drawn on it. An empty box
// list is a valid record meaning "nothing present in this image".
type Record struct {
	ImageID   string    `json:"image_id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Boxes     []Box     `json:"boxes"`
	Annotator string    `json:"annotator,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecord creates a record for an image with known dimensions.
func NewRecord(imageID string, width, height int) *Record {
	now := time.Now()
	return &Record{
		ImageID:   imageID,
		Width:     width,
		Height:    height,
		Boxes:     []Box{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Collection returns the record's boxes as an editable collection.
func (r *Record) Collection() *Collection {
	return CollectionOf(r.Boxes)
}

// SetBoxes replaces the record's boxes from a collection and bumps the
// update timestamp.
func (r *Record) SetBoxes(c *Collection) {
	r.Boxes = c.Boxes()
	r.UpdatedAt = time.Now()
}

// MarshalJSON ensures Boxes serializes as [] rather than null for empty
// records.
func (r *Record) MarshalJSON() ([]byte, error) {
	type alias Record
	a := (*alias)(r)
	if a.Boxes == nil {
		a.Boxes = []Box{}
	}
	return json.Marshal(a)
}
