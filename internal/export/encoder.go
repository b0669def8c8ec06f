// Package export converts validated annotation records into a YOLO-pose
// training dataset: normalized label files, train/val split, class list,
// and the data.yaml manifest the trainer consumes.
package export

import (
	"fmt"
	"sort"
	"strings"

	"mini-annotator/internal/annotation"
)

// ClassIndex builds the stable class numbering for a set of records:
// the sorted set of distinct labels, index = position.
func ClassIndex(records []*annotation.Record) (map[string]int, []string) {
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, box := range rec.Boxes {
			seen[box.Label] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return index, names
}

// EncodeRecord serializes one image's annotations as label lines. Each
// box becomes "class cx cy w h" with coordinates normalized to [0,1] by
// the image dimensions. A box with a base additionally carries the four
// base corners as keypoints in clockwise TL,TR,BR,BL order, each as
// "x y 1". A box without a base emits no keypoint fields at all: the
// absence is information, not missing data. A record with zero boxes
// encodes to an empty string, a valid negative sample.
func EncodeRecord(rec *annotation.Record, classIndex map[string]int) (string, error) {
	if rec.Width <= 0 || rec.Height <= 0 {
		return "", fmt.Errorf("image %s has no known dimensions", rec.ImageID)
	}
	w := float64(rec.Width)
	h := float64(rec.Height)

	var sb strings.Builder
	for _, box := range rec.Boxes {
		cls, ok := classIndex[box.Label]
		if !ok {
			return "", fmt.Errorf("image %s: label %q missing from class index", rec.ImageID, box.Label)
		}

		center := box.Bounds.Center()
		sb.WriteString(fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
			cls, center.X/w, center.Y/h, box.Bounds.Width/w, box.Bounds.Height/h))

		if box.Base != nil {
			for _, corner := range box.Base.Corners() {
				sb.WriteString(fmt.Sprintf(" %.6f %.6f 1", corner.X/w, corner.Y/h))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
