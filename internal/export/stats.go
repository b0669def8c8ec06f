package export

import (
	"gonum.org/v1/gonum/stat"

	"mini-annotator/internal/annotation"
)

// Summary holds descriptive statistics over a dataset, reported after
// export so obviously skewed datasets stand out in the log.
type Summary struct {
	Images            int
	Boxes             int
	WithBase          int
	MeanBoxesPerImage float64
	StdBoxesPerImage  float64
	MeanBoxArea       float64 // normalized to image area
	StdBoxArea        float64
}

// Summarize computes dataset statistics from annotation records.
func Summarize(records []*annotation.Record) Summary {
	s := Summary{Images: len(records)}
	if len(records) == 0 {
		return s
	}

	perImage := make([]float64, 0, len(records))
	var areas []float64
	for _, rec := range records {
		perImage = append(perImage, float64(len(rec.Boxes)))
		s.Boxes += len(rec.Boxes)
		imgArea := float64(rec.Width) * float64(rec.Height)
		for _, box := range rec.Boxes {
			if box.Base != nil {
				s.WithBase++
			}
			if imgArea > 0 {
				areas = append(areas, box.Bounds.Area()/imgArea)
			}
		}
	}

	s.MeanBoxesPerImage, s.StdBoxesPerImage = meanStd(perImage)
	s.MeanBoxArea, s.StdBoxArea = meanStd(areas)
	return s
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = stat.Mean(xs, nil)
	if len(xs) > 1 {
		std = stat.StdDev(xs, nil)
	}
	return mean, std
}
