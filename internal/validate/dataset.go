package validate

import (
	"mini-annotator/internal/annotation"
)

// Report aggregates validation results across a whole dataset. Export
// must refuse while ErrorCount is non-zero.
type Report struct {
	ErrorCount   int                `json:"error_count"`
	WarningCount int                `json:"warning_count"`
	PerImage     map[string][]Issue `json:"per_image,omitempty"`
}

// CheckDataset validates every record and returns the per-image
// breakdown. Images with no issues are omitted from PerImage.
func CheckDataset(records []*annotation.Record) *Report {
	report := &Report{PerImage: make(map[string][]Issue)}
	for _, rec := range records {
		issues := CheckRecord(rec)
		if len(issues) == 0 {
			continue
		}
		report.PerImage[rec.ImageID] = issues
		for _, issue := range issues {
			if issue.Blocking() {
				report.ErrorCount++
			} else {
				report.WarningCount++
			}
		}
	}
	return report
}

// Ready reports whether the dataset is free of blocking errors.
func (r *Report) Ready() bool {
	return r.ErrorCount == 0
}
