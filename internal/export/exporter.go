package export

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"mini-annotator/internal/annotation"
	"mini-annotator/internal/validate"
)

// ErrNoAnnotatedImages is returned when export is requested with no
// records at all.
var ErrNoAnnotatedImages = errors.New("no annotated images to export")

// ValidationError carries the per-image breakdown when export is refused
// because the dataset still holds blocking errors.
type ValidationError struct {
	Report *validate.Report
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dataset has %d blocking validation errors across %d images",
		e.Report.ErrorCount, len(e.Report.PerImage))
}

// ImageSource resolves raw image bytes by id. The exporter copies bytes
// verbatim and never decodes pixel data.
type ImageSource interface {
	Open(imageID string) (io.ReadCloser, error)
}

// Result summarizes a completed export.
type Result struct {
	TrainCount int
	ValCount   int
	Classes    []string
	Failed     []string // image ids that hit per-image I/O errors
}

// Exporter writes YOLO datasets from annotation records.
type Exporter struct {
	Source ImageSource
	Logger *log.Logger
}

// NewExporter creates an exporter reading image bytes from source.
func NewExporter(source ImageSource) *Exporter {
	return &Exporter{
		Source: source,
		Logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "export"}),
	}
}

// Export builds a complete dataset under outputDir from the given
// records, holding out 1-trainFraction of images for validation.
//
// Preconditions are checked before anything is written: there must be at
// least one record, and the dataset must be free of blocking validation
// errors. After that the exporter is not transactional: a per-image
// copy/encode failure is logged and skipped without rolling back earlier
// images, and reruns are idempotent by overwrite.
func (e *Exporter) Export(records []*annotation.Record, outputDir string, trainFraction float64) (*Result, error) {
	if len(records) == 0 {
		return nil, ErrNoAnnotatedImages
	}
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, fmt.Errorf("train fraction %.2f outside (0,1)", trainFraction)
	}

	report := validate.CheckDataset(records)
	if !report.Ready() {
		return nil, &ValidationError{Report: report}
	}

	classIndex, classNames := ClassIndex(records)

	for _, sub := range []string{
		filepath.Join("images", "train"), filepath.Join("images", "val"),
		filepath.Join("labels", "train"), filepath.Join("labels", "val"),
	} {
		if err := os.MkdirAll(filepath.Join(outputDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create dataset directory: %w", err)
		}
	}

	// Shuffle once, then use the same boundary for both the image copy
	// and the label write so pixels and labels never land in different
	// splits.
	shuffled := make([]*annotation.Record, len(records))
	copy(shuffled, records)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	boundary := int(float64(len(shuffled)) * trainFraction)
	if boundary == 0 && len(shuffled) > 1 {
		boundary = 1
	}

	result := &Result{Classes: classNames}
	for i, rec := range shuffled {
		split := "train"
		if i >= boundary {
			split = "val"
		}
		if err := e.exportOne(rec, outputDir, split, classIndex); err != nil {
			e.Logger.Error("image export failed", "image", rec.ImageID, "err", err)
			result.Failed = append(result.Failed, rec.ImageID)
			continue
		}
		if split == "train" {
			result.TrainCount++
		} else {
			result.ValCount++
		}
	}

	hasBase := anyBase(records)
	if err := writeClassList(outputDir, classNames); err != nil {
		return result, err
	}
	if err := writeManifest(outputDir, classNames, hasBase); err != nil {
		return result, err
	}

	summary := Summarize(records)
	e.Logger.Info("export complete",
		"train", result.TrainCount, "val", result.ValCount,
		"classes", len(classNames), "failed", len(result.Failed),
		"boxes_per_image", fmt.Sprintf("%.1f±%.1f", summary.MeanBoxesPerImage, summary.StdBoxesPerImage),
		"mean_box_area", fmt.Sprintf("%.4f", summary.MeanBoxArea))

	return result, nil
}

// exportOne copies the image bytes and writes the matching label file
// into the same split.
func (e *Exporter) exportOne(rec *annotation.Record, outputDir, split string, classIndex map[string]int) error {
	base := filepath.Base(rec.ImageID)

	src, err := e.Source.Open(rec.ImageID)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(outputDir, "images", split, base)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dstPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy image bytes: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", dstPath, err)
	}

	labelText, err := EncodeRecord(rec, classIndex)
	if err != nil {
		return err
	}
	labelPath := filepath.Join(outputDir, "labels", split, labelName(base))
	if err := os.WriteFile(labelPath, []byte(labelText), 0644); err != nil {
		return fmt.Errorf("failed to write label: %w", err)
	}
	return nil
}

// labelName swaps an image filename's extension for .txt.
func labelName(imageName string) string {
	ext := filepath.Ext(imageName)
	return strings.TrimSuffix(imageName, ext) + ".txt"
}

// writeClassList emits classes.txt, one name per line, index = line number.
func writeClassList(outputDir string, names []string) error {
	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	path := filepath.Join(outputDir, "classes.txt")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write class list: %w", err)
	}
	return nil
}

func anyBase(records []*annotation.Record) bool {
	for _, rec := range records {
		for _, box := range rec.Boxes {
			if box.Base != nil {
				return true
			}
		}
	}
	return false
}
