package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mini-annotator/internal/annotation"
	"mini-annotator/pkg/geometry"
)

// mapSource serves image bytes from memory.
type mapSource map[string][]byte

func (m mapSource) Open(imageID string) (io.ReadCloser, error) {
	data, ok := m[imageID]
	if !ok {
		return nil, fmt.Errorf("no such image: %s", imageID)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func testRecords(n int) ([]*annotation.Record, mapSource) {
	source := mapSource{}
	records := make([]*annotation.Record, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("img_%02d.jpg", i)
		rec := annotation.NewRecord(id, 1000, 800)
		rec.Boxes = []annotation.Box{
			annotation.NewBox(geometry.NewRect(100, 100, 200, 150), "miniature"),
		}
		records = append(records, rec)
		source[id] = []byte("jpegbytes-" + id)
	}
	return records, source
}

func TestExportLayoutAndCounts(t *testing.T) {
	records, source := testRecords(10)
	dir := t.TempDir()

	result, err := NewExporter(source).Export(records, dir, 0.8)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if result.TrainCount != 8 || result.ValCount != 2 {
		t.Errorf("split = %d/%d, want 8/2", result.TrainCount, result.ValCount)
	}
	if len(result.Failed) != 0 {
		t.Errorf("Failed = %v, want none", result.Failed)
	}

	for _, sub := range []string{"images/train", "images/val", "labels/train", "labels/val"} {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(sub))); err != nil {
			t.Errorf("missing directory %s: %v", sub, err)
		}
	}

	// Every image lands in exactly one split, with its label beside it.
	for _, rec := range records {
		var found int
		for _, split := range []string{"train", "val"} {
			imgPath := filepath.Join(dir, "images", split, rec.ImageID)
			if _, err := os.Stat(imgPath); err == nil {
				found++
				labelPath := filepath.Join(dir, "labels", split, strings.TrimSuffix(rec.ImageID, ".jpg")+".txt")
				if _, err := os.Stat(labelPath); err != nil {
					t.Errorf("%s: image in %s but label missing", rec.ImageID, split)
				}
			}
		}
		if found != 1 {
			t.Errorf("%s present in %d splits, want 1", rec.ImageID, found)
		}
	}
}

func TestExportClassListAndManifest(t *testing.T) {
	records, source := testRecords(5)
	base := geometry.NewRect(120, 120, 50, 50)
	records[0].Boxes[0].Base = &base
	dir := t.TempDir()

	if _, err := NewExporter(source).Export(records, dir, 0.8); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	classes, err := os.ReadFile(filepath.Join(dir, "classes.txt"))
	if err != nil {
		t.Fatalf("classes.txt missing: %v", err)
	}
	if string(classes) != "miniature\n" {
		t.Errorf("classes.txt = %q", string(classes))
	}

	m, err := ReadManifest(filepath.Join(dir, "data.yaml"))
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if m.NC != 1 || m.Names[0] != "miniature" {
		t.Errorf("manifest classes = nc=%d names=%v", m.NC, m.Names)
	}
	if len(m.KptShape) != 2 || m.KptShape[0] != 4 || m.KptShape[1] != 3 {
		t.Errorf("kpt_shape = %v, want [4 3]", m.KptShape)
	}
	if m.Train != filepath.Join("images", "train") || m.Val != filepath.Join("images", "val") {
		t.Errorf("manifest splits = %s / %s", m.Train, m.Val)
	}
}

func TestExportManifestOmitsKeypointsWithoutBases(t *testing.T) {
	records, source := testRecords(3)
	dir := t.TempDir()

	if _, err := NewExporter(source).Export(records, dir, 0.7); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	m, err := ReadManifest(filepath.Join(dir, "data.yaml"))
	if err != nil {
		t.Fatalf("ReadManifest() error: %v", err)
	}
	if m.KptShape != nil {
		t.Errorf("kpt_shape = %v, want omitted for box-only dataset", m.KptShape)
	}
}

func TestExportRefusesEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	_, err := NewExporter(mapSource{}).Export(nil, dir, 0.8)
	if !errors.Is(err, ErrNoAnnotatedImages) {
		t.Fatalf("error = %v, want ErrNoAnnotatedImages", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("refused export created output: %v", entries)
	}
}

func TestExportRefusesBlockingErrors(t *testing.T) {
	records, source := testRecords(3)
	// One box off the right edge of its 1000px image.
	records[1].Boxes = append(records[1].Boxes,
		annotation.NewBox(geometry.NewRect(900, 100, 200, 100), "miniature"))
	dir := t.TempDir()

	_, err := NewExporter(source).Export(records, dir, 0.8)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if verr.Report.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", verr.Report.ErrorCount)
	}
	if _, ok := verr.Report.PerImage["img_01.jpg"]; !ok {
		t.Error("per-image breakdown missing offending image")
	}

	// Hard precondition: nothing may be written before the check.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("refused export created output: %v", entries)
	}
}

func TestExportEmptyRecordWritesEmptyLabel(t *testing.T) {
	records, source := testRecords(2)
	empty := annotation.NewRecord("nothing.jpg", 640, 480)
	records = append(records, empty)
	source["nothing.jpg"] = []byte("jpegbytes-nothing")
	dir := t.TempDir()

	result, err := NewExporter(source).Export(records, dir, 0.67)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if result.TrainCount+result.ValCount != 3 {
		t.Errorf("exported %d images, want 3", result.TrainCount+result.ValCount)
	}

	var labelPath string
	for _, split := range []string{"train", "val"} {
		p := filepath.Join(dir, "labels", split, "nothing.txt")
		if _, err := os.Stat(p); err == nil {
			labelPath = p
		}
	}
	if labelPath == "" {
		t.Fatal("no label file written for empty record")
	}
	data, err := os.ReadFile(labelPath)
	if err != nil {
		t.Fatalf("read label: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("empty record label = %q, want empty file", data)
	}
}

func TestExportPerImageFailureDoesNotAbort(t *testing.T) {
	records, source := testRecords(4)
	delete(source, "img_02.jpg") // this image's bytes are unreadable
	dir := t.TempDir()

	result, err := NewExporter(source).Export(records, dir, 0.5)
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if len(result.Failed) != 1 || result.Failed[0] != "img_02.jpg" {
		t.Errorf("Failed = %v, want [img_02.jpg]", result.Failed)
	}
	if result.TrainCount+result.ValCount != 3 {
		t.Errorf("exported %d images, want 3", result.TrainCount+result.ValCount)
	}

	// Earlier output survives the failure.
	m, err := ReadManifest(filepath.Join(dir, "data.yaml"))
	if err != nil {
		t.Fatalf("manifest missing after partial failure: %v", err)
	}
	if m.NC != 1 {
		t.Errorf("manifest nc = %d", m.NC)
	}
}

func TestExportRerunOverwrites(t *testing.T) {
	records, source := testRecords(4)
	dir := t.TempDir()
	exp := NewExporter(source)

	if _, err := exp.Export(records, dir, 0.5); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := exp.Export(records, dir, 0.5); err != nil {
		t.Fatalf("rerun export: %v", err)
	}
}

func TestExportBadFraction(t *testing.T) {
	records, source := testRecords(2)
	for _, f := range []float64{0, 1, -0.5, 1.5} {
		if _, err := NewExporter(source).Export(records, t.TempDir(), f); err == nil {
			t.Errorf("fraction %v accepted", f)
		}
	}
}
