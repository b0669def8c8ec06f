package app

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"mini-annotator/internal/annotation"
	"mini-annotator/internal/validate"
	"mini-annotator/pkg/geometry"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func newTestState(t *testing.T) (*State, string) {
	t.Helper()
	corpusDir := t.TempDir()
	writePNG(t, filepath.Join(corpusDir, "one.png"), 1000, 800)
	writePNG(t, filepath.Join(corpusDir, "two.png"), 640, 480)

	s := NewState(DefaultConfig())
	if err := s.OpenCorpus(corpusDir, t.TempDir()); err != nil {
		t.Fatalf("OpenCorpus() error: %v", err)
	}
	return s, corpusDir
}

func TestOpenImageCreatesRecordFromDimensions(t *testing.T) {
	s, _ := newTestState(t)
	if err := s.OpenImage("one.png"); err != nil {
		t.Fatalf("OpenImage() error: %v", err)
	}
	rec := s.CurrentRecord()
	if rec == nil || rec.Width != 1000 || rec.Height != 800 {
		t.Fatalf("record = %+v, want probed 1000x800", rec)
	}
	if w, h := s.Editor.ImageSize(); w != 1000 || h != 800 {
		t.Errorf("editor image size = %vx%v", w, h)
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	s, _ := newTestState(t)
	if err := s.OpenImage("one.png"); err != nil {
		t.Fatalf("OpenImage() error: %v", err)
	}

	s.Editor.PointerDown(geometry.NewPoint2D(100, 100), false)
	s.Editor.PointerMove(geometry.NewPoint2D(300, 250))
	s.Editor.PointerUp(geometry.NewPoint2D(300, 250))

	issues, err := s.SaveCurrent()
	if err != nil {
		t.Fatalf("SaveCurrent() error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("unexpected issues: %v", issues)
	}

	// Switch away and back: the box comes back from the store.
	if err := s.OpenImage("two.png"); err != nil {
		t.Fatalf("OpenImage(two) error: %v", err)
	}
	if s.Editor.Collection().Len() != 0 {
		t.Error("collection leaked across image switch")
	}
	if err := s.OpenImage("one.png"); err != nil {
		t.Fatalf("OpenImage(one) error: %v", err)
	}
	if s.Editor.Collection().Len() != 1 {
		t.Errorf("reloaded collection len = %d, want 1", s.Editor.Collection().Len())
	}
}

func TestSaveBlockedByValidation(t *testing.T) {
	s, _ := newTestState(t)
	if err := s.OpenImage("one.png"); err != nil {
		t.Fatalf("OpenImage() error: %v", err)
	}

	// Force a box past the right edge, bypassing the gesture layer.
	c := s.Editor.Collection()
	c.Add(annotation.NewBox(geometry.NewRect(900, 100, 200, 100), "miniature"))

	issues, err := s.SaveCurrent()
	if !errors.Is(err, ErrBlockingIssues) {
		t.Fatalf("error = %v, want ErrBlockingIssues", err)
	}
	if !validate.HasBlocking(issues) {
		t.Error("returned issues carry no blocking entry")
	}

	// Nothing was persisted.
	if _, err := s.Annotations.Load("one.png"); !errors.Is(err, annotation.ErrNotFound) {
		t.Errorf("blocked save persisted a record: %v", err)
	}
}

func TestSaveSurfacesWarnings(t *testing.T) {
	s, _ := newTestState(t)
	if err := s.OpenImage("one.png"); err != nil {
		t.Fatalf("OpenImage() error: %v", err)
	}
	c := s.Editor.Collection()
	c.Add(annotation.NewBox(geometry.NewRect(10, 10, 5, 5), "miniature"))

	issues, err := s.SaveCurrent()
	if err != nil {
		t.Fatalf("advisory warning blocked save: %v", err)
	}
	if len(issues) != 1 || issues[0].Code != validate.CodeTooSmall {
		t.Errorf("issues = %v, want one BBOX_TOO_SMALL", issues)
	}
}

func TestCommitTriggersImmediateFeedback(t *testing.T) {
	s, _ := newTestState(t)
	if err := s.OpenImage("one.png"); err != nil {
		t.Fatalf("OpenImage() error: %v", err)
	}

	var got []validate.Issue
	s.On(EventIssuesFound, func(data interface{}) {
		got = data.([]validate.Issue)
	})

	// Tiny but over the gesture threshold: commits, then warns.
	s.Editor.PointerDown(geometry.NewPoint2D(100, 100), false)
	s.Editor.PointerMove(geometry.NewPoint2D(106, 106))
	s.Editor.PointerUp(geometry.NewPoint2D(106, 106))

	if len(got) != 1 || got[0].Code != validate.CodeTooSmall {
		t.Errorf("feedback issues = %v, want BBOX_TOO_SMALL", got)
	}
}

func TestProgress(t *testing.T) {
	s, _ := newTestState(t)
	annotated, total, err := s.Progress()
	if err != nil {
		t.Fatalf("Progress() error: %v", err)
	}
	if annotated != 0 || total != 2 {
		t.Errorf("progress = %d/%d, want 0/2", annotated, total)
	}

	if err := s.OpenImage("one.png"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveCurrent(); err != nil {
		t.Fatal(err)
	}
	annotated, total, err = s.Progress()
	if err != nil {
		t.Fatalf("Progress() error: %v", err)
	}
	if annotated != 1 || total != 2 {
		t.Errorf("progress = %d/%d, want 1/2", annotated, total)
	}
}

func TestExportDatasetEndToEnd(t *testing.T) {
	s, _ := newTestState(t)
	for _, id := range []string{"one.png", "two.png"} {
		if err := s.OpenImage(id); err != nil {
			t.Fatal(err)
		}
		s.Editor.PointerDown(geometry.NewPoint2D(50, 50), false)
		s.Editor.PointerMove(geometry.NewPoint2D(200, 200))
		s.Editor.PointerUp(geometry.NewPoint2D(200, 200))
		if _, err := s.SaveCurrent(); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	outDir := t.TempDir()
	result, err := s.ExportDataset(outDir, 0.5)
	if err != nil {
		t.Fatalf("ExportDataset() error: %v", err)
	}
	if result.TrainCount+result.ValCount != 2 {
		t.Errorf("exported %d, want 2", result.TrainCount+result.ValCount)
	}
	if len(result.Classes) != 1 || result.Classes[0] != "miniature" {
		t.Errorf("classes = %v", result.Classes)
	}
	if _, err := os.Stat(filepath.Join(outDir, "data.yaml")); err != nil {
		t.Errorf("manifest missing: %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.TrainFraction != 0.8 || cfg.DefaultLabel != "miniature" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "corpus_dir = \"/photos\"\ntrain_fraction = 0.7\nannotator = \"sinan\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.CorpusDir != "/photos" || cfg.TrainFraction != 0.7 || cfg.Annotator != "sinan" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.DefaultLabel != "miniature" {
		t.Errorf("DefaultLabel = %s, want default preserved", cfg.DefaultLabel)
	}
}

func TestLoadConfigBadFraction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("train_fraction = 1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for train_fraction out of range")
	}
}
