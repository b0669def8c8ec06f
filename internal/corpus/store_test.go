package corpus

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func newTestStore(t *testing.T) *DirStore {
	t.Helper()
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "squad.png"), 64, 48)
	writeTestPNG(t, filepath.Join(dir, "batch_2", "hero.png"), 30, 40)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not an image"), 0644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	store, err := NewDirStore(dir)
	if err != nil {
		t.Fatalf("NewDirStore() error: %v", err)
	}
	return store
}

func TestDimensions(t *testing.T) {
	store := newTestStore(t)
	w, h, err := store.Dimensions("squad.png")
	if err != nil {
		t.Fatalf("Dimensions() error: %v", err)
	}
	if w != 64 || h != 48 {
		t.Errorf("Dimensions() = %dx%d, want 64x48", w, h)
	}

	if _, _, err := store.Dimensions("missing.png"); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestListFindsNestedImagesOnly(t *testing.T) {
	store := newTestStore(t)
	ids, err := store.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	want := []string{"batch_2/hero.png", "squad.png"}
	if len(ids) != len(want) {
		t.Fatalf("List() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestOpenReturnsRawBytes(t *testing.T) {
	store := newTestStore(t)
	rc, err := store.Open("squad.png")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	onDisk, err := os.ReadFile(filepath.Join(store.Root(), "squad.png"))
	if err != nil {
		t.Fatalf("readfile: %v", err)
	}
	if len(data) != len(onDisk) {
		t.Errorf("Open() returned %d bytes, file has %d", len(data), len(onDisk))
	}
}

func TestThumbnailBoundsLongestEdge(t *testing.T) {
	store := newTestStore(t)

	// Landscape image scales by width.
	thumb, err := store.Thumbnail("squad.png", 32)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if thumb.Bounds().Dx() != 32 {
		t.Errorf("thumbnail width = %d, want 32", thumb.Bounds().Dx())
	}

	// Portrait image scales by height.
	thumb, err = store.Thumbnail("batch_2/hero.png", 20)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if thumb.Bounds().Dy() != 20 {
		t.Errorf("thumbnail height = %d, want 20", thumb.Bounds().Dy())
	}
}

func TestNewDirStoreRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewDirStore(file); err == nil {
		t.Error("expected error for non-directory corpus path")
	}
	if _, err := NewDirStore(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing corpus path")
	}
}
