// Package corpus resolves photo ids to pixel dimensions, raw bytes, and
// gallery thumbnails. The annotation core never decodes image formats
// itself; everything format-aware lives here.
package corpus

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Store resolves images by id. Ids are paths relative to the corpus root.
type Store interface {
	Dimensions(imageID string) (width, height int, err error)
	Open(imageID string) (io.ReadCloser, error)
	List() ([]string, error)
}

// imageExtensions are the corpus file types we recognize.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// DirStore serves a corpus from a directory tree.
type DirStore struct {
	root string
}

// NewDirStore creates a store over the given directory.
func NewDirStore(dir string) (*DirStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("corpus directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", dir)
	}
	return &DirStore{root: dir}, nil
}

// Root returns the corpus directory.
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) path(imageID string) string {
	return filepath.Join(s.root, filepath.FromSlash(imageID))
}

// Dimensions probes an image's pixel size without decoding pixel data.
func (s *DirStore) Dimensions(imageID string) (int, int, error) {
	f, err := os.Open(s.path(imageID))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image %s: %w", imageID, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read dimensions of %s: %w", imageID, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Open returns the raw image bytes for verbatim copying.
func (s *DirStore) Open(imageID string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(imageID))
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", imageID, err)
	}
	return f, nil
}

// Load decodes the full image for display on the editing canvas.
func (s *DirStore) Load(imageID string) (image.Image, error) {
	f, err := os.Open(s.path(imageID))
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", imageID, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", imageID, err)
	}
	return img, nil
}

// Thumbnail decodes and scales an image so its longest edge is maxEdge,
// for the gallery panel.
func (s *DirStore) Thumbnail(imageID string, maxEdge int) (image.Image, error) {
	img, err := s.Load(imageID)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	if bounds.Dx() >= bounds.Dy() {
		return imaging.Resize(img, maxEdge, 0, imaging.Box), nil
	}
	return imaging.Resize(img, 0, maxEdge, imaging.Box), nil
}

// List walks the corpus and returns every recognized image id, sorted.
func (s *DirStore) List() ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		ids = append(ids, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
