package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when no record exists for an image id.
var ErrNotFound = errors.New("annotation record not found")

// Store persists annotation records by image id. Saves are
// last-writer-wins; there is no cross-record locking or conflict
// detection.
type Store interface {
	Load(imageID string) (*Record, error)
	Save(record *Record) error
	List() ([]*Record, error)
}

// FileStore keeps one JSON file per image id under a root directory.
type FileStore struct {
	mu   sync.RWMutex
	root string
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create annotation directory: %w", err)
	}
	return &FileStore{root: dir}, nil
}

// Root returns the store's directory.
func (s *FileStore) Root() string {
	return s.root
}

// path maps an image id to its record file. Path separators in ids are
// flattened so a nested corpus cannot escape the store root.
func (s *FileStore) path(imageID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(imageID)
	return filepath.Join(s.root, safe+".json")
}

// Load reads the record for an image id, or ErrNotFound.
func (s *FileStore) Load(imageID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(imageID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record for %s: %w", imageID, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record for %s: %w", imageID, err)
	}
	if rec.Boxes == nil {
		rec.Boxes = []Box{}
	}
	return &rec, nil
}

// Save writes the record, overwriting any previous version.
func (s *FileStore) Save(record *Record) error {
	if record.ImageID == "" {
		return errors.New("record has no image id")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize record for %s: %w", record.ImageID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(record.ImageID), data, 0644); err != nil {
		return fmt.Errorf("failed to write record for %s: %w", record.ImageID, err)
	}
	return nil
}

// List loads every record in the store, sorted by image id.
func (s *FileStore) List() ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotation directory: %w", err)
	}

	var records []*Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
		if rec.Boxes == nil {
			rec.Boxes = []Box{}
		}
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ImageID < records[j].ImageID
	})
	return records, nil
}
