// Package app provides application state, configuration, and events.
package app

import (
	"errors"
	"fmt"
	"sync"

	"mini-annotator/internal/annotation"
	"mini-annotator/internal/corpus"
	"mini-annotator/internal/editor"
	"mini-annotator/internal/export"
	"mini-annotator/internal/validate"
)

// EventType identifies different application events.
type EventType int

const (
	EventCorpusOpened EventType = iota
	EventImageLoaded
	EventAnnotationsChanged
	EventSelectionChanged
	EventIssuesFound
	EventSaved
	EventExported
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// ErrBlockingIssues is returned by SaveCurrent when the current image
// carries blocking validation errors.
var ErrBlockingIssues = errors.New("record has blocking validation errors")

// State holds the application state: the open corpus, the current
// image's editor, and the annotation store. All mutation happens on the
// UI event loop; the mutex guards reads from background goroutines.
type State struct {
	mu sync.RWMutex

	Config Config

	Corpus      *corpus.DirStore
	Annotations annotation.Store
	Editor      *editor.Editor

	currentID     string
	currentRecord *annotation.Record
	imageIDs      []string

	listeners map[EventType][]EventListener
}

// NewState creates application state with the given configuration.
func NewState(cfg Config) *State {
	s := &State{
		Config:    cfg,
		Editor:    editor.New(),
		listeners: make(map[EventType][]EventListener),
	}
	s.Editor.SetLabel(cfg.DefaultLabel)
	s.Editor.OnCommit = s.onCommit
	s.Editor.OnChanged = func() { s.Emit(EventAnnotationsChanged, nil) }
	s.Editor.OnSelect = func(i int) { s.Emit(EventSelectionChanged, i) }
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// OpenCorpus opens an image directory and the annotation store beside it.
func (s *State) OpenCorpus(imageDir, annotationDir string) error {
	store, err := corpus.NewDirStore(imageDir)
	if err != nil {
		return err
	}
	annStore, err := annotation.NewFileStore(annotationDir)
	if err != nil {
		return err
	}
	ids, err := store.List()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.Corpus = store
	s.Annotations = annStore
	s.imageIDs = ids
	s.currentID = ""
	s.currentRecord = nil
	s.mu.Unlock()

	s.Emit(EventCorpusOpened, imageDir)
	return nil
}

// ImageIDs returns every image id in the open corpus.
func (s *State) ImageIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.imageIDs))
	copy(out, s.imageIDs)
	return out
}

// CurrentImage returns the id of the image being annotated.
func (s *State) CurrentImage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

// CurrentRecord returns the record backing the editor, or nil.
func (s *State) CurrentRecord() *annotation.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentRecord
}

// OpenImage loads an image's annotation record into the editor, creating
// a fresh record from the probed dimensions when none exists yet. The
// previous image's edit history does not survive the switch.
func (s *State) OpenImage(imageID string) error {
	s.mu.RLock()
	store := s.Annotations
	corp := s.Corpus
	s.mu.RUnlock()
	if corp == nil || store == nil {
		return errors.New("no corpus open")
	}

	rec, err := store.Load(imageID)
	if errors.Is(err, annotation.ErrNotFound) {
		w, h, derr := corp.Dimensions(imageID)
		if derr != nil {
			return derr
		}
		rec = annotation.NewRecord(imageID, w, h)
		rec.Annotator = s.Config.Annotator
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	s.currentID = imageID
	s.currentRecord = rec
	s.mu.Unlock()

	s.Editor.LoadImage(rec)
	s.Emit(EventImageLoaded, imageID)
	return nil
}

// SaveCurrent validates and persists the current image's annotations.
// Blocking errors abort the save; advisory warnings are returned along
// with a successful save so the caller can surface them.
func (s *State) SaveCurrent() ([]validate.Issue, error) {
	s.mu.RLock()
	rec := s.currentRecord
	store := s.Annotations
	s.mu.RUnlock()
	if rec == nil {
		return nil, errors.New("no image open")
	}

	rec.SetBoxes(s.Editor.Collection())
	issues := validate.CheckRecord(rec)
	if validate.HasBlocking(issues) {
		return issues, fmt.Errorf("%w: %s", ErrBlockingIssues, firstBlocking(issues).Message)
	}

	if err := store.Save(rec); err != nil {
		return issues, err
	}
	s.Emit(EventSaved, rec.ImageID)
	return issues, nil
}

// onCommit runs single-annotation checks after every editor commit for
// immediate feedback. Full-dataset validation waits for export.
func (s *State) onCommit(box annotation.Box) {
	w, h := s.Editor.ImageSize()
	issues := validate.CheckBox(box, int(w), int(h))
	if len(issues) > 0 {
		s.Emit(EventIssuesFound, issues)
	}
}

// Progress returns how many corpus images have saved records.
func (s *State) Progress() (annotated, total int, err error) {
	s.mu.RLock()
	store := s.Annotations
	total = len(s.imageIDs)
	s.mu.RUnlock()
	if store == nil {
		return 0, total, nil
	}
	records, err := store.List()
	if err != nil {
		return 0, total, err
	}
	return len(records), total, nil
}

// ExportDataset validates all saved records and writes the training
// dataset to outputDir.
func (s *State) ExportDataset(outputDir string, trainFraction float64) (*export.Result, error) {
	s.mu.RLock()
	store := s.Annotations
	corp := s.Corpus
	s.mu.RUnlock()
	if store == nil || corp == nil {
		return nil, errors.New("no corpus open")
	}

	records, err := store.List()
	if err != nil {
		return nil, err
	}
	result, err := export.NewExporter(corp).Export(records, outputDir, trainFraction)
	if err != nil {
		return nil, err
	}
	s.Emit(EventExported, result)
	return result, nil
}

func firstBlocking(issues []validate.Issue) validate.Issue {
	for _, issue := range issues {
		if issue.Blocking() {
			return issue
		}
	}
	return validate.Issue{}
}
