package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/idilsaglam/journal/internal/model"
	"github.com/idilsaglam/journal/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// The mutex only guards this process; two journals writing the same file
// race like any other local blob.

// DefaultFileName is used when the configured path is a directory.
const DefaultFileName = "events.json"

type Store struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

var _ store.EventStore = (*Store)(nil)

// New returns a store backed by path. The file is created on first write.
func New(path string, log zerolog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("jsonstore: empty path")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	return &Store{path: path, log: log}, nil
}

// Path is the file the store reads and writes.
func (s *Store) Path() string { return s.path }

func (s *Store) List(ctx context.Context) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) Add(ctx context.Context, ev model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.load()
	if err != nil {
		return err
	}
	if indexOf(events, ev.ID) >= 0 {
		return fmt.Errorf("add %s: %w", ev.ID, store.ErrDuplicateID)
	}
	return s.save(append(events, ev))
}

func (s *Store) Update(ctx context.Context, ev model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(events, ev.ID)
	if i < 0 {
		return fmt.Errorf("update %s: %w", ev.ID, store.ErrNotFound)
	}
	events[i] = ev
	return s.save(events)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.load()
	if err != nil {
		return err
	}
	i := indexOf(events, id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
	}
	events = append(events[:i], events[i+1:]...)
	return s.save(events)
}

func (s *Store) Close() error { return nil }

func (s *Store) load() ([]model.Event, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Event{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	if len(b) == 0 {
		return []model.Event{}, nil
	}
	var events []model.Event
	if err := json.Unmarshal(b, &events); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("events file is not valid JSON")
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return events, nil
}

// save rewrites the whole file through a temp file + rename.
func (s *Store) save(events []model.Event) error {
	b, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".events-*.tmp")
	if err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	s.log.Debug().Str("path", s.path).Int("events", len(events)).Msg("journal saved")
	return nil
}

func indexOf(events []model.Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
