package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// SavedStore is the set of bookmarked object ids, persisted as a JSON
// array of strings. It never talks to the server.
type SavedStore struct {
	path string
	mu   sync.RWMutex
	ids  []string
}

func NewSavedStore(path string) *SavedStore {
	return &SavedStore{path: path}
}

// Load reads the file. A missing file is an empty set.
func (s *SavedStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.ids = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read saved objects: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("failed to decode saved objects: %w", err)
	}

	s.ids = s.ids[:0]
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return nil
}

// Toggle adds or removes id and persists the set. It reports whether id is now saved.
// On a write failure the in-memory set is left unchanged.
func (s *SavedStore) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, len(s.ids)+1)
	saved := true
	for _, existing := range s.ids {
		if existing == id {
			saved = false
			continue
		}
		next = append(next, existing)
	}
	if saved {
		next = append(next, id)
	}

	if err := s.write(next); err != nil {
		return !saved, err
	}
	s.ids = next
	return saved, nil
}

func (s *SavedStore) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (s *SavedStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]string, 0, len(s.ids)), s.ids...)
}

func (s *SavedStore) write(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create saved objects directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write saved objects: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace saved objects: %w", err)
	}
	return nil
}
