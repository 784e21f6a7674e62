package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/simplebot/pkg/domain"
)

// Store implements ports.StateStore using the local filesystem.
// It stores each bag as a JSON file in a configured directory.
// Scope keys contain slashes, so they are path-escaped into file names.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".simplebot/state".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".simplebot", "state")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.BasePath, url.PathEscape(key)+".json")
}

// Save persists the bag to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, key string, bag domain.Bag) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}

	destPath := s.path(key)

	data, err := json.MarshalIndent(bag, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*.json.partial")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing state file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to state file: %w", err)
	}

	return nil
}

// Load retrieves the bag from its JSON file.
func (s *Store) Load(ctx context.Context, key string) (domain.Bag, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var bag domain.Bag
	if err := json.Unmarshal(data, &bag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if bag == nil {
		bag = domain.Bag{}
	}

	return bag, nil
}

// Delete removes the state file.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}

	return nil
}

// List returns all stored keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list state: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue // Not one of ours
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}
