package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// JSONStore keeps the cache in a single JSON document.
type JSONStore struct {
	path string
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load(ctx context.Context) (*Shape, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	var shape Shape
	if err := json.NewDecoder(f).Decode(&shape); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}
	return &shape, nil
}

// Save writes to a temporary file next to the target and renames it over,
// so readers never see a partial document.
func (s *JSONStore) Save(ctx context.Context, shape *Shape) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(shape); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }
