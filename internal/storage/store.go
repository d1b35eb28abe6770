package storage

import (
	"context"
	"path/filepath"
	"strings"

	"baseliner/internal/model"
)

// Entry is the persisted result of analyzing one file.
type Entry struct {
	ContentHash        string          `json:"contentHash"`
	TargetsFingerprint string          `json:"advisoryTargetsFingerprint"`
	Findings           []model.Finding `json:"findings"`
}

// Shape is the whole persisted cache.
type Shape struct {
	Version           int              `json:"version"`
	ConfigFingerprint string           `json:"configFingerprint"`
	ByFile            map[string]Entry `json:"byFile"`
}

// Store persists a cache Shape between sessions.
type Store interface {
	// Load returns the persisted shape, or nil when nothing has been saved yet.
	Load(ctx context.Context) (*Shape, error)

	// Save replaces the persisted shape with s.
	Save(ctx context.Context, s *Shape) error

	Close() error
}

// Open picks a store by the file extension of path: SQLite for .db, .sqlite
// and .sqlite3, a JSON file otherwise.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(path), nil
	}
}
