package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			path TEXT PRIMARY KEY,
			content_hash TEXT,
			targets TEXT,
			findings JSON
		);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

const (
	metaVersion     = "version"
	metaFingerprint = "config_fingerprint"
)

func (s *SQLiteStore) Load(ctx context.Context) (*Shape, error) {
	var version string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaVersion).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache version: %w", err)
	}

	shape := &Shape{ByFile: map[string]Entry{}}
	if shape.Version, err = strconv.Atoi(version); err != nil {
		return nil, fmt.Errorf("failed to parse cache version %q: %w", version, err)
	}
	err = s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", metaFingerprint).Scan(&shape.ConfigFingerprint)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read config fingerprint: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT path, content_hash, targets, findings FROM entries")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			path     string
			e        Entry
			findings []byte
		)
		if err := rows.Scan(&path, &e.ContentHash, &e.TargetsFingerprint, &findings); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := json.Unmarshal(findings, &e.Findings); err != nil {
			return nil, fmt.Errorf("failed to decode findings of %s: %w", path, err)
		}
		shape.ByFile[path] = e
	}
	return shape, rows.Err()
}

// Save replaces every stored entry with the contents of shape in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, shape *Shape) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	metaStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`)
	if err != nil {
		return err
	}
	defer metaStmt.Close()

	if _, err := metaStmt.ExecContext(ctx, metaVersion, strconv.Itoa(shape.Version)); err != nil {
		return fmt.Errorf("failed to save cache version: %w", err)
	}
	if _, err := metaStmt.ExecContext(ctx, metaFingerprint, shape.ConfigFingerprint); err != nil {
		return fmt.Errorf("failed to save config fingerprint: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (path, content_hash, targets, findings) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash=excluded.content_hash,
			targets=excluded.targets,
			findings=excluded.findings
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for path, e := range shape.ByFile {
		findings, err := json.Marshal(e.Findings)
		if err != nil {
			return fmt.Errorf("failed to encode findings of %s: %w", path, err)
		}
		if _, err := stmt.ExecContext(ctx, path, e.ContentHash, e.TargetsFingerprint, findings); err != nil {
			return fmt.Errorf("failed to save entry %s: %w", path, err)
		}
	}

	return tx.Commit()
}
