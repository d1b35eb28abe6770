// Package cache replays findings for files whose content and target list are
// unchanged since the last session.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"baseliner/internal/logging"
	"baseliner/internal/model"
	"baseliner/internal/storage"
)

// FormatVersion changes whenever persisted findings would read differently.
const FormatVersion = 1

type (
	Entry = storage.Entry
	Shape = storage.Shape
)

// Cache is a session view over a persisted Shape. It is safe for concurrent use.
type Cache struct {
	store       storage.Store
	fingerprint string
	logger      *zap.SugaredLogger

	mu     sync.Mutex
	files  map[string]Entry
	seen   map[string]bool
	dirty  bool
	hits   int
	misses int
}

// Open loads the persisted cache. A missing, unreadable or stale cache opens
// empty; only the reason is logged. A nil store gives a memory-only cache.
func Open(ctx context.Context, store storage.Store, fingerprint string, logger *zap.SugaredLogger) *Cache {
	logger = logging.Nop(logger)
	c := &Cache{
		store:       store,
		fingerprint: fingerprint,
		logger:      logger,
		files:       map[string]Entry{},
		seen:        map[string]bool{},
	}
	if store == nil {
		return c
	}

	shape, err := store.Load(ctx)
	switch {
	case err != nil:
		logger.Warnw("Ignoring unreadable cache", "error", err)
		c.dirty = true
	case shape == nil:
	case shape.Version != FormatVersion || shape.ConfigFingerprint != fingerprint:
		logger.Infow("Cache is stale, starting empty", "version", shape.Version, "fingerprint", shape.ConfigFingerprint)
		c.dirty = true
	default:
		for path, e := range shape.ByFile {
			c.files[path] = e
		}
		logger.Debugw("Loaded cache", "entries", len(c.files))
	}
	return c
}

// Get returns the findings stored for path when both the content hash and the
// target list match. The path counts as seen either way.
func (c *Cache) Get(path, contentHash string, targets []string) ([]model.Finding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[path] = true
	e, ok := c.files[path]
	if !ok || e.ContentHash != contentHash || e.TargetsFingerprint != TargetsFingerprint(targets) {
		c.misses++
		return nil, false
	}
	c.hits++
	return cloneFindings(e.Findings), true
}

// Put replaces the entry for path.
func (c *Cache) Put(path, contentHash string, targets []string, findings []model.Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen[path] = true
	c.files[path] = Entry{
		ContentHash:        contentHash,
		TargetsFingerprint: TargetsFingerprint(targets),
		Findings:           cloneFindings(findings),
	}
	c.dirty = true
}

// Prune drops entries for files that were neither read nor written this
// session and returns how many were removed.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for path := range c.files {
		if !c.seen[path] {
			delete(c.files, path)
			removed++
		}
	}
	if removed > 0 {
		c.dirty = true
	}
	return removed
}

// Save persists the cache if anything changed. Callers treat the error as a warning.
func (c *Cache) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil || !c.dirty {
		return nil
	}
	shape := &Shape{
		Version:           FormatVersion,
		ConfigFingerprint: c.fingerprint,
		ByFile:            make(map[string]Entry, len(c.files)),
	}
	for path, e := range c.files {
		shape.ByFile[path] = e
	}
	if err := c.store.Save(ctx, shape); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Stats reports lookups served from and missed by the cache.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len is the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.files)
}

// HashContent is the hex BLAKE3 digest of a file's content.
func HashContent(content string) string {
	sum := blake3.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// TargetsFingerprint serializes the target list as given. Order matters and
// no targets is the same as an empty list.
func TargetsFingerprint(targets []string) string {
	if len(targets) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(targets)
	return string(b)
}

func cloneFindings(in []model.Finding) []model.Finding {
	if in == nil {
		return nil
	}
	out := make([]model.Finding, len(in))
	copy(out, in)
	for i := range out {
		if p := out[i].UnsupportedPercent; p != nil {
			v := *p
			out[i].UnsupportedPercent = &v
		}
	}
	return out
}
