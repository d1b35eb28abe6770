package crawler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"baseliner/internal/logging"
	"baseliner/internal/model"
)

const (
	DefaultBatchSize = 200
	DefaultReadLimit = 16
)

// DefaultIgnored are directory names never descended into.
var DefaultIgnored = []string{"node_modules", ".git", "dist", "build", "out", "vendor", "coverage", ".next"}

// Crawler finds scannable web sources under a root and reads them in batches.
type Crawler struct {
	ignored   map[string]bool
	gitignore bool
	batchSize int
	readLimit int
	only      map[string]bool
	logger    *zap.SugaredLogger
}

// NewCrawler creates a crawler. Empty ignored selects DefaultIgnored.
// .gitignore files are honoured unless turned off with WithGitignore.
func NewCrawler(ignored []string, logger *zap.SugaredLogger) *Crawler {
	if len(ignored) == 0 {
		ignored = DefaultIgnored
	}
	c := &Crawler{
		ignored:   make(map[string]bool, len(ignored)),
		gitignore: true,
		batchSize: DefaultBatchSize,
		readLimit: DefaultReadLimit,
		logger:    logging.Nop(logger),
	}
	for _, name := range ignored {
		c.ignored[name] = true
	}
	return c
}

// WithBatchSize sets how many files are read before a batch is handed over.
func (c *Crawler) WithBatchSize(n int) *Crawler {
	if n > 0 {
		c.batchSize = n
	}
	return c
}

// WithGitignore toggles skipping paths matched by .gitignore files.
func (c *Crawler) WithGitignore(enabled bool) *Crawler {
	c.gitignore = enabled
	return c
}

// Only restricts the crawl to the given root-relative, slash separated paths.
func (c *Crawler) Only(paths []string) *Crawler {
	c.only = make(map[string]bool, len(paths))
	for _, p := range paths {
		c.only[filepath.ToSlash(filepath.Clean(p))] = true
	}
	return c
}

// List returns the root-relative paths of every scannable file, sorted.
// Directories that cannot be read are logged and skipped; only a failure on
// root itself is returned.
func (c *Crawler) List(root string) ([]string, error) {
	var rules *gitignoreRules
	if c.gitignore {
		rules = newGitignoreRules(root, c.logger)
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			c.logger.Warnw("Skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == root {
				if rules != nil {
					rules.load("")
				}
				return nil
			}
			if c.ignored[d.Name()] || (rules != nil && rules.Ignored(rel, true)) {
				return filepath.SkipDir
			}
			if rules != nil {
				rules.load(rel)
			}
			return nil
		}

		if model.KindOf(d.Name()) == model.KindUnknown {
			return nil
		}
		if c.only != nil && !c.only[rel] {
			return nil
		}
		if rules != nil && rules.Ignored(rel, false) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Scan lists the files under root and hands them to onBatch in path order, one
// batch at a time. Files in a batch are read concurrently; unreadable files are
// logged and left out, and invalid UTF-8 is replaced with U+FFFD. Scan stops
// when ctx is cancelled or onBatch fails.
func (c *Crawler) Scan(ctx context.Context, root string, onBatch func([]model.FileRef) error) error {
	paths, err := c.List(root)
	if err != nil {
		return err
	}

	for start := 0; start < len(paths); start += c.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+c.batchSize, len(paths))

		batch, err := c.readBatch(ctx, root, paths[start:end])
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			continue
		}
		if err := onBatch(batch); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) readBatch(ctx context.Context, root string, paths []string) ([]model.FileRef, error) {
	refs := make([]model.FileRef, len(paths))
	ok := make([]bool, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(c.readLimit)
	for i, rel := range paths {
		g.Go(func() error {
			data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				c.logger.Warnw("Skipping unreadable file", "file", rel, "error", err)
				return nil
			}
			content := string(data)
			if !utf8.ValidString(content) {
				c.logger.Warnw("File is not valid UTF-8, replacing invalid bytes", "file", rel)
				content = strings.ToValidUTF8(content, "\uFFFD")
			}
			refs[i] = model.FileRef{Path: rel, Content: content}
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := refs[:0]
	for i, r := range refs {
		if ok[i] {
			out = append(out, r)
		}
	}
	return out, nil
}
