package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"baseliner/internal/analysis"
	"baseliner/internal/cache"
	"baseliner/internal/compat"
	"baseliner/internal/config"
	"baseliner/internal/crawler"
	"baseliner/internal/engine"
	"baseliner/internal/features"
	"baseliner/internal/git"
	"baseliner/internal/logging"
	"baseliner/internal/model"
	"baseliner/internal/storage"
)

// Scan is one scan session over a directory tree.
type Scan struct {
	Root   string
	Config *config.Config
	Logger *zap.SugaredLogger

	// Since restricts the scan to files and lines changed relative to this git ref.
	Since string

	// NoCache skips reading and writing the result cache.
	NoCache bool
}

// Report is the outcome of a scan.
type Report struct {
	Findings     []model.Finding `json:"findings"`
	FilesScanned int             `json:"filesScanned"`
	CacheHits    int             `json:"cacheHits"`
	Targets      []string        `json:"targets,omitempty"`
	TargetSource string          `json:"targetSource"`
}

// NeedsGuard counts the findings that still need a guard.
func (r *Report) NeedsGuard() int {
	n := 0
	for _, f := range r.Findings {
		if f.Advice == model.AdviceNeedsGuard {
			n++
		}
	}
	return n
}

type session struct {
	targets      []string
	targetSource string
	resolver     *compat.Resolver
	cache        *cache.Cache
	store        storage.Store
	changes      []git.ChangedFile
}

func (s *Scan) Run(ctx context.Context) (*Report, error) {
	if s.Config == nil {
		s.Config = config.Default()
	}
	s.Logger = logging.Nop(s.Logger)
	if s.Root == "" {
		s.Root = "."
	}

	sess, err := s.prepareStage()
	if err != nil {
		return nil, err
	}

	s.cacheStage(ctx, sess)
	if sess.store != nil {
		defer sess.store.Close()
	}

	if s.Since != "" {
		if err := s.changesStage(ctx, sess); err != nil {
			return nil, err
		}
	}

	report, err := s.analyzeStage(ctx, sess)
	if err != nil {
		return nil, err
	}

	if t := s.Config.UnsupportedThreshold; t != nil {
		report.Findings = engine.ApplyThreshold(report.Findings, *t)
	}

	s.persistStage(ctx, sess)
	return report, nil
}

func (s *Scan) prepareStage() (*session, error) {
	targets, source, err := s.Config.ResolveTargets(s.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve targets: %w", err)
	}

	ds, err := compat.LoadDataset(s.Config.Data.Caniuse, s.Config.Data.WebFeatures)
	if err != nil {
		return nil, fmt.Errorf("failed to load compatibility data: %w", err)
	}
	resolver := compat.NewResolver(features.Default(), ds, s.Logger)

	if len(targets) > 0 {
		agents, err := resolver.Agents(targets)
		if err != nil {
			s.Logger.Warnw("Targets do not resolve, unsupported shares will be omitted", "targets", targets, "error", err)
		} else {
			s.Logger.Infow("Resolved targets", "source", source, "agents", len(agents))
		}
	}

	return &session{targets: targets, targetSource: source, resolver: resolver}, nil
}

// cacheStage opens the result cache. Any failure leaves the session uncached
// or memory-only; it never fails the scan.
func (s *Scan) cacheStage(ctx context.Context, sess *session) {
	if s.NoCache || !s.Config.Cache.Enabled {
		return
	}

	path := s.Config.CachePath(s.Root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.Logger.Warnw("Cache directory unavailable, continuing without cache", "path", path, "error", err)
		return
	}
	store, err := storage.Open(path)
	if err != nil {
		s.Logger.Warnw("Cache store unavailable, continuing without persistence", "path", path, "error", err)
		sess.cache = cache.Open(ctx, nil, s.Config.Fingerprint(), s.Logger)
		return
	}
	sess.store = store
	sess.cache = cache.Open(ctx, store, s.Config.Fingerprint(), s.Logger)
}

func (s *Scan) changesStage(ctx context.Context, sess *session) error {
	changes, err := git.ChangedFiles(ctx, s.Root, s.Since)
	if err != nil {
		return fmt.Errorf("failed to get git changes: %w", err)
	}
	s.Logger.Infow("Detected changed files", "since", s.Since, "files", len(changes))
	sess.changes = changes
	return nil
}

func (s *Scan) analyzeStage(ctx context.Context, sess *session) (*Report, error) {
	start := time.Now()
	eng := engine.New(engine.Options{
		Resolver:       sess.resolver,
		Cache:          sess.cache,
		Logger:         s.Logger,
		Disabled:       s.Config.Features.Disabled,
		RefineBaseline: s.Config.Features.RefineBaseline,
	})

	cr := crawler.NewCrawler(s.Config.Scan.Ignore, s.Logger).
		WithBatchSize(s.Config.Scan.BatchSize).
		WithGitignore(s.Config.Scan.Gitignore)
	if s.Since != "" {
		cr.Only(git.Paths(sess.changes))
	}

	report := &Report{Targets: sess.targets, TargetSource: sess.targetSource}
	opts := model.AnalyzeOptions{Targets: sess.targets}
	err := cr.Scan(ctx, s.Root, func(batch []model.FileRef) error {
		for _, f := range batch {
			findings, err := eng.AnalyzeFile(f, opts)
			if err != nil {
				s.Logger.Warnw("Skipping file", "file", f.Path, "error", err)
				continue
			}
			report.Findings = append(report.Findings, findings...)
			report.FilesScanned++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if s.Since != "" {
		report.Findings = analysis.FilterChanged(report.Findings, sess.changes)
	}
	if sess.cache != nil {
		report.CacheHits, _ = sess.cache.Stats()
	}

	s.Logger.Infow("Scan complete", "files", report.FilesScanned, "findings", len(report.Findings),
		"cacheHits", report.CacheHits, "elapsed", time.Since(start))
	return report, nil
}

// persistStage writes the cache back. Entries of files that no longer exist
// are pruned on full scans only, since a --since scan sees a subset.
func (s *Scan) persistStage(ctx context.Context, sess *session) {
	if sess.cache == nil {
		return
	}
	if s.Since == "" {
		if n := sess.cache.Prune(); n > 0 {
			s.Logger.Debugw("Pruned cache entries", "removed", n)
		}
	}
	if err := sess.cache.Save(ctx); err != nil {
		s.Logger.Warnw("Failed to save cache", "error", err)
	}
}
