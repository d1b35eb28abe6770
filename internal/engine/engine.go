// Package engine turns file contents into findings: it detects feature usages,
// classifies their guards and attaches compatibility estimates.
package engine

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"baseliner/internal/cache"
	"baseliner/internal/compat"
	"baseliner/internal/detector"
	"baseliner/internal/features"
	"baseliner/internal/guard"
	"baseliner/internal/logging"
	"baseliner/internal/model"
)

var (
	ErrEmptyPath   = errors.New("file reference has an empty path")
	ErrInvalidUTF8 = errors.New("file content is not valid UTF-8")
)

// Options wires an Engine. Zero values select the built-in registry and
// dataset, no cache and a discarding logger.
type Options struct {
	Registry *features.Registry
	Resolver *compat.Resolver
	Cache    *cache.Cache
	Logger   *zap.SugaredLogger

	// Disabled feature ids are never reported.
	Disabled []string

	// RefineBaseline lets the web-features Baseline status override the
	// catalog status when the dataset marks a feature as Baseline.
	RefineBaseline bool
}

type Engine struct {
	registry       *features.Registry
	detector       *detector.Detector
	classifier     *guard.Classifier
	resolver       *compat.Resolver
	cache          *cache.Cache
	logger         *zap.SugaredLogger
	refineBaseline bool
}

func New(opts Options) *Engine {
	reg := opts.Registry
	if reg == nil {
		reg = features.Default()
	}
	logger := logging.Nop(opts.Logger)
	resolver := opts.Resolver
	if resolver == nil {
		resolver = compat.NewResolver(reg, nil, logger)
	}
	return &Engine{
		registry:       reg,
		detector:       detector.New(reg, logger, opts.Disabled),
		classifier:     guard.New(logger),
		resolver:       resolver,
		cache:          opts.Cache,
		logger:         logger,
		refineBaseline: opts.RefineBaseline,
	}
}

// Analyze processes files in order. Findings keep file order and, within a
// file, detection order. It fails only on malformed file references.
func (e *Engine) Analyze(files []model.FileRef, opts model.AnalyzeOptions) ([]model.Finding, error) {
	var out []model.Finding
	for _, f := range files {
		findings, err := e.AnalyzeFile(f, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, findings...)
	}
	return out, nil
}

// AnalyzeFile returns the findings of one file, served from the cache when
// its content and the target list are unchanged.
func (e *Engine) AnalyzeFile(f model.FileRef, opts model.AnalyzeOptions) ([]model.Finding, error) {
	if f.Path == "" {
		return nil, ErrEmptyPath
	}
	if !utf8.ValidString(f.Content) {
		return nil, fmt.Errorf("%s: %w", f.Path, ErrInvalidUTF8)
	}

	var hash string
	if e.cache != nil {
		hash = cache.HashContent(f.Content)
		if cached, ok := e.cache.Get(f.Path, hash, opts.Targets); ok {
			e.logger.Debugw("Cache hit", "file", f.Path, "findings", len(cached))
			return cached, nil
		}
	}

	findings := e.analyze(f, opts.Targets)

	if e.cache != nil {
		e.cache.Put(f.Path, hash, opts.Targets, findings)
	}
	return findings, nil
}

func (e *Engine) analyze(f model.FileRef, targets []string) []model.Finding {
	res := e.detector.Detect(f.Content, f.Path)
	if len(res.Candidates) == 0 {
		return nil
	}

	findings := make([]model.Finding, 0, len(res.Candidates))
	for _, cand := range res.Candidates {
		meta, ok := e.registry.Get(cand.FeatureID)
		if !ok {
			continue
		}

		status := meta.Baseline
		if e.refineBaseline && status != model.BaselineYes && e.resolver.IsBaseline(meta.ID) {
			status = model.BaselineYes
		}
		guarded := e.classifier.Classify(res, f.Content, cand)
		advice := model.DeriveAdvice(status, guarded)

		finding := model.Finding{
			File:       f.Path,
			Line:       cand.Line,
			Column:     cand.Column,
			FeatureID:  meta.ID,
			Title:      meta.Title,
			Baseline:   status,
			Severity:   model.SeverityFor(advice),
			DocsURL:    meta.DocsURL,
			Suggestion: meta.Suggestion,
			Guarded:    guarded,
			Advice:     advice,
		}
		if len(targets) > 0 {
			if pct, ok := e.resolver.Resolve(meta.ID, targets); ok {
				unsupported := compat.UnsupportedPercent(pct)
				finding.UnsupportedPercent = &unsupported
			}
		}
		findings = append(findings, finding)
	}

	e.logger.Debugw("Analyzed file", "file", f.Path, "kind", res.Kind, "strategy", res.Strategy, "findings", len(findings))
	return findings
}

// ApplyThreshold downgrades needs-guard findings whose unsupported share is
// known and at most pct. It returns a new slice and leaves findings untouched.
func ApplyThreshold(findings []model.Finding, pct float64) []model.Finding {
	out := make([]model.Finding, len(findings))
	copy(out, findings)
	for i := range out {
		f := &out[i]
		if f.Advice != model.AdviceNeedsGuard || f.UnsupportedPercent == nil {
			continue
		}
		if *f.UnsupportedPercent <= pct {
			f.Advice = model.AdviceSafe
			f.Severity = model.SeverityFor(f.Advice)
		}
	}
	return out
}
