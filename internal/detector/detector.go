package detector

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"baseliner/internal/features"
	"baseliner/internal/logging"
	"baseliner/internal/model"
	"baseliner/internal/syntax"
)

// Strategy records which path produced the candidates of a file.
type Strategy string

const (
	StrategyNone       Strategy = "none"
	StrategyStructural Strategy = "structural"
	StrategyRegex      Strategy = "regex"
)

// Candidate is one raw usage site.
type Candidate struct {
	FeatureID string
	Offset    int // byte offset of the reported position
	Line      int
	Column    int
	Node      syntax.NodeID // usage node on the structural path, syntax.None otherwise
}

func newCandidate(feature string, offset int, node syntax.NodeID, lines *syntax.LineIndex) Candidate {
	line, col := lines.Position(offset)
	return Candidate{FeatureID: feature, Offset: offset, Line: line, Column: col, Node: node}
}

// Result is the detector output for one file. Tree is nil unless Strategy is structural.
type Result struct {
	Kind       model.FileKind
	Strategy   Strategy
	Tree       *syntax.Tree
	Aliases    syntax.Aliases
	Candidates []Candidate
}

// Detector finds feature usages in one file at a time.
type Detector struct {
	registry *features.Registry
	logger   *zap.SugaredLogger
	disabled map[string]bool
}

// New creates a detector. Features listed in disabled are never reported.
func New(reg *features.Registry, logger *zap.SugaredLogger, disabled []string) *Detector {
	if reg == nil {
		reg = features.Default()
	}
	d := &Detector{registry: reg, logger: logging.Nop(logger), disabled: map[string]bool{}}
	for _, id := range disabled {
		d.disabled[id] = true
	}
	return d
}

func (d *Detector) enabled(feature string) bool {
	if d.disabled[feature] {
		return false
	}
	_, ok := d.registry.Get(feature)
	return ok
}

// Detect dispatches on the file kind. Scripts take the structural path and fall
// back to regex when the parse fails; style and markup files are regex-only.
func (d *Detector) Detect(content, path string) Result {
	kind := model.KindOf(path)
	res := Result{Kind: kind, Strategy: StrategyNone}
	if kind == model.KindUnknown {
		return res
	}
	lines := syntax.NewLineIndex(content)

	if kind == model.KindScript {
		parsed := syntax.Parse(context.Background(), content, syntax.DialectOf(path))
		if parsed.Status == syntax.Parsed {
			aliases, found, err := d.structural(parsed.Tree, lines)
			if err == nil {
				res.Strategy = StrategyStructural
				res.Tree = parsed.Tree
				res.Aliases = aliases
				res.Candidates = normalize(found)
				d.logger.Debugw("structural detection", "path", path, "candidates", len(found), "aliases", describe(aliases))
				return res
			}
			d.logger.Warnw("structural detection failed, using regex", "path", path, "error", err)
		} else {
			d.logger.Debugw("parse failed, using regex", "path", path, "reason", parsed.Reason)
		}
	}

	found := d.scanPatterns(content, lines, patternsByKind[kind])
	switch kind {
	case model.KindScript:
		found = append(found, d.scanURLPatternAliases(content, lines)...)
	case model.KindStyle:
		found = dropSupportsConditions(content, found)
	}
	res.Strategy = StrategyRegex
	res.Candidates = normalize(found)
	return res
}

func (d *Detector) structural(t *syntax.Tree, lines *syntax.LineIndex) (aliases syntax.Aliases, out []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			aliases, out, err = nil, nil, fmt.Errorf("structural walk: %v", r)
		}
	}()
	aliases = collectAliases(t)
	return aliases, d.detectStructural(t, aliases, lines), nil
}

func dropSupportsConditions(content string, in []Candidate) []Candidate {
	spans := supportsPrelude.FindAllStringIndex(content, -1)
	if len(spans) == 0 {
		return in
	}
	out := in[:0]
	for _, c := range in {
		inside := false
		for _, s := range spans {
			if c.Offset >= s[0] && c.Offset < s[1] {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, c)
		}
	}
	return out
}

// normalize drops duplicate (feature, offset) pairs and orders by offset, then feature id.
func normalize(in []Candidate) []Candidate {
	if len(in) == 0 {
		return nil
	}
	type key struct {
		feature string
		offset  int
	}
	seen := make(map[key]bool, len(in))
	out := make([]Candidate, 0, len(in))
	for _, c := range in {
		k := key{c.FeatureID, c.Offset}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offset != out[j].Offset {
			return out[i].Offset < out[j].Offset
		}
		return out[i].FeatureID < out[j].FeatureID
	})
	return out
}
