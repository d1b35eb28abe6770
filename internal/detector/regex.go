package detector

import (
	"fmt"
	"regexp"

	"baseliner/internal/syntax"
)

// scanPatterns runs every enabled pattern over content. A failing pattern is
// skipped; the others still run.
func (d *Detector) scanPatterns(content string, lines *syntax.LineIndex, patterns []pattern) []Candidate {
	var out []Candidate
	for _, p := range patterns {
		if !d.enabled(p.feature) {
			continue
		}
		found, err := scanOne(content, lines, p)
		if err != nil {
			d.logger.Warnw("pattern failed", "feature", p.feature, "error", err)
			continue
		}
		out = append(out, found...)
	}
	return out
}

func scanOne(content string, lines *syntax.LineIndex, p pattern) (out []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("scan %s: %v", p.feature, r)
		}
	}()

	for _, loc := range p.re.FindAllStringSubmatchIndex(content, -1) {
		offset := loc[0]
		if p.anchor > 0 && 2*p.anchor+1 < len(loc) && loc[2*p.anchor] >= 0 {
			offset = loc[2*p.anchor]
		}
		out = append(out, newCandidate(p.feature, offset, syntax.None, lines))
	}
	return out, nil
}

// scanURLPatternAliases reports `new P(` for every `P` bound to URLPattern.
func (d *Detector) scanURLPatternAliases(content string, lines *syntax.LineIndex) []Candidate {
	if !d.enabled("urlpattern") {
		return nil
	}
	seen := map[string]bool{}
	var out []Candidate
	for _, m := range urlPatternAlias.FindAllStringSubmatch(content, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		use := pattern{
			feature: "urlpattern",
			re:      regexp.MustCompile(`(?:^|[^\w$.])(new\s+` + regexp.QuoteMeta(name) + `\s*\()`),
			anchor:  1,
		}
		found, err := scanOne(content, lines, use)
		if err != nil {
			d.logger.Warnw("alias pattern failed", "alias", name, "error", err)
			continue
		}
		out = append(out, found...)
	}
	return out
}
