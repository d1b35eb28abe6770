// Package guard decides whether a detected usage is protected by a
// feature-detection check. Both strategies are heuristics: the structural one
// only understands a few conditional shapes and the textual one only looks at
// the nearest preceding condition.
package guard

import (
	"regexp"

	"go.uber.org/zap"

	"baseliner/internal/detector"
	"baseliner/internal/logging"
	"baseliner/internal/model"
	"baseliner/internal/syntax"
)

// Lookback is how many bytes before a usage the textual strategy inspects.
const Lookback = 800

var (
	lastIf       = regexp.MustCompile(`\bif\s*\([^\n{]*\{`)
	lastSupports = regexp.MustCompile(`@supports\b[^{;]*\{`)
)

// Classifier applies the per-feature guard rules.
type Classifier struct {
	logger *zap.SugaredLogger
}

// New creates a classifier. A nil logger discards output.
func New(logger *zap.SugaredLogger) *Classifier {
	return &Classifier{logger: logging.Nop(logger)}
}

// Classify reports whether cand is guarded. Features without rules are never guarded.
func (c *Classifier) Classify(res detector.Result, content string, cand detector.Candidate) bool {
	r, ok := rules[cand.FeatureID]
	if !ok {
		return false
	}
	if res.Tree != nil && cand.Node != syntax.None {
		if r.test == nil {
			return false
		}
		return structural(res.Tree, res.Aliases, cand.Node, r.test)
	}
	guarded := textual(res.Kind, content, cand.Offset, r)
	if guarded {
		c.logger.Debugw("textual guard", "feature", cand.FeatureID, "line", cand.Line)
	}
	return guarded
}

// structural walks from the usage to the root through the parent index and
// checks each enclosing conditional whose guarded branch holds the usage.
func structural(t *syntax.Tree, aliases syntax.Aliases, use syntax.NodeID, test predicate) bool {
	if t.IsOptionalCall(use) {
		return true
	}

	for cur, p := use, t.Parent(use); p != syntax.None; cur, p = p, t.Parent(p) {
		switch t.Kind(p) {
		case "if_statement", "ternary_expression":
			cond := t.Field(p, "condition")
			if cur == cond {
				continue
			}
			inner, positive := polarity(t, cond)
			switch cur {
			case t.Field(p, "consequence"):
				if positive && test(t, inner, aliases) {
					return true
				}
			case t.Field(p, "alternative"):
				if !positive && test(t, inner, aliases) {
					return true
				}
			}
		case "binary_expression":
			if t.HasToken(p, "&&") && cur == t.Field(p, "right") && test(t, t.Field(p, "left"), aliases) {
				return true
			}
		}
	}
	return false
}

// polarity strips negations from a condition. positive is false when the
// condition is true exactly when the tested thing is absent: `!x`,
// `typeof x === 'undefined'`, `x == null`.
func polarity(t *syntax.Tree, cond syntax.NodeID) (inner syntax.NodeID, positive bool) {
	inner, positive = t.Unwrap(cond), true
	for {
		switch t.Kind(inner) {
		case "unary_expression":
			if !t.HasToken(inner, "!") {
				return inner, positive
			}
			inner, positive = t.Unwrap(t.Field(inner, "argument")), !positive
		case "binary_expression":
			side, ok := undefinedComparison(t, inner)
			if !ok {
				return inner, positive
			}
			if t.HasToken(inner, "===") || t.HasToken(inner, "==") {
				positive = !positive
			}
			inner = side
		default:
			return inner, positive
		}
	}
}

// undefinedComparison returns the other operand of a comparison against
// undefined or null.
func undefinedComparison(t *syntax.Tree, id syntax.NodeID) (syntax.NodeID, bool) {
	eq := t.HasToken(id, "===") || t.HasToken(id, "==") || t.HasToken(id, "!==") || t.HasToken(id, "!=")
	if !eq {
		return syntax.None, false
	}
	left, right := t.Unwrap(t.Field(id, "left")), t.Unwrap(t.Field(id, "right"))
	switch {
	case isAbsent(t, right):
		return left, true
	case isAbsent(t, left):
		return right, true
	}
	return syntax.None, false
}

func isAbsent(t *syntax.Tree, id syntax.NodeID) bool {
	switch t.Kind(id) {
	case "undefined", "null":
		return true
	case "identifier":
		return t.Text(id) == "undefined"
	}
	v, ok := t.StringValue(id)
	return ok && v == "undefined"
}

// textual inspects the last conditional header in the lookback window.
func textual(kind model.FileKind, content string, offset int, r rule) bool {
	var header, guard *regexp.Regexp
	switch kind {
	case model.KindScript:
		header, guard = lastIf, r.script
	case model.KindStyle:
		header, guard = lastSupports, r.style
	}
	if guard == nil || offset > len(content) {
		return false
	}
	start := offset - Lookback
	if start < 0 {
		start = 0
	}
	matches := header.FindAllString(content[start:offset], -1)
	if len(matches) == 0 {
		return false
	}
	return guard.MatchString(matches[len(matches)-1])
}
