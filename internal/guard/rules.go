package guard

import (
	"regexp"
	"strings"

	"baseliner/internal/syntax"
)

// predicate reports whether a conditional test checks for a feature.
type predicate func(t *syntax.Tree, test syntax.NodeID, aliases syntax.Aliases) bool

// rule pairs the structural predicate of a feature with the text patterns used
// when no tree is available. Each detectable feature that can be guarded needs
// an entry here in addition to its detection shape and pattern.
type rule struct {
	test   predicate
	script *regexp.Regexp // matched against the last `if (...) {` before the usage
	style  *regexp.Regexp // matched against the last `@supports ... {` before the usage
}

var rules = map[string]rule{
	"navigator-share": {
		test:   anyOf(hasPath("navigator.share"), inCheck("share", "navigator")),
		script: regexp.MustCompile(`navigator[^\n{]*\bshare\b`),
	},
	"async-clipboard": {
		test:   anyOf(hasPath("navigator.clipboard"), inCheck("clipboard", "navigator")),
		script: regexp.MustCompile(`navigator[^\n{]*\bclipboard\b`),
	},
	"url-canparse": {
		test:   anyOf(hasPath("URL.canParse"), inCheck("canParse", "URL")),
		script: regexp.MustCompile(`\bURL[^\n{]*\bcanParse\b`),
	},
	"view-transitions": {
		test:   anyOf(inCheck("startViewTransition", "document"), hasPath("document.startViewTransition")),
		script: regexp.MustCompile(`startViewTransition[^\n{]*\bin\b[^\n{]*document|document[^\n{]*\.\s*startViewTransition\b`),
	},
	"file-system-access-picker": {
		test: anyOf(
			hasPath("showOpenFilePicker"), hasPath("showSaveFilePicker"), hasPath("showDirectoryPicker"),
			inCheck("showOpenFilePicker", ""), inCheck("showSaveFilePicker", ""), inCheck("showDirectoryPicker", ""),
		),
		script: regexp.MustCompile(`\bshow(?:OpenFile|SaveFile|Directory)Picker\b`),
	},
	"urlpattern": {
		test:   anyOf(hasPath("URLPattern"), inCheck("URLPattern", "")),
		script: regexp.MustCompile(`\bURLPattern\b`),
	},
	"promise-any": {
		test:   anyOf(hasPath("Promise.any"), inCheck("any", "Promise")),
		script: regexp.MustCompile(`\bPromise\s*\.\s*any\b|['"]any['"]\s+in\s+Promise\b`),
	},
	"array-prototype-at": {
		test:   anyOf(hasProperty("at"), inCheck("at", "*")),
		script: regexp.MustCompile(`\.\s*at\b|['"]at['"]\s+in\b`),
	},
	"html-dialog": {
		test:   anyOf(hasProperty("showModal"), hasPath("HTMLDialogElement"), inCheck("showModal", "*")),
		script: regexp.MustCompile(`\bshowModal\b|\bHTMLDialogElement\b`),
	},
	"css-has": {
		style: regexp.MustCompile(`(?i)selector\s*\([^{]*:has\b`),
	},
	"css-nesting": {
		style: regexp.MustCompile(`(?i)selector\s*\(\s*&`),
	},
	"css-modal-pseudo": {
		style: regexp.MustCompile(`(?i)selector\s*\([^{]*:modal\b`),
	},
	"css-text-wrap-balance": {
		style: regexp.MustCompile(`(?i)text-wrap(?:-style)?\s*:\s*balance`),
	},
	"css-color-mix": {
		style: regexp.MustCompile(`(?i)color-mix\s*\(`),
	},
	"css-container-queries": {
		style: regexp.MustCompile(`(?i)container-type\s*:|\bcontainer\s*:`),
	},
	"css-color-oklch": {
		style: regexp.MustCompile(`(?i)okl(?:ch|ab)\s*\(`),
	},
}

func anyOf(ps ...predicate) predicate {
	return func(t *syntax.Tree, test syntax.NodeID, aliases syntax.Aliases) bool {
		for _, p := range ps {
			if p(t, test, aliases) {
				return true
			}
		}
		return false
	}
}

// hasPath matches a reference to want anywhere in the test. Longer chains
// starting with want also count: `navigator.clipboard?.writeText` checks
// `navigator.clipboard`.
func hasPath(want string) predicate {
	parts := strings.Split(want, ".")
	return func(t *syntax.Tree, test syntax.NodeID, aliases syntax.Aliases) bool {
		return t.Any(test, func(id syntax.NodeID) bool {
			switch t.Kind(id) {
			case "member_expression", "identifier":
			default:
				return false
			}
			p := t.MemberPath(id, aliases)
			if len(p) < len(parts) {
				return false
			}
			for i := range parts {
				if p[i] != parts[i] {
					return false
				}
			}
			return true
		})
	}
}

// hasProperty matches any access of the named property, on any object.
func hasProperty(name string) predicate {
	return func(t *syntax.Tree, test syntax.NodeID, _ syntax.Aliases) bool {
		return t.Any(test, func(id syntax.NodeID) bool {
			return t.Kind(id) == "member_expression" && t.Text(t.Field(id, "property")) == name
		})
	}
}

// inCheck matches `'prop' in obj`. An empty obj stands for the global object
// (window, globalThis, self); "*" accepts any right-hand side.
func inCheck(prop, obj string) predicate {
	return func(t *syntax.Tree, test syntax.NodeID, aliases syntax.Aliases) bool {
		return t.Any(test, func(id syntax.NodeID) bool {
			if t.Kind(id) != "binary_expression" || !t.HasToken(id, "in") {
				return false
			}
			left := t.Field(id, "left")
			name, ok := t.StringValue(left)
			if !ok {
				return false
			}
			if name != prop {
				return false
			}
			switch obj {
			case "*":
				return true
			case "":
				right := t.Unwrap(t.Field(id, "right"))
				return t.Kind(right) == "identifier" && globalObject[aliases.Resolve(t.Text(right))]
			default:
				return t.PathIs(t.Field(id, "right"), aliases, obj)
			}
		})
	}
}

var globalObject = map[string]bool{"window": true, "globalThis": true, "self": true}
