package detector

import (
	"strings"

	"baseliner/internal/syntax"
)

// shape matches one structural usage of a feature.
type shape struct {
	feature string
	kind    string // node kind the shape applies to
	match   func(t *syntax.Tree, id syntax.NodeID, aliases syntax.Aliases) bool
}

// aliasableGlobals can be bound to a local name and used through it.
var aliasableGlobals = map[string]bool{
	"URLPattern": true,
	"URL":        true,
	"Promise":    true,
	"navigator":  true,
	"document":   true,
}

var clipboardMethods = map[string]bool{
	"readText":  true,
	"writeText": true,
	"read":      true,
	"write":     true,
}

var filePickers = map[string]bool{
	"showOpenFilePicker":  true,
	"showSaveFilePicker":  true,
	"showDirectoryPicker": true,
}

func calleeIs(path string) func(*syntax.Tree, syntax.NodeID, syntax.Aliases) bool {
	return func(t *syntax.Tree, id syntax.NodeID, aliases syntax.Aliases) bool {
		return t.PathIs(t.Field(id, "function"), aliases, path)
	}
}

func methodNamed(name string) func(*syntax.Tree, syntax.NodeID, syntax.Aliases) bool {
	return func(t *syntax.Tree, id syntax.NodeID, _ syntax.Aliases) bool {
		fn := t.Unwrap(t.Field(id, "function"))
		return t.Kind(fn) == "member_expression" && t.Text(t.Field(fn, "property")) == name
	}
}

var shapes = []shape{
	{feature: "navigator-share", kind: "call_expression", match: calleeIs("navigator.share")},
	{
		feature: "async-clipboard",
		kind:    "call_expression",
		match: func(t *syntax.Tree, id syntax.NodeID, aliases syntax.Aliases) bool {
			p := t.MemberPath(t.Field(id, "function"), aliases)
			return len(p) == 3 && p[0] == "navigator" && p[1] == "clipboard" && clipboardMethods[p[2]]
		},
	},
	{feature: "structured-clone", kind: "call_expression", match: calleeIs("structuredClone")},
	{feature: "array-prototype-at", kind: "call_expression", match: methodNamed("at")},
	{feature: "promise-any", kind: "call_expression", match: calleeIs("Promise.any")},
	{
		feature: "urlpattern",
		kind:    "new_expression",
		match: func(t *syntax.Tree, id syntax.NodeID, aliases syntax.Aliases) bool {
			return t.PathIs(t.Field(id, "constructor"), aliases, "URLPattern")
		},
	},
	{feature: "url-canparse", kind: "call_expression", match: calleeIs("URL.canParse")},
	{feature: "view-transitions", kind: "call_expression", match: calleeIs("document.startViewTransition")},
	{
		feature: "file-system-access-picker",
		kind:    "call_expression",
		match: func(t *syntax.Tree, id syntax.NodeID, aliases syntax.Aliases) bool {
			p := t.MemberPath(t.Field(id, "function"), aliases)
			return len(p) == 1 && filePickers[p[0]]
		},
	},
	{feature: "html-dialog", kind: "call_expression", match: methodNamed("showModal")},
}

// collectAliases records `const X = G` and `X = G` bindings of aliasable globals.
// Scoping is ignored: a binding anywhere in the file applies everywhere.
func collectAliases(t *syntax.Tree) syntax.Aliases {
	aliases := syntax.Aliases{}
	bind := func(name, value syntax.NodeID) {
		if t.Kind(name) != "identifier" || value == syntax.None {
			return
		}
		p := t.MemberPath(value, aliases)
		if len(p) != 1 || !aliasableGlobals[p[0]] {
			return
		}
		local := t.Text(name)
		if local != p[0] && !aliasableGlobals[local] {
			aliases[local] = p[0]
		}
	}

	t.Walk(t.Root(), func(id syntax.NodeID) bool {
		switch t.Kind(id) {
		case "variable_declarator":
			bind(t.Field(id, "name"), t.Field(id, "value"))
		case "assignment_expression":
			bind(t.Field(id, "left"), t.Field(id, "right"))
		}
		return true
	})
	return aliases
}

// detectStructural walks the tree once and tests every enabled shape on each node.
func (d *Detector) detectStructural(t *syntax.Tree, aliases syntax.Aliases, lines *syntax.LineIndex) []Candidate {
	byKind := map[string][]shape{}
	for _, s := range shapes {
		if d.enabled(s.feature) {
			byKind[s.kind] = append(byKind[s.kind], s)
		}
	}

	var out []Candidate
	t.Walk(t.Root(), func(id syntax.NodeID) bool {
		for _, s := range byKind[t.Kind(id)] {
			if s.match(t, id, aliases) {
				out = append(out, newCandidate(s.feature, t.Node(id).Start, id, lines))
			}
		}
		return true
	})
	return out
}

// describe is used in debug logs.
func describe(aliases syntax.Aliases) string {
	parts := make([]string, 0, len(aliases))
	for k, v := range aliases {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}
