package syntax

import "strings"

// transparent wrappers that do not change which object an expression refers to
var transparent = map[string]bool{
	"parenthesized_expression": true,
	"as_expression":            true,
	"satisfies_expression":     true,
	"non_null_expression":      true,
	"type_assertion":           true,
}

// globalObjects are stripped from the front of a member path.
var globalObjects = map[string]bool{
	"window":     true,
	"globalThis": true,
	"self":       true,
}

// Unwrap strips parentheses and TypeScript casts: `(navigator as any)` -> `navigator`.
func (t *Tree) Unwrap(id NodeID) NodeID {
	for id != None && transparent[t.Kind(id)] {
		named := t.NamedChildren(id)
		if len(named) == 0 {
			return None
		}
		// for type_assertion the expression follows the type arguments
		if t.Kind(id) == "type_assertion" {
			id = named[len(named)-1]
			continue
		}
		id = named[0]
	}
	return id
}

// Aliases maps local names to the global they were bound to.
type Aliases map[string]string

// Resolve returns the global a name refers to, following alias chains.
func (a Aliases) Resolve(name string) string {
	seen := 0
	for {
		target, ok := a[name]
		if !ok || target == name || seen > len(a) {
			return name
		}
		name = target
		seen++
	}
}

// MemberPath flattens a chain of identifiers and property accesses, e.g.
// `window.navigator?.clipboard` -> [navigator clipboard]. Leading global objects
// are dropped and the head is resolved through aliases. It returns nil when the
// expression is not a plain chain (calls, subscripts, literals).
func (t *Tree) MemberPath(id NodeID, aliases Aliases) []string {
	var rev []string
	cur := t.Unwrap(id)
	for t.Kind(cur) == "member_expression" {
		prop := t.Field(cur, "property")
		if prop == None {
			return nil
		}
		rev = append(rev, t.Text(prop))
		cur = t.Unwrap(t.Field(cur, "object"))
	}
	switch t.Kind(cur) {
	case "identifier", "this":
		rev = append(rev, t.Text(cur))
	default:
		return nil
	}

	path := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	path[0] = aliases.Resolve(path[0])
	for len(path) > 1 && globalObjects[path[0]] {
		path = path[1:]
		path[0] = aliases.Resolve(path[0])
	}
	return path
}

// PathIs reports whether the member path of id equals the dotted form want.
func (t *Tree) PathIs(id NodeID, aliases Aliases, want string) bool {
	p := t.MemberPath(id, aliases)
	return p != nil && strings.Join(p, ".") == want
}

// IsOptionalCall reports whether a call is written `f?.()`.
func (t *Tree) IsOptionalCall(id NodeID) bool {
	id = t.Unwrap(id)
	return t.Kind(id) == "call_expression" && t.Field(id, "optional_chain") != None
}

// StringValue returns the unquoted value of a string literal node.
func (t *Tree) StringValue(id NodeID) (string, bool) {
	id = t.Unwrap(id)
	if t.Kind(id) != "string" {
		return "", false
	}
	s := t.Text(id)
	if len(s) >= 2 {
		return s[1 : len(s)-1], true
	}
	return "", false
}
