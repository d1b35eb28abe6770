package syntax

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// NodeID addresses a node inside a Tree. The root is 0.
type NodeID int32

// None marks a missing node.
const None NodeID = -1

// Node is one syntax node copied out of the tree-sitter tree.
type Node struct {
	Kind     string
	Field    string // field name under the parent, if any
	Named    bool
	Start    int // byte offsets into the source
	End      int
	Children []NodeID
}

// Tree is an arena of nodes. Parents live in a separate index array so the
// upward walks used for guard detection need no back-pointers.
type Tree struct {
	Source  string
	Nodes   []Node
	Parents []NodeID
}

// Status tags the outcome of a parse attempt.
type Status int

const (
	Parsed Status = iota
	ParseFailed
)

// ParseResult is the tagged result of parsing a script. Tree is nil unless Status is Parsed.
type ParseResult struct {
	Status Status
	Tree   *Tree
	Reason string
}

// Dialect picks the grammar for a script path.
type Dialect string

const (
	DialectJavaScript Dialect = "javascript"
	DialectTypeScript Dialect = "typescript"
	DialectTSX        Dialect = "tsx"
)

// DialectOf chooses a grammar from the file extension.
func DialectOf(path string) Dialect {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return DialectTypeScript
	case ".tsx":
		return DialectTSX
	default:
		return DialectJavaScript
	}
}

func (d Dialect) language() *sitter.Language {
	switch d {
	case DialectTypeScript:
		return typescript.GetLanguage()
	case DialectTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Parse parses script source. Any syntax error in the tree yields ParseFailed;
// the caller picks the fallback strategy.
func Parse(ctx context.Context, src string, dialect Dialect) ParseResult {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(dialect.language())

	raw, err := parser.ParseCtx(ctx, nil, []byte(src))
	if err != nil {
		return ParseResult{Status: ParseFailed, Reason: fmt.Sprintf("parse %s: %v", dialect, err)}
	}
	defer raw.Close()

	root := raw.RootNode()
	if root == nil {
		return ParseResult{Status: ParseFailed, Reason: "empty tree"}
	}
	if root.HasError() {
		return ParseResult{Status: ParseFailed, Reason: "syntax error"}
	}
	return ParseResult{Status: Parsed, Tree: build(root, src)}
}

// build copies the tree-sitter tree into the arena using an explicit stack.
func build(root *sitter.Node, src string) *Tree {
	t := &Tree{Source: src}
	raw := []*sitter.Node{root}
	t.Nodes = append(t.Nodes, copyNode(root, ""))
	t.Parents = append(t.Parents, None)

	stack := []NodeID{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sn := raw[id]
		count := int(sn.ChildCount())
		if count == 0 {
			continue
		}
		children := make([]NodeID, 0, count)
		for i := 0; i < count; i++ {
			child := sn.Child(i)
			if child == nil {
				continue
			}
			cid := NodeID(len(t.Nodes))
			t.Nodes = append(t.Nodes, copyNode(child, sn.FieldNameForChild(i)))
			t.Parents = append(t.Parents, id)
			raw = append(raw, child)
			children = append(children, cid)
		}
		t.Nodes[id].Children = children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return t
}

func copyNode(n *sitter.Node, field string) Node {
	return Node{
		Kind:  n.Type(),
		Field: field,
		Named: n.IsNamed(),
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	}
}

// Root returns the root id.
func (t *Tree) Root() NodeID { return 0 }

// Node returns the node for id.
func (t *Tree) Node(id NodeID) *Node { return &t.Nodes[id] }

// Kind returns the node kind, or "" for None.
func (t *Tree) Kind(id NodeID) string {
	if id == None {
		return ""
	}
	return t.Nodes[id].Kind
}

// Parent returns the parent id, or None for the root.
func (t *Tree) Parent(id NodeID) NodeID { return t.Parents[id] }

// Text returns the source slice covered by id.
func (t *Tree) Text(id NodeID) string {
	if id == None {
		return ""
	}
	n := t.Nodes[id]
	return t.Source[n.Start:n.End]
}

// Field returns the first child stored under a field name.
func (t *Tree) Field(id NodeID, name string) NodeID {
	if id == None {
		return None
	}
	for _, c := range t.Nodes[id].Children {
		if t.Nodes[c].Field == name {
			return c
		}
	}
	return None
}

// NamedChildren returns the named children of id in source order.
func (t *Tree) NamedChildren(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range t.Nodes[id].Children {
		if t.Nodes[c].Named {
			out = append(out, c)
		}
	}
	return out
}

// HasToken reports whether id has a direct anonymous child with the given text.
func (t *Tree) HasToken(id NodeID, token string) bool {
	for _, c := range t.Nodes[id].Children {
		if !t.Nodes[c].Named && t.Text(c) == token {
			return true
		}
	}
	return false
}

// Walk visits every node under from in source order (pre-order) without recursion.
// Returning false from visit skips the node's children.
func (t *Tree) Walk(from NodeID, visit func(NodeID) bool) {
	if from == None {
		return
	}
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visit(id) {
			continue
		}
		children := t.Nodes[id].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Any reports whether some node under from satisfies pred.
func (t *Tree) Any(from NodeID, pred func(NodeID) bool) bool {
	found := false
	t.Walk(from, func(id NodeID) bool {
		if found {
			return false
		}
		if pred(id) {
			found = true
			return false
		}
		return true
	})
	return found
}
