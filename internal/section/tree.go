package section

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/pogen/internal/momdoc"
)

// Node is one numbered section. Built once per document, read-only
// afterwards.
type Node struct {
	Number   Number
	Title    string   // First clause of the opening row's content
	Body     []string // Content lines before any child section begins
	Children []*Node  // Direct descendants, document order
	parent   *Node
}

// Parent returns the enclosing section, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// BodyText joins the body lines with sep.
func (n *Node) BodyText(sep string) string {
	return strings.Join(n.Body, sep)
}

// Walk visits n and all descendants in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tree is the section tree of one MOM document. Root is a synthetic
// node with an empty number representing the whole document.
type Tree struct {
	Root *Node

	// Warnings records recovered structural ambiguities (orphan
	// subsections, duplicate numbers). Callers log them at warn level.
	Warnings []string

	index map[string]*Node
}

// Lookup resolves a dotted number like "2.1" to its node, or nil.
func (t *Tree) Lookup(number string) *Node {
	n, ok := ParseNumber(number)
	if !ok {
		return nil
	}
	return t.index[n.String()]
}

// Sections returns the number of indexed (non-root) nodes.
func (t *Tree) Sections() int { return len(t.index) }

// Build constructs the section tree from table rows in a single pass.
//
// A row whose number cell parses as a dotted number opens a node at that
// depth; any other row is a continuation of the deepest open node. The
// open-node stack holds one node per depth level and is trimmed whenever
// a shallower node opens. An orphan number (e.g. "2.3" with no prior
// "2") gets implicit empty ancestors so the tree stays connected. A
// duplicate number reopens the existing node and appends to its body
// instead of creating a second sibling. Sibling order is document
// order; out-of-order numbering is preserved, not corrected.
func Build(rows []momdoc.Row) *Tree {
	root := &Node{}
	t := &Tree{Root: root, index: make(map[string]*Node)}

	// stack[d] is the open node at depth d; stack[0] is the root.
	stack := []*Node{root}

	for _, row := range rows {
		num, ok := ParseNumber(row.Number())
		if !ok {
			// Continuation row: text belongs to the deepest open node.
			if c := strings.TrimSpace(row.Content()); c != "" {
				open := stack[len(stack)-1]
				open.Body = append(open.Body, c)
			}
			continue
		}

		content := strings.TrimSpace(row.Content())
		key := num.String()

		if existing, ok := t.index[key]; ok {
			// Duplicate number: merge by append, then reopen.
			t.warnf("duplicate section number %s, merging", key)
			if content != "" {
				existing.Body = append(existing.Body, content)
			}
			stack = openChain(existing)
			continue
		}

		node := &Node{
			Number: num,
			Title:  titleOf(content),
		}
		if content != "" {
			node.Body = []string{content}
		}

		parent := t.openParent(&stack, num)
		node.parent = parent
		parent.Children = append(parent.Children, node)
		t.index[key] = node
		stack = append(stack, node)
	}

	return t
}

// openParent returns the open node at depth-1, synthesizing implicit
// ancestors when the document skips levels.
func (t *Tree) openParent(stack *[]*Node, num Number) *Node {
	depth := num.Depth()
	s := *stack

	// Trim deeper open nodes; they are closed by this row.
	if len(s) > depth {
		s = s[:depth]
	}

	// Pop open nodes that are not numeric prefixes of this number. An
	// orphan like "2.3" arriving while "1" is open must not attach
	// under "1"; it needs an implicit "2".
	for len(s) > 1 && !prefixOf(s[len(s)-1].Number, num) {
		s = s[:len(s)-1]
	}

	// Synthesize missing ancestors from the deepest still-open level.
	for len(s) < depth {
		want := num[:len(s)] // ancestor number at the next depth
		key := Number(want).String()
		anc := t.index[key]
		if anc == nil {
			t.warnf("orphan section %s, synthesizing ancestor %s", num, key)
			anc = &Node{Number: append(Number(nil), want...)}
			parent := s[len(s)-1]
			anc.parent = parent
			parent.Children = append(parent.Children, anc)
			t.index[key] = anc
		}
		s = append(s, anc)
	}

	*stack = s
	return s[depth-1]
}

// openChain rebuilds the open-node stack for a reopened node from its
// parent links: root, ancestors, node.
func openChain(node *Node) []*Node {
	var chain []*Node
	for n := node; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	slices.Reverse(chain)
	return chain
}

// prefixOf reports whether p is a strict prefix of n.
func prefixOf(p, n Number) bool {
	if len(p) >= len(n) {
		return false
	}
	for i, v := range p {
		if n[i] != v {
			return false
		}
	}
	return true
}

func (t *Tree) warnf(format string, args ...any) {
	t.Warnings = append(t.Warnings, fmt.Sprintf(format, args...))
}

// titleOf extracts the section title: the first clause of the content,
// cut at the first period, colon or newline.
func titleOf(content string) string {
	if i := strings.IndexAny(content, ".:\n"); i >= 0 {
		return strings.TrimSpace(content[:i])
	}
	if len(content) > 50 {
		return strings.TrimSpace(content[:50])
	}
	return content
}
