package ebnf

import (
	"strconv"
	"strings"

	"github.com/dhamidi/bennu/text"
)

// Span represents a range in the source.
type Span struct {
	Start text.SourcePosition `json:"start"`
	End   text.SourcePosition `json:"end"`
}

// Node represents a node in the concrete syntax tree.
// Terminals carry Text; nonterminals carry Children.
type Node struct {
	Kind     string  `json:"kind"`               // Production name, or the quoted literal
	Children []*Node `json:"children,omitempty"` // nil for terminals
	Text     string  `json:"text,omitempty"`
	Span     Span    `json:"span"`
}

// IsTerminal returns true if this is a leaf node.
func (n *Node) IsTerminal() bool {
	return n.Children == nil
}

// AddChild appends a child node and updates the span.
func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	n.Children = append(n.Children, child)
	if len(n.Children) == 1 {
		n.Span.Start = child.Span.Start
	}
	n.Span.End = child.Span.End
}

// NewTerminal creates a leaf node for matched text.
func NewTerminal(kind, text string, span Span) *Node {
	return &Node{Kind: kind, Text: text, Span: span}
}

// NewNonTerminal creates an interior node with no children yet, positioned at pos.
func NewNonTerminal(kind string, pos text.SourcePosition) *Node {
	return &Node{
		Kind:     kind,
		Children: make([]*Node, 0),
		Span:     Span{Start: pos, End: pos},
	}
}

// String renders the tree as an S-expression.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(n.Kind)
	if n.IsTerminal() {
		b.WriteByte(' ')
		b.WriteString(strconv.Quote(n.Text))
	}
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

// Walk calls fn for n and every node below it, depth first. Returning false
// from fn skips the children of that node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
