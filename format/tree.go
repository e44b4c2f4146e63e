package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/bennu/ebnf"
	"github.com/dhamidi/bennu/text"
)

// SExprEncoder writes a tree on a single line as nested parentheses.
type SExprEncoder struct {
	w io.Writer
}

func NewSExprEncoder(w io.Writer) *SExprEncoder {
	return &SExprEncoder{w: w}
}

func (e *SExprEncoder) Encode(node *ebnf.Node) error {
	_, err := fmt.Fprintln(e.w, node.String())
	return err
}

func (e *SExprEncoder) EncodeError(err error) error {
	_, werr := fmt.Fprintln(e.w, err)
	return werr
}

// TreeEncoder writes one node per line, indented by depth, with the span of
// each node.
type TreeEncoder struct {
	w io.Writer
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

func (e *TreeEncoder) Encode(node *ebnf.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(node *ebnf.Node) ([]byte, error) {
	var sb strings.Builder
	writeTree(&sb, node, 0)
	return []byte(sb.String()), nil
}

func (e *TreeEncoder) EncodeError(err error) error {
	_, werr := fmt.Fprintf(e.w, "ERROR: %v\n", err)
	return werr
}

func writeTree(sb *strings.Builder, n *ebnf.Node, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind)
	fmt.Fprintf(sb, " [%s-%s]", lineColumn(n.Span.Start), lineColumn(n.Span.End))
	if n.IsTerminal() {
		sb.WriteString(" " + strconv.Quote(n.Text))
	}
	sb.WriteString("\n")

	for _, child := range n.Children {
		writeTree(sb, child, indent+1)
	}
}

func lineColumn(p text.SourcePosition) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
