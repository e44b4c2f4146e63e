package text

import (
	"fmt"

	"github.com/dhamidi/bennu/parse"
)

// SourcePosition is a parse.Position for rune input that tracks lines and
// columns. Line and Column start at 1.
type SourcePosition struct {
	Filename string
	Index    int
	Line     int
	Column   int
}

// Start returns the position of the first rune of a file.
func Start(filename string) SourcePosition {
	return SourcePosition{Filename: filename, Line: 1, Column: 1}
}

func (p SourcePosition) Offset() int { return p.Index }

// Increment moves past tok. A newline starts a new line.
func (p SourcePosition) Increment(tok any) parse.Position {
	next := p
	next.Index++
	if tok == '\n' {
		next.Line++
		next.Column = 1
	} else {
		next.Column++
	}
	return next
}

func (p SourcePosition) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
