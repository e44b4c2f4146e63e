// Package format writes concrete syntax trees and parse failures.
package format

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/bennu/ebnf"
)

// ErrUnknownFormat is returned by NewEncoder for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown format")

// Encoder writes the result of a parse.
type Encoder interface {
	Encode(node *ebnf.Node) error
	EncodeError(err error) error
}

// Formats lists the names accepted by NewEncoder.
var Formats = []string{"sexpr", "tree", "json"}

// NewEncoder returns the encoder called name writing to w.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "sexpr", "":
		return NewSExprEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("%s: %w", name, ErrUnknownFormat)
}
