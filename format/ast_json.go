package format

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/dhamidi/bennu/ebnf"
	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/text"
)

// JSONEncoder writes trees and failures as indented JSON documents.
type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(node *ebnf.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	return e.write(text)
}

func (e *JSONEncoder) MarshalText(node *ebnf.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(node), "", "  ")
}

// EncodeError writes err as an object with a single "error" member.
func (e *JSONEncoder) EncodeError(err error) error {
	text, merr := json.MarshalIndent(struct {
		Error *jsonError `json:"error"`
	}{errorToJSON(err)}, "", "  ")
	if merr != nil {
		return merr
	}
	return e.write(text)
}

func (e *JSONEncoder) write(text []byte) error {
	if _, err := e.w.Write(text); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Text     string      `json:"text,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

type jsonError struct {
	Message  string        `json:"message"`
	Position *jsonPosition `json:"position,omitempty"`
	Expected []string      `json:"expected,omitempty"`
	Found    string        `json:"found,omitempty"`
}

func nodeToJSON(n *ebnf.Node) *jsonNode {
	jn := &jsonNode{
		Kind: n.Kind,
		Text: n.Text,
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		jn.Span = &jsonSpan{
			Start: sourceToJSON(n.Span.Start),
			End:   sourceToJSON(n.Span.End),
		}
	}

	for _, child := range n.Children {
		jn.Children = append(jn.Children, nodeToJSON(child))
	}

	return jn
}

func sourceToJSON(p text.SourcePosition) jsonPosition {
	return jsonPosition{Offset: p.Index, Line: p.Line, Column: p.Column}
}

func errorToJSON(err error) *jsonError {
	je := &jsonError{Message: err.Error()}

	var pe parse.ParseError
	if !errors.As(err, &pe) {
		return je
	}

	je.Message = pe.Message()
	if pos := pe.Position(); pos != nil {
		jp := jsonPosition{Offset: pos.Offset()}
		if sp, ok := pos.(text.SourcePosition); ok {
			jp = sourceToJSON(sp)
		}
		je.Position = &jp
	}
	collectExpected(pe, je)

	return je
}

// collectExpected gathers the expectations of err and the alternatives it
// was merged from. Found is taken from the first failure that names a token.
func collectExpected(err error, je *jsonError) {
	switch e := err.(type) {
	case *parse.ExpectError:
		je.Expected = append(je.Expected, e.Expected)
		if je.Found == "" && e.Found != nil {
			je.Found = parse.Describe(e.Found)
		}
	case *parse.UnexpectError:
		if je.Found == "" {
			je.Found = parse.Describe(e.Unexpected)
		}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			collectExpected(inner, je)
		}
	}
}
