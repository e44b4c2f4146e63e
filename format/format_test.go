package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/bennu/ebnf"
	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/text"
)

const pairGrammar = `
	Pair = "(" word word ")" .
	word = letter { letter } .
	letter = "a" … "z" .
`

func parsePair(t *testing.T, src string) (*ebnf.Node, error) {
	t.Helper()
	g, err := ebnf.Read("pair.ebnf", strings.NewReader(pairGrammar))
	if err != nil {
		t.Fatalf("parse grammar: %v", err)
	}
	compiled, err := ebnf.Compile(g, ebnf.WithSkip(text.Spaces))
	if err != nil {
		t.Fatalf("compile grammar: %v", err)
	}
	return compiled.Parse("", "Pair", src)
}

func TestSExpr(t *testing.T) {
	node, err := parsePair(t, "(ab c)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var out bytes.Buffer
	if err := NewSExprEncoder(&out).Encode(node); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := `(Pair ("(" "(") (word "ab") (word "c") (")" ")"))` + "\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestTree(t *testing.T) {
	node, err := parsePair(t, "(ab\n c)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var out bytes.Buffer
	if err := NewTreeEncoder(&out).Encode(node); err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := strings.Join([]string{
		`Pair [1:1-2:4]`,
		`  "(" [1:1-1:2] "("`,
		`  word [1:2-1:4] "ab"`,
		`  word [2:2-2:3] "c"`,
		`  ")" [2:3-2:4] ")"`,
		``,
	}, "\n")
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON(t *testing.T) {
	node, err := parsePair(t, "(a b)")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var out bytes.Buffer
	if err := NewJSONEncoder(&out).Encode(node); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got jsonNode
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Kind != "Pair" || len(got.Children) != 4 {
		t.Fatalf("root = %+v", got)
	}
	want := &jsonNode{
		Kind: "word",
		Text: "b",
		Span: &jsonSpan{
			Start: jsonPosition{Offset: 3, Line: 1, Column: 4},
			End:   jsonPosition{Offset: 4, Line: 1, Column: 5},
		},
	}
	if diff := cmp.Diff(want, got.Children[2]); diff != "" {
		t.Errorf("child mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONError(t *testing.T) {
	_, err := parsePair(t, "(a )")
	if err == nil {
		t.Fatal("parse succeeded")
	}
	var out bytes.Buffer
	if err := NewJSONEncoder(&out).EncodeError(err); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got struct {
		Error jsonError `json:"error"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := jsonError{
		Message:  "expected 'a'-'z', found ')'",
		Position: &jsonPosition{Offset: 3, Line: 1, Column: 4},
		Expected: []string{"'a'-'z'"},
		Found:    "')'",
	}
	if diff := cmp.Diff(want, got.Error); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONMergedErrors(t *testing.T) {
	pos := parse.Index(2)
	err := &parse.ChoiceError{
		Pos:   pos,
		Left:  &parse.ExpectError{Pos: pos, Expected: "digit", Found: 'x'},
		Right: &parse.ExpectError{Pos: pos, Expected: "letter", Found: 'x'},
	}

	je := errorToJSON(err)
	if diff := cmp.Diff([]string{"digit", "letter"}, je.Expected); diff != "" {
		t.Errorf("expected mismatch (-want +got):\n%s", diff)
	}
	if je.Found != "'x'" || je.Position == nil || je.Position.Offset != 2 || je.Position.Line != 0 {
		t.Errorf("error = %+v", je)
	}

	plain := errorToJSON(errors.New("boom"))
	if plain.Message != "boom" || plain.Position != nil {
		t.Errorf("plain error = %+v", plain)
	}
}

func TestNewEncoder(t *testing.T) {
	for _, name := range Formats {
		if _, err := NewEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewEncoder(%q): %v", name, err)
		}
	}
	if _, err := NewEncoder("xml", &bytes.Buffer{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("NewEncoder(xml) = %v, want ErrUnknownFormat", err)
	}
}
