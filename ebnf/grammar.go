// Package ebnf compiles EBNF grammars into memoizing parsers that produce
// concrete syntax trees.
//
// Grammars use the notation of golang.org/x/exp/ebnf. Productions whose name
// starts with an upper-case letter are syntactic: they produce a Node with
// children, and the configured skip parser runs before each of their tokens.
// All other productions are lexical and match their text exactly.
//
// Alternatives are ordered and each one backtracks on failure, as in a PEG.
// Repetitions are greedy.
package ebnf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	xebnf "golang.org/x/exp/ebnf"
)

// Load reads an EBNF grammar from a file.
func Load(filename string) (xebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	return Read(filename, f)
}

// Read parses an EBNF grammar from r. filename is used in error positions.
func Read(filename string, r io.Reader) (xebnf.Grammar, error) {
	g, err := xebnf.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// Verify checks that every production reachable from start is defined and
// that lexical productions only refer to lexical productions.
func Verify(g xebnf.Grammar, start string) error {
	if err := xebnf.Verify(g, start); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}

// IsLexical reports whether the production name denotes a lexical production.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

func sortedNames(g xebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
