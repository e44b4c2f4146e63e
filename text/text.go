// Package text provides parsers over streams of runes.
package text

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/stream"
)

// Match consumes one rune accepted by pred. On failure it reports an
// ExpectError naming label.
func Match(label string, pred func(r rune) bool) *parse.Parser {
	return parse.Named(label, parse.TokenWith(
		func(tok any) bool {
			r, ok := tok.(rune)
			return ok && pred(r)
		},
		func(pos parse.Position, tok any) error {
			return &parse.ExpectError{Pos: pos, Expected: label, Found: tok}
		},
	))
}

// Character consumes the rune r.
func Character(r rune) *parse.Parser {
	return Match(strconv.QuoteRune(r), func(c rune) bool { return c == r })
}

// Characters consumes any one of the runes in chars.
func Characters(chars string) *parse.Parser {
	return Match("one of "+strconv.Quote(chars), func(c rune) bool {
		return strings.ContainsRune(chars, c)
	})
}

// NoneOf consumes any rune that is not in chars.
func NoneOf(chars string) *parse.Parser {
	return Match("none of "+strconv.Quote(chars), func(c rune) bool {
		return !strings.ContainsRune(chars, c)
	})
}

// Range consumes a rune between lo and hi inclusive.
func Range(lo, hi rune) *parse.Parser {
	return Match(strconv.QuoteRune(lo)+"-"+strconv.QuoteRune(hi), func(c rune) bool {
		return lo <= c && c <= hi
	})
}

// String consumes the runes of s and produces s. A partial match consumes
// nothing, so String can be used directly as an alternative.
func String(s string) *parse.Parser {
	runes := []rune(s)
	ps := make([]*parse.Parser, 0, len(runes)+1)
	for _, r := range runes {
		ps = append(ps, Character(r))
	}
	ps = append(ps, parse.Always(s))
	return parse.Expected(strconv.Quote(s), parse.Attempt(parse.Sequence(ps...)))
}

var (
	// Digit consumes a decimal digit.
	Digit = Match("digit", unicode.IsDigit)
	// Letter consumes a letter.
	Letter = Match("letter", unicode.IsLetter)
	// Space consumes a whitespace rune.
	Space = Match("space", unicode.IsSpace)
	// Spaces skips any amount of whitespace and produces nil.
	Spaces = parse.Named("spaces", parse.Next(parse.Many(Space), parse.Always(nil)))
)

// Collect turns the stream of runes produced by p into a string.
func Collect(p *parse.Parser) *parse.Parser {
	return parse.Bind(p, func(x any) *parse.Parser {
		var b strings.Builder
		for s := stream.From(x); !s.IsEmpty(); s = s.Rest() {
			switch tok := s.First().(type) {
			case rune:
				b.WriteRune(tok)
			case string:
				b.WriteString(tok)
			}
		}
		return parse.Always(b.String())
	})
}

func withSource(opts []parse.Option) []parse.Option {
	return append([]parse.Option{parse.WithPosition(Start(""))}, opts...)
}

// Run parses input with p, tracking line and column positions.
func Run(p *parse.Parser, input string, opts ...parse.Option) (any, error) {
	return parse.Run(p, input, nil, withSource(opts)...)
}

// Test reports whether p accepts input.
func Test(p *parse.Parser, input string, opts ...parse.Option) bool {
	return parse.Test(p, input, nil, withSource(opts)...)
}
