// Package lang provides combinators derived from the parse primitives:
// counted repetition, separated lists and operator chains.
package lang

import (
	"errors"
	"fmt"

	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/stream"
)

// ErrInvalidBounds is returned by BetweenTimes when max is less than min.
var ErrInvalidBounds = errors.New("between times: max < min")

var end = parse.Always(stream.Nil)

func optionalStream(p *parse.Parser) *parse.Parser {
	return parse.Optional(stream.Nil, p)
}

// Times runs p exactly n times and produces the stream of results.
func Times(n int, p *parse.Parser) *parse.Parser {
	if n <= 0 {
		return end
	}
	return parse.Enumerations(stream.Repeat(n, p))
}

// AtMostTimes runs p up to n times, stopping at the first empty failure.
func AtMostTimes(n int, p *parse.Parser) *parse.Parser {
	if n <= 0 {
		return end
	}
	return optionalStream(parse.Bind(p, func(x any) *parse.Parser {
		return parse.Cons(parse.Always(x), AtMostTimes(n-1, p))
	}))
}

// BetweenTimes runs p at least min and at most max times.
func BetweenTimes(min, max int, p *parse.Parser) (*parse.Parser, error) {
	if max < min {
		return nil, fmt.Errorf("%d < %d: %w", max, min, ErrInvalidBounds)
	}
	return parse.Append(Times(min, p), AtMostTimes(max-min, p)), nil
}

// Then runs p then q and keeps p's result.
func Then(p, q *parse.Parser) *parse.Parser {
	return parse.Bind(p, func(x any) *parse.Parser {
		return parse.Next(q, parse.Always(x))
	})
}

// Between runs open, p and close, keeping p's result.
func Between(open, close, p *parse.Parser) *parse.Parser {
	return parse.Next(open, Then(p, close))
}

// SepBy1 parses one or more p separated by sep.
func SepBy1(sep, p *parse.Parser) *parse.Parser {
	return parse.Cons(p, parse.Many(parse.Next(sep, p)))
}

// SepBy parses zero or more p separated by sep.
func SepBy(sep, p *parse.Parser) *parse.Parser {
	return optionalStream(SepBy1(sep, p))
}

// SepEndBy1 parses one or more p separated and optionally ended by sep.
func SepEndBy1(sep, p *parse.Parser) *parse.Parser {
	return parse.Rec("sep end by", func(self *parse.Parser) *parse.Parser {
		return parse.Cons(p, optionalStream(parse.Next(sep, optionalStream(self))))
	})
}

// SepEndBy parses zero or more p separated and optionally ended by sep.
func SepEndBy(sep, p *parse.Parser) *parse.Parser {
	return parse.Either(SepEndBy1(sep, p), parse.Next(parse.Optional(nil, sep), end))
}

// EndBy1 parses one or more p, each followed by sep.
func EndBy1(sep, p *parse.Parser) *parse.Parser {
	return parse.Many1(Then(p, sep))
}

// EndBy parses zero or more p, each followed by sep.
func EndBy(sep, p *parse.Parser) *parse.Parser {
	return parse.Many(Then(p, sep))
}

// BinaryFunc combines two operands. Operator parsers given to the chain
// combinators must produce one, or a plain func(x, y any) any.
type BinaryFunc func(x, y any) any

func apply(f any, x, y any) (any, error) {
	switch f := f.(type) {
	case BinaryFunc:
		return f(x, y), nil
	case func(x, y any) any:
		return f(x, y), nil
	}
	return nil, fmt.Errorf("operator %v (%T) is not a binary function", f, f)
}

func combine(f, x, y any, k func(z any) *parse.Parser) *parse.Parser {
	z, err := apply(f, x, y)
	if err != nil {
		return parse.Fail(err.Error())
	}
	return k(z)
}

// Chainl1 parses one or more p separated by op and folds the results to the
// left: "1 op 2 op 3" is (1 op 2) op 3.
func Chainl1(op, p *parse.Parser) *parse.Parser {
	var rest func(x any) *parse.Parser
	rest = func(x any) *parse.Parser {
		return parse.Optional(x, parse.Bind(op, func(f any) *parse.Parser {
			return parse.Bind(p, func(y any) *parse.Parser {
				return combine(f, x, y, rest)
			})
		}))
	}
	return parse.Bind(p, rest)
}

// Chainl is Chainl1, or x when p does not match.
func Chainl(op *parse.Parser, x any, p *parse.Parser) *parse.Parser {
	return parse.Optional(x, Chainl1(op, p))
}

// Chainr1 parses one or more p separated by op and folds the results to the
// right: "1 op 2 op 3" is 1 op (2 op 3).
func Chainr1(op, p *parse.Parser) *parse.Parser {
	return parse.Rec("chainr1", func(self *parse.Parser) *parse.Parser {
		return parse.Bind(p, func(x any) *parse.Parser {
			return parse.Optional(x, parse.Bind(op, func(f any) *parse.Parser {
				return parse.Bind(self, func(y any) *parse.Parser {
					return combine(f, x, y, parse.Always)
				})
			}))
		})
	})
}

// Chainr is Chainr1, or x when p does not match.
func Chainr(op *parse.Parser, x any, p *parse.Parser) *parse.Parser {
	return parse.Optional(x, Chainr1(op, p))
}
