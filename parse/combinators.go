package parse

import (
	"fmt"

	"github.com/dhamidi/bennu/stream"
)

// Always succeeds with x without consuming input.
func Always(x any) *Parser {
	return New("always", func(s State, m *MemoTable, k Conts) Step {
		return Apply(k.Eok, x, s, m)
	})
}

// Never fails with err without consuming input.
func Never(err error) *Parser {
	return New("never", func(s State, m *MemoTable, k Conts) Step {
		return Apply(k.Eerr, err, s, m)
	})
}

// Fail fails at the current position with msg, or with an UnknownError when
// msg is empty.
func Fail(msg string) *Parser {
	return New("fail", func(s State, m *MemoTable, k Conts) Step {
		var err error = &Error{Pos: s.Position(), Msg: msg}
		if msg == "" {
			err = &UnknownError{Pos: s.Position()}
		}
		return Apply(k.Eerr, err, s, m)
	})
}

// Bind runs p, then the parser f builds from p's result. The combination has
// consumed input if either step did.
func Bind(p *Parser, f func(x any) *Parser) *Parser {
	return New("bind", func(s State, m *MemoTable, k Conts) Step {
		return &Tail{fn: p.fn, state: s, memo: m, k: Conts{
			Cok:  &bindCont{f: f, k: k, consumed: true},
			Cerr: k.Cerr,
			Eok:  &bindCont{f: f, k: k},
			Eerr: k.Eerr,
		}}
	})
}

// Next runs p then q, keeping q's result.
func Next(p, q *Parser) *Parser {
	return Bind(p, func(any) *Parser { return q })
}

// Sequence runs ps in order and keeps the last result. An empty sequence
// succeeds with nil.
func Sequence(ps ...*Parser) *Parser {
	if len(ps) == 0 {
		return Always(nil)
	}
	p := ps[len(ps)-1]
	for i := len(ps) - 2; i >= 0; i-- {
		p = Next(ps[i], p)
	}
	return p
}

// Sequences is Sequence over a stream of parsers.
func Sequences(s *stream.Stream) *Parser {
	return Sequence(parsers(s)...)
}

// Either tries p, and if p fails without consuming input, tries q from the
// same state. If both fail without consuming, the failure is a MultipleError
// holding both errors. A failure of p after consuming input is final.
func Either(p, q *Parser) *Parser {
	return either("either", p, q, mergeMultiple)
}

func either(name string, p, q *Parser, merge func(Position, error, error) error) *Parser {
	return New(name, func(s State, m *MemoTable, k Conts) Step {
		return &Tail{fn: p.fn, state: s, memo: m, k: Conts{
			Cok:  k.Cok,
			Cerr: k.Cerr,
			Eok:  k.Eok,
			Eerr: &eitherLeft{q: q, merge: merge, state: s, k: k},
		}}
	})
}

// Choice tries ps left to right with the rules of Either. When every
// alternative fails without consuming, the failure is a ChoiceError listing
// them in order. An empty Choice always fails with an UnknownError.
func Choice(ps ...*Parser) *Parser {
	if len(ps) == 0 {
		return Fail("")
	}
	p := ps[len(ps)-1]
	for i := len(ps) - 2; i >= 0; i-- {
		p = either("choice", ps[i], p, mergeChoice)
	}
	return p
}

// Choices is Choice over a stream of parsers.
func Choices(s *stream.Stream) *Parser {
	return Choice(parsers(s)...)
}

// Optional runs p, or succeeds with x if p fails without consuming input.
func Optional(x any, p *Parser) *Parser {
	return Either(p, Always(x))
}

// Expected replaces any failure of p that consumed no input with an
// ExpectError naming label, at the same position.
func Expected(label string, p *Parser) *Parser {
	return New("expected "+label, func(s State, m *MemoTable, k Conts) Step {
		return &Tail{fn: p.fn, state: s, memo: m, k: Conts{
			Cok:  k.Cok,
			Cerr: k.Cerr,
			Eok:  k.Eok,
			Eerr: &expectCont{k: k.Eerr, label: label},
		}}
	})
}

// Attempt runs p so that any failure, even after consuming input, is reported
// as an empty failure. This lets the enclosing Either or Choice move on to its
// next alternative.
func Attempt(p *Parser) *Parser {
	return New("attempt", func(s State, m *MemoTable, k Conts) Step {
		perr := &windowCont{k: k.Eerr}
		return &Tail{fn: p.fn, state: s, memo: m.pushWindow(s.Position()), k: Conts{
			Cok:  &windowCont{k: k.Cok},
			Cerr: perr,
			Eok:  &windowCont{k: k.Eok},
			Eerr: perr,
		}}
	})
}

// consumeNothing reports every success of p as an empty success.
func consumeNothing(name string, p *Parser) *Parser {
	return New(name, func(s State, m *MemoTable, k Conts) Step {
		return &Tail{fn: p.fn, state: s, memo: m, k: Conts{
			Cok:  k.Eok,
			Cerr: k.Cerr,
			Eok:  k.Eok,
			Eerr: k.Eerr,
		}}
	})
}

// Look runs p and, on success, restores the whole parser state, so that the
// input is peeked at rather than consumed.
func Look(p *Parser) *Parser {
	return consumeNothing("look", Bind(GetParserState, func(saved any) *Parser {
		return Bind(p, func(x any) *Parser {
			return Next(SetParserState(saved.(State)), Always(x))
		})
	}))
}

// Lookahead is like Look but only restores the input and position; changes
// p made to the user state are kept.
func Lookahead(p *Parser) *Parser {
	return consumeNothing("lookahead", Bind(GetParserState, func(saved any) *Parser {
		st := saved.(State)
		return Bind(p, func(x any) *Parser {
			return Next(ModifyParserState(func(s State) State {
				return s.SetInput(st.Input()).SetPosition(st.Position())
			}), Always(x))
		})
	}))
}

// Eof succeeds only when no input remains.
var Eof = New("eof", func(s State, m *MemoTable, k Conts) Step {
	if s.IsEmpty() {
		return Apply(k.Eok, nil, s, m)
	}
	return Apply(k.Eerr, &ExpectError{Pos: s.Position(), Expected: "end of input", Found: s.First()}, s, m)
})

// Token consumes one token when consume accepts it.
func Token(consume func(tok any) bool) *Parser {
	return TokenWith(consume, nil)
}

// TokenWith is Token with a custom error. onErr receives the rejected token,
// or EndOfInput when the input is exhausted. A nil onErr reports an
// UnexpectError.
func TokenWith(consume func(tok any) bool, onErr func(pos Position, tok any) error) *Parser {
	if onErr == nil {
		onErr = func(pos Position, tok any) error {
			return &UnexpectError{Pos: pos, Unexpected: tok}
		}
	}
	return New("token", func(s State, m *MemoTable, k Conts) Step {
		if s.IsEmpty() {
			return Apply(k.Eerr, onErr(s.Position(), EndOfInput), s, m)
		}
		tok := s.First()
		if !consume(tok) {
			return Apply(k.Eerr, onErr(s.Position(), tok), s, m)
		}
		return Apply(k.Cok, tok, s.Next(tok), m)
	})
}

// AnyToken consumes any single token.
var AnyToken = Named("any token", Token(func(any) bool { return true }))

// Eager turns the stream produced by p into a []any.
func Eager(p *Parser) *Parser {
	return Bind(p, func(x any) *Parser {
		return Always(stream.ToSlice(stream.From(x)))
	})
}

// Binds runs p, collects its results eagerly and spreads them over f.
func Binds(p *Parser, f func(xs ...any) *Parser) *Parser {
	return Bind(Eager(p), func(x any) *Parser {
		return f(x.([]any)...)
	})
}

func join(p, q *Parser, joiner func(a, b any) any) *Parser {
	return Bind(p, func(a any) *Parser {
		return Bind(q, func(b any) *Parser {
			return Always(joiner(a, b))
		})
	})
}

// Cons runs p then q and prepends p's result to the stream q produced.
func Cons(p, q *Parser) *Parser {
	return join(p, q, func(a, b any) any {
		return stream.Cons(a, stream.From(b))
	})
}

// Append runs p then q and concatenates the streams they produced.
func Append(p, q *Parser) *Parser {
	return join(p, q, func(a, b any) any {
		return stream.Append(stream.From(a), stream.From(b))
	})
}

// Enumeration runs ps in order and produces the stream of their results.
func Enumeration(ps ...*Parser) *Parser {
	p := Always(stream.Nil)
	for i := len(ps) - 1; i >= 0; i-- {
		p = Cons(ps[i], p)
	}
	return p
}

// Enumerations is Enumeration over a stream of parsers.
func Enumerations(s *stream.Stream) *Parser {
	return Enumeration(parsers(s)...)
}

// Many runs p zero or more times and produces the stream of its results. If p
// ever succeeds without consuming input, the parse halts with ErrEmptyMany.
func Many(p *Parser) *Parser {
	guard := &haltCont{err: fmt.Errorf("many %s: %w", p.name, ErrEmptyMany)}
	safe := New(p.name, func(s State, m *MemoTable, k Conts) Step {
		return &Tail{fn: p.fn, state: s, memo: m, k: Conts{
			Cok:  k.Cok,
			Cerr: k.Cerr,
			Eok:  guard,
			Eerr: k.Eerr,
		}}
	})
	return Rec("many", func(self *Parser) *Parser {
		return Optional(stream.Nil, Cons(safe, self))
	})
}

// Many1 runs p one or more times.
func Many1(p *Parser) *Parser {
	return Cons(p, Many(p))
}

func parsers(s *stream.Stream) []*Parser {
	var ps []*Parser
	for ; !s.IsEmpty(); s = s.Rest() {
		ps = append(ps, s.First().(*Parser))
	}
	return ps
}
