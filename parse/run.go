package parse

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/bennu/stream"
)

// Option configures a top-level parse.
type Option func(*config)

type config struct {
	log      commonlog.Logger
	position Position
}

// WithLogger sets the logger used to trace memoization. Tracing is only done
// when the logger allows the debug level.
func WithLogger(log commonlog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithPosition sets the position of the first token, for the entry points
// that build the initial state themselves.
func WithPosition(pos Position) Option {
	return func(c *config) {
		c.position = pos
	}
}

func newConfig(opts []Option) config {
	c := config{position: InitialPosition}
	for _, opt := range opts {
		opt(&c)
	}
	if c.log == nil {
		c.log = commonlog.GetLogger("bennu.parse")
	}
	return c
}

// SuccessFunc receives the result of a successful parse and the final state.
type SuccessFunc func(value any, s State) any

// FailureFunc receives the error of a failed parse and the state it failed in.
type FailureFunc func(err error, s State) any

// Exec runs p from s with explicit continuations and returns the final value.
func Exec(p *Parser, s State, m *MemoTable, k Conts) any {
	return Trampoline(&Tail{fn: p.fn, state: s, memo: m, k: k})
}

// ParseState runs p from s. Whichever of ok or fail is called decides the
// return value. A parse halted by a configuration error calls fail with that
// error.
func ParseState(p *Parser, s State, ok SuccessFunc, fail FailureFunc, opts ...Option) any {
	c := newConfig(opts)
	okk := ContFunc(func(x any, s State, _ *MemoTable) Step {
		return ok(x, s)
	})
	errk := ContFunc(func(x any, s State, _ *MemoTable) Step {
		return fail(asError(x), s)
	})

	result := Exec(p, s, newMemoTable(c.log), Conts{Cok: okk, Cerr: errk, Eok: okk, Eerr: errk})
	if h, isHalt := result.(*halted); isHalt {
		return fail(h.err, h.state)
	}
	return result
}

// ParseStream runs p over input with the given user state.
func ParseStream(p *Parser, input *stream.Stream, user any, ok SuccessFunc, fail FailureFunc, opts ...Option) any {
	c := newConfig(opts)
	return ParseState(p, NewState(input, c.position, user), ok, fail, opts...)
}

// Parse runs p over input, converted with stream.From.
func Parse(p *Parser, input any, user any, ok SuccessFunc, fail FailureFunc, opts ...Option) any {
	return ParseStream(p, stream.From(input), user, ok, fail, opts...)
}

type outcome struct {
	value any
	err   error
}

// RunState runs p from s and returns its result or its error.
func RunState(p *Parser, s State, opts ...Option) (any, error) {
	r := ParseState(p, s,
		func(x any, _ State) any { return outcome{value: x} },
		func(err error, _ State) any { return outcome{err: err} },
		opts...).(outcome)
	return r.value, r.err
}

// RunStream runs p over input with the given user state.
func RunStream(p *Parser, input *stream.Stream, user any, opts ...Option) (any, error) {
	c := newConfig(opts)
	return RunState(p, NewState(input, c.position, user), opts...)
}

// Run runs p over input, converted with stream.From.
func Run(p *Parser, input any, user any, opts ...Option) (any, error) {
	return RunStream(p, stream.From(input), user, opts...)
}

// TestState reports whether p accepts s.
func TestState(p *Parser, s State, opts ...Option) bool {
	return ParseState(p, s,
		func(any, State) any { return true },
		func(error, State) any { return false },
		opts...).(bool)
}

// TestStream reports whether p accepts input.
func TestStream(p *Parser, input *stream.Stream, user any, opts ...Option) bool {
	c := newConfig(opts)
	return TestState(p, NewState(input, c.position, user), opts...)
}

// Test reports whether p accepts input, converted with stream.From.
func Test(p *Parser, input any, user any, opts ...Option) bool {
	return TestStream(p, stream.From(input), user, opts...)
}
