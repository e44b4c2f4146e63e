package parse

import "fmt"

// Step is what parser bodies and continuations return: either a *Tail, which
// Trampoline keeps running, or the final result of the parse.
type Step = any

// Tail is an explicit tail call of a parser body.
type Tail struct {
	fn    Func
	state State
	memo  *MemoTable
	k     Conts
}

// TailCall returns a step that runs p with the given arguments.
func TailCall(p *Parser, s State, m *MemoTable, k Conts) *Tail {
	return &Tail{fn: p.fn, state: s, memo: m, k: k}
}

// Trampoline runs tail calls until a final value appears.
func Trampoline(step Step) any {
	for {
		t, ok := step.(*Tail)
		if !ok {
			return step
		}
		step = t.fn(t.state, t.memo, t.k)
	}
}

// Conts holds the four continuations of a parser: consumed success, consumed
// failure, empty success and empty failure.
type Conts struct {
	Cok  Cont
	Cerr Cont
	Eok  Cont
	Eerr Cont
}

func (k Conts) pick(r role) Cont {
	switch r {
	case roleCok:
		return k.Cok
	case roleCerr:
		return k.Cerr
	case roleEok:
		return k.Eok
	}
	return k.Eerr
}

// Cont is a continuation. The set of continuations is closed: ContFunc wraps a
// plain function, every other shape is internal to this package and
// interpreted by Apply.
type Cont interface {
	cont()
}

// ContFunc is a continuation implemented by a plain function. x is the
// produced value on success and the error on failure.
type ContFunc func(x any, s State, m *MemoTable) Step

func (ContFunc) cont() {}

// bindCont runs f(x) after a success, with the continuations of the enclosing
// bind. After a consuming success the follow-up can only conclude as consumed.
type bindCont struct {
	f        func(x any) *Parser
	k        Conts
	consumed bool
}

// windowCont closes the innermost memo window before continuing.
type windowCont struct {
	k Cont
}

// memoCont records the outcome in the memo table before continuing.
type memoCont struct {
	k    Cont
	role role
	pos  Position
	key  memoKey
	name string
}

// expectCont replaces a failure with an ExpectError carrying label.
type expectCont struct {
	k     Cont
	label string
}

// eitherLeft runs the right alternative after the left failed without
// consuming input.
type eitherLeft struct {
	q     *Parser
	merge func(pos Position, left, right error) error
	state State
	k     Conts
}

// eitherRight merges the failures of both alternatives.
type eitherRight struct {
	left  error
	merge func(pos Position, left, right error) error
	state State
	k     Conts
}

// haltCont aborts the whole parse.
type haltCont struct {
	err error
}

func (*bindCont) cont()    {}
func (*windowCont) cont()  {}
func (*memoCont) cont()    {}
func (*expectCont) cont()  {}
func (*eitherLeft) cont()  {}
func (*eitherRight) cont() {}
func (*haltCont) cont()    {}

// halted is the final value of a parse stopped by a configuration error.
type halted struct {
	err   error
	state State
}

func halt(err error, s State, m *MemoTable) Step {
	m.tracef("halt at %s: %v", s.Position(), err)
	return &halted{err: err, state: s}
}

// Apply hands x to continuation k. Wrapping continuations are unwound in a
// loop; whenever the next step is a parser, Apply returns a Tail for it
// instead of calling it.
func Apply(k Cont, x any, s State, m *MemoTable) Step {
	for {
		switch c := k.(type) {
		case ContFunc:
			return c(x, s, m)

		case *bindCont:
			next := c.f(x)
			if c.consumed {
				return &Tail{fn: next.fn, state: s, memo: m, k: Conts{
					Cok:  c.k.Cok,
					Cerr: c.k.Cerr,
					Eok:  c.k.Cok,
					Eerr: c.k.Cerr,
				}}
			}
			return &Tail{fn: next.fn, state: s, memo: m, k: c.k}

		case *windowCont:
			m = m.popWindow()
			k = c.k

		case *memoCont:
			m = m.record(c.pos, c.key, memoEntry{role: c.role, value: x, state: s})
			m.tracef("memo store %s at %s", c.name, c.pos)
			k = c.k

		case *expectCont:
			x = &ExpectError{Pos: s.Position(), Expected: c.label, Found: found(s)}
			k = c.k

		case *eitherLeft:
			return &Tail{fn: c.q.fn, state: c.state, memo: m, k: Conts{
				Cok:  c.k.Cok,
				Cerr: c.k.Cerr,
				Eok:  c.k.Eok,
				Eerr: &eitherRight{left: asError(x), merge: c.merge, state: c.state, k: c.k},
			}}

		case *eitherRight:
			x = c.merge(c.state.Position(), c.left, asError(x))
			s = c.state
			k = c.k.Eerr

		case *haltCont:
			return halt(c.err, s, m)

		default:
			panic(fmt.Sprintf("parse: unknown continuation %T", k))
		}
	}
}

func found(s State) any {
	if s.IsEmpty() {
		return EndOfInput
	}
	return s.First()
}
