package parse

import (
	"fmt"
	"sync/atomic"
)

// Func is the body of a parser. It receives the current state, the memo table
// and the four continuations, and must hand its outcome to exactly one of them,
// either through Apply or by returning a Tail.
type Func func(s State, m *MemoTable, k Conts) Step

// Parser is an immutable, shareable unit of parsing. Each Parser has an
// identity assigned at construction, used to key memoized results.
type Parser struct {
	id   uint64
	name string
	fn   Func
}

var lastID atomic.Uint64

// New tags fn with a name and a fresh identity.
func New(name string, fn Func) *Parser {
	return &Parser{id: lastID.Add(1), name: name, fn: fn}
}

// Named returns a parser that behaves like p under a new name and identity.
func Named(name string, p *Parser) *Parser {
	return New(name, p.fn)
}

func (p *Parser) ID() uint64     { return p.id }
func (p *Parser) Name() string   { return p.name }
func (p *Parser) String() string { return p.name }

// Ref is a forward reference to a parser that is built later, used for
// recursive and mutually recursive grammars.
type Ref struct {
	name   string
	target *Parser
	proxy  *Parser
}

// NewRef returns an unresolved reference. Running its parser before Set is
// called halts the parse with ErrUnresolvedRef.
func NewRef(name string) *Ref {
	r := &Ref{name: name}
	r.proxy = New(name, func(s State, m *MemoTable, k Conts) Step {
		if r.target == nil {
			return halt(fmt.Errorf("%s: %w", r.name, ErrUnresolvedRef), s, m)
		}
		return &Tail{fn: r.target.fn, state: s, memo: m, k: k}
	})
	return r
}

// Parser returns the parser standing in for the reference.
func (r *Ref) Parser() *Parser { return r.proxy }

// Set resolves the reference. It must be called before the reference is
// shared between goroutines.
func (r *Ref) Set(p *Parser) { r.target = p }

// Resolved reports whether Set has been called.
func (r *Ref) Resolved() bool { return r.target != nil }

// Rec builds a self-referential parser. def receives a stand-in for the parser
// it is building.
func Rec(name string, def func(self *Parser) *Parser) *Parser {
	ref := NewRef(name)
	p := def(ref.Parser())
	ref.Set(p)
	return Named(name, p)
}
