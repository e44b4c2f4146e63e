package ebnf

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	xebnf "golang.org/x/exp/ebnf"

	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/text"
)

// Option configures Compile.
type Option func(*config)

type config struct {
	skip *parse.Parser
	memo bool
	log  commonlog.Logger
}

// WithSkip sets the parser run before each token of a syntactic production,
// typically text.Spaces.
func WithSkip(skip *parse.Parser) Option {
	return func(c *config) {
		c.skip = skip
	}
}

// WithMemo enables or disables memoization of productions. It is enabled by
// default.
func WithMemo(enabled bool) Option {
	return func(c *config) {
		c.memo = enabled
	}
}

// WithLogger sets the logger used by parses of the compiled grammar.
func WithLogger(log commonlog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// Grammar is a compiled grammar. It is safe for concurrent use.
type Grammar struct {
	source xebnf.Grammar
	rules  map[string]*parse.Parser
	skip   *parse.Parser
	log    commonlog.Logger
}

// Compile turns every production of g into a parser. Lexical productions
// produce the matched string; syntactic productions produce a *Node.
func Compile(g xebnf.Grammar, opts ...Option) (*Grammar, error) {
	c := config{memo: true}
	for _, opt := range opts {
		opt(&c)
	}
	if c.skip == nil {
		c.skip = parse.Always(nil)
	}

	if err := check(g); err != nil {
		return nil, err
	}

	cc := &compiler{refs: make(map[string]*parse.Ref, len(g)), skip: c.skip}
	for name := range g {
		cc.refs[name] = parse.NewRef(name)
	}

	rules := make(map[string]*parse.Parser, len(g))
	for _, name := range sortedNames(g) {
		var (
			p   *parse.Parser
			err error
		)
		if IsLexical(name) {
			p, err = cc.lexical(g[name].Expr)
		} else {
			p, err = cc.syntactic(g[name].Expr)
			if err == nil {
				p = production(name, p)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("production %s: %w", name, err)
		}

		p = parse.Named(name, p)
		if c.memo {
			p = parse.Memo(p)
		}
		cc.refs[name].Set(p)
		rules[name] = cc.refs[name].Parser()
	}

	return &Grammar{source: g, rules: rules, skip: c.skip, log: c.log}, nil
}

// Rule returns the parser for a production.
func (g *Grammar) Rule(name string) (*parse.Parser, bool) {
	p, ok := g.rules[name]
	return p, ok
}

// Names returns the production names in sorted order.
func (g *Grammar) Names() []string {
	return sortedNames(g.source)
}

// Parse parses src from the production start. The whole input must match,
// apart from skipped text at the end when start is syntactic.
func (g *Grammar) Parse(filename, start, src string, opts ...parse.Option) (*Node, error) {
	rule, ok := g.rules[start]
	if !ok {
		return nil, fmt.Errorf("start %s: %w", start, ErrUndefined)
	}

	trailing := parse.Eof
	if !IsLexical(start) {
		trailing = parse.Next(g.skip, parse.Eof)
	}
	p := parse.Bind(spanned(rule), func(x any) *parse.Parser {
		return parse.Next(trailing, parse.Always(x))
	})

	base := []parse.Option{parse.WithPosition(text.Start(filename))}
	if g.log != nil {
		base = append(base, parse.WithLogger(g.log))
	}
	x, err := parse.Run(p, src, nil, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	m := x.(match)
	if n, ok := m.value.(*Node); ok {
		return n, nil
	}
	return NewTerminal(start, m.value.(string), m.span), nil
}

type compiler struct {
	refs map[string]*parse.Ref
	skip *parse.Parser
}

func (cc *compiler) ref(name *xebnf.Name) (*parse.Ref, error) {
	ref, ok := cc.refs[name.String]
	if !ok {
		return nil, fmt.Errorf("%s: %s: %w", name.Pos(), name.String, ErrUndefined)
	}
	return ref, nil
}

// lexical compiles expr to a parser producing the matched string.
func (cc *compiler) lexical(expr xebnf.Expression) (*parse.Parser, error) {
	switch e := expr.(type) {
	case nil:
		return parse.Always(""), nil

	case *xebnf.Token:
		if e.String == "" {
			return parse.Always(""), nil
		}
		return text.String(e.String), nil

	case *xebnf.Range:
		r, err := rangeParser(e)
		if err != nil {
			return nil, err
		}
		return parse.Bind(r, func(x any) *parse.Parser {
			return parse.Always(string(x.(rune)))
		}), nil

	case *xebnf.Name:
		if !IsLexical(e.String) {
			return nil, fmt.Errorf("%s: reference to non-lexical production %s: %w", e.Pos(), e.String, ErrBadExpression)
		}
		ref, err := cc.ref(e)
		if err != nil {
			return nil, err
		}
		return ref.Parser(), nil

	case xebnf.Sequence:
		ps, err := cc.each(e, cc.lexical)
		if err != nil {
			return nil, err
		}
		return concatStrings(parse.Enumeration(ps...)), nil

	case xebnf.Alternative:
		ps, err := cc.each(e, cc.lexical)
		if err != nil {
			return nil, err
		}
		return alternatives(ps), nil

	case *xebnf.Group:
		return cc.lexical(e.Body)

	case *xebnf.Option:
		body, err := cc.lexical(e.Body)
		if err != nil {
			return nil, err
		}
		return parse.Optional("", parse.Attempt(body)), nil

	case *xebnf.Repetition:
		body, err := cc.lexical(e.Body)
		if err != nil {
			return nil, err
		}
		return concatStrings(parse.Many(parse.Attempt(body))), nil

	case *xebnf.Bad:
		return nil, fmt.Errorf("%s: %s: %w", e.Pos(), e.Error, ErrBadExpression)
	}
	return nil, fmt.Errorf("%T: %w", expr, ErrBadExpression)
}

// syntactic compiles expr to a parser producing a []*Node.
func (cc *compiler) syntactic(expr xebnf.Expression) (*parse.Parser, error) {
	switch e := expr.(type) {
	case nil:
		return parse.Always([]*Node(nil)), nil

	case *xebnf.Token:
		if e.String == "" {
			return parse.Always([]*Node(nil)), nil
		}
		return cc.terminal(strconv.Quote(e.String), text.String(e.String)), nil

	case *xebnf.Range:
		r, err := rangeParser(e)
		if err != nil {
			return nil, err
		}
		kind := strconv.Quote(e.Begin.String) + "…" + strconv.Quote(e.End.String)
		return cc.terminal(kind, parse.Bind(r, func(x any) *parse.Parser {
			return parse.Always(string(x.(rune)))
		})), nil

	case *xebnf.Name:
		ref, err := cc.ref(e)
		if err != nil {
			return nil, err
		}
		if IsLexical(e.String) {
			return cc.terminal(e.String, ref.Parser()), nil
		}
		return parse.Bind(ref.Parser(), func(x any) *parse.Parser {
			return parse.Always([]*Node{x.(*Node)})
		}), nil

	case xebnf.Sequence:
		ps, err := cc.each(e, cc.syntactic)
		if err != nil {
			return nil, err
		}
		return concatNodes(parse.Enumeration(ps...)), nil

	case xebnf.Alternative:
		ps, err := cc.each(e, cc.syntactic)
		if err != nil {
			return nil, err
		}
		return alternatives(ps), nil

	case *xebnf.Group:
		return cc.syntactic(e.Body)

	case *xebnf.Option:
		body, err := cc.syntactic(e.Body)
		if err != nil {
			return nil, err
		}
		return parse.Optional([]*Node(nil), parse.Attempt(body)), nil

	case *xebnf.Repetition:
		body, err := cc.syntactic(e.Body)
		if err != nil {
			return nil, err
		}
		return concatNodes(parse.Many(parse.Attempt(body))), nil

	case *xebnf.Bad:
		return nil, fmt.Errorf("%s: %s: %w", e.Pos(), e.Error, ErrBadExpression)
	}
	return nil, fmt.Errorf("%T: %w", expr, ErrBadExpression)
}

func (cc *compiler) each(exprs []xebnf.Expression, compile func(xebnf.Expression) (*parse.Parser, error)) ([]*parse.Parser, error) {
	ps := make([]*parse.Parser, len(exprs))
	for i, e := range exprs {
		p, err := compile(e)
		if err != nil {
			return nil, err
		}
		ps[i] = p
	}
	return ps, nil
}

// terminal skips, then runs p, which produces a string, and wraps the match
// in a leaf node.
func (cc *compiler) terminal(kind string, p *parse.Parser) *parse.Parser {
	return parse.Next(cc.skip, parse.Bind(spanned(p), func(x any) *parse.Parser {
		m := x.(match)
		return parse.Always([]*Node{NewTerminal(kind, m.value.(string), m.span)})
	}))
}

func rangeParser(e *xebnf.Range) (*parse.Parser, error) {
	lo, n := utf8.DecodeRuneInString(e.Begin.String)
	if n == 0 || n != len(e.Begin.String) {
		return nil, fmt.Errorf("%s: range bound %q: %w", e.Pos(), e.Begin.String, ErrBadExpression)
	}
	hi, n := utf8.DecodeRuneInString(e.End.String)
	if n == 0 || n != len(e.End.String) {
		return nil, fmt.Errorf("%s: range bound %q: %w", e.End.Pos(), e.End.String, ErrBadExpression)
	}
	return text.Range(lo, hi), nil
}

func alternatives(ps []*parse.Parser) *parse.Parser {
	attempts := make([]*parse.Parser, len(ps))
	for i, p := range ps {
		attempts[i] = parse.Attempt(p)
	}
	return parse.Choice(attempts...)
}

func concatStrings(p *parse.Parser) *parse.Parser {
	return parse.Bind(parse.Eager(p), func(x any) *parse.Parser {
		var b strings.Builder
		for _, s := range x.([]any) {
			b.WriteString(s.(string))
		}
		return parse.Always(b.String())
	})
}

func concatNodes(p *parse.Parser) *parse.Parser {
	return parse.Bind(parse.Eager(p), func(x any) *parse.Parser {
		var nodes []*Node
		for _, ns := range x.([]any) {
			nodes = append(nodes, ns.([]*Node)...)
		}
		return parse.Always(nodes)
	})
}

// production wraps the children produced by p into a node named name.
func production(name string, p *parse.Parser) *parse.Parser {
	return parse.Bind(parse.GetPosition, func(start any) *parse.Parser {
		return parse.Bind(p, func(x any) *parse.Parser {
			n := NewNonTerminal(name, sourcePosition(start.(parse.Position)))
			for _, c := range x.([]*Node) {
				n.AddChild(c)
			}
			return parse.Always(n)
		})
	})
}

// match is a value together with the span it was parsed from.
type match struct {
	value any
	span  Span
}

func spanned(p *parse.Parser) *parse.Parser {
	return parse.Bind(parse.GetPosition, func(start any) *parse.Parser {
		return parse.Bind(p, func(x any) *parse.Parser {
			return parse.Bind(parse.GetPosition, func(end any) *parse.Parser {
				return parse.Always(match{value: x, span: Span{
					Start: sourcePosition(start.(parse.Position)),
					End:   sourcePosition(end.(parse.Position)),
				}})
			})
		})
	})
}

func sourcePosition(pos parse.Position) text.SourcePosition {
	if sp, ok := pos.(text.SourcePosition); ok {
		return sp
	}
	return text.SourcePosition{Index: pos.Offset()}
}
