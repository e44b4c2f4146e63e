package ebnf

import (
	"errors"
	"fmt"

	xebnf "golang.org/x/exp/ebnf"
)

var (
	// ErrUndefined is returned for a reference to a production the grammar
	// does not define.
	ErrUndefined = errors.New("undefined production")

	// ErrLeftRecursion is returned for a production that can reach itself
	// without consuming input. Such a production would never terminate.
	ErrLeftRecursion = errors.New("left-recursive production")

	// ErrNullableRepetition is returned for a repetition whose body matches
	// the empty string.
	ErrNullableRepetition = errors.New("repetition of an expression that matches the empty string")

	// ErrBadExpression is returned for expressions the compiler cannot handle,
	// such as ranges over more than one character.
	ErrBadExpression = errors.New("bad expression")
)

// check rejects grammars that would loop forever when run as parsers.
func check(g xebnf.Grammar) error {
	nullable := nullableSet(g)
	names := sortedNames(g)

	var errs []error
	for _, name := range names {
		walk(g[name].Expr, func(e xebnf.Expression) {
			if r, ok := e.(*xebnf.Repetition); ok && isNullable(r.Body, nullable) {
				errs = append(errs, fmt.Errorf("%s: %s: %w", r.Pos(), name, ErrNullableRepetition))
			}
		})
	}

	left := make(map[string][]string, len(g))
	for _, name := range names {
		left[name] = leftNames(g[name].Expr, nullable)
	}
	for _, name := range names {
		if reaches(left, name, name) {
			errs = append(errs, fmt.Errorf("%s: %s: %w", g[name].Pos(), name, ErrLeftRecursion))
		}
	}

	return errors.Join(errs...)
}

// nullableSet computes which productions match the empty string.
func nullableSet(g xebnf.Grammar) map[string]bool {
	nullable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for name, prod := range g {
			if !nullable[name] && isNullable(prod.Expr, nullable) {
				nullable[name] = true
				changed = true
			}
		}
	}
	return nullable
}

func isNullable(expr xebnf.Expression, nullable map[string]bool) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *xebnf.Token:
		return e.String == ""
	case *xebnf.Name:
		return nullable[e.String]
	case xebnf.Sequence:
		for _, item := range e {
			if !isNullable(item, nullable) {
				return false
			}
		}
		return true
	case xebnf.Alternative:
		for _, alt := range e {
			if isNullable(alt, nullable) {
				return true
			}
		}
		return false
	case *xebnf.Group:
		return isNullable(e.Body, nullable)
	case *xebnf.Option, *xebnf.Repetition:
		return true
	}
	return false
}

// leftNames returns the productions expr may invoke before consuming input.
func leftNames(expr xebnf.Expression, nullable map[string]bool) []string {
	switch e := expr.(type) {
	case *xebnf.Name:
		return []string{e.String}
	case xebnf.Sequence:
		var names []string
		for _, item := range e {
			names = append(names, leftNames(item, nullable)...)
			if !isNullable(item, nullable) {
				break
			}
		}
		return names
	case xebnf.Alternative:
		var names []string
		for _, alt := range e {
			names = append(names, leftNames(alt, nullable)...)
		}
		return names
	case *xebnf.Group:
		return leftNames(e.Body, nullable)
	case *xebnf.Option:
		return leftNames(e.Body, nullable)
	case *xebnf.Repetition:
		return leftNames(e.Body, nullable)
	}
	return nil
}

func reaches(graph map[string][]string, from, target string) bool {
	visited := make(map[string]bool)
	stack := append([]string(nil), graph[from]...)
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if name == target {
			return true
		}
		if visited[name] {
			continue
		}
		visited[name] = true
		stack = append(stack, graph[name]...)
	}
	return false
}

func walk(expr xebnf.Expression, fn func(xebnf.Expression)) {
	if expr == nil {
		return
	}
	fn(expr)
	switch e := expr.(type) {
	case xebnf.Sequence:
		for _, item := range e {
			walk(item, fn)
		}
	case xebnf.Alternative:
		for _, alt := range e {
			walk(alt, fn)
		}
	case *xebnf.Group:
		walk(e.Body, fn)
	case *xebnf.Option:
		walk(e.Body, fn)
	case *xebnf.Repetition:
		walk(e.Body, fn)
	}
}
