// Package parse provides a backtracking parser-combinator engine.
//
// Parsers are immutable values built from small primitives (Token, Always,
// Bind, Either, Many, ...). A parser body runs in continuation-passing style
// and concludes through one of four continuations:
//
//	Cok   succeeded after consuming input
//	Cerr  failed after consuming input
//	Eok   succeeded without consuming input
//	Eerr  failed without consuming input
//
// Alternatives only try their next branch after an empty failure, so a branch
// that consumed input commits the parse to it. Attempt turns any failure into
// an empty one to allow arbitrary lookahead.
//
// Parser bodies never call each other directly. They return a *Tail, and the
// entry points run tail calls in a loop, so the native stack stays flat no
// matter how deep the grammar recurses or how long the input is.
//
// Memo caches the outcome of a parser per position and state. Cached entries
// live inside backtracking windows opened by Attempt and Memo; closing the
// outermost window drops the entries past its start.
//
// A parse is started with one of the entry points:
//
//	value, err := parse.Run(p, "input", nil)
//	ok := parse.Test(p, "input", nil)
package parse
