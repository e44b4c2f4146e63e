package parse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyMany halts a parse when Many is applied to a parser that
	// succeeded without consuming input.
	ErrEmptyMany = errors.New("many applied to a parser that accepts an empty string")

	// ErrUnresolvedRef halts a parse that reaches a Ref whose target was never set.
	ErrUnresolvedRef = errors.New("unresolved parser reference")
)

// ParseError is a failure produced while parsing. Every ParseError knows the
// position it refers to.
type ParseError interface {
	error
	Position() Position
	// Message is the error text without the position.
	Message() string
}

type endOfInput struct{}

func (endOfInput) String() string { return "end of input" }

// EndOfInput stands in for the missing token when the input is exhausted.
var EndOfInput fmt.Stringer = endOfInput{}

// Error is a failure with a free-form message, as produced by Fail.
type Error struct {
	Pos Position
	Msg string
}

func (e *Error) Position() Position { return e.Pos }
func (e *Error) Message() string    { return e.Msg }
func (e *Error) Error() string      { return formatError(e.Pos, e.Msg) }

// UnknownError is a failure nobody diagnosed.
type UnknownError struct {
	Pos Position
}

func (e *UnknownError) Position() Position { return e.Pos }
func (e *UnknownError) Message() string    { return "unknown error" }
func (e *UnknownError) Error() string      { return formatError(e.Pos, e.Message()) }

// UnexpectError reports a token that was present but not wanted.
type UnexpectError struct {
	Pos        Position
	Unexpected any
}

func (e *UnexpectError) Position() Position { return e.Pos }
func (e *UnexpectError) Message() string    { return "unexpected " + Describe(e.Unexpected) }
func (e *UnexpectError) Error() string      { return formatError(e.Pos, e.Message()) }

// ExpectError reports an unmet expectation. Found is nil when unknown.
type ExpectError struct {
	Pos      Position
	Expected string
	Found    any
}

func (e *ExpectError) Position() Position { return e.Pos }

func (e *ExpectError) Message() string {
	if e.Found == nil {
		return "expected " + e.Expected
	}
	return "expected " + e.Expected + ", found " + Describe(e.Found)
}

func (e *ExpectError) Error() string { return formatError(e.Pos, e.Message()) }

// MultipleError aggregates failures at the same position with no particular
// order between them.
type MultipleError struct {
	Pos  Position
	Errs []error
}

func (e *MultipleError) Position() Position { return e.Pos }
func (e *MultipleError) Errors() []error    { return e.Errs }
func (e *MultipleError) Unwrap() []error    { return e.Errs }
func (e *MultipleError) Message() string    { return joinErrors(e.Errs) }
func (e *MultipleError) Error() string      { return formatError(e.Pos, e.Message()) }

// ChoiceError aggregates the failures of an ordered choice. Left failed first;
// Right holds the failures of the remaining alternatives.
type ChoiceError struct {
	Pos   Position
	Left  error
	Right error
}

func (e *ChoiceError) Position() Position { return e.Pos }

// Errors returns the failures of every alternative, left to right.
func (e *ChoiceError) Errors() []error {
	errs := []error{e.Left}
	for right := e.Right; right != nil; {
		next, ok := right.(*ChoiceError)
		if !ok {
			errs = append(errs, right)
			break
		}
		errs = append(errs, next.Left)
		right = next.Right
	}
	return errs
}

func (e *ChoiceError) Unwrap() []error { return e.Errors() }
func (e *ChoiceError) Message() string { return joinErrors(e.Errors()) }
func (e *ChoiceError) Error() string   { return formatError(e.Pos, e.Message()) }

// Describe renders a token for an error message.
func Describe(tok any) string {
	switch tok := tok.(type) {
	case nil:
		return "nothing"
	case rune:
		return strconv.QuoteRune(tok)
	case string:
		return strconv.Quote(tok)
	case fmt.Stringer:
		return tok.String()
	}
	return fmt.Sprint(tok)
}

func formatError(pos Position, msg string) string {
	if pos == nil {
		return msg
	}
	return fmt.Sprintf("at %s: %s", pos, msg)
}

func joinErrors(errs []error) string {
	parts := make([]string, len(errs))
	for i, err := range errs {
		parts[i] = err.Error()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func mergeMultiple(pos Position, left, right error) error {
	return &MultipleError{Pos: pos, Errs: []error{left, right}}
}

func mergeChoice(pos Position, left, right error) error {
	return &ChoiceError{Pos: pos, Left: left, Right: right}
}

// asError turns a failure value handed to an error continuation into an error.
func asError(x any) error {
	switch x := x.(type) {
	case error:
		return x
	case nil:
		return errors.New("parse failed")
	}
	return fmt.Errorf("%v", x)
}
