package parse

import (
	"cmp"
	"reflect"
	"strconv"

	"github.com/dhamidi/bennu/stream"
)

// Position identifies a point in the input. Positions are totally ordered by
// Offset, and Increment moves past one token.
type Position interface {
	// Offset is the number of tokens consumed before this position.
	Offset() int
	// Increment returns the position after consuming tok.
	Increment(tok any) Position
	String() string
}

// ComparePositions orders a and b by offset.
func ComparePositions(a, b Position) int {
	return cmp.Compare(a.Offset(), b.Offset())
}

// Index is the default Position: a plain token count.
type Index int

// InitialPosition is where parses start unless WithPosition says otherwise.
const InitialPosition = Index(0)

func (i Index) Offset() int                { return int(i) }
func (i Index) Increment(tok any) Position { return i + 1 }
func (i Index) String() string             { return strconv.Itoa(int(i)) }

// State is an immutable snapshot of a parse: the remaining input, the current
// position and the opaque user state. Every transition returns a new State.
type State struct {
	input    *stream.Stream
	position Position
	user     any
}

// NewState returns a state at pos over input. A nil pos means InitialPosition.
func NewState(input *stream.Stream, pos Position, user any) State {
	if pos == nil {
		pos = InitialPosition
	}
	return State{input: input, position: pos, user: user}
}

func (s State) Input() *stream.Stream { return s.input }
func (s State) UserState() any        { return s.user }

func (s State) Position() Position {
	if s.position == nil {
		return InitialPosition
	}
	return s.position
}

// IsEmpty reports whether the input is exhausted.
func (s State) IsEmpty() bool { return s.input.IsEmpty() }

// First returns the next token.
func (s State) First() any { return s.input.First() }

// Rest returns the input after the next token.
func (s State) Rest() *stream.Stream { return s.input.Rest() }

// Next returns the state after consuming tok, the first token of the input.
func (s State) Next(tok any) State {
	return State{input: s.input.Rest(), position: s.Position().Increment(tok), user: s.user}
}

func (s State) SetInput(input *stream.Stream) State {
	return State{input: input, position: s.position, user: s.user}
}

func (s State) SetPosition(pos Position) State {
	return State{input: s.input, position: pos, user: s.user}
}

func (s State) SetUserState(user any) State {
	return State{input: s.input, position: s.position, user: user}
}

// Eq reports whether s and other share the same input cell and the same user
// state. Values are compared by identity, not by content: a user state that is
// mutated in place still compares equal to its earlier self.
//
// Comparable user states compare with ==; maps, slices, pointers, funcs and
// channels compare by address. A value that has no identity, such as a struct
// holding a slice, never equals anything, not even itself, so Memo never hits
// under it. Store such state behind a pointer.
func (s State) Eq(other State) bool {
	return s.input == other.input && sameIdentity(s.user, other.user)
}

func sameIdentity(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	return false
}
