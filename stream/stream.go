// Package stream provides lazy, persistent sequences of arbitrary values.
//
// A Stream is a chain of cells. The head of a cell is known when it is built;
// the rest is either given directly or computed on first access and then cached,
// so asking a cell for its rest twice yields the same *Stream. Parsers rely on
// that identity: two states whose remaining input is the same cell are treated
// as the same point in the parse.
//
// The nil *Stream is the empty stream, and all methods accept a nil receiver.
package stream

import (
	"reflect"
	"sync"
	"unicode/utf8"
)

// Stream is one cell of a lazy sequence.
type Stream struct {
	first any
	once  sync.Once
	tail  func() *Stream
	rest  *Stream
}

// Nil is the empty stream.
var Nil *Stream

// Cons returns a stream whose first element is x, followed by rest.
func Cons(x any, rest *Stream) *Stream {
	return &Stream{first: x, rest: rest}
}

// Lazy returns a stream whose first element is x and whose rest is computed by
// tail the first time it is needed.
func Lazy(x any, tail func() *Stream) *Stream {
	return &Stream{first: x, tail: tail}
}

// IsEmpty reports whether s has no elements.
func (s *Stream) IsEmpty() bool {
	return s == nil
}

// First returns the first element of s, or nil if s is empty.
func (s *Stream) First() any {
	if s == nil {
		return nil
	}
	return s.first
}

// Rest returns s without its first element. The empty stream's rest is empty.
func (s *Stream) Rest() *Stream {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		if s.tail != nil {
			s.rest = s.tail()
			s.tail = nil
		}
	})
	return s.rest
}

// From converts v to a stream.
//
// Strings yield their runes, slices and arrays yield their elements, a *Stream
// is returned as is and nil yields the empty stream. Any other value becomes a
// one element stream.
func From(v any) *Stream {
	switch v := v.(type) {
	case nil:
		return Nil
	case *Stream:
		return v
	case string:
		return FromString(v)
	case []rune:
		return FromSlice(v)
	case []any:
		return FromSlice(v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return fromValue(rv, 0)
	}
	return Cons(v, Nil)
}

// FromString returns a stream of the runes in str, decoded as they are reached.
func FromString(str string) *Stream {
	if len(str) == 0 {
		return Nil
	}
	r, size := utf8.DecodeRuneInString(str)
	return Lazy(r, func() *Stream {
		return FromString(str[size:])
	})
}

// FromSlice returns a stream over the elements of xs.
func FromSlice[T any](xs []T) *Stream {
	return fromSlice(xs, 0)
}

func fromSlice[T any](xs []T, i int) *Stream {
	if i >= len(xs) {
		return Nil
	}
	return Lazy(xs[i], func() *Stream {
		return fromSlice(xs, i+1)
	})
}

func fromValue(rv reflect.Value, i int) *Stream {
	if i >= rv.Len() {
		return Nil
	}
	return Lazy(rv.Index(i).Interface(), func() *Stream {
		return fromValue(rv, i+1)
	})
}

// Iterate returns a possibly infinite stream fed by next. The stream ends the
// first time next reports false.
func Iterate(next func() (any, bool)) *Stream {
	x, ok := next()
	if !ok {
		return Nil
	}
	return Lazy(x, func() *Stream {
		return Iterate(next)
	})
}

// Repeat returns a stream holding x n times. A negative n repeats forever.
func Repeat(n int, x any) *Stream {
	if n == 0 {
		return Nil
	}
	return Lazy(x, func() *Stream {
		if n < 0 {
			return Repeat(n, x)
		}
		return Repeat(n-1, x)
	})
}

// Append returns the elements of a followed by those of b. Neither stream is
// forced beyond what the caller reads.
func Append(a, b *Stream) *Stream {
	if a.IsEmpty() {
		return b
	}
	return Lazy(a.First(), func() *Stream {
		return Append(a.Rest(), b)
	})
}

// ToSlice forces s and returns its elements. The result is never nil.
func ToSlice(s *Stream) []any {
	out := make([]any, 0)
	for ; !s.IsEmpty(); s = s.Rest() {
		out = append(out, s.First())
	}
	return out
}

// Foldl reduces s from the left: f(f(f(z, x0), x1), x2)...
func Foldl(f func(acc, x any) any, z any, s *Stream) any {
	acc := z
	for ; !s.IsEmpty(); s = s.Rest() {
		acc = f(acc, s.First())
	}
	return acc
}

// Foldr reduces s from the right: f(f(f(z, xn), xn-1), ...). s must be finite.
func Foldr(f func(acc, x any) any, z any, s *Stream) any {
	xs := ToSlice(s)
	acc := z
	for i := len(xs) - 1; i >= 0; i-- {
		acc = f(acc, xs[i])
	}
	return acc
}
