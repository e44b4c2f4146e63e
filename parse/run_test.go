package parse

import (
	"errors"
	"testing"

	"github.com/dhamidi/bennu/stream"
)

func TestParseCallbacks(t *testing.T) {
	ok := func(x any, s State) any { return "ok" }
	fail := func(err error, s State) any { return "fail" }

	if got := Parse(char('a'), "a", nil, ok, fail); got != "ok" {
		t.Errorf("Parse success = %v", got)
	}
	if got := Parse(char('a'), "b", nil, ok, fail); got != "fail" {
		t.Errorf("Parse failure = %v", got)
	}
	if got := ParseStream(char('a'), stream.From("a"), nil, ok, fail); got != "ok" {
		t.Errorf("ParseStream = %v", got)
	}
}

func TestParseFailureState(t *testing.T) {
	var failedAt Position
	Parse(Next(char('a'), char('b')), "ax", nil,
		func(x any, s State) any { return nil },
		func(err error, s State) any {
			failedAt = s.Position()
			return nil
		})
	if failedAt != Index(1) {
		t.Errorf("failure state at %v, want 1", failedAt)
	}
}

func TestParseHaltCallsFailure(t *testing.T) {
	var got error
	Parse(Many(Always(nil)), "", nil,
		func(x any, s State) any { return nil },
		func(err error, s State) any {
			got = err
			return nil
		})
	if !errors.Is(got, ErrEmptyMany) {
		t.Errorf("failure callback got %v, want ErrEmptyMany", got)
	}
}

func TestRunState(t *testing.T) {
	s := NewState(stream.From("ab"), Index(10), "u")
	got, err := RunState(Next(AnyToken, Enumeration(GetPosition, GetState)), s)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	xs := stream.ToSlice(got.(*stream.Stream))
	if xs[0] != Index(11) || xs[1] != "u" {
		t.Errorf("got %v, want [11 u]", xs)
	}
}

func TestWithPosition(t *testing.T) {
	got, err := Run(Next(AnyToken, GetPosition), "ab", nil, WithPosition(Index(5)))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != Index(6) {
		t.Errorf("position = %v, want 6", got)
	}

	_, err = Run(Next(AnyToken, char('x')), "ab", nil, WithPosition(Index(5)))
	if err == nil || err.Error() != "at 6: unexpected 'b'" {
		t.Errorf("error = %v", err)
	}
}

func TestPartialInput(t *testing.T) {
	if !Test(char('a'), "abc", nil) {
		t.Error("a parser that does not demand eof should accept a prefix")
	}
	if Test(Next(char('a'), Eof), "abc", nil) {
		t.Error("eof should reject trailing input")
	}
}

func TestTestVariants(t *testing.T) {
	p := Many1(char('a'))
	if !TestStream(p, stream.From("aa"), nil) {
		t.Error("TestStream rejected valid input")
	}
	if TestState(p, NewState(stream.From("b"), nil, nil)) {
		t.Error("TestState accepted invalid input")
	}
	if Test(NewRef("unset").Parser(), "a", nil) {
		t.Error("Test accepted a halted parse")
	}
}

func TestStateAccess(t *testing.T) {
	p := Sequence(
		SetInput(stream.From("xyz")),
		SetPosition(Index(100)),
		ModifyState(func(u any) any { return u.(int) + 1 }),
		Enumeration(AnyToken, GetPosition, GetState, Extract(func(s State) any { return s.First() })),
	)
	got, err := Run(Eager(p), "abc", 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []any{'x', Index(101), 2, 'y'}
	xs := got.([]any)
	for i := range want {
		if xs[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, xs[i], want[i])
		}
	}

	input, err := Run(Next(AnyToken, GetInput), "ab", nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if first := input.(*stream.Stream).First(); first != 'b' {
		t.Errorf("remaining input starts with %v, want 'b'", first)
	}
}

func TestGetParserState(t *testing.T) {
	got, err := Run(GetParserState, "ab", "u")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	s := got.(State)
	if s.First() != 'a' || s.UserState() != "u" || s.Position() != InitialPosition {
		t.Errorf("unexpected state %+v", s)
	}
}
