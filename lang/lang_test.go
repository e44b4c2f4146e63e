package lang

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/bennu/parse"
	"github.com/dhamidi/bennu/text"
)

var (
	num = parse.Bind(text.Digit, func(x any) *parse.Parser {
		return parse.Always(int(x.(rune) - '0'))
	})
	comma = text.Character(',')
)

func runSlice(t *testing.T, p *parse.Parser, input string) ([]any, error) {
	t.Helper()
	x, err := text.Run(parse.Eager(p), input)
	if err != nil {
		return nil, err
	}
	return x.([]any), nil
}

func TestRepetition(t *testing.T) {
	between, err := BetweenTimes(2, 4, num)
	if err != nil {
		t.Fatalf("between times: %v", err)
	}

	tests := []struct {
		name  string
		p     *parse.Parser
		input string
		want  []any
		ok    bool
	}{
		{"times", Times(3, num), "1234", []any{1, 2, 3}, true},
		{"times zero", Times(0, num), "1", []any{}, true},
		{"times short", Times(3, num), "12", nil, false},
		{"at most", AtMostTimes(2, num), "123", []any{1, 2}, true},
		{"at most none", AtMostTimes(2, num), "x", []any{}, true},
		{"between", between, "123", []any{1, 2, 3}, true},
		{"between max", between, "123456", []any{1, 2, 3, 4}, true},
		{"between too few", between, "1", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runSlice(t, tt.p, tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("run %q: err = %v, want ok=%v", tt.input, err, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); tt.ok && diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBetweenTimesInvalid(t *testing.T) {
	p, err := BetweenTimes(5, 2, num)
	if !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("error = %v, want ErrInvalidBounds", err)
	}
	if p != nil {
		t.Error("no parser should be built for invalid bounds")
	}
}

func TestThenBetween(t *testing.T) {
	got, err := text.Run(Between(text.Character('('), text.Character(')'), num), "(7)")
	if err != nil || got != 7 {
		t.Errorf("between = %v, %v", got, err)
	}
	got, err = text.Run(Then(num, comma), "4,")
	if err != nil || got != 4 {
		t.Errorf("then = %v, %v", got, err)
	}
}

func TestSeparators(t *testing.T) {
	tests := []struct {
		name  string
		p     *parse.Parser
		input string
		want  []any
		ok    bool
	}{
		{"sep by empty", SepBy(comma, num), "", []any{}, true},
		{"sep by", SepBy(comma, num), "1,2,3", []any{1, 2, 3}, true},
		{"sep by trailing", SepBy(comma, num), "1,2,", nil, false},
		{"sep by1 empty", SepBy1(comma, num), "", nil, false},
		{"sep end by", SepEndBy(comma, num), "1,2,3", []any{1, 2, 3}, true},
		{"sep end by trailing", SepEndBy(comma, num), "1,2,", []any{1, 2}, true},
		{"sep end by empty", SepEndBy(comma, num), "", []any{}, true},
		{"sep end by lone sep", SepEndBy(comma, num), ",", []any{}, true},
		{"sep end by1 empty", SepEndBy1(comma, num), "", nil, false},
		{"end by", EndBy(comma, num), "1,2,", []any{1, 2}, true},
		{"end by empty", EndBy(comma, num), "", []any{}, true},
		{"end by missing sep", EndBy(comma, num), "1,2", nil, false},
		{"end by1", EndBy1(comma, num), "1,", []any{1}, true},
		{"end by1 empty", EndBy1(comma, num), "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runSlice(t, tt.p, tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("run %q: err = %v, want ok=%v", tt.input, err, tt.ok)
			}
			if diff := cmp.Diff(tt.want, got); tt.ok && diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// group renders applications so that the grouping is visible.
var group = parse.Next(comma, parse.Always(BinaryFunc(func(x, y any) any {
	return fmt.Sprintf("(%v %v)", x, y)
})))

func TestChainAssociativity(t *testing.T) {
	tests := []struct {
		name  string
		p     *parse.Parser
		input string
		want  any
	}{
		{"chainl1", Chainl1(group, num), "1,2,3", "((1 2) 3)"},
		{"chainr1", Chainr1(group, num), "1,2,3", "(1 (2 3))"},
		{"chainl1 single", Chainl1(group, num), "1", 1},
		{"chainr1 single", Chainr1(group, num), "1", 1},
		{"chainl default", Chainl(group, "none", num), "", "none"},
		{"chainr default", Chainr(group, "none", num), "", "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := text.Run(tt.p, tt.input)
			if err != nil {
				t.Fatalf("run %q: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("result = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestChainArithmetic(t *testing.T) {
	add := parse.Next(text.Character('+'), parse.Always(func(x, y any) any { return x.(int) + y.(int) }))
	mul := parse.Next(text.Character('*'), parse.Always(func(x, y any) any { return x.(int) * y.(int) }))
	op := parse.Either(add, mul)

	tests := []struct {
		p     *parse.Parser
		input string
		want  int
	}{
		{Chainr1(op, num), "1", 1},
		{Chainr1(op, num), "1+2", 3},
		{Chainr1(op, num), "1+2*3", 7},
		{Chainr1(op, num), "1*2+3", 5},
		{Chainr(op, 30, num), "", 30},
		{Chainr(op, 30, num), "+", 30},
		{Chainr(op, 30, num), "1*2+3", 5},
		{Chainl1(op, num), "1*2+3", 5},
		{Chainl1(op, num), "1+2*3", 9},
	}

	for _, tt := range tests {
		got, err := text.Run(tt.p, tt.input)
		if err != nil {
			t.Fatalf("run %q: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("%q = %v, want %d", tt.input, got, tt.want)
		}
	}
}

func TestChainConsumedOperatorFails(t *testing.T) {
	if _, err := text.Run(Chainl1(group, num), "1,"); err == nil {
		t.Error("an operator without a right operand should fail")
	}
}

func TestChainBadOperator(t *testing.T) {
	op := parse.Next(comma, parse.Always("not a function"))
	_, err := text.Run(Chainl1(op, num), "1,2")
	if err == nil {
		t.Fatal("expected failure for an operator that is not a binary function")
	}
}
