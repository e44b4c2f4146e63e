package parse

import "github.com/dhamidi/bennu/stream"

// ModifyParserState replaces the parser state with f's result and succeeds
// with the new state.
func ModifyParserState(f func(State) State) *Parser {
	return New("modify parser state", func(s State, m *MemoTable, k Conts) Step {
		next := f(s)
		return Apply(k.Eok, next, next, m)
	})
}

// Extract succeeds with f applied to the current state.
func Extract(f func(State) any) *Parser {
	return New("extract", func(s State, m *MemoTable, k Conts) Step {
		return Apply(k.Eok, f(s), s, m)
	})
}

// GetParserState succeeds with the current State.
var GetParserState = Named("get parser state", ModifyParserState(func(s State) State { return s }))

// SetParserState replaces the whole parser state.
func SetParserState(s State) *Parser {
	return ModifyParserState(func(State) State { return s })
}

// GetState succeeds with the user state.
var GetState = Named("get state", Extract(func(s State) any { return s.UserState() }))

// ModifyState replaces the user state with f's result.
func ModifyState(f func(user any) any) *Parser {
	return ModifyParserState(func(s State) State {
		return s.SetUserState(f(s.UserState()))
	})
}

// SetState replaces the user state.
func SetState(user any) *Parser {
	return ModifyState(func(any) any { return user })
}

// GetPosition succeeds with the current Position.
var GetPosition = Named("get position", Extract(func(s State) any { return s.Position() }))

// SetPosition replaces the position.
func SetPosition(pos Position) *Parser {
	return ModifyParserState(func(s State) State { return s.SetPosition(pos) })
}

// GetInput succeeds with the remaining input.
var GetInput = Named("get input", Extract(func(s State) any { return s.Input() }))

// SetInput replaces the remaining input.
func SetInput(input *stream.Stream) *Parser {
	return ModifyParserState(func(s State) State { return s.SetInput(input) })
}
