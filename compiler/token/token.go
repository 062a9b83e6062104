package token

import "fmt"

type (
	// Kind is the instruction class of a lexical token.
	Kind uint8

	// Token is one lexical unit of a program.
	// Ch is the source rune, for Proc tokens the proc delimiter.
	// Pos is the byte offset in the source text.
	Token struct {
		Kind Kind
		Ch   rune
		Pos  int
	}
)

const (
	Illegal Kind = iota

	MoveRight // >
	MoveLeft  // <
	Inc       // +
	Dec       // -
	Output    // .
	Input     // ,
	LoopOpen  // [
	LoopClose // ]

	Proc // proc delimiter or call marker
)

// KindOf maps one of the seven base instruction symbols to its Kind.
// Any other rune is Illegal: not a base instruction, which the lexer
// resolves into whitespace or a Proc marker.
func KindOf(c rune) Kind {
	switch c {
	case '>':
		return MoveRight
	case '<':
		return MoveLeft
	case '+':
		return Inc
	case '-':
		return Dec
	case '.':
		return Output
	case ',':
		return Input
	case '[':
		return LoopOpen
	case ']':
		return LoopClose
	}

	return Illegal
}

// Symbol is the source symbol of a base instruction Kind.
// Proc and Illegal have no fixed symbol.
func (k Kind) Symbol() (c rune, ok bool) {
	switch k {
	case MoveRight:
		return '>', true
	case MoveLeft:
		return '<', true
	case Inc:
		return '+', true
	case Dec:
		return '-', true
	case Output:
		return '.', true
	case Input:
		return ',', true
	case LoopOpen:
		return '[', true
	case LoopClose:
		return ']', true
	}

	return 0, false
}

func (k Kind) String() string {
	switch k {
	case MoveRight:
		return "right"
	case MoveLeft:
		return "left"
	case Inc:
		return "inc"
	case Dec:
		return "dec"
	case Output:
		return "output"
	case Input:
		return "input"
	case LoopOpen:
		return "open"
	case LoopClose:
		return "close"
	case Proc:
		return "proc"
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

func (t Token) String() string {
	if t.Kind == Proc {
		return fmt.Sprintf("%v(%q)", t.Kind, t.Ch)
	}

	return t.Kind.String()
}
