package typespec

import "fmt"

// Kind enumerates token kinds of the descriptor grammar.
type Kind uint8

const (
	Invalid Kind = iota
	EOF
	Ident
	IntLit
	StringLit
	LParen
	RParen
	Comma
	Assign
	Star
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case EOF:
		return "end of input"
	case Ident:
		return "identifier"
	case IntLit:
		return "integer"
	case StringLit:
		return "quoted string"
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Comma:
		return "','"
	case Assign:
		return "'='"
	case Star:
		return "'*'"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Span is a half-open byte range in the input.
type Span struct {
	Start, End int
}

// Token represents a single token with its location.
type Token struct {
	Kind Kind
	Span Span
	Text string // for StringLit, the unquoted contents
}
