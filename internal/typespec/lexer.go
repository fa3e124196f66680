package typespec

// cursor is a byte position in the input.
type cursor struct {
	src string
	off int
}

func (c *cursor) eof() bool {
	return c.off >= len(c.src)
}

// peek returns the current byte, or 0 at end of input.
func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.off]
}

// bump advances one byte and returns it.
func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}
	b := c.src[c.off]
	c.off++
	return b
}

func (c *cursor) spanFrom(start int) Span {
	return Span{Start: start, End: c.off}
}

type lexer struct {
	cur cursor
	err *SyntaxError
}

func newLexer(src string) *lexer {
	return &lexer{cur: cursor{src: src}}
}

func (lx *lexer) skipSpace() {
	for !lx.cur.eof() {
		switch lx.cur.peek() {
		case ' ', '\t', '\n', '\r':
			lx.cur.bump()
		default:
			return
		}
	}
}

// next scans one token. On malformed input it records the first error and
// returns an Invalid token.
func (lx *lexer) next() Token {
	lx.skipSpace()
	start := lx.cur.off
	if lx.cur.eof() {
		return Token{Kind: EOF, Span: lx.cur.spanFrom(start)}
	}
	b := lx.cur.peek()
	switch {
	case b == '(':
		lx.cur.bump()
		return Token{Kind: LParen, Span: lx.cur.spanFrom(start), Text: "("}
	case b == ')':
		lx.cur.bump()
		return Token{Kind: RParen, Span: lx.cur.spanFrom(start), Text: ")"}
	case b == ',':
		lx.cur.bump()
		return Token{Kind: Comma, Span: lx.cur.spanFrom(start), Text: ","}
	case b == '=':
		lx.cur.bump()
		return Token{Kind: Assign, Span: lx.cur.spanFrom(start), Text: "="}
	case b == '*':
		lx.cur.bump()
		return Token{Kind: Star, Span: lx.cur.spanFrom(start), Text: "*"}
	case b == '\'' || b == '"':
		return lx.scanQuoted()
	case isDigit(b):
		for isDigit(lx.cur.peek()) {
			lx.cur.bump()
		}
		sp := lx.cur.spanFrom(start)
		return Token{Kind: IntLit, Span: sp, Text: lx.cur.src[sp.Start:sp.End]}
	case isIdentStart(b):
		for isIdentPart(lx.cur.peek()) {
			lx.cur.bump()
		}
		sp := lx.cur.spanFrom(start)
		return Token{Kind: Ident, Span: sp, Text: lx.cur.src[sp.Start:sp.End]}
	default:
		lx.cur.bump()
		sp := lx.cur.spanFrom(start)
		lx.fail(sp, "unexpected character %q", b)
		return Token{Kind: Invalid, Span: sp, Text: lx.cur.src[sp.Start:sp.End]}
	}
}

// scanQuoted reads 'name' or "name". Escapes are not part of the grammar.
func (lx *lexer) scanQuoted() Token {
	start := lx.cur.off
	quote := lx.cur.bump()
	for !lx.cur.eof() {
		b := lx.cur.bump()
		if b == quote {
			sp := lx.cur.spanFrom(start)
			return Token{Kind: StringLit, Span: sp, Text: lx.cur.src[sp.Start+1 : sp.End-1]}
		}
	}
	sp := lx.cur.spanFrom(start)
	lx.fail(sp, "unterminated quoted string")
	return Token{Kind: Invalid, Span: sp, Text: lx.cur.src[sp.Start:sp.End]}
}

func (lx *lexer) fail(sp Span, format string, args ...any) {
	if lx.err != nil {
		return
	}
	lx.err = newSyntaxError(lx.cur.src, sp, format, args...)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}
