package typespec

import (
	"fmt"
	"strconv"
	"strings"

	"ndtext/internal/types"
)

// SyntaxError describes malformed descriptor text.
type SyntaxError struct {
	Input string
	Span  Span
	Msg   string
}

func newSyntaxError(src string, sp Span, format string, args ...any) *SyntaxError {
	return &SyntaxError{Input: src, Span: sp, Msg: fmt.Sprintf(format, args...)}
}

func (e *SyntaxError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("invalid type %q: %s at offset %d", e.Input, e.Msg, e.Span.Start)
}

// Caret renders the input with a marker under the offending span.
func (e *SyntaxError) Caret() string {
	if e == nil {
		return ""
	}
	width := e.Span.End - e.Span.Start
	if width < 1 {
		width = 1
	}
	return e.Input + "\n" + strings.Repeat(" ", e.Span.Start) + strings.Repeat("^", width)
}

type parser struct {
	lx  *lexer
	tok Token
	err *SyntaxError
}

// Parse converts descriptor text such as "string(1,'ascii')" or
// "2 * bytes" into a types.Type.
func Parse(src string) (types.Type, error) {
	p := &parser{lx: newLexer(src)}
	p.advance()
	t := p.parseType()
	if p.err == nil && p.tok.Kind != EOF {
		p.failf(p.tok.Span, "unexpected %s after type", p.tok.Kind)
	}
	if p.err != nil {
		return types.Type{}, p.err
	}
	return t, nil
}

// MustParse is like Parse but panics on malformed input. Meant for constants.
func MustParse(src string) types.Type {
	t, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return t
}

func (p *parser) advance() {
	p.tok = p.lx.next()
	if p.lx.err != nil && p.err == nil {
		p.err = p.lx.err
	}
}

func (p *parser) failf(sp Span, format string, args ...any) {
	if p.err == nil {
		p.err = newSyntaxError(p.lx.cur.src, sp, format, args...)
	}
}

func (p *parser) expect(k Kind) (Token, bool) {
	tok := p.tok
	if tok.Kind != k {
		p.failf(tok.Span, "expected %s, found %s", k, tok.Kind)
		return tok, false
	}
	p.advance()
	return tok, true
}

func (p *parser) parseType() types.Type {
	if p.err != nil {
		return types.Type{}
	}
	switch p.tok.Kind {
	case IntLit:
		return p.parseDim()
	case Ident:
		return p.parseScalar()
	default:
		p.failf(p.tok.Span, "expected type, found %s", p.tok.Kind)
		return types.Type{}
	}
}

func (p *parser) parseDim() types.Type {
	n, ok := p.parseUint()
	if !ok {
		return types.Type{}
	}
	if _, ok := p.expect(Star); !ok {
		return types.Type{}
	}
	start := p.tok.Span
	elem := p.parseType()
	if p.err != nil {
		return types.Type{}
	}
	if elem.Kind == types.KindDim {
		p.failf(start, "nested dimensions are not supported")
		return types.Type{}
	}
	return types.MakeDim(n, elem)
}

func (p *parser) parseScalar() types.Type {
	name := p.tok
	p.advance()
	switch strings.ToLower(name.Text) {
	case "string":
		return p.parseStringArgs()
	case "bytes":
		return p.parseBytesArgs(name)
	default:
		p.failf(name.Span, "unknown type name %q", name.Text)
		return types.Type{}
	}
}

// parseStringArgs handles: string | string(N) | string(N,'enc') | string('enc').
func (p *parser) parseStringArgs() types.Type {
	if p.tok.Kind != LParen {
		return types.String
	}
	p.advance()
	var (
		count    uint32
		hasCount bool
		enc      = types.NativeEncoding
	)
	if p.tok.Kind == IntLit {
		n, ok := p.parseUint()
		if !ok {
			return types.Type{}
		}
		count, hasCount = n, true
		if p.tok.Kind == Comma {
			p.advance()
			e, ok := p.parseEncoding()
			if !ok {
				return types.Type{}
			}
			enc = e
		}
	} else {
		e, ok := p.parseEncoding()
		if !ok {
			return types.Type{}
		}
		enc = e
	}
	if _, ok := p.expect(RParen); !ok {
		return types.Type{}
	}
	if hasCount {
		return types.MakeFixedString(count, enc)
	}
	return types.MakeString(enc)
}

// parseBytesArgs handles: bytes | bytes(N) | bytes(N, align=A) | bytes(align=A).
func (p *parser) parseBytesArgs(name Token) types.Type {
	if p.tok.Kind != LParen {
		return types.Bytes
	}
	p.advance()
	var (
		width    uint32
		hasWidth bool
		align    uint32 = 1
	)
	if p.tok.Kind == IntLit {
		n, ok := p.parseUint()
		if !ok {
			return types.Type{}
		}
		width, hasWidth = n, true
		if p.tok.Kind == Comma {
			p.advance()
			a, ok := p.parseAlign()
			if !ok {
				return types.Type{}
			}
			align = a
		}
	} else {
		a, ok := p.parseAlign()
		if !ok {
			return types.Type{}
		}
		align = a
	}
	if _, ok := p.expect(RParen); !ok {
		return types.Type{}
	}
	var t types.Type
	if hasWidth {
		t = types.MakeFixedBytes(width, align)
	} else {
		t = types.MakeBytes(align)
	}
	if !t.IsValid() {
		p.failf(Span{Start: name.Span.Start, End: p.lx.cur.off}, "alignment %d is not a power of two", align)
		return types.Type{}
	}
	return t
}

func (p *parser) parseAlign() (uint32, bool) {
	kw := p.tok
	if kw.Kind != Ident || !strings.EqualFold(kw.Text, "align") {
		p.failf(kw.Span, "expected width or align=, found %s", kw.Kind)
		return 0, false
	}
	p.advance()
	if _, ok := p.expect(Assign); !ok {
		return 0, false
	}
	return p.parseUint()
}

func (p *parser) parseEncoding() (types.Encoding, bool) {
	tok, ok := p.expect(StringLit)
	if !ok {
		return types.EncodingInvalid, false
	}
	enc, err := types.ParseEncoding(tok.Text)
	if err != nil {
		p.failf(tok.Span, "%v", err)
		return types.EncodingInvalid, false
	}
	return enc, true
}

func (p *parser) parseUint() (uint32, bool) {
	tok, ok := p.expect(IntLit)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		p.failf(tok.Span, "integer %s out of range", tok.Text)
		return 0, false
	}
	return uint32(n), true
}
