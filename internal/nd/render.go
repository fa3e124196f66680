package nd

import (
	"fmt"
	"strings"

	"ndtext/internal/textenc"
	"ndtext/internal/types"
)

// Render evaluates a and formats it for a display limited to enc: text as-is,
// bytes as b"..." literals, sequences as [a, b]. Characters enc cannot hold
// are an *EncodeError rather than being dropped.
func (a *Array) Render(enc types.Encoding) (string, error) {
	res, err := Eval(a)
	if err != nil {
		return "", err
	}
	codec := textenc.New(enc, res.engine().ByteOrder())
	parts := make([]string, res.buf.n)
	for i := range parts {
		s, err := res.renderElem(i)
		if err != nil {
			return "", err
		}
		if eerr := codec.Representable(s); eerr != nil {
			if res.scalar {
				return "", eerr
			}
			return "", eerr.WithIndex(i)
		}
		parts[i] = s
	}
	if res.scalar {
		return parts[0], nil
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

// String renders a in the native encoding. Evaluation failures are shown in
// angle brackets.
func (a *Array) String() string {
	s, err := a.Render(types.NativeEncoding)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

// Repr renders a as nd.array(value, type="...").
func (a *Array) Repr() string {
	body := a.String()
	return fmt.Sprintf("nd.array(%s, type=%q)", body, a.DType().String())
}

func (a *Array) renderElem(i int) (string, error) {
	if a.value.Kind.IsText() {
		return a.text(i)
	}
	return BytesLiteral(a.buf.element(i)), nil
}

// BytesLiteral formats b as b"..." with printable ASCII kept and everything
// else escaped as \xNN.
func BytesLiteral(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b) + 3)
	sb.WriteString(`b"`)
	for _, c := range b {
		switch {
		case c == '"' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c >= 0x20 && c < 0x7F:
			sb.WriteByte(c)
		default:
			fmt.Fprintf(&sb, `\x%02x`, c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
