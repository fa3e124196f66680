package textenc

import (
	"errors"
	"fmt"
	"strings"

	"ndtext/internal/types"
)

var (
	ErrDecode = errors.New("decode error")
	ErrEncode = errors.New("encode error")
)

// NoIndex marks errors raised for a scalar rather than a sequence element.
const NoIndex = -1

// DecodeError reports stored bytes that are invalid under an encoding.
type DecodeError struct {
	Encoding types.Encoding
	Index    int    // element index, NoIndex for scalars
	Offset   int    // byte offset inside the element
	Bytes    []byte // offending bytes, may be empty
	Reason   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	if e.Index != NoIndex {
		fmt.Fprintf(&sb, "element %d: ", e.Index)
	}
	fmt.Fprintf(&sb, "%s codec can't decode", e.Encoding)
	switch len(e.Bytes) {
	case 0:
	case 1:
		fmt.Fprintf(&sb, " byte 0x%02x", e.Bytes[0])
	default:
		fmt.Fprintf(&sb, " bytes % x", e.Bytes)
	}
	fmt.Fprintf(&sb, " in position %d: %s", e.Offset, e.Reason)
	return sb.String()
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// WithIndex returns a copy attributed to a sequence element.
func (e *DecodeError) WithIndex(i int) *DecodeError {
	cp := *e
	cp.Index = i
	return &cp
}

// EncodeError reports text that cannot be represented in an encoding.
type EncodeError struct {
	Encoding types.Encoding
	Index    int  // element index, NoIndex for scalars
	Offset   int  // character offset inside the text
	Rune     rune // offending character, utf8.RuneError for malformed input
	Reason   string
}

func (e *EncodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	if e.Index != NoIndex {
		fmt.Fprintf(&sb, "element %d: ", e.Index)
	}
	fmt.Fprintf(&sb, "%s codec can't encode character %U in position %d: %s", e.Encoding, e.Rune, e.Offset, e.Reason)
	return sb.String()
}

func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

// WithIndex returns a copy attributed to a sequence element.
func (e *EncodeError) WithIndex(i int) *EncodeError {
	cp := *e
	cp.Index = i
	return &cp
}

func decodeErr(enc types.Encoding, off int, b []byte, format string, args ...any) *DecodeError {
	return &DecodeError{
		Encoding: enc,
		Index:    NoIndex,
		Offset:   off,
		Bytes:    append([]byte(nil), b...),
		Reason:   fmt.Sprintf(format, args...),
	}
}

func encodeErr(enc types.Encoding, off int, r rune, format string, args ...any) *EncodeError {
	return &EncodeError{
		Encoding: enc,
		Index:    NoIndex,
		Offset:   off,
		Rune:     r,
		Reason:   fmt.Sprintf(format, args...),
	}
}
