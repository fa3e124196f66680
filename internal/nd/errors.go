package nd

import (
	"errors"
	"fmt"

	"ndtext/internal/textenc"
	"ndtext/internal/types"
)

// ErrorCode identifies the kind of container failure.
type ErrorCode int

// Stable error codes - do not change values.
const (
	CodeDecode           ErrorCode = 1001 // ND1001: stored bytes invalid under an encoding
	CodeEncode           ErrorCode = 1002 // ND1002: text not representable
	CodeTypeMismatch     ErrorCode = 1003 // ND1003: literal or stage does not fit a type
	CodeIncompatibleView ErrorCode = 1004 // ND1004: view cannot reinterpret storage
)

// String returns the code as "ND1001" format.
func (c ErrorCode) String() string {
	return fmt.Sprintf("ND%d", c)
}

var (
	ErrDecode           = textenc.ErrDecode
	ErrEncode           = textenc.ErrEncode
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrIncompatibleView = errors.New("incompatible view")
)

type (
	// DecodeError is returned when stored bytes are invalid under their encoding.
	DecodeError = textenc.DecodeError
	// EncodeError is returned when text cannot be represented in an encoding.
	EncodeError = textenc.EncodeError
)

// TypeMismatchError reports a literal or stage that does not fit a type.
type TypeMismatchError struct {
	Index int // element index, textenc.NoIndex when not element-specific
	Want  types.Type
	Got   string
	Msg   string
}

func (e *TypeMismatchError) Error() string {
	prefix := ""
	if e.Index != textenc.NoIndex {
		prefix = fmt.Sprintf("element %d: ", e.Index)
	}
	if e.Msg != "" {
		return fmt.Sprintf("%s %s%s", CodeTypeMismatch, prefix, e.Msg)
	}
	return fmt.Sprintf("%s %scannot use %s as %s", CodeTypeMismatch, prefix, e.Got, e.Want)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// IncompatibleViewError reports a view whose storage does not line up with
// the source.
type IncompatibleViewError struct {
	From, To types.Type
	Reason   string
}

func (e *IncompatibleViewError) Error() string {
	return fmt.Sprintf("%s cannot view %s as %s: %s", CodeIncompatibleView, e.From, e.To, e.Reason)
}

func (e *IncompatibleViewError) Is(target error) bool { return target == ErrIncompatibleView }

// Code returns the stable code of a container error, or 0.
func Code(err error) ErrorCode {
	var (
		derr *DecodeError
		eerr *EncodeError
		terr *TypeMismatchError
		verr *IncompatibleViewError
	)
	switch {
	case errors.As(err, &derr):
		return CodeDecode
	case errors.As(err, &eerr):
		return CodeEncode
	case errors.As(err, &terr):
		return CodeTypeMismatch
	case errors.As(err, &verr):
		return CodeIncompatibleView
	default:
		return 0
	}
}

// IsDecode reports whether err carries a DecodeError.
func IsDecode(err error) bool { return Code(err) == CodeDecode }

// IsEncode reports whether err carries an EncodeError.
func IsEncode(err error) bool { return Code(err) == CodeEncode }

func mismatchf(index int, format string, args ...any) *TypeMismatchError {
	return &TypeMismatchError{Index: index, Msg: fmt.Sprintf(format, args...)}
}

func viewErr(from, to types.Type, format string, args ...any) *IncompatibleViewError {
	return &IncompatibleViewError{From: from, To: to, Reason: fmt.Sprintf(format, args...)}
}
