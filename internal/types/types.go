package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Kind enumerates all supported kinds of descriptors.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFixedBytes
	KindFixedString
	KindBytes
	KindString
	KindDim
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindFixedBytes:
		return "fixed_bytes"
	case KindFixedString:
		return "fixed_string"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindDim:
		return "dim"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsVariable reports whether values of this kind have a per-element length.
func (k Kind) IsVariable() bool {
	return k == KindBytes || k == KindString
}

// IsText reports whether the kind holds encoded characters.
func (k Kind) IsText() bool {
	return k == KindFixedString || k == KindString
}

// IsBinary reports whether the kind holds raw bytes.
func (k Kind) IsBinary() bool {
	return k == KindFixedBytes || k == KindBytes
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind     Kind
	Size     uint32   // fixed bytes width, fixed string char count, dim length
	Align    uint32   // bytes kinds only; 0 is treated as 1
	Encoding Encoding // string kinds only
	Elem     *Type    // dim only
}

// Descriptor helpers ---------------------------------------------------------

// MakeFixedBytes describes a fixed-width byte buffer.
func MakeFixedBytes(width, align uint32) Type {
	return Type{Kind: KindFixedBytes, Size: width, Align: normAlign(align)}
}

// MakeBytes describes a variable-length byte buffer.
func MakeBytes(align uint32) Type {
	return Type{Kind: KindBytes, Align: normAlign(align)}
}

// MakeFixedString describes a string holding at most count characters.
func MakeFixedString(count uint32, enc Encoding) Type {
	return Type{Kind: KindFixedString, Size: count, Encoding: enc}
}

// MakeString describes a variable-length string.
func MakeString(enc Encoding) Type {
	return Type{Kind: KindString, Encoding: enc}
}

// MakeDim describes a one-dimensional sequence of n elements.
func MakeDim(n uint32, elem Type) Type {
	e := elem
	return Type{Kind: KindDim, Size: n, Elem: &e}
}

// Builtin descriptors matching the host defaults.
var (
	String = MakeString(NativeEncoding)
	Bytes  = MakeBytes(1)
)

func normAlign(a uint32) uint32 {
	if a == 0 {
		return 1
	}
	return a
}

// IsValid reports whether the descriptor names a real type.
func (t Type) IsValid() bool {
	switch t.Kind {
	case KindFixedBytes, KindBytes:
		return isPow2(normAlign(t.Align))
	case KindFixedString, KindString:
		return t.Encoding.IsValid()
	case KindDim:
		return t.Elem != nil && t.Elem.Kind != KindDim && t.Elem.IsValid()
	default:
		return false
	}
}

func isPow2(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// Equal reports whether both descriptors have the same variant and fields.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindFixedBytes:
		return t.Size == o.Size && normAlign(t.Align) == normAlign(o.Align)
	case KindBytes:
		return normAlign(t.Align) == normAlign(o.Align)
	case KindFixedString:
		return t.Size == o.Size && t.Encoding == o.Encoding
	case KindString:
		return t.Encoding == o.Encoding
	case KindDim:
		if t.Size != o.Size || (t.Elem == nil) != (o.Elem == nil) {
			return false
		}
		return t.Elem == nil || t.Elem.Equal(*o.Elem)
	default:
		return true
	}
}

// Element returns the innermost scalar descriptor.
func (t Type) Element() Type {
	if t.Kind == KindDim && t.Elem != nil {
		return *t.Elem
	}
	return t
}

// ByteWidth returns the storage width of a fixed-size element.
// Variable kinds report 0.
func (t Type) ByteWidth() (int, error) {
	switch t.Kind {
	case KindFixedBytes:
		return safecast.Conv[int](t.Size)
	case KindFixedString:
		w := uint64(t.Size) * uint64(t.Encoding.MaxCharSize())
		n, err := safecast.Conv[int](w)
		if err != nil {
			return 0, fmt.Errorf("fixed string width overflow: %w", err)
		}
		return n, nil
	default:
		return 0, nil
	}
}

// String returns the canonical descriptor grammar form.
func (t Type) String() string {
	switch t.Kind {
	case KindFixedBytes:
		if normAlign(t.Align) == 1 {
			return "bytes(" + strconv.FormatUint(uint64(t.Size), 10) + ")"
		}
		return fmt.Sprintf("bytes(%d, align=%d)", t.Size, t.Align)
	case KindBytes:
		if normAlign(t.Align) == 1 {
			return "bytes"
		}
		return fmt.Sprintf("bytes(align=%d)", t.Align)
	case KindFixedString:
		return fmt.Sprintf("string(%d,'%s')", t.Size, t.Encoding)
	case KindString:
		if t.Encoding == NativeEncoding {
			return "string"
		}
		return fmt.Sprintf("string('%s')", t.Encoding)
	case KindDim:
		if t.Elem == nil {
			return fmt.Sprintf("%d * invalid", t.Size)
		}
		return fmt.Sprintf("%d * %s", t.Size, t.Elem.String())
	default:
		return "invalid"
	}
}

// Repr mirrors how descriptors are printed on the host side: builtins get a
// short name, everything else is spelled through ndt.type.
func (t Type) Repr() string {
	switch {
	case t.Kind == KindString && t.Encoding == NativeEncoding:
		return "ndt.string"
	case t.Kind == KindBytes && normAlign(t.Align) == 1:
		return "ndt.bytes"
	default:
		var sb strings.Builder
		sb.WriteString("ndt.type(\"")
		sb.WriteString(t.String())
		sb.WriteString("\")")
		return sb.String()
	}
}
