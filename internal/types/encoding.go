package types

import (
	"fmt"
	"strings"
)

// Encoding identifies how characters of a string kind are stored.
type Encoding uint8

const (
	EncodingInvalid Encoding = iota
	EncodingASCII
	EncodingUTF8
	EncodingUCS2
	EncodingUTF16
	EncodingUTF32
)

// NativeEncoding is used for text literals when no type is given.
const NativeEncoding = EncodingUTF8

func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingUTF8:
		return "utf8"
	case EncodingUCS2:
		return "ucs2"
	case EncodingUTF16:
		return "utf16"
	case EncodingUTF32:
		return "utf32"
	default:
		return "invalid"
	}
}

// IsValid reports whether e is a member of the closed encoding set.
func (e Encoding) IsValid() bool {
	return e >= EncodingASCII && e <= EncodingUTF32
}

// UnitSize is the size in bytes of one code unit.
func (e Encoding) UnitSize() int {
	switch e {
	case EncodingASCII, EncodingUTF8:
		return 1
	case EncodingUCS2, EncodingUTF16:
		return 2
	case EncodingUTF32:
		return 4
	default:
		return 0
	}
}

// MaxCharSize is the largest number of bytes a single character may occupy.
func (e Encoding) MaxCharSize() int {
	switch e {
	case EncodingASCII:
		return 1
	case EncodingUCS2:
		return 2
	case EncodingUTF8, EncodingUTF16, EncodingUTF32:
		return 4
	default:
		return 0
	}
}

// MaxRune is the largest code point the encoding can represent.
func (e Encoding) MaxRune() rune {
	switch e {
	case EncodingASCII:
		return 0x7F
	case EncodingUCS2:
		return 0xFFFF
	case EncodingUTF8, EncodingUTF16, EncodingUTF32:
		return 0x10FFFF
	default:
		return -1
	}
}

var encodingNames = map[string]Encoding{
	"a":        EncodingASCII,
	"ascii":    EncodingASCII,
	"us-ascii": EncodingASCII,
	"u8":       EncodingUTF8,
	"utf8":     EncodingUTF8,
	"utf-8":    EncodingUTF8,
	"utf_8":    EncodingUTF8,
	"ucs2":     EncodingUCS2,
	"ucs-2":    EncodingUCS2,
	"ucs_2":    EncodingUCS2,
	"u16":      EncodingUTF16,
	"utf16":    EncodingUTF16,
	"utf-16":   EncodingUTF16,
	"utf_16":   EncodingUTF16,
	"u32":      EncodingUTF32,
	"utf32":    EncodingUTF32,
	"utf-32":   EncodingUTF32,
	"utf_32":   EncodingUTF32,
}

// ParseEncoding converts an encoding name or alias. An empty name selects the
// native encoding.
func ParseEncoding(name string) (Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return NativeEncoding, nil
	}
	if enc, ok := encodingNames[key]; ok {
		return enc, nil
	}
	return EncodingInvalid, fmt.Errorf("invalid input %q for string encoding", name)
}
