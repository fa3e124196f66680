// Package textenc converts between stored code units and Go text for the
// closed set of string encodings.
//
// Every conversion runs in one of two modes. Strict reports the first invalid
// byte sequence or unrepresentable character as a *DecodeError or
// *EncodeError. Replace substitutes U+FFFD when decoding and '?' when
// encoding, and truncates text that does not fit a fixed width.
package textenc

import (
	"encoding/binary"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"ndtext/internal/types"
)

// Mode selects how invalid input is handled.
type Mode uint8

const (
	Strict Mode = iota
	Replace
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Replace:
		return "replace"
	default:
		return "unknown"
	}
}

const encodeReplacement = '?'

// Codec encodes and decodes text for one encoding and byte order.
type Codec struct {
	enc   types.Encoding
	order binary.ByteOrder
}

// New returns a codec. A nil order means little-endian.
func New(enc types.Encoding, order binary.ByteOrder) Codec {
	if order == nil {
		order = binary.LittleEndian
	}
	return Codec{enc: enc, order: order}
}

// Encoding returns the encoding handled by the codec.
func (c Codec) Encoding() types.Encoding {
	return c.enc
}

func (c Codec) bigEndian() bool {
	return c.order == binary.BigEndian
}

// xtext returns the x/text transformer for the wide encodings.
func (c Codec) xtext() encoding.Encoding {
	switch c.enc {
	case types.EncodingUCS2, types.EncodingUTF16:
		if c.bigEndian() {
			return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
		}
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case types.EncodingUTF32:
		if c.bigEndian() {
			return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
		}
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	default:
		return nil
	}
}

// Decode converts stored code units into text.
func (c Codec) Decode(raw []byte, mode Mode) (string, error) {
	switch c.enc {
	case types.EncodingASCII:
		return c.decodeASCII(raw, mode)
	case types.EncodingUTF8:
		return c.decodeUTF8(raw, mode)
	case types.EncodingUCS2, types.EncodingUTF16, types.EncodingUTF32:
		if mode == Strict {
			if derr := c.validateWide(raw); derr != nil {
				return "", derr
			}
		}
		out, err := c.xtext().NewDecoder().Bytes(raw)
		if err != nil {
			return "", decodeErr(c.enc, 0, nil, "%v", err)
		}
		return string(out), nil
	default:
		return "", decodeErr(c.enc, 0, nil, "unknown encoding")
	}
}

// Encode converts text into code units.
func (c Codec) Encode(s string, mode Mode) ([]byte, error) {
	if mode == Strict {
		if eerr := c.Representable(s); eerr != nil {
			return nil, eerr
		}
	} else {
		s = c.sanitize(s)
	}
	switch c.enc {
	case types.EncodingASCII, types.EncodingUTF8:
		return []byte(s), nil
	case types.EncodingUCS2, types.EncodingUTF16, types.EncodingUTF32:
		out, err := c.xtext().NewEncoder().Bytes([]byte(s))
		if err != nil {
			return nil, encodeErr(c.enc, 0, utf8.RuneError, "%v", err)
		}
		return out, nil
	default:
		return nil, encodeErr(c.enc, 0, utf8.RuneError, "unknown encoding")
	}
}

// Representable reports the first character of s that the encoding cannot
// hold, or nil.
func (c Codec) Representable(s string) *EncodeError {
	maxRune := c.enc.MaxRune()
	if maxRune < 0 {
		return encodeErr(c.enc, 0, utf8.RuneError, "unknown encoding")
	}
	pos := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return encodeErr(c.enc, pos, r, "malformed UTF-8 in text")
		}
		if r > maxRune {
			return encodeErr(c.enc, pos, r, "ordinal not in range(%d)", int(maxRune)+1)
		}
		i += size
		pos++
	}
	return nil
}

// sanitize replaces every character the encoding cannot hold.
func (c Codec) sanitize(s string) string {
	if c.Representable(s) == nil {
		return s
	}
	maxRune := c.enc.MaxRune()
	out := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || r > maxRune {
			r = encodeReplacement
		}
		out = append(out, r)
		i += size
	}
	return string(out)
}

func (c Codec) decodeASCII(raw []byte, mode Mode) (string, error) {
	for i, b := range raw {
		if b < 0x80 {
			continue
		}
		if mode == Strict {
			return "", decodeErr(c.enc, i, raw[i:i+1], "ordinal not in range(128)")
		}
		out := make([]rune, 0, len(raw))
		for _, bb := range raw {
			if bb >= 0x80 {
				out = append(out, utf8.RuneError)
			} else {
				out = append(out, rune(bb))
			}
		}
		return string(out), nil
	}
	return string(raw), nil
}

func (c Codec) decodeUTF8(raw []byte, mode Mode) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	out := make([]rune, 0, len(raw))
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size == 1 {
			if mode == Strict {
				return "", decodeErr(c.enc, i, raw[i:i+1], "invalid start byte")
			}
		}
		out = append(out, r)
		i += size
	}
	return string(out), nil
}

func (c Codec) unit16(b []byte) uint16 {
	return c.order.Uint16(b)
}

// validateWide checks UCS-2, UTF-16 and UTF-32 code units. The x/text
// decoders substitute U+FFFD silently, so strict mode needs its own pass.
func (c Codec) validateWide(raw []byte) *DecodeError {
	unit := c.enc.UnitSize()
	if rem := len(raw) % unit; rem != 0 {
		off := len(raw) - rem
		return decodeErr(c.enc, off, raw[off:], "truncated data")
	}
	switch c.enc {
	case types.EncodingUCS2:
		for i := 0; i < len(raw); i += 2 {
			u := c.unit16(raw[i:])
			if u >= 0xD800 && u <= 0xDFFF {
				return decodeErr(c.enc, i, raw[i:i+2], "surrogate code unit 0x%04x", u)
			}
		}
	case types.EncodingUTF16:
		for i := 0; i < len(raw); i += 2 {
			u := c.unit16(raw[i:])
			switch {
			case u >= 0xD800 && u <= 0xDBFF:
				if i+4 > len(raw) {
					return decodeErr(c.enc, i, raw[i:], "unexpected end of data")
				}
				lo := c.unit16(raw[i+2:])
				if lo < 0xDC00 || lo > 0xDFFF {
					return decodeErr(c.enc, i, raw[i:i+4], "illegal UTF-16 surrogate")
				}
				i += 2
			case u >= 0xDC00 && u <= 0xDFFF:
				return decodeErr(c.enc, i, raw[i:i+2], "illegal encoding")
			}
		}
	case types.EncodingUTF32:
		for i := 0; i < len(raw); i += 4 {
			r := c.order.Uint32(raw[i:])
			if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
				return decodeErr(c.enc, i, raw[i:i+4], "code point 0x%x not in range", r)
			}
		}
	}
	return nil
}
