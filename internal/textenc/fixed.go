package textenc

import (
	"bytes"
	"unicode/utf8"
)

// FixedWidth returns the byte width of a fixed string of count characters.
func (c Codec) FixedWidth(count int) int {
	return count * c.enc.MaxCharSize()
}

// DecodeFixed decodes a fixed-width field holding at most count characters.
// Trailing NUL code units are padding and are dropped before decoding.
func (c Codec) DecodeFixed(raw []byte, count int, mode Mode) (string, error) {
	s, err := c.Decode(c.trimPadding(raw), mode)
	if err != nil {
		return "", err
	}
	if n := utf8.RuneCountInString(s); n > count {
		if mode == Strict {
			return "", decodeErr(c.enc, 0, nil, "%d characters do not fit string(%d)", n, count)
		}
		s = truncateRunes(s, count)
	}
	return s, nil
}

// EncodeFixed encodes s into a zero-padded field sized for count characters.
func (c Codec) EncodeFixed(s string, count int, mode Mode) ([]byte, error) {
	if n := utf8.RuneCountInString(s); n > count {
		if mode == Strict {
			r, _ := utf8.DecodeRuneInString(truncatePrefix(s, count))
			return nil, encodeErr(c.enc, count, r, "text of %d characters does not fit string(%d)", n, count)
		}
		s = truncateRunes(s, count)
	}
	enc, err := c.Encode(s, mode)
	if err != nil {
		return nil, err
	}
	return Pad(enc, c.FixedWidth(count)), nil
}

// Pad returns b zero-extended to width bytes. b must not be longer than width.
func Pad(b []byte, width int) []byte {
	out := make([]byte, width)
	copy(out, b)
	return out
}

func (c Codec) trimPadding(raw []byte) []byte {
	unit := c.enc.UnitSize()
	if unit <= 0 {
		return raw
	}
	end := len(raw) - len(raw)%unit
	if end != len(raw) {
		// odd tail; leave it for the decoder to reject
		return raw
	}
	zero := make([]byte, unit)
	for end >= unit && bytes.Equal(raw[end-unit:end], zero) {
		end -= unit
	}
	return raw[:end]
}

func truncateRunes(s string, n int) string {
	return s[:len(s)-len(truncatePrefix(s, n))]
}

// truncatePrefix returns the part of s after its first n characters.
func truncatePrefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[i:]
		}
		n--
	}
	return ""
}
