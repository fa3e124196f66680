package textenc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"ndtext/internal/types"
)

func TestRoundTrip(t *testing.T) {
	texts := []string{"", "Testing 1 2 3", "안녕", "naïve", "𝄞 clef"}
	for _, enc := range []types.Encoding{types.EncodingUTF8, types.EncodingUTF16, types.EncodingUTF32} {
		for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
			c := New(enc, order)
			for _, s := range texts {
				raw, err := c.Encode(s, Strict)
				if err != nil {
					t.Fatalf("%s encode %q: %v", enc, s, err)
				}
				got, err := c.Decode(raw, Strict)
				if err != nil {
					t.Fatalf("%s decode %q: %v", enc, s, err)
				}
				if got != s {
					t.Fatalf("%s round trip: got %q, want %q", enc, got, s)
				}
			}
		}
	}
}

func TestEncodeByteOrder(t *testing.T) {
	le, err := New(types.EncodingUTF16, binary.LittleEndian).Encode("A", Strict)
	if err != nil || !bytes.Equal(le, []byte{0x41, 0x00}) {
		t.Fatalf("utf16le: % x, %v", le, err)
	}
	be, err := New(types.EncodingUTF32, binary.BigEndian).Encode("A", Strict)
	if err != nil || !bytes.Equal(be, []byte{0, 0, 0, 0x41}) {
		t.Fatalf("utf32be: % x, %v", be, err)
	}
	surr, err := New(types.EncodingUTF16, nil).Encode("𝄞", Strict)
	if err != nil || !bytes.Equal(surr, []byte{0x34, 0xD8, 0x1E, 0xDD}) {
		t.Fatalf("utf16 surrogate pair: % x, %v", surr, err)
	}
}

func TestDecodeASCIIRejectsHighBytes(t *testing.T) {
	c := New(types.EncodingASCII, nil)
	_, err := c.Decode([]byte{'o', 'k', 0x80}, Strict)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if derr.Offset != 2 || !bytes.Equal(derr.Bytes, []byte{0x80}) || derr.Index != NoIndex {
		t.Fatalf("unexpected error fields %+v", derr)
	}
	if want := "ascii codec can't decode byte 0x80 in position 2: ordinal not in range(128)"; derr.Error() != want {
		t.Fatalf("message %q, want %q", derr.Error(), want)
	}
	if got := derr.WithIndex(3).Error(); !strings.HasPrefix(got, "element 3: ") {
		t.Fatalf("indexed message %q", got)
	}

	s, err := c.Decode([]byte{'o', 0x80}, Replace)
	if err != nil || s != "o�" {
		t.Fatalf("replace decode: %q, %v", s, err)
	}
}

func TestDecodeInvalidSequences(t *testing.T) {
	cases := []struct {
		enc    types.Encoding
		raw    []byte
		offset int
	}{
		{types.EncodingUTF8, []byte{'a', 0xFF}, 1},
		{types.EncodingUTF8, []byte{0xC3}, 0},
		{types.EncodingUCS2, []byte{0x41, 0x00, 0x00, 0xD8}, 2},
		{types.EncodingUCS2, []byte{0x41}, 0},
		{types.EncodingUTF16, []byte{0x00, 0xDC}, 0},
		{types.EncodingUTF16, []byte{0x41, 0x00, 0x34, 0xD8}, 2},
		{types.EncodingUTF16, []byte{0x34, 0xD8, 0x41, 0x00}, 0},
		{types.EncodingUTF32, []byte{0x00, 0x00, 0x11, 0x00}, 0},
		{types.EncodingUTF32, []byte{0x41, 0, 0, 0, 0x00, 0xD8, 0, 0}, 4},
		{types.EncodingUTF32, []byte{0x41, 0, 0}, 0},
	}
	for _, tc := range cases {
		c := New(tc.enc, binary.LittleEndian)
		_, err := c.Decode(tc.raw, Strict)
		var derr *DecodeError
		if !errors.As(err, &derr) {
			t.Fatalf("%s % x: expected *DecodeError, got %v", tc.enc, tc.raw, err)
		}
		if derr.Offset != tc.offset {
			t.Fatalf("%s % x: offset %d, want %d", tc.enc, tc.raw, derr.Offset, tc.offset)
		}
		if _, err := c.Decode(tc.raw, Replace); err != nil {
			t.Fatalf("%s % x: replace mode must not fail: %v", tc.enc, tc.raw, err)
		}
	}
}

func TestEncodeUnrepresentable(t *testing.T) {
	cases := []struct {
		enc    types.Encoding
		text   string
		offset int
		r      rune
	}{
		{types.EncodingASCII, "안녕", 0, '안'},
		{types.EncodingASCII, "Hi é", 3, 'é'},
		{types.EncodingUCS2, "a𝄞", 1, '𝄞'},
		{types.EncodingUTF8, "a\xffb", 1, '�'},
	}
	for _, tc := range cases {
		c := New(tc.enc, nil)
		_, err := c.Encode(tc.text, Strict)
		var eerr *EncodeError
		if !errors.As(err, &eerr) {
			t.Fatalf("%s %q: expected *EncodeError, got %v", tc.enc, tc.text, err)
		}
		if eerr.Offset != tc.offset || eerr.Rune != tc.r {
			t.Fatalf("%s %q: got offset %d rune %U", tc.enc, tc.text, eerr.Offset, eerr.Rune)
		}
	}

	out, err := New(types.EncodingASCII, nil).Encode("Hi é", Replace)
	if err != nil || string(out) != "Hi ?" {
		t.Fatalf("replace encode: %q, %v", out, err)
	}
}

func TestFixedWidth(t *testing.T) {
	c := New(types.EncodingUCS2, binary.LittleEndian)
	raw, err := c.EncodeFixed("ab", 3, Strict)
	if err != nil {
		t.Fatalf("EncodeFixed: %v", err)
	}
	if !bytes.Equal(raw, []byte{'a', 0, 'b', 0, 0, 0}) {
		t.Fatalf("padded field % x", raw)
	}
	s, err := c.DecodeFixed(raw, 3, Strict)
	if err != nil || s != "ab" {
		t.Fatalf("DecodeFixed: %q, %v", s, err)
	}

	_, err = c.EncodeFixed("abcd", 3, Strict)
	var eerr *EncodeError
	if !errors.As(err, &eerr) || eerr.Offset != 3 || eerr.Rune != 'd' {
		t.Fatalf("expected overflow EncodeError, got %v", err)
	}
	raw, err = c.EncodeFixed("abcd", 3, Replace)
	if err != nil || len(raw) != 6 {
		t.Fatalf("replace truncation: % x, %v", raw, err)
	}
	if s, _ := c.DecodeFixed(raw, 3, Strict); s != "abc" {
		t.Fatalf("truncated text %q", s)
	}
}

func TestDecodeFixedUTF8CountsCharacters(t *testing.T) {
	c := New(types.EncodingUTF8, nil)
	if c.FixedWidth(2) != 8 {
		t.Fatalf("utf8 field width %d", c.FixedWidth(2))
	}
	raw, err := c.EncodeFixed("안녕", 2, Strict)
	if err != nil {
		t.Fatalf("EncodeFixed: %v", err)
	}
	if len(raw) != 8 {
		t.Fatalf("field length %d", len(raw))
	}
	// 4 one-byte characters in an 8-byte field of a 2-character type
	_, err = c.DecodeFixed([]byte("abcd\x00\x00\x00\x00"), 2, Strict)
	var derr *DecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *DecodeError for overlong field, got %v", err)
	}
	if s, err := c.DecodeFixed([]byte("abcd\x00\x00\x00\x00"), 2, Replace); err != nil || s != "ab" {
		t.Fatalf("replace: %q, %v", s, err)
	}
}
