package types

import "testing"

func TestParseEncodingAliases(t *testing.T) {
	cases := map[string]Encoding{
		"A":        EncodingASCII,
		"ASCII":    EncodingASCII,
		"us-ascii": EncodingASCII,
		"U8":       EncodingUTF8,
		"utf-8":    EncodingUTF8,
		"":         EncodingUTF8,
		"ucs_2":    EncodingUCS2,
		"UTF16":    EncodingUTF16,
		"utf_32":   EncodingUTF32,
		"U32":      EncodingUTF32,
	}
	for name, want := range cases {
		got, err := ParseEncoding(name)
		if err != nil {
			t.Fatalf("ParseEncoding(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseEncoding(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseEncoding("latin1"); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestFixedStringWidthCountsCharacters(t *testing.T) {
	cases := []struct {
		typ  Type
		want int
	}{
		{MakeFixedString(1, EncodingASCII), 1},
		{MakeFixedString(3, EncodingUCS2), 6},
		{MakeFixedString(2, EncodingUTF8), 8},
		{MakeFixedString(2, EncodingUTF16), 8},
		{MakeFixedString(5, EncodingUTF32), 20},
		{MakeFixedBytes(7, 1), 7},
		{String, 0},
	}
	for _, tc := range cases {
		got, err := tc.typ.ByteWidth()
		if err != nil {
			t.Fatalf("%s: %v", tc.typ, err)
		}
		if got != tc.want {
			t.Fatalf("%s: width %d, want %d", tc.typ, got, tc.want)
		}
	}
}

func TestTypeEqual(t *testing.T) {
	if !MakeString(EncodingUTF8).Equal(String) {
		t.Fatalf("utf8 string should equal builtin string")
	}
	if MakeString(EncodingUTF16).Equal(String) {
		t.Fatalf("encodings must participate in equality")
	}
	if !MakeBytes(0).Equal(Bytes) {
		t.Fatalf("zero alignment normalizes to 1")
	}
	if MakeFixedBytes(1, 1).Equal(MakeFixedBytes(2, 1)) {
		t.Fatalf("widths must participate in equality")
	}
	a := MakeDim(2, String)
	b := MakeDim(2, MakeString(EncodingUTF8))
	if !a.Equal(b) {
		t.Fatalf("dims with equal elements should be equal")
	}
	if a.Equal(MakeDim(3, String)) {
		t.Fatalf("dim length must participate in equality")
	}
}

func TestTypeStringAndRepr(t *testing.T) {
	cases := []struct {
		typ       Type
		str, repr string
	}{
		{String, "string", "ndt.string"},
		{Bytes, "bytes", "ndt.bytes"},
		{MakeString(EncodingUTF16), "string('utf16')", `ndt.type("string('utf16')")`},
		{MakeFixedString(1, EncodingASCII), "string(1,'ascii')", `ndt.type("string(1,'ascii')")`},
		{MakeFixedBytes(4, 4), "bytes(4, align=4)", `ndt.type("bytes(4, align=4)")`},
		{MakeBytes(8), "bytes(align=8)", `ndt.type("bytes(align=8)")`},
		{MakeDim(2, String), "2 * string", `ndt.type("2 * string")`},
	}
	for _, tc := range cases {
		if got := tc.typ.String(); got != tc.str {
			t.Fatalf("String() = %q, want %q", got, tc.str)
		}
		if got := tc.typ.Repr(); got != tc.repr {
			t.Fatalf("Repr() = %q, want %q", got, tc.repr)
		}
	}
}

func TestTypeValidity(t *testing.T) {
	if (Type{}).IsValid() {
		t.Fatalf("zero type must be invalid")
	}
	if MakeFixedBytes(4, 3).IsValid() {
		t.Fatalf("non power-of-two alignment must be invalid")
	}
	if MakeDim(2, MakeDim(2, String)).IsValid() {
		t.Fatalf("nested dims are not supported")
	}
	if !MakeDim(0, Bytes).IsValid() {
		t.Fatalf("empty dim of bytes should be valid")
	}
}
