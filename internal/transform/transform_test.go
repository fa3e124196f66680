package transform

import (
	"strings"
	"testing"
)

func apply(t *testing.T, name, in string) string {
	t.Helper()
	fn, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", name, err)
	}
	out, err := fn(in)
	if err != nil {
		t.Fatalf("%s(%q): %v", name, in, err)
	}
	return out
}

func TestCaseMappings(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"upper", "hello wörld", "HELLO WÖRLD"},
		{"lower", "ÀÉÎ", "àéî"},
		{"title", "hello world", "Hello World"},
		{"fold", "Straße", "strasse"},
		{"upper:tr", "i", "İ"},
		{"UPPER", "abc", "ABC"},
	}
	for _, tc := range cases {
		if got := apply(t, tc.name, tc.in); got != tc.want {
			t.Fatalf("%s(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestNormalization(t *testing.T) {
	decomposed := "e\u0301"
	if got := apply(t, "nfc", decomposed); got != "\u00e9" {
		t.Fatalf("nfc: %q", got)
	}
	if got := apply(t, "nfd", "\u00e9"); got != decomposed {
		t.Fatalf("nfd: %q", got)
	}
	if got := apply(t, "nfkc", "ﬁ"); got != "fi" {
		t.Fatalf("nfkc ligature: %q", got)
	}
	if got := apply(t, "nfkd", "①"); got != "1" {
		t.Fatalf("nfkd circled digit: %q", got)
	}
}

func TestWidthAndTrim(t *testing.T) {
	if got := apply(t, "narrow", "ＡＢＣ"); got != "ABC" {
		t.Fatalf("narrow: %q", got)
	}
	if got := apply(t, "widen", "ABC"); got != "ＡＢＣ" {
		t.Fatalf("widen: %q", got)
	}
	if got := apply(t, "trim", "  x \t"); got != "x" {
		t.Fatalf("trim: %q", got)
	}
}

func TestLookupErrors(t *testing.T) {
	for _, name := range []string{"shout", "nfc:en", "upper:??"} {
		if _, err := Lookup(name); err == nil {
			t.Fatalf("Lookup(%q): expected error", name)
		}
	}
	_, err := Lookup("shout")
	if !strings.Contains(err.Error(), "nfc") {
		t.Fatalf("error should list known names: %v", err)
	}
}

func TestNamesSortedWithHelp(t *testing.T) {
	names := Names()
	for i, n := range names {
		if i > 0 && names[i-1] > n {
			t.Fatalf("names not sorted: %v", names)
		}
		if Help(n) == "" {
			t.Fatalf("missing help for %s", n)
		}
	}
}
