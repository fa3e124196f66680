// Package transform provides the named element functions accepted by
// "ndtext eval --map" and job files.
//
// A name may carry a BCP 47 language tag after a colon for the case
// mappings, e.g. "upper:tr" or "title:nl".
package transform

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Func transforms the text of one element.
type Func func(string) (string, error)

type entry struct {
	help     string
	withLang bool
	build    func(tag language.Tag) Func
}

// cases.Caser keeps state, so every Func builds its own per call.
var registry = map[string]entry{
	"upper": {"Unicode upper case", true, func(tag language.Tag) Func {
		return func(s string) (string, error) { return cases.Upper(tag).String(s), nil }
	}},
	"lower": {"Unicode lower case", true, func(tag language.Tag) Func {
		return func(s string) (string, error) { return cases.Lower(tag).String(s), nil }
	}},
	"title": {"title case each word", true, func(tag language.Tag) Func {
		return func(s string) (string, error) { return cases.Title(tag).String(s), nil }
	}},
	"fold": {"case folding for caseless matching", false, func(language.Tag) Func {
		return func(s string) (string, error) { return cases.Fold().String(s), nil }
	}},
	"nfc":    {"canonical composition", false, normForm(norm.NFC)},
	"nfd":    {"canonical decomposition", false, normForm(norm.NFD)},
	"nfkc":   {"compatibility composition", false, normForm(norm.NFKC)},
	"nfkd":   {"compatibility decomposition", false, normForm(norm.NFKD)},
	"narrow": {"fold full-width characters to their narrow forms", false, widthForm(width.Narrow)},
	"widen":  {"map narrow characters to their full-width forms", false, widthForm(width.Widen)},
	"trim": {"strip leading and trailing white space", false, func(language.Tag) Func {
		return func(s string) (string, error) { return strings.TrimSpace(s), nil }
	}},
}

func normForm(f norm.Form) func(language.Tag) Func {
	return func(language.Tag) Func {
		return func(s string) (string, error) { return f.String(s), nil }
	}
}

func widthForm(t width.Transformer) func(language.Tag) Func {
	return func(language.Tag) Func {
		return func(s string) (string, error) { return t.String(s), nil }
	}
}

// Lookup resolves a transform name such as "nfc" or "upper:tr".
func Lookup(name string) (Func, error) {
	base, tagText, hasTag := strings.Cut(strings.TrimSpace(name), ":")
	e, ok := registry[strings.ToLower(base)]
	if !ok {
		return nil, fmt.Errorf("unknown map function %q (known: %s)", base, strings.Join(Names(), ", "))
	}
	tag := language.Und
	if hasTag {
		if !e.withLang {
			return nil, fmt.Errorf("map function %q does not take a language", base)
		}
		t, err := language.Parse(tagText)
		if err != nil {
			return nil, fmt.Errorf("map function %q: %w", name, err)
		}
		tag = t
	}
	return e.build(tag), nil
}

// Names lists the registered transforms in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Help returns a one-line description of a transform.
func Help(name string) string {
	return registry[name].help
}
