package nd

import (
	"ndtext/internal/textenc"
	"ndtext/internal/types"
)

// ErrorMode selects how a cast treats invalid or overlong data.
type ErrorMode = textenc.Mode

const (
	// ErrorModeStrict fails evaluation on invalid data.
	ErrorModeStrict = textenc.Strict
	// ErrorModeReplace substitutes U+FFFD or '?' and truncates overlong values.
	ErrorModeReplace = textenc.Replace
)

// ParseErrorMode converts "strict" or "replace". An empty name is strict.
func ParseErrorMode(name string) (ErrorMode, error) {
	switch name {
	case "", "strict":
		return ErrorModeStrict, nil
	case "replace":
		return ErrorModeReplace, nil
	default:
		return ErrorModeStrict, mismatchf(textenc.NoIndex, "unknown error mode %q", name)
	}
}

// MapFunc transforms the text of one element.
type MapFunc func(string) (string, error)

type stageKind uint8

const (
	stageCast stageKind = iota
	stageMap
)

// stage is one deferred step between the stored data and the value type.
type stage struct {
	kind   stageKind
	target types.Type // cast target, or the unchanged value type for maps
	mode   ErrorMode
	name   string
	fn     MapFunc
}

func (s stage) String() string {
	switch s.kind {
	case stageCast:
		if s.mode == ErrorModeReplace {
			return "cast " + s.target.String() + " (replace)"
		}
		return "cast " + s.target.String()
	case stageMap:
		return "map " + s.name
	default:
		return "?"
	}
}
