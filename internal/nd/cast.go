package nd

import (
	"ndtext/internal/textenc"
	"ndtext/internal/typespec"
	"ndtext/internal/types"
)

// CastOption configures a cast stage.
type CastOption func(*stage)

// WithErrorMode sets how the cast handles invalid or overlong data.
func WithErrorMode(m ErrorMode) CastOption {
	return func(s *stage) { s.mode = m }
}

// Cast schedules a conversion of every element to t. No data is touched and
// no error is possible until evaluation.
func (a *Array) Cast(t types.Type, opts ...CastOption) *Array {
	st := stage{kind: stageCast, target: t, mode: ErrorModeStrict}
	for _, opt := range opts {
		opt(&st)
	}
	cp := a.derive()
	cp.stages = append(cp.stages, st)
	cp.value = t
	return cp
}

// CastSpec is Cast with a descriptor string. Only a malformed descriptor
// fails here.
func (a *Array) CastSpec(spec string, opts ...CastOption) (*Array, error) {
	t, err := typespec.Parse(spec)
	if err != nil {
		return nil, err
	}
	return a.Cast(t, opts...), nil
}

// Map schedules an element-wise text transform. The value type must be a
// string kind; fn runs on evaluation.
func (a *Array) Map(name string, fn MapFunc) (*Array, error) {
	if fn == nil {
		return nil, mismatchf(textenc.NoIndex, "map %s has no function", name)
	}
	if !a.value.Kind.IsText() {
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: types.String, Got: a.value.String(), Msg: "map " + name + " needs a string element type, have " + a.value.String()}
	}
	cp := a.derive()
	cp.stages = append(cp.stages, stage{kind: stageMap, target: a.value, name: name, fn: fn, mode: ErrorModeStrict})
	return cp, nil
}
