package nd

import (
	"bytes"

	"ndtext/internal/textenc"
	"ndtext/internal/types"
)

// AsNative evaluates a and converts it to Go values: string for string kinds,
// []byte (a copy) for bytes kinds, and []any of those for sequences.
func AsNative(a *Array) (any, error) {
	res, err := Eval(a)
	if err != nil {
		return nil, err
	}
	vals, err := res.natives()
	if err != nil {
		return nil, err
	}
	if res.scalar {
		return vals[0], nil
	}
	return vals, nil
}

// Strings evaluates a and returns the text of every element. The element type
// must be a string kind.
func Strings(a *Array) ([]string, error) {
	if !a.value.Kind.IsText() {
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: types.String, Got: a.value.String()}
	}
	res, err := Eval(a)
	if err != nil {
		return nil, err
	}
	out := make([]string, res.buf.n)
	for i := range out {
		s, err := res.text(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// ByteSlices evaluates a and returns a copy of the stored bytes of every
// element, whatever its kind.
func ByteSlices(a *Array) ([][]byte, error) {
	res, err := Eval(a)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, res.buf.n)
	for i := range out {
		out[i] = bytes.Clone(res.buf.element(i))
	}
	return out, nil
}

// natives converts the elements of an evaluated array.
func (a *Array) natives() ([]any, error) {
	out := make([]any, a.buf.n)
	for i := range out {
		if a.value.Kind.IsText() {
			s, err := a.text(i)
			if err != nil {
				return nil, err
			}
			out[i] = s
			continue
		}
		out[i] = bytes.Clone(a.buf.element(i))
	}
	return out, nil
}

// text decodes element i of an evaluated string-kind array.
func (a *Array) text(i int) (string, error) {
	c := &evalCtx{engine: a.engine()}
	s, err := c.decode(cell{raw: a.buf.element(i), t: a.value}, textenc.Strict)
	if err != nil {
		return "", attachIndex(err, a.index(i))
	}
	return s, nil
}
