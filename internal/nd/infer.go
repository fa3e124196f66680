package nd

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"ndtext/internal/layout"
	"ndtext/internal/textenc"
	"ndtext/internal/types"
)

// Option configures New.
type Option func(*options)

type options struct {
	typ     *types.Type
	udtype  *types.Type
	layouts *layout.LayoutEngine
}

// WithType sets the full container type. Sequences take a Dim type.
func WithType(t types.Type) Option {
	return func(o *options) { o.typ = &t }
}

// WithUDType sets the element type of a sequence literal.
func WithUDType(t types.Type) Option {
	return func(o *options) { o.udtype = &t }
}

// WithLayouts selects the layout engine, and with it the byte order of
// multi-byte code units. Defaults to layout.Default().
func WithLayouts(e *layout.LayoutEngine) Option {
	return func(o *options) { o.layouts = e }
}

// New builds an array from a Go literal.
//
// Scalars: string (String), []byte (Bytes), and integers when an explicit
// FixedBytes type is given. Sequences: []string, [][]byte and []any of
// scalars. Text placed into a string type is encoded immediately; bytes
// placed into a string type are kept as-is and decoded on evaluation.
func New(literal any, opts ...Option) (*Array, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &Array{layouts: o.layouts}
	elems, scalar, err := flatten(literal)
	if err != nil {
		return nil, err
	}
	a.scalar = scalar

	elemT, err := a.resolveElemType(elems, o)
	if err != nil {
		return nil, err
	}
	l, err := a.engine().LayoutOf(elemT)
	if err != nil {
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: elemT, Msg: err.Error()}
	}

	raws := make([][]byte, len(elems))
	for i, x := range elems {
		raw, err := a.store(x, elemT, l)
		if err != nil {
			return nil, attachIndex(err, a.index(i))
		}
		raws[i] = raw
	}
	a.operand, a.value = elemT, elemT
	if l.Variable {
		a.buf = newVarBuffer(raws)
	} else {
		a.buf = newFixedBuffer(raws, l.Size)
	}
	return a, nil
}

// MustNew is like New but panics on error. Meant for tests and constants.
func MustNew(literal any, opts ...Option) *Array {
	a, err := New(literal, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// flatten returns the scalar elements of a literal.
func flatten(literal any) (elems []any, scalar bool, err error) {
	switch v := literal.(type) {
	case []string:
		elems = make([]any, len(v))
		for i, s := range v {
			elems[i] = s
		}
		return elems, false, nil
	case [][]byte:
		elems = make([]any, len(v))
		for i, b := range v {
			elems[i] = b
		}
		return elems, false, nil
	case []any:
		for i, x := range v {
			if !isScalarLiteral(x) {
				return nil, false, mismatchf(i, "unsupported element literal %T (only one-dimensional sequences of text, bytes or integers)", x)
			}
		}
		return v, false, nil
	default:
		if !isScalarLiteral(literal) {
			return nil, false, mismatchf(textenc.NoIndex, "unsupported literal %T", literal)
		}
		return []any{literal}, true, nil
	}
}

func isScalarLiteral(x any) bool {
	switch x.(type) {
	case string, []byte,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// inferScalar maps a scalar literal to its default type.
func inferScalar(x any) (types.Type, bool) {
	switch x.(type) {
	case string:
		return types.String, true
	case []byte:
		return types.Bytes, true
	default:
		return types.Type{}, false
	}
}

func (a *Array) resolveElemType(elems []any, o options) (types.Type, error) {
	var explicit *types.Type
	if o.typ != nil {
		t := *o.typ
		switch {
		case t.Kind == types.KindDim && a.scalar:
			return types.Type{}, &TypeMismatchError{Index: textenc.NoIndex, Want: t, Got: "scalar literal"}
		case t.Kind == types.KindDim:
			if int(t.Size) != len(elems) {
				return types.Type{}, mismatchf(textenc.NoIndex, "type %s does not match a sequence of %d elements", t, len(elems))
			}
			elem := t.Element()
			explicit = &elem
		case !a.scalar:
			return types.Type{}, &TypeMismatchError{Index: textenc.NoIndex, Want: t, Got: fmt.Sprintf("sequence of %d elements", len(elems))}
		default:
			explicit = &t
		}
	}
	if o.udtype != nil {
		if explicit != nil && !explicit.Equal(*o.udtype) {
			return types.Type{}, mismatchf(textenc.NoIndex, "element type %s conflicts with %s", *o.udtype, *explicit)
		}
		explicit = o.udtype
	}
	if explicit != nil {
		if explicit.Kind == types.KindDim {
			return types.Type{}, mismatchf(textenc.NoIndex, "element type %s must be a scalar type", *explicit)
		}
		return *explicit, nil
	}

	if len(elems) == 0 {
		return types.String, nil
	}
	var common types.Type
	for i, x := range elems {
		t, ok := inferScalar(x)
		if !ok {
			return types.Type{}, mismatchf(a.index(i), "integer literal %v needs an explicit bytes(N) type", x)
		}
		if i == 0 {
			common = t
			continue
		}
		if !t.Equal(common) {
			return types.Type{}, mismatchf(i, "element is %s but element 0 is %s", t, common)
		}
	}
	return common, nil
}

// store converts one literal element into its stored bytes under t.
func (a *Array) store(x any, t types.Type, l layout.TypeLayout) ([]byte, error) {
	switch v := x.(type) {
	case string:
		return a.storeText(v, t)
	case []byte:
		return a.storeBytes(v, t, l)
	default:
		return a.storeInt(x, t)
	}
}

func (a *Array) storeText(s string, t types.Type) ([]byte, error) {
	switch t.Kind {
	case types.KindString:
		return a.codec(t.Encoding).Encode(s, textenc.Strict)
	case types.KindFixedString:
		return a.codec(t.Encoding).EncodeFixed(s, int(t.Size), textenc.Strict)
	default:
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: t, Got: "text"}
	}
}

func (a *Array) storeBytes(b []byte, t types.Type, l layout.TypeLayout) ([]byte, error) {
	switch t.Kind {
	case types.KindBytes, types.KindString:
		return bytes.Clone(b), nil
	case types.KindFixedBytes:
		if len(b) != l.Size {
			return nil, mismatchf(textenc.NoIndex, "%d bytes do not match %s", len(b), t)
		}
		return bytes.Clone(b), nil
	case types.KindFixedString:
		if len(b) > l.Size {
			return nil, mismatchf(textenc.NoIndex, "%d bytes do not fit %s (%d bytes)", len(b), t, l.Size)
		}
		return textenc.Pad(b, l.Size), nil
	default:
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: t, Got: "bytes"}
	}
}

// storeInt writes an integer into a 1, 2, 4 or 8 byte field using the target
// byte order. Values must fit the field as signed or unsigned.
func (a *Array) storeInt(x any, t types.Type) ([]byte, error) {
	if t.Kind != types.KindFixedBytes {
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: t, Got: fmt.Sprintf("integer %v", x)}
	}
	order := a.engine().ByteOrder()
	out := make([]byte, t.Size)
	var err error
	switch t.Size {
	case 1:
		var v uint8
		if v, err = intAs[uint8, int8](x); err == nil {
			out[0] = v
		}
	case 2:
		var v uint16
		if v, err = intAs[uint16, int16](x); err == nil {
			order.PutUint16(out, v)
		}
	case 4:
		var v uint32
		if v, err = intAs[uint32, int32](x); err == nil {
			order.PutUint32(out, v)
		}
	case 8:
		var v uint64
		if v, err = intAs[uint64, int64](x); err == nil {
			order.PutUint64(out, v)
		}
	default:
		return nil, mismatchf(textenc.NoIndex, "integer %v needs bytes(1), bytes(2), bytes(4) or bytes(8), not %s", x, t)
	}
	if err != nil {
		return nil, mismatchf(textenc.NoIndex, "integer %v does not fit %s: %v", x, t, err)
	}
	return out, nil
}

type unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

type signed interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// intAs converts x to U, accepting negative values that fit S as their two's
// complement bit pattern.
func intAs[U unsigned, S signed](x any) (U, error) {
	var (
		neg  bool
		sv   int64
		uv   uint64
		isOK = true
	)
	switch v := x.(type) {
	case int:
		sv, neg = int64(v), v < 0
	case int8:
		sv, neg = int64(v), v < 0
	case int16:
		sv, neg = int64(v), v < 0
	case int32:
		sv, neg = int64(v), v < 0
	case int64:
		sv, neg = v, v < 0
	case uint:
		uv = uint64(v)
	case uint8:
		uv = uint64(v)
	case uint16:
		uv = uint64(v)
	case uint32:
		uv = uint64(v)
	case uint64:
		uv = v
	default:
		isOK = false
	}
	if !isOK {
		return 0, fmt.Errorf("unsupported integer literal %T", x)
	}
	if neg {
		s, err := safecast.Conv[S](sv)
		if err != nil {
			return 0, err
		}
		return U(s), nil
	}
	if sv > 0 {
		uv = uint64(sv)
	}
	return safecast.Conv[U](uv)
}

// attachIndex attributes an element error to position i.
func attachIndex(err error, i int) error {
	if i == textenc.NoIndex {
		return err
	}
	switch e := err.(type) {
	case *DecodeError:
		return e.WithIndex(i)
	case *EncodeError:
		return e.WithIndex(i)
	case *TypeMismatchError:
		cp := *e
		cp.Index = i
		return &cp
	default:
		return fmt.Errorf("element %d: %w", i, err)
	}
}
