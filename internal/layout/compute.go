package layout

import (
	"fortio.org/safecast"

	"ndtext/internal/types"
)

func (e *LayoutEngine) computeLayout(t types.Type) (TypeLayout, *LayoutError) {
	switch t.Kind {
	case types.KindFixedBytes:
		align, lerr := alignOf(t)
		if lerr != nil {
			return TypeLayout{Size: 0, Align: 1}, lerr
		}
		size, err := safecast.Conv[int](t.Size)
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrSizeOverflow, Type: t, Err: err}
		}
		return TypeLayout{Size: size, Align: align}, nil

	case types.KindFixedString:
		if !t.Encoding.IsValid() {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrInvalidType, Type: t}
		}
		size, err := t.ByteWidth()
		if err != nil {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrSizeOverflow, Type: t, Err: err}
		}
		return TypeLayout{Size: size, Align: t.Encoding.UnitSize()}, nil

	case types.KindBytes:
		if _, lerr := alignOf(t); lerr != nil {
			return TypeLayout{Size: 0, Align: 1}, lerr
		}
		return e.varLayout(), nil

	case types.KindString:
		if !t.Encoding.IsValid() {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrInvalidType, Type: t}
		}
		return e.varLayout(), nil

	case types.KindDim:
		if t.Elem == nil || t.Elem.Kind == types.KindDim {
			return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrInvalidType, Type: t}
		}
		return e.dimLayout(t)

	default:
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrInvalidType, Type: t}
	}
}

// varLayout is the in-line (pointer, length) pair of a variable element.
func (e *LayoutEngine) varLayout() TypeLayout {
	ptrSize := e.Target.PtrSize
	if ptrSize <= 0 {
		ptrSize = 8
	}
	ptrAlign := e.Target.PtrAlign
	if ptrAlign <= 0 {
		ptrAlign = ptrSize
	}
	return TypeLayout{Size: 2 * ptrSize, Align: ptrAlign, Variable: true}
}

func (e *LayoutEngine) dimLayout(t types.Type) (TypeLayout, *LayoutError) {
	elem, err := e.LayoutOf(*t.Elem)
	if err != nil {
		if lerr, ok := err.(*LayoutError); ok {
			return TypeLayout{Size: 0, Align: 1}, lerr
		}
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrInvalidType, Type: t, Err: err}
	}
	count, convErr := safecast.Conv[int](t.Size)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrSizeOverflow, Type: t, Err: convErr}
	}
	stride := roundUp(elem.Size, elem.Align)
	total := uint64(count) * uint64(stride)
	size, convErr := safecast.Conv[int](total)
	if convErr != nil {
		return TypeLayout{Size: 0, Align: 1}, &LayoutError{Kind: LayoutErrSizeOverflow, Type: t, Err: convErr}
	}
	return TypeLayout{
		Size:     size,
		Align:    elem.Align,
		Variable: elem.Variable,
		Count:    count,
		Stride:   stride,
	}, nil
}

func alignOf(t types.Type) (int, *LayoutError) {
	a := t.Align
	if a == 0 {
		a = 1
	}
	if a&(a-1) != 0 {
		return 1, &LayoutError{Kind: LayoutErrBadAlign, Type: t, Value: uint64(a)}
	}
	n, err := safecast.Conv[int](a)
	if err != nil {
		return 1, &LayoutError{Kind: LayoutErrSizeOverflow, Type: t, Err: err}
	}
	return n, nil
}

func roundUp(size, align int) int {
	if align <= 1 {
		return size
	}
	return (size + align - 1) / align * align
}
