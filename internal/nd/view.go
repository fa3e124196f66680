package nd

import (
	"ndtext/internal/layout"
	"ndtext/internal/typespec"
	"ndtext/internal/types"
)

// View reinterprets the stored elements as t without copying. The element
// layouts must match: both variable, or both fixed with the same byte size.
func (a *Array) View(t types.Type) (*Array, error) {
	from := a.UDType()
	if len(a.stages) > 0 {
		return nil, viewErr(from, t, "array has %d pending stage(s); evaluate it first", len(a.stages))
	}
	if t.Kind == types.KindDim {
		return nil, viewErr(from, t, "target must be a scalar type")
	}
	e := a.engine()
	dst, err := e.LayoutOf(t)
	if err != nil {
		return nil, viewErr(from, t, "%v", err)
	}
	src, err := e.LayoutOf(a.operand)
	if err != nil {
		return nil, viewErr(from, t, "%v", err)
	}
	if !layout.SameStorage(src, dst) {
		switch {
		case src.Variable:
			return nil, viewErr(from, t, "variable-length storage cannot hold fixed-size elements")
		case dst.Variable:
			return nil, viewErr(from, t, "fixed-size storage cannot hold variable-length elements")
		default:
			return nil, viewErr(from, t, "element size %d does not match %d", dst.Size, src.Size)
		}
	}
	cp := a.derive()
	cp.operand, cp.value = t, t
	return cp, nil
}

// ViewSpec is View with a descriptor string such as "string(1,'ascii')".
func (a *Array) ViewSpec(spec string) (*Array, error) {
	t, err := typespec.Parse(spec)
	if err != nil {
		return nil, err
	}
	return a.View(t)
}
