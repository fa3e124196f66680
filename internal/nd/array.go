// Package nd implements typed text and byte containers with zero-copy views,
// deferred casts and explicit evaluation.
//
// An Array holds a scalar or a one-dimensional sequence. Its storage is
// described by the operand type; pending stages (casts and maps) describe how
// the stored elements turn into the value type reported by UDType. Nothing is
// decoded until Eval, AsNative or Render runs the stages.
package nd

import (
	"fmt"

	"fortio.org/safecast"

	"ndtext/internal/layout"
	"ndtext/internal/textenc"
	"ndtext/internal/types"
)

// Array is an immutable container. Operations that change its type return a
// new Array sharing the same storage.
type Array struct {
	scalar  bool
	operand types.Type // element type of the storage
	value   types.Type // element type after all stages
	stages  []stage
	buf     *buffer
	layouts *layout.LayoutEngine
}

// DType returns the uniform type: the value type for scalars, n * udtype for
// sequences.
func (a *Array) DType() types.Type {
	return a.wrap(a.value)
}

// UDType returns the element type after all pending stages.
func (a *Array) UDType() types.Type {
	return a.value
}

// OperandType returns the uniform type of the stored data, ignoring stages.
func (a *Array) OperandType() types.Type {
	return a.wrap(a.operand)
}

func (a *Array) wrap(elem types.Type) types.Type {
	if a.scalar {
		return elem
	}
	n, err := safecast.Conv[uint32](a.buf.n)
	if err != nil {
		return types.Type{}
	}
	return types.MakeDim(n, elem)
}

// IsScalar reports whether the array has arity 0.
func (a *Array) IsScalar() bool {
	return a.scalar
}

// Len returns the number of elements; scalars have length 1.
func (a *Array) Len() int {
	return a.buf.n
}

// Pending returns the number of stages not yet evaluated.
func (a *Array) Pending() int {
	return len(a.stages)
}

// IsEvaluated reports whether the array has no pending stages.
func (a *Array) IsEvaluated() bool {
	return len(a.stages) == 0
}

// Stages describes the pending stages in order, e.g. "cast string" or
// "map upper".
func (a *Array) Stages() []string {
	out := make([]string, 0, len(a.stages))
	for _, st := range a.stages {
		out = append(out, st.String())
	}
	return out
}

// At returns element i as a scalar array sharing storage and pending stages.
func (a *Array) At(i int) (*Array, error) {
	if i < 0 || i >= a.buf.n {
		return nil, fmt.Errorf("index %d out of range [0, %d)", i, a.buf.n)
	}
	if a.scalar {
		return a, nil
	}
	cp := a.derive()
	cp.scalar = true
	cp.buf = a.buf.slice(i)
	return cp, nil
}

// derive returns a shallow copy; stages are copied so appends never alias.
func (a *Array) derive() *Array {
	cp := *a
	cp.stages = append([]stage(nil), a.stages...)
	return &cp
}

func (a *Array) index(i int) int {
	if a.scalar {
		return textenc.NoIndex
	}
	return i
}

func (a *Array) engine() *layout.LayoutEngine {
	if a.layouts == nil {
		return layout.Default()
	}
	return a.layouts
}

func (a *Array) codec(enc types.Encoding) textenc.Codec {
	return textenc.New(enc, a.engine().ByteOrder())
}
