package layout

import (
	"encoding/binary"

	"ndtext/internal/types"
)

// TypeLayout is the storage layout of a descriptor for a specific Target.
type TypeLayout struct {
	Size  int
	Align int

	// Variable elements are stored out of line; Size is the in-line
	// (pointer, length) pair.
	Variable bool

	// Dim-only:
	Count  int
	Stride int
}

// LayoutEngine computes memory layout for descriptors.
type LayoutEngine struct {
	Target Target

	cache *cache
}

// New creates a new LayoutEngine for the specified target.
func New(target Target) *LayoutEngine {
	return &LayoutEngine{
		Target: target,
		cache:  newCache(),
	}
}

// Default returns an engine for the host target.
func Default() *LayoutEngine {
	return defaultEngine
}

var defaultEngine = New(X86_64LinuxGNU())

// ByteOrder returns the order used for multi-byte code units.
func (e *LayoutEngine) ByteOrder() binary.ByteOrder {
	if e == nil {
		return binary.LittleEndian
	}
	return e.Target.order()
}

// LayoutOf computes and caches the layout of a descriptor.
func (e *LayoutEngine) LayoutOf(t types.Type) (TypeLayout, error) {
	if e == nil {
		return TypeLayout{Size: 0, Align: 1}, nil
	}
	if e.cache == nil {
		e.cache = newCache()
	}
	key := t.String()
	if cached, ok := e.cache.get(key); ok {
		if cached.Err != nil {
			return cached.Layout, cached.Err
		}
		return cached.Layout, nil
	}
	layout, err := e.computeLayout(t)
	e.cache.put(key, &cacheEntry{Layout: layout, Err: err})
	if err != nil {
		return layout, err
	}
	return layout, nil
}

// SizeOf returns the in-line size of a descriptor in bytes.
func (e *LayoutEngine) SizeOf(t types.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Size, err
}

// AlignOf returns the alignment requirement of a descriptor in bytes.
func (e *LayoutEngine) AlignOf(t types.Type) (int, error) {
	l, err := e.LayoutOf(t)
	return l.Align, err
}

// SameStorage reports whether elements laid out as a can be reinterpreted as
// b without moving bytes: both must be variable, or both fixed with equal size.
func SameStorage(a, b TypeLayout) bool {
	if a.Variable || b.Variable {
		return a.Variable && b.Variable
	}
	return a.Size == b.Size
}
