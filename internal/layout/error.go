package layout

import (
	"fmt"

	"ndtext/internal/types"
)

// LayoutErrorKind enumerates types of layout calculation errors.
type LayoutErrorKind uint8

const (
	// LayoutErrInvalidType indicates a descriptor that has no storage form.
	LayoutErrInvalidType LayoutErrorKind = iota + 1
	LayoutErrSizeOverflow
	LayoutErrBadAlign
)

// LayoutError represents an error during memory layout calculation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.Type
	Value uint64 // for LayoutErrBadAlign
	Err   error  // for LayoutErrSizeOverflow
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrInvalidType:
		return fmt.Sprintf("type %s has no storage layout", e.Type)
	case LayoutErrSizeOverflow:
		if e.Err != nil {
			return fmt.Sprintf("size of %s overflows: %v", e.Type, e.Err)
		}
		return fmt.Sprintf("size of %s overflows", e.Type)
	case LayoutErrBadAlign:
		return fmt.Sprintf("alignment %d of %s is not a power of two", e.Value, e.Type)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
