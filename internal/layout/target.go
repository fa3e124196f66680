package layout

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Target describes the ABI target triple, its pointer properties and the
// byte order used for multi-byte code units.
type Target struct {
	Triple    string // e.g. "x86_64-linux-gnu"
	PtrSize   int    // bytes
	PtrAlign  int    // bytes
	ByteOrder binary.ByteOrder
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:    "x86_64-linux-gnu",
		PtrSize:   8,
		PtrAlign:  8,
		ByteOrder: binary.LittleEndian,
	}
}

// S390xLinuxGNU is a big-endian 64-bit target.
func S390xLinuxGNU() Target {
	return Target{
		Triple:    "s390x-linux-gnu",
		PtrSize:   8,
		PtrAlign:  8,
		ByteOrder: binary.BigEndian,
	}
}

// ParseTarget resolves a triple or its architecture prefix ("x86_64",
// "s390x"). Empty means the default target.
func ParseTarget(name string) (Target, error) {
	switch strings.ToLower(name) {
	case "", "x86_64", "x86_64-linux-gnu", "amd64":
		return X86_64LinuxGNU(), nil
	case "s390x", "s390x-linux-gnu":
		return S390xLinuxGNU(), nil
	default:
		return Target{}, fmt.Errorf("unknown target %q (expected: x86_64-linux-gnu|s390x-linux-gnu)", name)
	}
}

func (t Target) order() binary.ByteOrder {
	if t.ByteOrder == nil {
		return binary.LittleEndian
	}
	return t.ByteOrder
}
