// Package resultfmt writes job results as a styled table or as JSON,
// MessagePack or deterministic CBOR.
package resultfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the output encoding.
type Format uint8

const (
	FormatPretty Format = iota
	FormatJSON
	FormatMsgpack
	FormatCBOR
)

// String returns the flag spelling of the format.
func (f Format) String() string {
	switch f {
	case FormatPretty:
		return "pretty"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	case FormatCBOR:
		return "cbor"
	default:
		return "unknown"
	}
}

// Binary reports whether the format writes non-text bytes.
func (f Format) Binary() bool {
	return f == FormatMsgpack || f == FormatCBOR
}

// ParseFormat converts a --format value. Empty means pretty.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "pretty":
		return FormatPretty, nil
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return FormatPretty, fmt.Errorf("invalid format %q (expected: pretty|json|msgpack|cbor)", s)
	}
}

// cborMode sorts map keys and uses the shortest integer forms, so equal
// results produce equal bytes.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("resultfmt: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode writes v in one of the machine formats. FormatPretty is rejected;
// the Printer handles it.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(v)
	case FormatCBOR:
		return cborMode.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("format %s is not a data encoding", f)
	}
}
