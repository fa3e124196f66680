package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ndtext/internal/layout"
	"ndtext/internal/resultfmt"
	"ndtext/internal/typespec"
)

// typeInfo describes one parsed descriptor.
type typeInfo struct {
	Spec      string `json:"spec" msgpack:"spec" cbor:"spec"`
	Canonical string `json:"canonical" msgpack:"canonical" cbor:"canonical"`
	Repr      string `json:"repr" msgpack:"repr" cbor:"repr"`
	Size      int    `json:"size" msgpack:"size" cbor:"size"`
	Align     int    `json:"align" msgpack:"align" cbor:"align"`
	Variable  bool   `json:"variable" msgpack:"variable" cbor:"variable"`
	Target    string `json:"target" msgpack:"target" cbor:"target"`
}

func newTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type [flags] SPEC...",
		Short: "Parse type descriptors and show their layout",
		Long:  `Type parses descriptors such as "string(1,'ascii')" or "2 * bytes" and prints the canonical form, the host repr and the storage size and alignment`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runType,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack|cbor)")
	cmd.Flags().String("target", "", "layout target (x86_64-linux-gnu|s390x-linux-gnu)")
	return cmd
}

func runType(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := resultfmt.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	targetName, err := cmd.Flags().GetString("target")
	if err != nil {
		return fmt.Errorf("failed to get target flag: %w", err)
	}
	target, err := layout.ParseTarget(targetName)
	if err != nil {
		return err
	}
	engine := layout.New(target)

	infos := make([]typeInfo, 0, len(args))
	for _, spec := range args {
		t, err := typespec.Parse(spec)
		if err != nil {
			var serr *typespec.SyntaxError
			if errors.As(err, &serr) {
				fmt.Fprintln(cmd.ErrOrStderr(), serr.Caret())
			}
			return err
		}
		l, err := engine.LayoutOf(t)
		if err != nil {
			return fmt.Errorf("%s: %w", spec, err)
		}
		infos = append(infos, typeInfo{
			Spec:      spec,
			Canonical: t.String(),
			Repr:      t.Repr(),
			Size:      l.Size,
			Align:     l.Align,
			Variable:  l.Variable,
			Target:    target.Triple,
		})
	}

	out := cmd.OutOrStdout()
	if format != resultfmt.FormatPretty {
		return resultfmt.Encode(out, format, infos)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	colored, err := useColor(colorMode, out)
	if err != nil {
		return err
	}
	p := resultfmt.NewPrinter(out, colored)
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(out)
		}
		storage := "fixed"
		if info.Variable {
			storage = "variable"
		}
		rows := [][2]string{
			{"type", info.Canonical},
			{"repr", info.Repr},
			{"size", strconv.Itoa(info.Size)},
			{"align", strconv.Itoa(info.Align)},
			{"storage", storage},
		}
		if err := p.KeyValues(out, rows); err != nil {
			return err
		}
	}
	return nil
}
