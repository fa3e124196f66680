package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ndtext/internal/resultfmt"
	"ndtext/internal/version"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show ndtext build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to get format flag: %w", err)
			}
			full, err := cmd.Flags().GetBool("full")
			if err != nil {
				return fmt.Errorf("failed to get full flag: %w", err)
			}
			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "pretty":
				colorMode, err := cmd.Root().PersistentFlags().GetString("color")
				if err != nil {
					return fmt.Errorf("failed to get color flag: %w", err)
				}
				colored, err := useColor(colorMode, out)
				if err != nil {
					return err
				}
				color.NoColor = !colored
				return renderVersionPretty(out, version.Current(), full)
			case "json":
				return resultfmt.Encode(out, resultfmt.FormatJSON, version.Current())
			default:
				return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
			}
		},
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().Bool("full", false, "include toolchain and platform")
	return cmd
}

func renderVersionPretty(out io.Writer, info version.Info, full bool) error {
	if _, err := fmt.Fprintln(out, version.Line()); err != nil {
		return err
	}
	if !full {
		return nil
	}
	_, err := fmt.Fprintf(out, "go:       %s\nplatform: %s\n", info.GoVersion, info.Platform)
	return err
}
