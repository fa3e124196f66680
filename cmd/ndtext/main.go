package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ndtext/internal/version"
)

// errReported is returned when the command already printed why it failed;
// main only sets the exit status.
var errReported = errors.New("failure reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ndtext",
		Short:         "Typed text and byte containers with deferred casts",
		Long:          `ndtext builds typed text/bytes containers, applies views, casts and maps, and evaluates them under explicit encodings`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newTypeCmd())
	root.AddCommand(newEvalCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.String("config", "", "settings file (default: nearest ndtext.toml/ndtext.yaml)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "", "trace storage mode (stream|ring|both)")
	flags.Int("trace-ring-size", 0, "ring buffer capacity for ring/both modes")
	flags.String("trace-format", "auto", "trace output format (auto|text|ndjson)")
	return root
}

// main runs the root command and exits with status 1 on failure.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			printError(root.ErrOrStderr(), err)
		}
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color for the writer output goes to.
func useColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "", "auto":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid color mode %q (expected: auto|on|off)", mode)
	}
}
