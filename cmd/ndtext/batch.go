package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ndtext/internal/driver"
	"ndtext/internal/layout"
	"ndtext/internal/resultfmt"
)

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [flags] FILE|DIR...",
		Short: "Run the jobs of TOML/YAML job files in parallel",
		Long: `Batch loads [[job]] entries from each file (directories are searched for
.toml, .yaml and .yml files) and runs them. Files are processed in parallel;
results are printed in input order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runBatch,
	}
	f := cmd.Flags()
	f.Int("jobs", 0, "max files processed in parallel (0=auto)")
	f.String("errors", "", "cast error mode for jobs without one (strict|replace)")
	f.String("render", "", "render encoding for jobs without one")
	f.String("format", "", "output format (pretty|json|msgpack|cbor)")
	f.String("target", "", "layout target (x86_64-linux-gnu|s390x-linux-gnu)")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	s, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer func() { s.finish(err != nil) }()

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if !cmd.Flags().Changed("jobs") {
		jobs = s.cfg.Batch.Jobs
	}
	errMode, err := pick(cmd.Flags(), "errors", s.cfg.Defaults.Errors)
	if err != nil {
		return err
	}
	render, err := pick(cmd.Flags(), "render", s.cfg.Defaults.Render)
	if err != nil {
		return err
	}
	formatStr, err := pick(cmd.Flags(), "format", s.cfg.Defaults.Format)
	if err != nil {
		return err
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

	res, err := driver.RunBatch(s.ctx, args, driver.BatchOptions{
		Options: driver.Options{
			Render:  render,
			Errors:  errMode,
			Tracer:  s.tracer,
			Layouts: layout.New(target),
		},
		Jobs:  jobs,
		Timer: s.timer,
	})
	if err != nil {
		return err
	}

	if format != resultfmt.FormatPretty {
		if err := resultfmt.Encode(s.stdout, format, res); err != nil {
			return err
		}
	} else {
		p := resultfmt.NewPrinter(s.stdout, s.color)
		p.Quiet = s.quiet
		if err := p.Batch(s.stdout, res); err != nil {
			return err
		}
	}
	if n := res.Failed(); n > 0 {
		return fmt.Errorf("%d job(s) failed", n)
	}
	return nil
}
