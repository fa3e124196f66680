package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ndtext/internal/config"
	"ndtext/internal/driver"
	"ndtext/internal/layout"
	"ndtext/internal/resultfmt"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [flags]",
		Short: "Build a container, apply views, casts and maps, and evaluate it",
		Long: `Eval builds a container from --text or --hex literals and runs it through
--view, --cast and --map in that order. Casts and maps are deferred until
evaluation, so decode errors surface only at the end.

  ndtext eval --hex 80 --type 'bytes(1)' --view "string(1,'ascii')" --cast string`,
		Args: cobra.NoArgs,
		RunE: runEval,
	}
	f := cmd.Flags()
	f.StringArray("text", nil, "text literal (repeat with --seq for a sequence)")
	f.StringArray("hex", nil, "bytes literal in hex (repeat with --seq for a sequence)")
	f.Bool("seq", false, "build a sequence even from zero or one literal")
	f.String("type", "", "container type, e.g. 'bytes(4)' or '2 * string'")
	f.String("udtype", "", "element type of a sequence")
	f.String("view", "", "reinterpret the storage as this type")
	f.StringArray("cast", nil, "deferred cast target (repeatable)")
	f.StringArray("map", nil, "deferred text transform, e.g. upper or nfc (repeatable)")
	f.String("errors", "", "cast error mode (strict|replace)")
	f.String("render", "", "encoding the result is rendered in")
	f.String("format", "", "output format (pretty|json|msgpack|cbor)")
	f.String("target", "", "layout target (x86_64-linux-gnu|s390x-linux-gnu)")
	f.String("expect-error", "", "error code the evaluation must fail with, e.g. ND1001")
	return cmd
}

func jobFromFlags(cmd *cobra.Command) (config.Job, error) {
	f := cmd.Flags()
	var job config.Job
	var err error
	strs := []struct {
		name string
		dst  *string
	}{
		{"type", &job.Type},
		{"udtype", &job.UDType},
		{"view", &job.View},
		{"errors", &job.Errors},
		{"render", &job.Render},
		{"expect-error", &job.ExpectError},
	}
	for _, s := range strs {
		if *s.dst, err = f.GetString(s.name); err != nil {
			return job, fmt.Errorf("failed to get %s flag: %w", s.name, err)
		}
	}
	arrays := []struct {
		name string
		dst  *config.Literals
	}{
		{"text", &job.Text},
		{"hex", &job.Hex},
		{"cast", &job.Cast},
		{"map", &job.Map},
	}
	for _, a := range arrays {
		vals, err := f.GetStringArray(a.name)
		if err != nil {
			return job, fmt.Errorf("failed to get %s flag: %w", a.name, err)
		}
		*a.dst = vals
	}
	if job.Seq, err = f.GetBool("seq"); err != nil {
		return job, fmt.Errorf("failed to get seq flag: %w", err)
	}
	job.Name = "eval"
	return job, job.Validate()
}

func runEval(cmd *cobra.Command, _ []string) (err error) {
	job, err := jobFromFlags(cmd)
	if err != nil {
		return err
	}
	s, err := startSession(cmd)
	if err != nil {
		return err
	}
	defer func() { s.finish(err != nil) }()

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

	done := s.timer.Track("eval")
	res := driver.Run(s.ctx, job, driver.Options{
		Render:  s.cfg.Defaults.Render,
		Errors:  s.cfg.Defaults.Errors,
		Tracer:  s.tracer,
		Layouts: layout.New(target),
	})
	done(outcomeNote(&res))

	if format != resultfmt.FormatPretty {
		if err := resultfmt.Encode(s.stdout, format, &res); err != nil {
			return err
		}
	} else if err := resultfmt.NewPrinter(s.stdout, s.color).Result(s.stdout, &res); err != nil {
		return err
	}
	if !res.OK {
		return errReported
	}
	return nil
}

func outcomeNote(r *driver.Result) string {
	if r.Code != "" {
		return r.Code
	}
	if r.Error != "" {
		return "failed"
	}
	return ""
}
