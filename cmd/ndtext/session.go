package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ndtext/internal/config"
	"ndtext/internal/observ"
	"ndtext/internal/trace"
)

// session is the state shared by the commands that evaluate containers:
// settings, color, tracer and timer.
type session struct {
	cfg     *config.Config
	color   bool
	quiet   bool
	timer   *observ.Timer // nil without --timings
	tracer  trace.Tracer
	ctx     context.Context
	stdout  io.Writer
	stderr  io.Writer
	cleanup func()
}

// startSession reads the global flags and the settings file, and attaches a
// tracer to the command context.
func startSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	s := &session{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr(), cleanup: func() {}}

	cfgPath, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if cfgPath != "" {
		s.cfg, err = config.Load(cfgPath)
	} else {
		s.cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	colorMode, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if s.color, err = useColor(colorMode, s.stdout); err != nil {
		return nil, err
	}
	color.NoColor = !s.color

	if s.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		s.timer = observ.NewTimer()
	}

	if err := s.setupTracing(cmd); err != nil {
		return nil, err
	}
	return s, nil
}

// setupTracing merges the --trace* flags over the [trace] settings and
// creates the tracer.
func (s *session) setupTracing(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	tc := s.cfg.Trace

	output, err := flags.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	if output != "" {
		tc.Output = output
		// an output without a level traces phases
		if levelStr == "" && (tc.Level == "" || tc.Level == "off") {
			tc.Level = "phase"
		}
	}
	if levelStr != "" {
		tc.Level = levelStr
	}
	if modeStr != "" {
		tc.Mode = modeStr
	}
	if ringSize > 0 {
		tc.RingSize = ringSize
	}
	if tc.Level == "" {
		tc.Level = "off"
	}
	if tc.Mode == "" {
		tc.Mode = "stream"
	}

	level, err := trace.ParseLevel(tc.Level)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		s.tracer = trace.Nop
		s.ctx = trace.WithTracer(ctx, trace.Nop)
		return nil
	}
	mode, err := trace.ParseMode(tc.Mode)
	if err != nil {
		return err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: tc.Output,
		RingSize:   tc.RingSize,
	}
	if tc.Output == "-" {
		cfg.Output = s.stderr
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	s.tracer = tracer
	s.ctx = trace.WithTracer(ctx, tracer)
	s.cleanup = func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(s.stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(s.stderr, "trace: close error: %v\n", err)
		}
	}
	return nil
}

// finish prints timings, dumps the trace ring when the command failed and
// closes the tracer.
func (s *session) finish(failed bool) {
	if s.timer != nil {
		fmt.Fprint(s.stderr, s.timer.Summary())
	}
	if failed {
		if ring := trace.RingOf(s.tracer); ring != nil {
			fmt.Fprintln(s.stderr, "trace ring (most recent events):")
			if err := ring.Dump(s.stderr, trace.FormatText); err != nil {
				fmt.Fprintf(s.stderr, "trace: dump error: %v\n", err)
			}
		}
	}
	s.cleanup()
}

// pick returns the flag value when it was set, else the settings value.
func pick(fs *pflag.FlagSet, flag, fallback string) (string, error) {
	v, err := fs.GetString(flag)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", flag, err)
	}
	if fs.Changed(flag) || fallback == "" {
		return v, nil
	}
	return fallback, nil
}
