// Package driver runs container pipelines described by config jobs: build a
// container from literals, view, cast, map, evaluate and render. RunBatch
// does the same for whole job files in parallel.
package driver

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"ndtext/internal/config"
	"ndtext/internal/layout"
	"ndtext/internal/nd"
	"ndtext/internal/trace"
	"ndtext/internal/transform"
	"ndtext/internal/types"
	"ndtext/internal/typespec"
)

// Options are the settings shared by every job of a run.
type Options struct {
	Render  string // encoding used when a job has no render key
	Errors  string // error mode used when a job has no errors key
	Tracer  trace.Tracer
	Layouts *layout.LayoutEngine
}

// Result is the outcome of one job. Type fields are filled as far as the
// pipeline got before failing.
type Result struct {
	Name       string   `json:"name" msgpack:"name" cbor:"name"`
	Operand    string   `json:"operand,omitempty" msgpack:"operand,omitempty" cbor:"operand,omitempty"`
	DType      string   `json:"dtype,omitempty" msgpack:"dtype,omitempty" cbor:"dtype,omitempty"`
	UDType     string   `json:"udtype,omitempty" msgpack:"udtype,omitempty" cbor:"udtype,omitempty"`
	Stages     []string `json:"stages,omitempty" msgpack:"stages,omitempty" cbor:"stages,omitempty"`
	Value      any      `json:"value,omitempty" msgpack:"value,omitempty" cbor:"value,omitempty"`
	Rendered   string   `json:"rendered,omitempty" msgpack:"rendered,omitempty" cbor:"rendered,omitempty"`
	Error      string   `json:"error,omitempty" msgpack:"error,omitempty" cbor:"error,omitempty"`
	Code       string   `json:"code,omitempty" msgpack:"code,omitempty" cbor:"code,omitempty"`
	Expect     string   `json:"expect_error,omitempty" msgpack:"expect_error,omitempty" cbor:"expect_error,omitempty"`
	OK         bool     `json:"ok" msgpack:"ok" cbor:"ok"`
	DurationMS float64  `json:"duration_ms" msgpack:"duration_ms" cbor:"duration_ms"`

	err error
}

// Err returns the pipeline error, if any.
func (r *Result) Err() error {
	return r.err
}

// Run executes one job. Pipeline failures are recorded in the result, not
// returned; ctx cancellation is reported the same way.
func Run(ctx context.Context, job config.Job, opts Options) Result {
	if opts.Tracer != nil {
		ctx = trace.WithTracer(ctx, opts.Tracer)
	}
	ctx, span := trace.Start(ctx, trace.ScopeCommand, "job")
	span.WithExtra("name", job.Name)

	start := time.Now()
	res := Result{Name: job.Name, Expect: strings.TrimSpace(job.ExpectError)}
	err := run(ctx, job, opts, &res)
	res.DurationMS = float64(time.Since(start)) / float64(time.Millisecond)
	res.settle(err)

	if err != nil {
		trace.Fail(trace.FromContext(ctx), trace.ScopeCommand, "job", err, span.ID())
	}
	span.End(outcome(res))
	return res
}

func outcome(r Result) string {
	switch {
	case r.OK && r.err != nil:
		return "expected " + r.Code
	case r.OK:
		return "ok"
	default:
		return "failed"
	}
}

// settle records err and checks it against the expected code.
func (r *Result) settle(err error) {
	r.err = err
	if err != nil {
		r.Error = err.Error()
		if code := nd.Code(err); code != 0 {
			r.Code = code.String()
		}
	}
	switch {
	case r.Expect == "":
		r.OK = err == nil
	case err == nil:
		r.OK = false
		r.Error = "expected " + r.Expect + ", job succeeded"
	default:
		r.OK = strings.EqualFold(r.Code, r.Expect)
	}
}

func run(ctx context.Context, job config.Job, opts Options, res *Result) error {
	literal, err := literalOf(job)
	if err != nil {
		return err
	}

	var newOpts []nd.Option
	if opts.Layouts != nil {
		newOpts = append(newOpts, nd.WithLayouts(opts.Layouts))
	}
	if job.Type != "" {
		t, err := typespec.Parse(job.Type)
		if err != nil {
			return fmt.Errorf("type: %w", err)
		}
		newOpts = append(newOpts, nd.WithType(t))
	}
	if job.UDType != "" {
		t, err := typespec.Parse(job.UDType)
		if err != nil {
			return fmt.Errorf("udtype: %w", err)
		}
		newOpts = append(newOpts, nd.WithUDType(t))
	}

	a, err := nd.New(literal, newOpts...)
	if err != nil {
		return err
	}
	if job.View != "" {
		if a, err = a.ViewSpec(job.View); err != nil {
			return fmt.Errorf("view: %w", err)
		}
	}
	res.Operand = a.OperandType().String()

	modeName := job.Errors
	if modeName == "" {
		modeName = opts.Errors
	}
	mode, err := nd.ParseErrorMode(modeName)
	if err != nil {
		return err
	}
	for _, spec := range job.Cast {
		if a, err = a.CastSpec(spec, nd.WithErrorMode(mode)); err != nil {
			return fmt.Errorf("cast: %w", err)
		}
	}
	for _, name := range job.Map {
		fn, err := transform.Lookup(name)
		if err != nil {
			return err
		}
		if a, err = a.Map(name, nd.MapFunc(fn)); err != nil {
			return err
		}
	}
	res.DType = a.DType().String()
	res.UDType = a.UDType().String()
	res.Stages = a.Stages()

	renderName := job.Render
	if renderName == "" {
		renderName = opts.Render
	}
	enc := types.NativeEncoding
	if renderName != "" {
		if enc, err = types.ParseEncoding(renderName); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	ev := &nd.Evaluator{Layouts: opts.Layouts}
	out, err := ev.Eval(ctx, a)
	if err != nil {
		return err
	}
	if res.Value, err = nd.AsNative(out); err != nil {
		return err
	}
	if res.Rendered, err = out.Render(enc); err != nil {
		return err
	}
	return nil
}

// literalOf turns the text or hex literals of a job into an nd literal.
func literalOf(job config.Job) (any, error) {
	if len(job.Hex) > 0 {
		raws := make([][]byte, len(job.Hex))
		for i, s := range job.Hex {
			b, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
			if err != nil {
				return nil, fmt.Errorf("hex literal %d: %w", i, err)
			}
			raws[i] = b
		}
		if job.Seq {
			return raws, nil
		}
		return raws[0], nil
	}
	if job.Seq {
		return []string(job.Text), nil
	}
	if len(job.Text) == 0 {
		return nil, fmt.Errorf("job %s has no literal", job.Name)
	}
	return job.Text[0], nil
}
