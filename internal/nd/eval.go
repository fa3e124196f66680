package nd

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"ndtext/internal/layout"
	"ndtext/internal/textenc"
	"ndtext/internal/trace"
	"ndtext/internal/types"
)

// Evaluator runs pending stages. The zero value uses the tracer from the
// context and the layout engine of each array.
type Evaluator struct {
	Tracer  trace.Tracer
	Layouts *layout.LayoutEngine
}

// NewEvaluator returns an evaluator emitting to t.
func NewEvaluator(t trace.Tracer) *Evaluator {
	return &Evaluator{Tracer: t}
}

// Eval evaluates a with a background context.
func Eval(a *Array) (*Array, error) {
	return (&Evaluator{}).Eval(context.Background(), a)
}

// Eval runs every pending stage of a and returns a new array owning fresh
// storage with no stages. a is never modified; on error nothing is returned.
func (ev *Evaluator) Eval(ctx context.Context, a *Array) (*Array, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ev.Tracer != nil {
		ctx = trace.WithTracer(ctx, ev.Tracer)
	}
	ctx, span := trace.Start(ctx, trace.ScopeEval, "eval")
	span.WithExtra("from", a.OperandType().String()).WithExtra("stages", strconv.Itoa(len(a.stages)))

	res, err := ev.run(ctx, a)
	if err != nil {
		trace.Fail(trace.FromContext(ctx), trace.ScopeEval, "eval", err, span.ID())
		span.End("failed")
		return nil, err
	}
	span.WithExtra("to", res.DType().String())
	span.End("")
	return res, nil
}

func (ev *Evaluator) run(ctx context.Context, a *Array) (*Array, error) {
	src, eng := a.engine(), a.engine()
	if ev.Layouts != nil {
		eng = ev.Layouts
	}
	c := &evalCtx{engine: eng}

	n := a.buf.n
	cur := make([]cell, n)
	for i := range n {
		cur[i] = cell{raw: a.buf.element(i), t: a.operand, eng: src}
	}
	// without stages the stored bytes are still checked against their type
	if len(a.stages) == 0 {
		for i := range cur {
			if err := c.validate(cur[i]); err != nil {
				return nil, attachIndex(err, a.index(i))
			}
		}
	}
	for _, st := range a.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, span := trace.Start(ctx, trace.ScopeStage, st.String())
		for i := range cur {
			next, err := c.apply(st, cur[i])
			if err != nil {
				err = attachIndex(err, a.index(i))
				trace.Fail(trace.FromContext(ctx), trace.ScopeStage, st.String(), err, span.ID())
				span.End("failed")
				return nil, err
			}
			trace.Point(trace.FromContext(ctx), trace.ScopeElement, "element "+strconv.Itoa(i), next.t.String(), span.ID())
			cur[i] = next
		}
		span.End("")
	}

	final := a.value
	l, err := eng.LayoutOf(final)
	if err != nil {
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: final, Msg: err.Error()}
	}
	raws := make([][]byte, n)
	for i := range cur {
		x, err := c.settle(cur[i])
		if err != nil {
			return nil, attachIndex(err, a.index(i))
		}
		// cells are produced fresh by stages; unstaged cells alias the source
		raws[i] = bytes.Clone(x.raw)
	}
	out := &Array{scalar: a.scalar, operand: final, value: final, layouts: eng}
	if l.Variable {
		out.buf = newVarBuffer(raws)
	} else {
		out.buf = newFixedBuffer(raws, l.Size)
	}
	return out, nil
}

// cell is one element between stages: its canonical stored bytes under t,
// in the byte order of eng.
type cell struct {
	raw []byte
	t   types.Type
	eng *layout.LayoutEngine
}

type evalCtx struct {
	engine *layout.LayoutEngine
}

func (c *evalCtx) codec(enc types.Encoding) textenc.Codec {
	return textenc.New(enc, c.engine.ByteOrder())
}

// decode returns the text of a string-kind cell.
func (c *evalCtx) decode(x cell, mode textenc.Mode) (string, error) {
	eng := x.eng
	if eng == nil {
		eng = c.engine
	}
	codec := textenc.New(x.t.Encoding, eng.ByteOrder())
	switch x.t.Kind {
	case types.KindString:
		return codec.Decode(x.raw, mode)
	case types.KindFixedString:
		return codec.DecodeFixed(x.raw, int(x.t.Size), mode)
	default:
		return "", &TypeMismatchError{Index: textenc.NoIndex, Want: types.String, Got: x.t.String()}
	}
}

// encode stores text under a string kind.
func (c *evalCtx) encode(s string, t types.Type, mode textenc.Mode) ([]byte, error) {
	switch t.Kind {
	case types.KindString:
		return c.codec(t.Encoding).Encode(s, mode)
	case types.KindFixedString:
		return c.codec(t.Encoding).EncodeFixed(s, int(t.Size), mode)
	default:
		return nil, &TypeMismatchError{Index: textenc.NoIndex, Want: t, Got: "text"}
	}
}

// settle re-encodes a text cell still stored in another byte order.
func (c *evalCtx) settle(x cell) (cell, error) {
	if !x.t.Kind.IsText() || x.eng == nil || x.eng.ByteOrder() == c.engine.ByteOrder() {
		return x, nil
	}
	s, err := c.decode(x, textenc.Strict)
	if err != nil {
		return cell{}, err
	}
	raw, err := c.encode(s, x.t, textenc.Strict)
	if err != nil {
		return cell{}, err
	}
	return cell{raw: raw, t: x.t, eng: c.engine}, nil
}

func (c *evalCtx) validate(x cell) error {
	if x.t.Kind.IsText() {
		_, err := c.decode(x, textenc.Strict)
		return err
	}
	return nil
}

func (c *evalCtx) apply(st stage, x cell) (cell, error) {
	switch st.kind {
	case stageCast:
		return c.cast(x, st.target, st.mode)
	case stageMap:
		s, err := c.decode(x, textenc.Strict)
		if err != nil {
			return cell{}, err
		}
		out, err := st.fn(s)
		if err != nil {
			return cell{}, fmt.Errorf("map %s: %w", st.name, err)
		}
		raw, err := c.encode(out, x.t, textenc.Strict)
		if err != nil {
			return cell{}, err
		}
		return cell{raw: raw, t: x.t, eng: c.engine}, nil
	default:
		return cell{}, fmt.Errorf("unknown stage kind %d", st.kind)
	}
}

func (c *evalCtx) cast(x cell, to types.Type, mode textenc.Mode) (cell, error) {
	if !to.IsValid() || to.Kind == types.KindDim {
		return cell{}, &TypeMismatchError{Index: textenc.NoIndex, Want: to, Msg: "cannot cast to " + to.String()}
	}
	switch {
	case x.t.Kind.IsText() && to.Kind.IsText():
		s, err := c.decode(x, mode)
		if err != nil {
			return cell{}, err
		}
		raw, err := c.encode(s, to, mode)
		if err != nil {
			return cell{}, err
		}
		return cell{raw: raw, t: to, eng: c.engine}, nil

	case x.t.Kind.IsText():
		// text to bytes keeps the current encoding
		s, err := c.decode(x, mode)
		if err != nil {
			return cell{}, err
		}
		raw, err := c.codec(x.t.Encoding).Encode(s, mode)
		if err != nil {
			return cell{}, err
		}
		return c.fitBytes(raw, to, mode, c.engine)

	case to.Kind.IsText():
		// bytes to text decodes under the target encoding
		s, err := c.decode(cell{raw: x.raw, t: to, eng: x.eng}, mode)
		if err != nil {
			return cell{}, err
		}
		raw, err := c.encode(s, to, mode)
		if err != nil {
			return cell{}, err
		}
		return cell{raw: raw, t: to, eng: c.engine}, nil

	default:
		return c.fitBytes(x.raw, to, mode, x.eng)
	}
}

// fitBytes stores raw under a bytes kind, zero-padding fixed widths.
func (c *evalCtx) fitBytes(raw []byte, to types.Type, mode textenc.Mode, eng *layout.LayoutEngine) (cell, error) {
	if to.Kind == types.KindBytes {
		return cell{raw: bytes.Clone(raw), t: to, eng: eng}, nil
	}
	width := int(to.Size)
	if len(raw) > width {
		if mode == textenc.Strict {
			return cell{}, mismatchf(textenc.NoIndex, "%d bytes do not fit %s", len(raw), to)
		}
		raw = raw[:width]
	}
	return cell{raw: textenc.Pad(raw, width), t: to, eng: eng}, nil
}
