package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLevelShouldEmit(t *testing.T) {
	cases := []struct {
		level Level
		kind  Kind
		scope Scope
		want  bool
	}{
		{LevelOff, KindError, ScopeCommand, false},
		{LevelError, KindError, ScopeElement, true},
		{LevelError, KindSpanBegin, ScopeCommand, false},
		{LevelPhase, KindSpanBegin, ScopeEval, true},
		{LevelPhase, KindSpanBegin, ScopeStage, false},
		{LevelDetail, KindSpanEnd, ScopeStage, true},
		{LevelDetail, KindPoint, ScopeElement, false},
		{LevelDebug, KindPoint, ScopeElement, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.kind, tc.scope); got != tc.want {
			t.Fatalf("%s.ShouldEmit(%s, %s) = %v, want %v", tc.level, tc.kind, tc.scope, got, tc.want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected level error")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if _, err := ParseMode("disk"); err == nil {
		t.Fatalf("expected mode error")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat: %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, eval := Start(ctx, ScopeEval, "eval")
	eval.WithExtra("to", "string")
	_, stage := Start(ctx, ScopeStage, "cast string")
	Point(tr, ScopeElement, "element 0", "", stage.ID())
	stage.End("")
	eval.End("")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "[eval]") || !strings.Contains(lines[0], "→ eval") {
		t.Fatalf("unexpected begin line %q", lines[0])
	}
	if !strings.Contains(lines[1], "→ cast string") {
		t.Fatalf("unexpected stage line %q", lines[1])
	}
	if !strings.Contains(lines[3], "{to=string}") {
		t.Fatalf("end line lacks extras: %q", lines[3])
	}
}

func TestStartNestsSpans(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	ctx, outer := Start(ctx, ScopeCommand, "job")
	if CurrentSpan(ctx) != outer.ID() {
		t.Fatalf("context does not carry the outer span")
	}
	_, inner := Start(ctx, ScopeEval, "eval")
	inner.End("")
	outer.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("got %d events", len(events))
	}
	if events[1].ParentID != events[0].SpanID {
		t.Fatalf("inner span parent = %d, want %d", events[1].ParentID, events[0].SpanID)
	}
}

func TestDisabledSpanKeepsParent(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	ctx := WithTracer(context.Background(), ring)
	ctx, eval := Start(ctx, ScopeEval, "eval")
	_, stage := Start(ctx, ScopeStage, "cast bytes")
	if stage.ID() != eval.ID() {
		t.Fatalf("filtered span should report its parent id")
	}
	Fail(ring, ScopeStage, "cast bytes", errors.New("boom"), stage.ID())
	events := ring.Snapshot()
	last := events[len(events)-1]
	if last.Kind != KindError || last.ParentID != eval.ID() || last.Detail != "boom" {
		t.Fatalf("unexpected error event %+v", last)
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeCommand, name, "", 0)
	}
	events := ring.Snapshot()
	var names []string
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	if strings.Join(names, "") != "cde" {
		t.Fatalf("ring kept %v", names)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	for line := range strings.Lines(buf.String()) {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid NDJSON line %q: %v", line, err)
		}
		if ev["kind"] != "point" {
			t.Fatalf("kind = %v", ev["kind"])
		}
	}
}

func TestNewSelectsTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("off level should give Nop: %v %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if RingOf(tr) == nil {
		t.Fatalf("both mode should expose a ring")
	}
	Point(tr, ScopeCommand, "hello", "", 0)
	if !strings.Contains(buf.String(), "hello") || len(RingOf(tr).Snapshot()) != 1 {
		t.Fatalf("event not fanned out")
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeStream, Output: &buf})
	if err != nil || RingOf(tr) != nil {
		t.Fatalf("stream mode has no ring: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamTracerKeepsFirstWriteError(t *testing.T) {
	tr := NewStreamTracer(failingWriter{}, LevelDebug, FormatText)
	Point(tr, ScopeCommand, "x", "", 0)
	if err := tr.Flush(); err == nil || err.Error() != "disk full" {
		t.Fatalf("Flush = %v", err)
	}
}
