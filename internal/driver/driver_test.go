package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ndtext/internal/config"
	"ndtext/internal/layout"
	"ndtext/internal/nd"
	"ndtext/internal/observ"
	"ndtext/internal/trace"
)

func TestRunTextScalar(t *testing.T) {
	res := Run(context.Background(), config.Job{Name: "plain", Text: config.Literals{"Testing 1 2 3"}}, Options{})
	require.NoError(t, res.Err())
	assert.True(t, res.OK)
	assert.Equal(t, "string", res.DType)
	assert.Equal(t, "Testing 1 2 3", res.Value)
	assert.Equal(t, "Testing 1 2 3", res.Rendered)
	assert.Empty(t, res.Code)
}

func TestRunDeferredDecodeError(t *testing.T) {
	job := config.Job{
		Name: "decode",
		Hex:  config.Literals{"80"},
		Type: "bytes(1)",
		View: "string(1,'ascii')",
		Cast: config.Literals{"string"},
	}
	res := Run(context.Background(), job, Options{})
	require.Error(t, res.Err())
	assert.ErrorIs(t, res.Err(), nd.ErrDecode)
	assert.False(t, res.OK)
	assert.Equal(t, "ND1001", res.Code)
	assert.Equal(t, "string", res.UDType)
	assert.Equal(t, []string{"cast string"}, res.Stages)

	job.ExpectError = "nd1001"
	res = Run(context.Background(), job, Options{})
	assert.True(t, res.OK)

	job.Errors = "replace"
	res = Run(context.Background(), job, Options{})
	require.NoError(t, res.Err())
	assert.False(t, res.OK, "job succeeded although an error was expected")
	job.ExpectError = ""
	res = Run(context.Background(), job, Options{})
	require.NoError(t, res.Err())
	assert.Equal(t, "�", res.Value)
}

func TestRunSequenceRenderError(t *testing.T) {
	job := config.Job{Text: config.Literals{"안녕", "Hello"}, Seq: true, Render: "ascii"}
	res := Run(context.Background(), job, Options{})
	require.Error(t, res.Err())
	assert.Equal(t, "ND1002", res.Code)
	assert.Equal(t, []any{"안녕", "Hello"}, res.Value)

	res = Run(context.Background(), config.Job{Text: job.Text, Seq: true}, Options{Render: "utf8"})
	require.NoError(t, res.Err())
	assert.Equal(t, "[안녕, Hello]", res.Rendered)
	assert.Equal(t, "2 * string", res.DType)
}

func TestRunMapAndDefaults(t *testing.T) {
	job := config.Job{Text: config.Literals{"shout"}, Map: config.Literals{"upper"}}
	res := Run(context.Background(), job, Options{Errors: "strict"})
	require.NoError(t, res.Err())
	assert.Equal(t, "SHOUT", res.Value)
	assert.Equal(t, []string{"map upper"}, res.Stages)

	res = Run(context.Background(), config.Job{Text: config.Literals{"x"}, Map: config.Literals{"shout"}}, Options{})
	require.Error(t, res.Err())
	assert.Empty(t, res.Code)

	res = Run(context.Background(), config.Job{Hex: config.Literals{"00"}, Map: config.Literals{"upper"}}, Options{})
	assert.Equal(t, "ND1003", res.Code)
}

func TestRunBadInputs(t *testing.T) {
	cases := []config.Job{
		{Hex: config.Literals{"zz"}},
		{Text: config.Literals{"x"}, Type: "string("},
		{Text: config.Literals{"x"}, Render: "latin1"},
		{Text: config.Literals{"x"}, Errors: "ignore"},
	}
	for _, job := range cases {
		res := Run(context.Background(), job, Options{})
		assert.Error(t, res.Err(), "%+v", job)
		assert.False(t, res.OK)
		assert.NotEmpty(t, res.Error)
	}
}

func TestRunBigEndianLayout(t *testing.T) {
	job := config.Job{Text: config.Literals{"A"}, Cast: config.Literals{"string('utf16')", "bytes"}}
	res := Run(context.Background(), job, Options{Layouts: layout.New(layout.S390xLinuxGNU())})
	require.NoError(t, res.Err())
	assert.Equal(t, []byte{0x00, 'A'}, res.Value)
}

func TestRunTracesJobs(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	res := Run(context.Background(), config.Job{Text: config.Literals{"x"}, Cast: config.Literals{"bytes"}}, Options{Tracer: ring})
	require.NoError(t, res.Err())

	var names []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			names = append(names, ev.Name)
		}
	}
	assert.Equal(t, []string{"job", "eval", "cast bytes"}, names)
}

func writeJobs(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunBatchKeepsInputOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"c.toml", "a.toml", "b.yaml"} {
		content := "[[job]]\nname = \"" + name + "\"\ntext = \"x\"\n"
		if filepath.Ext(name) == ".yaml" {
			content = "job:\n  - name: " + name + "\n    text: x\n"
		}
		paths = append(paths, writeJobs(t, dir, name, content))
	}
	broken := writeJobs(t, dir, "broken.toml", "[[job]]\ntext = 1\n")
	paths = append(paths, broken)

	timer := observ.NewTimer()
	res, err := RunBatch(context.Background(), paths, BatchOptions{Jobs: 2, Timer: timer})
	require.NoError(t, err)
	require.Len(t, res.Files, 4)
	for i, name := range []string{"c.toml", "a.toml", "b.yaml"} {
		assert.Equal(t, paths[i], res.Files[i].Path)
		require.Len(t, res.Files[i].Jobs, 1)
		assert.Equal(t, name, res.Files[i].Jobs[0].Name)
		assert.True(t, res.Files[i].Jobs[0].OK)
	}
	assert.NotEmpty(t, res.Files[3].Error)
	assert.Equal(t, 1, res.Failed())
	require.NotNil(t, res.Timings)
	assert.Len(t, res.Timings.Phases, 4)
}

func TestRunBatchDirectory(t *testing.T) {
	dir := t.TempDir()
	writeJobs(t, dir, "ndtext.toml", "[batch]\njobs = 1\n")
	writeJobs(t, dir, "z.toml", "[[job]]\ntext = \"z\"\n")
	writeJobs(t, dir, "a.yml", "job:\n  - text: a\n    expect_error: ND1002\n    render: ascii\n    map: [upper]\n")
	writeJobs(t, dir, "notes.txt", "ignored")

	res, err := RunBatch(context.Background(), []string{dir}, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, res.Files, 2)
	assert.Equal(t, "a.yml", filepath.Base(res.Files[0].Path))
	assert.Equal(t, "z.toml", filepath.Base(res.Files[1].Path))
	assert.False(t, res.Files[0].Jobs[0].OK, "A renders in ascii, so the expected encode error never happens")
	assert.Nil(t, res.Timings)
}

func TestRunBatchErrors(t *testing.T) {
	_, err := RunBatch(context.Background(), []string{filepath.Join(t.TempDir(), "missing.toml")}, BatchOptions{})
	assert.Error(t, err)

	_, err = RunBatch(context.Background(), []string{t.TempDir()}, BatchOptions{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeJobs(t, t.TempDir(), "jobs.toml", "[[job]]\ntext = \"x\"\n")
	_, err = RunBatch(ctx, []string{path}, BatchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

// cancelOnFile cancels the batch as soon as a file span opens.
type cancelOnFile struct{ cancel context.CancelFunc }

func (c cancelOnFile) Emit(ev *trace.Event) {
	if ev.Kind == trace.KindSpanBegin && ev.Name == "file" {
		c.cancel()
	}
}
func (cancelOnFile) Flush() error       { return nil }
func (cancelOnFile) Close() error       { return nil }
func (cancelOnFile) Level() trace.Level { return trace.LevelDebug }
func (cancelOnFile) Enabled() bool      { return true }

func TestRunBatchCanceledFileEndsTimingPhase(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := writeJobs(t, t.TempDir(), "jobs.toml", "[[job]]\ntext = \"x\"\n")
	timer := observ.NewTimer()

	_, err := RunBatch(ctx, []string{path}, BatchOptions{
		Options: Options{Tracer: cancelOnFile{cancel: cancel}},
		Jobs:    1,
		Timer:   timer,
	})
	require.ErrorIs(t, err, context.Canceled)

	report := timer.Report()
	require.Len(t, report.Phases, 1)
	assert.Equal(t, path, report.Phases[0].Name)
	assert.Equal(t, "canceled", report.Phases[0].Note)
}
