package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ndtext.toml"), "[batch]\njobs = 3\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, "ndtext.toml") {
		t.Fatalf("found %s", path)
	}

	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Batch.Jobs != 3 || cfg.Defaults.Format != "pretty" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestDiscoverWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	// a settings file in an ancestor of the temp dir would be picked up
	if cfg.Path == "" && cfg.Defaults.Render != "utf8" {
		t.Fatalf("unexpected defaults %+v", cfg.Defaults)
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndtext.toml")
	writeFile(t, path, `
[defaults]
render = "ascii"
errors = "replace"
format = "json"

[trace]
level = "detail"
mode = "both"
ring_size = 128
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.Render != "ascii" || cfg.Defaults.Errors != "replace" || cfg.Defaults.Format != "json" {
		t.Fatalf("defaults %+v", cfg.Defaults)
	}
	if cfg.Trace.Level != "detail" || cfg.Trace.Mode != "both" || cfg.Trace.RingSize != 128 || cfg.Trace.Output != "-" {
		t.Fatalf("trace %+v", cfg.Trace)
	}
	if cfg.Path != path {
		t.Fatalf("path %q", cfg.Path)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndtext.yaml")
	writeFile(t, path, "defaults:\n  format: cbor\nbatch:\n  jobs: 2\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.Format != "cbor" || cfg.Batch.Jobs != 2 || cfg.Defaults.Errors != "strict" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ndtext.toml": "[defaults]\nrender = \"latin1\"\n",
		"bad.toml":    "[defaults]\nformat = \"xml\"\n",
		"keys.toml":   "[defaults]\ncolour = \"on\"\n",
		"syntax.toml": "[defaults\n",
		"keys.yaml":   "defaults:\n  colour: on\n",
		"trace.yml":   "trace:\n  level: loud\n",
	}
	dir := t.TempDir()
	for name, content := range cases {
		path := filepath.Join(dir, name)
		writeFile(t, path, content)
		if _, err := Load(path); err == nil {
			t.Fatalf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), path) {
			t.Fatalf("%s: error should name the file: %v", name, err)
		}
	}
}

func TestLoadJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.toml")
	writeFile(t, path, `
[[job]]
name = "decode-error"
hex = "80"
type = "bytes(1)"
view = "string(1,'ascii')"
cast = "string"
expect_error = "ND1001"

[[job]]
text = ["안녕", "Hello"]
seq = true
map = ["upper", "nfc"]
render = "utf16"
`)
	jf, err := LoadJobs(path)
	if err != nil {
		t.Fatalf("LoadJobs: %v", err)
	}
	if len(jf.Jobs) != 2 {
		t.Fatalf("got %d jobs", len(jf.Jobs))
	}
	first, second := jf.Jobs[0], jf.Jobs[1]
	if first.Name != "decode-error" || len(first.Hex) != 1 || first.Hex[0] != "80" || len(first.Cast) != 1 || first.ExpectError != "ND1001" {
		t.Fatalf("first job %+v", first)
	}
	if second.Name != "job 2" || !second.Seq || len(second.Text) != 2 || len(second.Map) != 2 {
		t.Fatalf("second job %+v", second)
	}
}

func TestLoadJobsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	writeFile(t, path, "job:\n  - name: single\n    text: hi\n    cast: [\"string('utf16')\", bytes]\n")
	jf, err := LoadJobs(path)
	if err != nil {
		t.Fatalf("LoadJobs: %v", err)
	}
	j := jf.Jobs[0]
	if len(j.Text) != 1 || j.Text[0] != "hi" || len(j.Cast) != 2 || j.Cast[1] != "bytes" {
		t.Fatalf("job %+v", j)
	}
}

func TestJobValidate(t *testing.T) {
	bad := []Job{
		{},
		{Text: Literals{"a", "b"}},
		{Text: Literals{"a"}, Hex: Literals{"00"}},
		{Text: Literals{"a"}, Errors: "ignore"},
	}
	for i, j := range bad {
		if err := j.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
	ok := []Job{
		{Text: Literals{"a"}},
		{Seq: true},
		{Hex: Literals{"00", "ff"}, Seq: true, Errors: "replace"},
	}
	for i, j := range ok {
		if err := j.Validate(); err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
	}
}

func TestLoadJobsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	writeFile(t, path, "")
	if _, err := LoadJobs(path); err == nil {
		t.Fatalf("expected error for file without jobs")
	}
}
