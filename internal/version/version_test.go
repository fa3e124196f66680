package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withPlain(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	withPlain(t)
	orig := Version
	t.Cleanup(func() { Version = orig })

	for _, v := range []string{"0.1.0-dev", "1.2.3", "1.2.3-rc.1+build.123"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() = %q, want %q", got, v)
		}
	}
	Version = "weird"
	if got := Colored(); got != "weird" {
		t.Errorf("non-semver version should pass through, got %q", got)
	}
}

func TestLine(t *testing.T) {
	withPlain(t)
	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	GitCommit, BuildDate = "", ""
	if got := Line(); got != "ndtext "+Version {
		t.Errorf("Line() = %q", got)
	}
	GitCommit, BuildDate = "abc123", "2024-01-15"
	if got := Line(); !strings.HasSuffix(got, "(abc123, 2024-01-15)") {
		t.Errorf("Line() = %q", got)
	}
}

func TestCurrent(t *testing.T) {
	info := Current()
	if info.Version != Version || info.GoVersion == "" || !strings.Contains(info.Platform, "/") {
		t.Errorf("unexpected info %+v", info)
	}
}
