// Package config loads ndtext settings and batch job files.
//
// Settings come from the nearest ndtext.toml (or ndtext.yaml / ndtext.yml)
// found by walking up from the working directory, or from an explicit
// --config path. Every field is optional; command-line flags override it.
//
//	[defaults]
//	render = "utf8"
//	errors = "strict"
//	format = "pretty"
//
//	[trace]
//	level = "phase"
//	mode = "stream"
//	output = "-"
//	ring_size = 4096
//
//	[batch]
//	jobs = 4
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"ndtext/internal/types"
)

// FileNames are probed in order in every directory during discovery.
var FileNames = []string{"ndtext.toml", "ndtext.yaml", "ndtext.yml"}

// Config is the decoded settings file.
type Config struct {
	// Path is the file the settings came from; empty for defaults.
	Path string `toml:"-" yaml:"-"`

	Defaults Defaults    `toml:"defaults" yaml:"defaults"`
	Trace    TraceConfig `toml:"trace" yaml:"trace"`
	Batch    BatchConfig `toml:"batch" yaml:"batch"`
}

// Defaults are fallbacks for eval and batch flags.
type Defaults struct {
	Render string `toml:"render" yaml:"render"` // encoding name
	Errors string `toml:"errors" yaml:"errors"` // strict | replace
	Format string `toml:"format" yaml:"format"` // pretty | json | msgpack | cbor
}

// TraceConfig mirrors the --trace* flags.
type TraceConfig struct {
	Level    string `toml:"level" yaml:"level"`
	Mode     string `toml:"mode" yaml:"mode"`
	Output   string `toml:"output" yaml:"output"`
	RingSize int    `toml:"ring_size" yaml:"ring_size"`
}

// BatchConfig configures "ndtext batch".
type BatchConfig struct {
	Jobs int `toml:"jobs" yaml:"jobs"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Defaults: Defaults{
			Render: types.NativeEncoding.String(),
			Errors: "strict",
			Format: "pretty",
		},
		Trace: TraceConfig{
			Level:  "off",
			Mode:   "stream",
			Output: "-",
		},
	}
}

// Find walks up from startDir looking for one of FileNames.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest settings file above startDir, or the defaults
// when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads a settings file over the defaults. The format follows the
// extension: .yaml/.yml for YAML, anything else for TOML.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without running anything.
func (c *Config) Validate() error {
	var errs []error
	if c.Defaults.Render != "" {
		if _, err := types.ParseEncoding(c.Defaults.Render); err != nil {
			errs = append(errs, fmt.Errorf("[defaults].render: %w", err))
		}
	}
	switch c.Defaults.Errors {
	case "", "strict", "replace":
	default:
		errs = append(errs, fmt.Errorf("[defaults].errors: invalid error mode %q (expected: strict|replace)", c.Defaults.Errors))
	}
	switch c.Defaults.Format {
	case "", "pretty", "json", "msgpack", "cbor":
	default:
		errs = append(errs, fmt.Errorf("[defaults].format: invalid format %q (expected: pretty|json|msgpack|cbor)", c.Defaults.Format))
	}
	switch strings.ToLower(c.Trace.Level) {
	case "", "off", "error", "phase", "detail", "debug":
	default:
		errs = append(errs, fmt.Errorf("[trace].level: invalid level %q", c.Trace.Level))
	}
	switch strings.ToLower(c.Trace.Mode) {
	case "", "stream", "ring", "both":
	default:
		errs = append(errs, fmt.Errorf("[trace].mode: invalid mode %q", c.Trace.Mode))
	}
	if c.Trace.RingSize < 0 {
		errs = append(errs, errors.New("[trace].ring_size: must not be negative"))
	}
	if c.Batch.Jobs < 0 {
		errs = append(errs, errors.New("[batch].jobs: must not be negative"))
	}
	return errors.Join(errs...)
}

// decodeFile decodes TOML or YAML into v and rejects unknown keys.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
		return nil
	default:
		meta, err := toml.Decode(string(data), v)
		if err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
		return nil
	}
}
