package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Literals is a list of strings that may be written as a single string.
type Literals []string

// UnmarshalTOML accepts "x" or ["x", "y"].
func (l *Literals) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		*l = Literals{v}
		return nil
	case []any:
		out := make(Literals, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("item %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("expected string or array of strings, got %T", data)
	}
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (l *Literals) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = Literals{node.Value}
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return err
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// Job is one [[job]] entry of a batch file. It describes the same pipeline
// as the "ndtext eval" flags.
type Job struct {
	Name   string   `toml:"name" yaml:"name"`
	Text   Literals `toml:"text" yaml:"text"`
	Hex    Literals `toml:"hex" yaml:"hex"`
	Seq    bool     `toml:"seq" yaml:"seq"`
	Type   string   `toml:"type" yaml:"type"`
	UDType string   `toml:"udtype" yaml:"udtype"`
	View   string   `toml:"view" yaml:"view"`
	Cast   Literals `toml:"cast" yaml:"cast"`
	Map    Literals `toml:"map" yaml:"map"`
	Errors string   `toml:"errors" yaml:"errors"`
	Render string   `toml:"render" yaml:"render"`

	// ExpectError, when set, is the error code (e.g. "ND1001") the job must
	// fail with. A job that succeeds or fails differently is reported.
	ExpectError string `toml:"expect_error" yaml:"expect_error"`
}

// JobFile is a decoded batch file.
type JobFile struct {
	Path string `toml:"-" yaml:"-"`
	Jobs []Job  `toml:"job" yaml:"job"`
}

// LoadJobs reads a batch file. Jobs without a name are called "job N"
// (1-based).
func LoadJobs(path string) (*JobFile, error) {
	jf := &JobFile{}
	if err := decodeFile(path, jf); err != nil {
		return nil, err
	}
	jf.Path = path
	if len(jf.Jobs) == 0 {
		return nil, fmt.Errorf("%s: no [[job]] entries", path)
	}
	var errs []error
	for i := range jf.Jobs {
		j := &jf.Jobs[i]
		if strings.TrimSpace(j.Name) == "" {
			j.Name = fmt.Sprintf("job %d", i+1)
		}
		if err := j.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", path, j.Name, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return jf, nil
}

// Validate checks the literal shape of a job.
func (j *Job) Validate() error {
	n := len(j.Text) + len(j.Hex)
	switch {
	case len(j.Text) > 0 && len(j.Hex) > 0:
		return errors.New("text and hex cannot be mixed")
	case n == 0 && !j.Seq:
		return errors.New("needs text or hex")
	case n > 1 && !j.Seq:
		return fmt.Errorf("%d literals given; set seq = true for a sequence", n)
	}
	switch j.Errors {
	case "", "strict", "replace":
	default:
		return fmt.Errorf("invalid error mode %q (expected: strict|replace)", j.Errors)
	}
	return nil
}
