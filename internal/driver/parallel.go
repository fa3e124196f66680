package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"ndtext/internal/config"
	"ndtext/internal/observ"
	"ndtext/internal/trace"
)

// FileResult holds the results of one job file, in job order.
type FileResult struct {
	Path  string   `json:"path" msgpack:"path" cbor:"path"`
	Jobs  []Result `json:"jobs" msgpack:"jobs" cbor:"jobs"`
	Error string   `json:"error,omitempty" msgpack:"error,omitempty" cbor:"error,omitempty"`
}

// BatchResult holds every file of a batch run in input order.
type BatchResult struct {
	Files   []FileResult   `json:"files" msgpack:"files" cbor:"files"`
	Timings *observ.Report `json:"timings,omitempty" msgpack:"timings,omitempty" cbor:"timings,omitempty"`
}

// Failed counts files that could not be loaded and jobs that did not meet
// their expectation.
func (b *BatchResult) Failed() int {
	n := 0
	for _, f := range b.Files {
		if f.Error != "" {
			n++
		}
		for _, j := range f.Jobs {
			if !j.OK {
				n++
			}
		}
	}
	return n
}

// BatchOptions configure RunBatch.
type BatchOptions struct {
	Options
	Jobs  int           // concurrent files; <= 0 means GOMAXPROCS
	Timer *observ.Timer // optional; one phase per file
}

// listJobFiles expands directories into their .toml/.yaml/.yml files,
// skipping settings files. Explicit file arguments are kept as given.
func listJobFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || slices.Contains(config.FileNames, d.Name()) {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".toml", ".yaml", ".yml":
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// RunBatch runs every job of every file. Files are processed in parallel;
// jobs inside a file run in order. A file that fails to load is reported in
// its FileResult. The returned error is only for listing failures and
// cancellation.
func RunBatch(ctx context.Context, paths []string, opts BatchOptions) (*BatchResult, error) {
	files, err := listJobFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no job files in %s", strings.Join(paths, ", "))
	}

	if opts.Tracer != nil {
		ctx = trace.WithTracer(ctx, opts.Tracer)
		opts.Tracer = nil
	}
	ctx, span := trace.Start(ctx, trace.ScopeCommand, "batch")
	defer span.End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine writes only its own index
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			done := opts.Timer.Track(path)
			fctx, fspan := trace.Start(gctx, trace.ScopeCommand, "file")
			fspan.WithExtra("path", path)

			fr := FileResult{Path: path}
			jf, err := config.LoadJobs(path)
			if err != nil {
				fr.Error = err.Error()
				trace.Fail(trace.FromContext(fctx), trace.ScopeCommand, "file", err, fspan.ID())
				results[i] = fr
				fspan.End("failed")
				done("load failed")
				return nil
			}
			fr.Jobs = make([]Result, 0, len(jf.Jobs))
			for _, job := range jf.Jobs {
				if err := fctx.Err(); err != nil {
					fspan.End("canceled")
					done("canceled")
					return err
				}
				fr.Jobs = append(fr.Jobs, Run(fctx, job, opts.Options))
			}
			results[i] = fr
			fspan.End("")
			done(fmt.Sprintf("%d jobs", len(fr.Jobs)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &BatchResult{Files: results}
	if opts.Timer != nil {
		report := opts.Timer.Report()
		out.Timings = &report
	}
	return out, nil
}
