// Package batch converts many scene files with a pool of workers.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/meshconv/internal/convert"
	"github.com/Faultbox/meshconv/pkg/meshasset"
	"github.com/Faultbox/meshconv/pkg/scene"
)

// ErrDuplicateOutput is returned by Jobs when two inputs map to one output file.
var ErrDuplicateOutput = errors.New("inputs map to the same output file")

// Job is one input scene and the asset path it converts to.
type Job struct {
	Input  string
	Output string
}

// Result holds the outcome of one job.
type Result struct {
	Job
	Errors   int
	Warnings int
	Err      error // Fatal failure; no asset was written
	Duration time.Duration

	// Problems combines the errors recorded during conversion, nil if none.
	Problems error
}

// Failed reports whether the job produced no asset.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Config holds the shared resources of a batch run.
type Config struct {
	Workers int
	Options convert.Options
	Writer  meshasset.Writer
	Log     *zap.Logger

	// ProgressInterval is how often progress is logged. Zero disables it.
	ProgressInterval time.Duration
}

// Report summarizes a run.
type Report struct {
	RunID    string
	Results  []Result
	Duration time.Duration
}

// Failed returns the number of jobs that produced no asset.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Failed() {
			n++
		}
	}
	return n
}

// Errors returns the total diagnostic error count over all jobs.
func (r *Report) Errors() int {
	n := 0
	for _, res := range r.Results {
		n += res.Errors
	}
	return n
}

// OutputPath maps a scene path relative to its input root to the asset path
// below outputDir, replacing the extension with ext.
func OutputPath(outputDir, rel, ext string) string {
	return filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)
}

// Jobs expands inputs into jobs writing below outputDir. Directories are
// walked for scene files and keep their relative layout in the output.
func Jobs(inputs []string, outputDir, ext string) ([]Job, error) {
	var jobs []Job
	seen := make(map[string]string)

	add := func(input, rel string) error {
		out := OutputPath(outputDir, rel, ext)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: %s and %s -> %s", ErrDuplicateOutput, prev, input, out)
		}
		seen[out] = input
		jobs = append(jobs, Job{Input: input, Output: out})
		return nil
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := add(input, filepath.Base(input)); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !scene.IsSceneFile(path) {
				return nil
			}
			rel, err := filepath.Rel(input, path)
			if err != nil {
				return err
			}
			return add(path, rel)
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", input, err)
		}
	}

	return jobs, nil
}

// Run converts all jobs using a worker pool. Jobs not started before ctx is
// cancelled are reported with the context error.
func Run(ctx context.Context, cfg Config, jobs []Job) *Report {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}

	report := &Report{
		RunID:   uuid.NewString(),
		Results: make([]Result, len(jobs)),
	}
	log := cfg.Log.With(zap.String("run", report.RunID))
	conv := convert.New(log.Named("convert"), cfg.Options)
	log.Info("batch started", zap.Int("jobs", len(jobs)), zap.Int("workers", cfg.Workers))

	total := len(jobs)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	if cfg.ProgressInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ProgressInterval)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", zap.Int64("done", p), zap.Int("total", total), zap.Float64("files_per_sec", rate))
				}
			}
		}()
	}

	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				report.Results[idx] = ConvertJob(ctx, conv, cfg.Writer, log, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	report.Duration = time.Since(start)
	log.Info("batch finished",
		zap.Int("jobs", total),
		zap.Int("failed", report.Failed()),
		zap.Int("errors", report.Errors()),
		zap.Duration("elapsed", report.Duration))
	return report
}

// ConvertJob converts a single job. It does nothing if ctx is already done.
func ConvertJob(ctx context.Context, conv *convert.Converter, w meshasset.Writer, log *zap.Logger, job Job) Result {
	res := Result{Job: job}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	diag, err := conv.ConvertFile(job.Input, job.Output, w)
	res.Duration = time.Since(start)
	if diag != nil {
		res.Errors = diag.ErrorCount()
		res.Warnings = diag.WarningCount()
		res.Problems = diag.Err()
	}
	if err != nil {
		res.Err = err
		log.Error("conversion failed", zap.String("input", job.Input), zap.Error(err))
	}
	return res
}
