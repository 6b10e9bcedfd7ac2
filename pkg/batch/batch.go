// Package batch converts every video in a directory with bounded parallelism.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
)

// DefaultWorkers is the number of files converted at once.
const DefaultWorkers = 2

// VideoExtensions are the input file extensions picked up by a batch.
var VideoExtensions = []string{".mov", ".mp4", ".m4v", ".qt"}

// ErrDuplicateName is reported for an input whose output names are already
// taken by an earlier input with the same base name.
var ErrDuplicateName = errors.New("batch: output name already used by another input")

// Status is the outcome of one file.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusCancelled
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FileOutcome describes the conversion of one input file.
type FileOutcome struct {
	InputPath   string
	Outputs     []string
	Frames      int
	DepthAbsent bool
	Status      Status
	Err         error
	Kind        pipeline.ErrorKind
	Elapsed     time.Duration
}

// ConvertFunc converts one input file.
type ConvertFunc func(ctx context.Context, inputPath string) (FileOutcome, error)

// Report collects the outcomes of a batch in input order.
type Report struct {
	InputDir string
	Files    []FileOutcome
	Elapsed  time.Duration
}

// Succeeded returns the number of converted files.
func (r *Report) Succeeded() int {
	return r.count(StatusSucceeded)
}

// Failed returns the number of files whose conversion failed.
func (r *Report) Failed() int {
	return r.count(StatusFailed)
}

// Cancelled returns the number of files that were never started.
func (r *Report) Cancelled() int {
	return r.count(StatusCancelled)
}

func (r *Report) count(status Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Runner runs conversions over a directory.
type Runner struct {
	fs      ports.FileSystem
	workers int
	logger  ports.Logger
}

// NewRunner creates a runner. Workers below one use DefaultWorkers.
func NewRunner(fs ports.FileSystem, workers int, logger ports.Logger) *Runner {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Runner{
		fs:      fs,
		workers: workers,
		logger:  logger.WithComponent("batch"),
	}
}

// Inputs returns the video files in dir, sorted by name.
func (r *Runner) Inputs(dir string) ([]string, error) {
	names, err := r.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory %s: %w", dir, err)
	}

	var inputs []string
	for _, name := range names {
		if IsVideo(name) {
			inputs = append(inputs, filepath.Join(dir, name))
		}
	}
	return inputs, nil
}

// Run converts every video in inputDir. A failing file does not stop the
// batch; files not started when ctx is cancelled are marked cancelled.
func (r *Runner) Run(ctx context.Context, inputDir string, convert ConvertFunc) (*Report, error) {
	start := time.Now()

	inputs, err := r.Inputs(inputDir)
	if err != nil {
		return nil, err
	}

	report := &Report{
		InputDir: inputDir,
		Files:    make([]FileOutcome, len(inputs)),
	}
	r.logger.Info("Converting %d files from %s with %d workers", len(inputs), inputDir, r.workers)

	var g errgroup.Group
	g.SetLimit(r.workers)

	// Output names drop the extension, so clip.mov and clip.mp4 collide.
	// The first in sorted order wins.
	claimed := make(map[string]string, len(inputs))
	for i, input := range inputs {
		key := strings.ToLower(baseName(input))
		if prev, ok := claimed[key]; ok {
			err := fmt.Errorf("%w: %s", ErrDuplicateName, prev)
			r.logger.Error("Conversion of %s failed (%s): %v", input, pipeline.KindOf(err), err)
			report.Files[i] = FileOutcome{
				InputPath: input,
				Status:    StatusFailed,
				Err:       err,
				Kind:      pipeline.KindOf(err),
			}
			continue
		}
		claimed[key] = input

		g.Go(func() error {
			report.Files[i] = r.runOne(ctx, input, convert)
			return nil
		})
	}
	g.Wait()

	report.Elapsed = time.Since(start)
	r.logger.Info("Batch finished: %d succeeded, %d failed, %d cancelled",
		report.Succeeded(), report.Failed(), report.Cancelled())
	return report, nil
}

func (r *Runner) runOne(ctx context.Context, input string, convert ConvertFunc) FileOutcome {
	if err := ctx.Err(); err != nil {
		r.logger.Warn("Skipping %s: %v", input, err)
		return FileOutcome{
			InputPath: input,
			Status:    StatusCancelled,
			Err:       err,
			Kind:      pipeline.KindCancelled,
		}
	}

	start := time.Now()
	outcome, err := convert(ctx, input)
	outcome.InputPath = input
	outcome.Elapsed = time.Since(start)

	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		outcome.Kind = pipeline.KindOf(err)
		r.logger.Error("Conversion of %s failed (%s): %v", input, outcome.Kind, err)
		return outcome
	}

	outcome.Status = StatusSucceeded
	r.logger.Info("Converted %s in %s", input, outcome.Elapsed.Round(time.Millisecond))
	return outcome
}

// IsVideo reports whether name has a recognised video extension.
func IsVideo(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, v := range VideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// OutputPaths returns the composite and depth output paths for input.
func OutputPaths(outputDir, input string) (composite, depth string) {
	base := baseName(input)
	return filepath.Join(outputDir, base+"_sideBySide.mp4"),
		filepath.Join(outputDir, base+"_depth.mp4")
}

// SplitOutputPaths returns the per-view output paths for input.
func SplitOutputPaths(outputDir, input string) (left, right, depth string) {
	base := baseName(input)
	return filepath.Join(outputDir, base+"_left.mp4"),
		filepath.Join(outputDir, base+"_right.mp4"),
		filepath.Join(outputDir, base+"_depth.mp4")
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
