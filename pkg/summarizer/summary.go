package summarizer

import (
	"time"

	"github.com/user/stereoshow/pkg/batch"
)

// Summary contains the results of one batch run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	InputDir    string
	OutputDir   string
	Elapsed     time.Duration

	// Conversion settings
	Settings Settings

	// Per-file results in input order
	Files []FileSummary
}

// Settings contains the conversion configuration.
type Settings struct {
	Mode        string // "composite" or "split"
	Layout      string
	Orientation string
	Depth       bool
	Workers     int
	Quality     int
	Bitrate     int // kbps, 0 = quality-driven
}

// FileSummary describes the conversion of one input file.
type FileSummary struct {
	Input       string
	Status      string
	Kind        string // Error kind, empty on success
	Error       string
	Outputs     []string
	Frames      int
	DepthAbsent bool
	Elapsed     time.Duration
}

// Counts returns the number of succeeded, failed and cancelled files.
func (s *Summary) Counts() (succeeded, failed, cancelled int) {
	for _, f := range s.Files {
		switch f.Status {
		case batch.StatusSucceeded.String():
			succeeded++
		case batch.StatusFailed.String():
			failed++
		case batch.StatusCancelled.String():
			cancelled++
		}
	}
	return succeeded, failed, cancelled
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithDirs sets the input and output directories.
func (b *Builder) WithDirs(inputDir, outputDir string) *Builder {
	b.summary.InputDir = inputDir
	b.summary.OutputDir = outputDir
	return b
}

// WithSettings sets conversion settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithFile appends one file result.
func (b *Builder) WithFile(file FileSummary) *Builder {
	b.summary.Files = append(b.summary.Files, file)
	return b
}

// WithReport appends every outcome of a batch report.
func (b *Builder) WithReport(report *batch.Report) *Builder {
	b.summary.Elapsed = report.Elapsed
	if b.summary.InputDir == "" {
		b.summary.InputDir = report.InputDir
	}
	for _, f := range report.Files {
		fs := FileSummary{
			Input:       f.InputPath,
			Status:      f.Status.String(),
			Outputs:     f.Outputs,
			Frames:      f.Frames,
			DepthAbsent: f.DepthAbsent,
			Elapsed:     f.Elapsed,
		}
		if f.Err != nil {
			fs.Kind = f.Kind.String()
			fs.Error = f.Err.Error()
		}
		b.summary.Files = append(b.summary.Files, fs)
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
