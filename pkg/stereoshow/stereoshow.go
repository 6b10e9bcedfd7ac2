package stereoshow

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/stereoshow/pkg/adapters/ffmpegsource"
	"github.com/user/stereoshow/pkg/adapters/filesink"
	"github.com/user/stereoshow/pkg/adapters/ggrenderer"
	"github.com/user/stereoshow/pkg/adapters/h264encoder"
	"github.com/user/stereoshow/pkg/adapters/nullsink"
	"github.com/user/stereoshow/pkg/adapters/osfilesystem"
	"github.com/user/stereoshow/pkg/batch"
	"github.com/user/stereoshow/pkg/orchestrator"
	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
	"github.com/user/stereoshow/pkg/stages/composite"
	"github.com/user/stereoshow/pkg/stages/demux"
	"github.com/user/stereoshow/pkg/stages/encode"
)

// Adapters are the external collaborators of a conversion.
type Adapters struct {
	Loader     ports.AssetLoader
	Encoder    ports.VideoEncoder
	FileSystem ports.FileSystem
	Renderer   ports.Renderer
	Sink       ports.DebugSink
}

// DefaultAdapters returns the ffmpeg, mp4ff and gg based adapters.
func DefaultAdapters(cfg Config, log ports.Logger) (Adapters, error) {
	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink = nullsink.New()
	if cfg.Debug {
		if err := fs.MkdirAll(cfg.DebugDir); err != nil {
			return Adapters{}, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	}

	return Adapters{
		Loader:     ffmpegsource.NewLoader(cfg.FFmpegPath, log),
		Encoder:    h264encoder.New(cfg.FFmpegPath, log),
		FileSystem: fs,
		Renderer:   renderer,
		Sink:       sink,
	}, nil
}

// NewOrchestrator wires the default adapters into an orchestrator.
func NewOrchestrator(cfg Config, log ports.Logger) (*orchestrator.Orchestrator, error) {
	adapters, err := DefaultAdapters(cfg, log)
	if err != nil {
		return nil, err
	}
	return newOrchestrator(cfg, adapters, log), nil
}

func newOrchestrator(cfg Config, a Adapters, log ports.Logger) *orchestrator.Orchestrator {
	sinkOpts := encode.SinkOptions{
		Encoder: ports.EncoderOptions{
			Quality:    cfg.Quality,
			Bitrate:    cfg.Bitrate,
			PoolSize:   cfg.PoolSize,
			QueueDepth: cfg.QueueDepth,
		},
		PollInterval: cfg.PollInterval,
		ReadyTimeout: cfg.ReadyTimeout,
	}

	return orchestrator.New(
		a.Loader,
		demux.NewStage(a.Sink, log),
		composite.NewStage(a.Renderer, a.Sink, log),
		encode.NewStage(a.Encoder, a.FileSystem, a.Renderer, log, sinkOpts),
		a.Sink,
		log,
	)
}

// Converter runs single-file and batch conversions with one configuration.
type Converter struct {
	cfg    Config
	orch   *orchestrator.Orchestrator
	fs     ports.FileSystem
	logger ports.Logger
}

// NewConverter creates a converter over the given adapters.
func NewConverter(cfg Config, a Adapters, log ports.Logger) *Converter {
	return &Converter{
		cfg:    cfg,
		orch:   newOrchestrator(cfg, a, log),
		fs:     a.FileSystem,
		logger: log,
	}
}

// SideBySide composites the stereo views of input into outputDir.
// An empty outputDir writes next to the input.
func (c *Converter) SideBySide(ctx context.Context, input, outputDir string) (orchestrator.Result, error) {
	out, depth := CompositeOutputPaths(outputDirFor(outputDir, input), input, c.cfg.Layout)
	if !c.cfg.Depth {
		depth = ""
	}
	return c.orch.ConvertToComposite(ctx, orchestrator.CompositeRequest{
		InputPath:       input,
		OutputPath:      out,
		DepthOutputPath: depth,
		Layout:          c.cfg.Layout,
		Orientation:     c.cfg.Orientation,
		Background:      c.cfg.Background,
	})
}

// Split writes the left, right and depth views of input into outputDir.
func (c *Converter) Split(ctx context.Context, input, outputDir string) (orchestrator.Result, error) {
	left, right, depth := batch.SplitOutputPaths(outputDirFor(outputDir, input), input)
	if !c.cfg.Depth {
		depth = ""
	}
	return c.orch.ConvertSplit(ctx, orchestrator.SplitRequest{
		InputPath: input,
		LeftPath:  left,
		RightPath: right,
		DepthPath: depth,
	})
}

// Batch converts every video in inputDir into outputDir.
func (c *Converter) Batch(ctx context.Context, inputDir, outputDir string, split bool) (*batch.Report, error) {
	if err := c.fs.MkdirAll(outputDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	convert := func(ctx context.Context, input string) (batch.FileOutcome, error) {
		var (
			result orchestrator.Result
			err    error
		)
		if split {
			result, err = c.Split(ctx, input, outputDir)
		} else {
			result, err = c.SideBySide(ctx, input, outputDir)
		}
		return Outcome(result), err
	}

	runner := batch.NewRunner(c.fs, c.cfg.Workers, c.logger)
	return runner.Run(ctx, inputDir, convert)
}

// Outcome converts an orchestrator result into a batch outcome.
func Outcome(r orchestrator.Result) batch.FileOutcome {
	return batch.FileOutcome{
		InputPath:   r.InputPath,
		Outputs:     r.OutputPaths(),
		Frames:      r.Frames,
		DepthAbsent: r.DepthAbsent,
	}
}

// CompositeOutputPaths returns the composite and depth paths for input.
// Overlay outputs use an _overlay suffix.
func CompositeOutputPaths(outputDir, input string, policy pipeline.LayoutPolicy) (out, depth string) {
	out, depth = batch.OutputPaths(outputDir, input)
	if policy == pipeline.LayoutOverlay {
		out = strings.TrimSuffix(out, "_sideBySide.mp4") + "_overlay.mp4"
	}
	return out, depth
}

func outputDirFor(outputDir, input string) string {
	if outputDir != "" {
		return outputDir
	}
	return filepath.Dir(input)
}

// SideBySide converts one file with the default adapters.
func SideBySide(ctx context.Context, input, outputDir string, cfg Config, log ports.Logger) (orchestrator.Result, error) {
	adapters, err := DefaultAdapters(cfg, log)
	if err != nil {
		return orchestrator.Result{}, err
	}
	return NewConverter(cfg, adapters, log).SideBySide(ctx, input, outputDir)
}

// Split converts one file into per-view files with the default adapters.
func Split(ctx context.Context, input, outputDir string, cfg Config, log ports.Logger) (orchestrator.Result, error) {
	adapters, err := DefaultAdapters(cfg, log)
	if err != nil {
		return orchestrator.Result{}, err
	}
	return NewConverter(cfg, adapters, log).Split(ctx, input, outputDir)
}
