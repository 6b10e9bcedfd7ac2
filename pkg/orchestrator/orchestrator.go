// Package orchestrator sequences the demux, composite and encode stages
// for one input file.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
)

// CompositeRequest describes a stereo to side-by-side or overlay conversion.
type CompositeRequest struct {
	InputPath       string
	OutputPath      string
	DepthOutputPath string // Empty skips the depth pass
	Layout          pipeline.LayoutPolicy
	Orientation     pipeline.Orientation
	Background      color.Color
}

// SplitRequest describes a conversion into one file per view.
type SplitRequest struct {
	InputPath string
	LeftPath  string
	RightPath string
	DepthPath string // Empty skips the depth pass
}

// Result describes the files written for one input.
type Result struct {
	InputPath   string
	Layout      *pipeline.LayoutDescriptor // Set by ConvertToComposite
	Frames      int                        // Frame pairs read from the stereo track
	Outputs     []pipeline.EncodeResult
	DepthAbsent bool
}

// OutputPaths returns the paths of all written files.
func (r Result) OutputPaths() []string {
	paths := make([]string, len(r.Outputs))
	for i, o := range r.Outputs {
		paths[i] = o.OutputPath
	}
	return paths
}

// Orchestrator coordinates the execution of the pipeline stages.
type Orchestrator struct {
	loader         ports.AssetLoader
	demuxStage     pipeline.Stage[pipeline.DemuxInput, pipeline.DemuxResult]
	compositeStage pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult]
	encodeStage    pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult]
	sink           ports.DebugSink
	logger         ports.Logger
}

// New creates a new Orchestrator.
func New(
	loader ports.AssetLoader,
	demuxStage pipeline.Stage[pipeline.DemuxInput, pipeline.DemuxResult],
	compositeStage pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult],
	encodeStage pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult],
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		loader:         loader,
		demuxStage:     demuxStage,
		compositeStage: compositeStage,
		encodeStage:    encodeStage,
		sink:           sink,
		logger:         logger,
	}
}

// ConvertToComposite combines the left and right views of the input's
// stereo track into one output file. Views of different lengths abort the
// conversion before any output is opened.
func (o *Orchestrator) ConvertToComposite(ctx context.Context, req CompositeRequest) (Result, error) {
	result := Result{InputPath: req.InputPath}
	if err := ctx.Err(); err != nil {
		return result, fileError(req.InputPath, err)
	}

	o.logger.Info("Converting %s to %s (%s)", req.InputPath, req.OutputPath, req.Layout)

	asset, err := o.loader.Load(req.InputPath)
	if err != nil {
		return result, o.fail(req.InputPath, "load", err)
	}
	defer asset.Close()

	track, err := stereoTrack(asset)
	if err != nil {
		return result, o.fail(req.InputPath, "find stereo track", err)
	}

	left, right, err := o.demuxStereo(ctx, asset, track, req.InputPath)
	if err != nil {
		return result, o.fail(req.InputPath, "demultiplex", err)
	}
	result.Frames = left.Len()

	composite, err := o.compositeStage.Execute(ctx, pipeline.CompositeInput{
		Left:        left,
		Right:       right,
		Policy:      req.Layout,
		Orientation: req.Orientation,
		Background:  req.Background,
		Name:        baseName(req.InputPath),
	})
	if err != nil {
		return result, o.fail(req.InputPath, "composite", err)
	}
	result.Layout = &composite.Layout
	o.saveLayout(req.InputPath, composite.Layout)

	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		OutputPath:    req.OutputPath,
		Width:         composite.Layout.Canvas.Width,
		Height:        composite.Layout.Canvas.Height,
		FrameDuration: track.FrameDuration,
		Frames:        composite.Frames,
	})
	result.Outputs = append(result.Outputs, encoded)
	if err != nil {
		return result, o.fail(req.InputPath, "encode", err)
	}
	o.logger.Info("Wrote %s (%d frames, %s)", encoded.OutputPath, encoded.FramesWritten, encoded.Duration.Duration())

	if req.DepthOutputPath != "" {
		if err := o.convertDepth(ctx, asset, req.DepthOutputPath, &result); err != nil {
			return result, o.fail(req.InputPath, "encode depth", err)
		}
	}

	return result, nil
}

// ConvertSplit writes the left, right and depth views to separate files.
// A missing depth track is reported in the result, not as an error.
func (o *Orchestrator) ConvertSplit(ctx context.Context, req SplitRequest) (Result, error) {
	result := Result{InputPath: req.InputPath}
	if err := ctx.Err(); err != nil {
		return result, fileError(req.InputPath, err)
	}

	o.logger.Info("Splitting %s", req.InputPath)

	asset, err := o.loader.Load(req.InputPath)
	if err != nil {
		return result, o.fail(req.InputPath, "load", err)
	}
	defer asset.Close()

	track, err := stereoTrack(asset)
	if err != nil {
		return result, o.fail(req.InputPath, "find stereo track", err)
	}

	left, right, err := o.demuxStereo(ctx, asset, track, req.InputPath)
	if err != nil {
		return result, o.fail(req.InputPath, "demultiplex", err)
	}
	result.Frames = left.Len()

	for _, view := range []struct {
		seq  *pipeline.ViewSequence
		path string
	}{
		{left, req.LeftPath},
		{right, req.RightPath},
	} {
		encoded, err := o.encodeSequence(ctx, view.seq, view.path, track.FrameDuration)
		result.Outputs = append(result.Outputs, encoded)
		if err != nil {
			return result, o.fail(req.InputPath, fmt.Sprintf("encode %s view", view.seq.Name()), err)
		}
	}

	if req.DepthPath != "" {
		if err := o.convertDepth(ctx, asset, req.DepthPath, &result); err != nil {
			return result, o.fail(req.InputPath, "encode depth", err)
		}
	}

	return result, nil
}

// convertDepth encodes the depth track, or marks it absent.
func (o *Orchestrator) convertDepth(ctx context.Context, asset ports.Asset, path string, result *Result) error {
	track, ok := asset.DepthTrack()
	if !ok {
		result.DepthAbsent = true
		o.logger.Info("No depth track in %s", result.InputPath)
		return nil
	}

	views, err := o.demux(ctx, asset, track, pipeline.DefaultDepthPredicates(), result.InputPath)
	if err != nil {
		return err
	}
	depth := views[pipeline.ViewDepth]
	if depth.Len() == 0 {
		result.DepthAbsent = true
		o.logger.Info("No depth track in %s", result.InputPath)
		return nil
	}

	encoded, err := o.encodeSequence(ctx, depth, path, track.FrameDuration)
	result.Outputs = append(result.Outputs, encoded)
	return err
}

func (o *Orchestrator) encodeSequence(ctx context.Context, seq *pipeline.ViewSequence, path string, frameDuration ports.MediaTime) (pipeline.EncodeResult, error) {
	b := seq.At(0).Bounds()
	encoded, err := o.encodeStage.Execute(ctx, pipeline.EncodeInput{
		OutputPath:    path,
		Width:         b.Dx(),
		Height:        b.Dy(),
		FrameDuration: frameDuration,
		Frames:        seq.Drain(),
	})
	if err != nil {
		return encoded, err
	}
	o.logger.Info("Wrote %s (%d frames, %s)", encoded.OutputPath, encoded.FramesWritten, encoded.Duration.Duration())
	return encoded, nil
}

// demuxStereo returns the left and right views. Both must hold frames.
func (o *Orchestrator) demuxStereo(ctx context.Context, asset ports.Asset, track ports.TrackInfo, inputPath string) (*pipeline.ViewSequence, *pipeline.ViewSequence, error) {
	views, err := o.demux(ctx, asset, track, pipeline.DefaultStereoPredicates(), inputPath)
	if err != nil {
		return nil, nil, err
	}

	left, right := views[pipeline.ViewLeft], views[pipeline.ViewRight]
	for _, seq := range []*pipeline.ViewSequence{left, right} {
		if seq.Len() == 0 {
			return nil, nil, &pipeline.InputAbsentError{What: fmt.Sprintf("%s view frames", seq.Name())}
		}
	}
	return left, right, nil
}

func (o *Orchestrator) demux(ctx context.Context, asset ports.Asset, track ports.TrackInfo, predicates []pipeline.ViewPredicate, inputPath string) (map[pipeline.ViewName]*pipeline.ViewSequence, error) {
	source, err := asset.OpenSource(track)
	if err != nil {
		return nil, fmt.Errorf("open track %d: %w", track.ID, err)
	}
	defer source.Close()

	result, err := o.demuxStage.Execute(ctx, pipeline.DemuxInput{
		Source:     source,
		Predicates: predicates,
		Name:       baseName(inputPath),
	})
	if err != nil {
		return nil, err
	}
	return result.Views, nil
}

// stereoTrack returns the asset's stereo track with a usable frame duration.
func stereoTrack(asset ports.Asset) (ports.TrackInfo, error) {
	track, ok := asset.StereoTrack()
	if !ok {
		return track, &pipeline.InputAbsentError{What: "stereo track"}
	}
	if len(track.ViewTags) < 2 {
		return track, &pipeline.InputAbsentError{What: "stereo view tags"}
	}
	if !track.FrameDuration.IsValid() || track.FrameDuration.Value <= 0 {
		return track, fmt.Errorf("track %d has no frame duration", track.ID)
	}
	return track, nil
}

func (o *Orchestrator) saveLayout(inputPath string, layout pipeline.LayoutDescriptor) {
	if !o.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return
	}
	if err := o.sink.SaveLayoutJSON(baseName(inputPath), data); err != nil {
		o.logger.Warn("Failed to save debug output: %v", err)
	}
}

// baseName keys debug output by input file.
func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func (o *Orchestrator) fail(path, step string, err error) error {
	o.logger.Error("Failed to %s %s: %v", step, path, err)
	return fileError(path, fmt.Errorf("%s: %w", step, err))
}

func fileError(path string, err error) error {
	return &pipeline.FileError{Path: path, Err: err}
}
