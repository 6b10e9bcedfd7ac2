package orchestrator

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/user/stereoshow/pkg/adapters/logger"
	"github.com/user/stereoshow/pkg/mocks"
	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
	"github.com/user/stereoshow/pkg/stages/composite"
	"github.com/user/stereoshow/pkg/stages/demux"
	"github.com/user/stereoshow/pkg/stages/encode"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	frame = ports.MediaTime{Value: 1001, Timescale: 30000}
)

type fixture struct {
	orch    *Orchestrator
	loader  *mocks.AssetLoader
	encoder *mocks.VideoEncoder
	sink    *mocks.DebugSink
}

func newFixture(assets ...*mocks.Asset) *fixture {
	log := logger.NewNoop()
	renderer := &mocks.Renderer{}
	sink := mocks.NewDebugSink(true)
	encoder := &mocks.VideoEncoder{}
	loader := &mocks.AssetLoader{Assets: map[string]*mocks.Asset{}}
	for _, a := range assets {
		loader.Assets[a.PathValue] = a
	}

	orch := New(
		loader,
		demux.NewStage(&mocks.NullSink{}, log),
		composite.NewStage(renderer, &mocks.NullSink{}, log),
		encode.NewStage(encoder, mocks.NewFileSystem(), renderer, log, encode.SinkOptions{}),
		sink,
		log,
	)
	return &fixture{orch: orch, loader: loader, encoder: encoder, sink: sink}
}

func stereoAsset(path string, samples []ports.Sample) *mocks.Asset {
	return &mocks.Asset{
		PathValue: path,
		Stereo:    mocks.StereoTrack(10, 10, frame),
		Sources:   map[uint32]ports.FrameSource{1: mocks.NewFrameSource(samples...)},
	}
}

func withDepth(a *mocks.Asset, n int) *mocks.Asset {
	a.Depth = mocks.DepthTrack(8, 6, frame)
	samples := make([]ports.Sample, n)
	for i := range samples {
		samples[i] = mocks.PixelSample(8, 6, gray, ports.TagDepth)
	}
	a.Sources[a.Depth.ID] = mocks.NewFrameSource(samples...)
	return a
}

func TestConvertToComposite_SideBySide(t *testing.T) {
	f := newFixture(stereoAsset("in/clip.mov", mocks.StereoSamples(3, 10, 10, red, blue)))

	result, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:  "in/clip.mov",
		OutputPath: "out/clip_sideBySide.mp4",
		Layout:     pipeline.LayoutSideBySide,
	})
	if err != nil {
		t.Fatalf("ConvertToComposite failed: %v", err)
	}

	if result.Frames != 3 {
		t.Errorf("expected 3 frame pairs, got %d", result.Frames)
	}
	if result.Layout == nil || result.Layout.Canvas != (pipeline.Dimension{Width: 20, Height: 10}) {
		t.Errorf("expected 20x10 canvas, got %+v", result.Layout)
	}

	if len(f.encoder.OpenCalls) != 1 {
		t.Fatalf("expected 1 encoder session, got %d", len(f.encoder.OpenCalls))
	}
	call := f.encoder.OpenCalls[0]
	if call.Path != "out/clip_sideBySide.mp4" || call.Width != 20 || call.Height != 10 {
		t.Errorf("unexpected encoder open: %+v", call)
	}
	if call.Opts.FrameDuration != frame {
		t.Errorf("expected frame duration %s, got %s", frame, call.Opts.FrameDuration)
	}

	pts := f.encoder.Sessions[0].PTS
	if len(pts) != 3 {
		t.Fatalf("expected 3 frames submitted, got %d", len(pts))
	}
	for i, p := range pts {
		if p != frame.Mul(int64(i)) {
			t.Errorf("frame %d: expected PTS %s, got %s", i, frame.Mul(int64(i)), p)
		}
	}

	if _, ok := f.sink.LayoutJSON["clip"]; !ok {
		t.Error("expected layout JSON in debug sink")
	}
	if got := result.OutputPaths(); len(got) != 1 || got[0] != "out/clip_sideBySide.mp4" {
		t.Errorf("unexpected outputs %v", got)
	}
}

func TestConvertToComposite_SizeMismatch(t *testing.T) {
	samples := mocks.StereoSamples(4, 10, 10, red, blue)
	samples = append(samples, mocks.PixelSample(10, 10, red, ports.TagStereoLeft))
	f := newFixture(stereoAsset("clip.mov", samples))

	_, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:  "clip.mov",
		OutputPath: "clip_sideBySide.mp4",
		Layout:     pipeline.LayoutSideBySide,
	})

	var mismatch *pipeline.SizeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected SizeMismatchError, got %v", err)
	}
	if mismatch.Left != 5 || mismatch.Right != 4 {
		t.Errorf("expected 5 vs 4, got %d vs %d", mismatch.Left, mismatch.Right)
	}
	if pipeline.KindOf(err) != pipeline.KindInputMalformed {
		t.Errorf("expected input-malformed, got %s", pipeline.KindOf(err))
	}

	var fileErr *pipeline.FileError
	if !errors.As(err, &fileErr) || fileErr.Path != "clip.mov" {
		t.Errorf("expected FileError for clip.mov, got %v", err)
	}
	if len(f.encoder.OpenCalls) != 0 {
		t.Errorf("expected no output to be opened, got %v", f.encoder.Paths())
	}
}

func TestConvertToComposite_EmptyView(t *testing.T) {
	samples := []ports.Sample{
		mocks.PixelSample(10, 10, red, ports.TagStereoLeft),
		mocks.PixelSample(10, 10, red, ports.TagStereoLeft),
	}
	f := newFixture(stereoAsset("clip.mov", samples))

	_, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:  "clip.mov",
		OutputPath: "clip_sideBySide.mp4",
		Layout:     pipeline.LayoutSideBySide,
	})

	var absent *pipeline.InputAbsentError
	if !errors.As(err, &absent) {
		t.Fatalf("expected InputAbsentError, got %v", err)
	}
	if pipeline.KindOf(err) != pipeline.KindInputAbsent {
		t.Errorf("expected input-absent, got %s", pipeline.KindOf(err))
	}
	if len(f.encoder.OpenCalls) != 0 {
		t.Errorf("expected no output to be opened, got %v", f.encoder.Paths())
	}
}

func TestConvertToComposite_NoStereoTrack(t *testing.T) {
	f := newFixture(&mocks.Asset{PathValue: "mono.mp4"})

	_, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:  "mono.mp4",
		OutputPath: "mono_sideBySide.mp4",
		Layout:     pipeline.LayoutSideBySide,
	})
	if pipeline.KindOf(err) != pipeline.KindInputAbsent {
		t.Errorf("expected input-absent, got %v", err)
	}
}

func TestConvertToComposite_MissingViewTags(t *testing.T) {
	asset := stereoAsset("clip.mov", mocks.StereoSamples(2, 10, 10, red, blue))
	asset.Stereo.ViewTags = []ports.Tag{ports.TagStereoLeft}
	f := newFixture(asset)

	_, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:  "clip.mov",
		OutputPath: "clip_sideBySide.mp4",
		Layout:     pipeline.LayoutSideBySide,
	})
	if pipeline.KindOf(err) != pipeline.KindInputAbsent {
		t.Errorf("expected input-absent, got %v", err)
	}
	if len(asset.OpenedTracks) != 0 {
		t.Error("expected no source to be opened")
	}
}

func TestConvertToComposite_OverlayWithDepth(t *testing.T) {
	asset := withDepth(stereoAsset("clip.mov", mocks.StereoSamples(2, 10, 10, red, blue)), 2)
	f := newFixture(asset)

	result, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:       "clip.mov",
		OutputPath:      "clip_overlay.mp4",
		DepthOutputPath: "clip_depth.mp4",
		Layout:          pipeline.LayoutOverlay,
	})
	if err != nil {
		t.Fatalf("ConvertToComposite failed: %v", err)
	}

	if result.DepthAbsent {
		t.Error("expected depth to be present")
	}
	if len(f.encoder.OpenCalls) != 2 {
		t.Fatalf("expected 2 encoder sessions, got %d", len(f.encoder.OpenCalls))
	}
	if c := f.encoder.OpenCalls[0]; c.Width != 10 || c.Height != 10 {
		t.Errorf("expected 10x10 overlay, got %dx%d", c.Width, c.Height)
	}
	if c := f.encoder.OpenCalls[1]; c.Path != "clip_depth.mp4" || c.Width != 8 || c.Height != 6 {
		t.Errorf("unexpected depth output: %+v", c)
	}
	if !asset.CloseCalled {
		t.Error("expected asset to be closed")
	}
}

func TestConvertSplit_DepthAbsent(t *testing.T) {
	f := newFixture(stereoAsset("clip.mov", mocks.StereoSamples(3, 10, 10, red, blue)))

	result, err := f.orch.ConvertSplit(context.Background(), SplitRequest{
		InputPath: "clip.mov",
		LeftPath:  "clip_left.mp4",
		RightPath: "clip_right.mp4",
		DepthPath: "clip_depth.mp4",
	})
	if err != nil {
		t.Fatalf("ConvertSplit failed: %v", err)
	}

	if !result.DepthAbsent {
		t.Error("expected DepthAbsent to be reported")
	}
	paths := f.encoder.Paths()
	if len(paths) != 2 || paths[0] != "clip_left.mp4" || paths[1] != "clip_right.mp4" {
		t.Errorf("unexpected outputs %v", paths)
	}
	for i, s := range f.encoder.Sessions {
		if len(s.PTS) != 3 {
			t.Errorf("output %d: expected 3 frames, got %d", i, len(s.PTS))
		}
	}
}

func TestConvertSplit_WithDepth(t *testing.T) {
	f := newFixture(withDepth(stereoAsset("clip.mov", mocks.StereoSamples(3, 10, 10, red, blue)), 3))

	result, err := f.orch.ConvertSplit(context.Background(), SplitRequest{
		InputPath: "clip.mov",
		LeftPath:  "clip_left.mp4",
		RightPath: "clip_right.mp4",
		DepthPath: "clip_depth.mp4",
	})
	if err != nil {
		t.Fatalf("ConvertSplit failed: %v", err)
	}

	if result.DepthAbsent {
		t.Error("expected depth to be present")
	}
	if len(result.Outputs) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(result.Outputs))
	}
	if result.Outputs[2].FramesWritten != 3 {
		t.Errorf("expected 3 depth frames, got %d", result.Outputs[2].FramesWritten)
	}
	if result.Outputs[0].Duration != frame.Mul(3) {
		t.Errorf("expected duration %s, got %s", frame.Mul(3), result.Outputs[0].Duration)
	}
}

func TestConvert_EncoderTerminal(t *testing.T) {
	f := newFixture(stereoAsset("clip.mov", mocks.StereoSamples(2, 10, 10, red, blue)))
	f.encoder.NewSession = func(path string, width, height int, opts ports.EncoderOptions) *mocks.EncoderSession {
		s := mocks.NewEncoderSession(width, height, 4)
		s.FinishErr = errors.New("ffmpeg exited with status 1")
		return s
	}

	_, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{
		InputPath:  "clip.mov",
		OutputPath: "clip_sideBySide.mp4",
		Layout:     pipeline.LayoutSideBySide,
	})
	if pipeline.KindOf(err) != pipeline.KindEncoderTerminal {
		t.Errorf("expected encoder-terminal, got %v", err)
	}
}

func TestConvert_Cancelled(t *testing.T) {
	f := newFixture(stereoAsset("clip.mov", mocks.StereoSamples(2, 10, 10, red, blue)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.ConvertSplit(ctx, SplitRequest{InputPath: "clip.mov", LeftPath: "l.mp4", RightPath: "r.mp4"})
	if pipeline.KindOf(err) != pipeline.KindCancelled {
		t.Errorf("expected cancelled, got %v", err)
	}
	if len(f.loader.LoadedPaths) != 0 {
		t.Error("expected no asset to be loaded")
	}
}

func TestConvert_LoadError(t *testing.T) {
	f := newFixture()
	f.loader.LoadFunc = func(path string) (ports.Asset, error) {
		return nil, errors.New("no moov box found")
	}

	_, err := f.orch.ConvertToComposite(context.Background(), CompositeRequest{InputPath: "bad.mp4", Layout: pipeline.LayoutSideBySide})

	var fileErr *pipeline.FileError
	if !errors.As(err, &fileErr) || fileErr.Path != "bad.mp4" {
		t.Errorf("expected FileError for bad.mp4, got %v", err)
	}
}
