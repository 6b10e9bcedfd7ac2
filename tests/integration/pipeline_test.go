// Package integration runs the conversion pipeline with real adapters and a
// synthetic stereo source.
package integration

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/stereoshow/pkg/adapters/ffmpegsource"
	"github.com/user/stereoshow/pkg/adapters/ggrenderer"
	"github.com/user/stereoshow/pkg/adapters/h264encoder"
	"github.com/user/stereoshow/pkg/adapters/logger"
	"github.com/user/stereoshow/pkg/adapters/mp4probe"
	"github.com/user/stereoshow/pkg/adapters/nullsink"
	"github.com/user/stereoshow/pkg/adapters/osfilesystem"
	"github.com/user/stereoshow/pkg/mocks"
	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
	"github.com/user/stereoshow/pkg/stereoshow"
)

var (
	red   = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	blue  = color.RGBA{R: 40, G: 40, B: 220, A: 255}
	gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	frame = ports.MediaTime{Value: 1001, Timescale: 30000}
)

const (
	viewWidth  = 64
	viewHeight = 48
)

func skipWithoutFFmpeg(t *testing.T) {
	t.Helper()
	if !h264encoder.IsFFmpegAvailable() {
		t.Skip("ffmpeg not available")
	}
}

// syntheticLoader returns a fresh stereo asset with n frame pairs and,
// when depthFrames > 0, a depth track on every Load.
func syntheticLoader(n, depthFrames int) *mocks.AssetLoader {
	return &mocks.AssetLoader{
		LoadFunc: func(path string) (ports.Asset, error) {
			a := &mocks.Asset{
				PathValue: path,
				Stereo:    mocks.StereoTrack(viewWidth, viewHeight, frame),
				Sources: map[uint32]ports.FrameSource{
					1: mocks.NewFrameSource(mocks.StereoSamples(n, viewWidth, viewHeight, red, blue)...),
				},
			}
			if depthFrames > 0 {
				a.Depth = mocks.DepthTrack(viewWidth/2, viewHeight/2, frame)
				samples := make([]ports.Sample, depthFrames)
				for i := range samples {
					samples[i] = mocks.PixelSample(viewWidth/2, viewHeight/2, gray, ports.TagDepth)
				}
				a.Sources[a.Depth.ID] = mocks.NewFrameSource(samples...)
			}
			return a, nil
		},
	}
}

func newConverter(cfg stereoshow.Config, loader ports.AssetLoader) *stereoshow.Converter {
	log := logger.NewNoop()
	return stereoshow.NewConverter(cfg, stereoshow.Adapters{
		Loader:     loader,
		Encoder:    h264encoder.New("", log),
		FileSystem: osfilesystem.New(),
		Renderer:   ggrenderer.New(),
		Sink:       nullsink.New(),
	}, log)
}

func readTimeline(t *testing.T, path string) *mp4probe.Timeline {
	t.Helper()
	tl, err := mp4probe.ReadTimeline(path)
	if err != nil {
		t.Fatalf("ReadTimeline(%s) failed: %v", path, err)
	}
	return tl
}

// checkTimeline verifies n samples at i times the frame duration.
func checkTimeline(t *testing.T, tl *mp4probe.Timeline, n int) {
	t.Helper()
	if len(tl.Samples) != n {
		t.Fatalf("expected %d samples, got %d", n, len(tl.Samples))
	}
	for i := 0; i < n; i++ {
		pts := tl.PresentationTime(i)
		if pts.Duration() != frame.Mul(int64(i)).Duration() {
			t.Errorf("sample %d: expected %s, got %s", i, frame.Mul(int64(i)), pts)
		}
	}
}

func TestSideBySideToMP4(t *testing.T) {
	skipWithoutFFmpeg(t)

	outDir := t.TempDir()
	conv := newConverter(stereoshow.NewConfigBuilder().WithDepth(false).Build(), syntheticLoader(12, 0))

	result, err := conv.SideBySide(context.Background(), "clip.mov", outDir)
	if err != nil {
		t.Fatalf("SideBySide failed: %v", err)
	}

	out := filepath.Join(outDir, "clip_sideBySide.mp4")
	if got := result.OutputPaths(); !reflect.DeepEqual(got, []string{out}) {
		t.Fatalf("unexpected outputs %v", got)
	}

	tl := readTimeline(t, out)
	if tl.Width != 2*viewWidth || tl.Height != viewHeight {
		t.Errorf("expected %dx%d, got %dx%d", 2*viewWidth, viewHeight, tl.Width, tl.Height)
	}
	checkTimeline(t, tl, 12)
}

func TestRerunReplacesOutput(t *testing.T) {
	skipWithoutFFmpeg(t)

	outDir := t.TempDir()
	cfg := stereoshow.NewConfigBuilder().WithDepth(false).Build()
	out := filepath.Join(outDir, "clip_sideBySide.mp4")

	if _, err := newConverter(cfg, syntheticLoader(10, 0)).SideBySide(context.Background(), "clip.mov", outDir); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := readTimeline(t, out)

	if _, err := newConverter(cfg, syntheticLoader(10, 0)).SideBySide(context.Background(), "clip.mov", outDir); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	second := readTimeline(t, out)

	if !reflect.DeepEqual(first.Samples, second.Samples) {
		t.Error("expected identical timelines across runs")
	}
}

func TestOverlayToMP4(t *testing.T) {
	skipWithoutFFmpeg(t)

	outDir := t.TempDir()
	cfg := stereoshow.NewConfigBuilder().
		WithLayout(pipeline.LayoutOverlay).
		WithDepth(false).
		Build()

	if _, err := newConverter(cfg, syntheticLoader(6, 0)).SideBySide(context.Background(), "clip.mov", outDir); err != nil {
		t.Fatalf("overlay failed: %v", err)
	}

	tl := readTimeline(t, filepath.Join(outDir, "clip_overlay.mp4"))
	if tl.Width != viewWidth || tl.Height != viewHeight {
		t.Errorf("expected %dx%d, got %dx%d", viewWidth, viewHeight, tl.Width, tl.Height)
	}
	checkTimeline(t, tl, 6)
}

func TestSplitWithDepthToMP4(t *testing.T) {
	skipWithoutFFmpeg(t)

	outDir := t.TempDir()
	conv := newConverter(stereoshow.DefaultConfig(), syntheticLoader(8, 8))

	result, err := conv.Split(context.Background(), "clip.mov", outDir)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if result.DepthAbsent {
		t.Error("expected depth output")
	}

	for _, name := range []string{"clip_left.mp4", "clip_right.mp4"} {
		tl := readTimeline(t, filepath.Join(outDir, name))
		if tl.Width != viewWidth || tl.Height != viewHeight {
			t.Errorf("%s: expected %dx%d, got %dx%d", name, viewWidth, viewHeight, tl.Width, tl.Height)
		}
		checkTimeline(t, tl, 8)
	}

	depth := readTimeline(t, filepath.Join(outDir, "clip_depth.mp4"))
	if depth.Width != viewWidth/2 || depth.Height != viewHeight/2 {
		t.Errorf("depth: expected %dx%d, got %dx%d", viewWidth/2, viewHeight/2, depth.Width, depth.Height)
	}
	checkTimeline(t, depth, 8)
}

func TestBatchToMP4(t *testing.T) {
	skipWithoutFFmpeg(t)

	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	for _, name := range []string{"a.mov", "b.MP4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inDir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := stereoshow.NewConfigBuilder().WithDepth(false).WithWorkers(2).Build()
	report, err := newConverter(cfg, syntheticLoader(4, 0)).Batch(context.Background(), inDir, outDir, false)
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}

	if report.Succeeded() != 2 || report.Failed() != 0 {
		t.Fatalf("expected 2 succeeded, got %d succeeded and %d failed", report.Succeeded(), report.Failed())
	}
	for _, name := range []string{"a_sideBySide.mp4", "b_sideBySide.mp4"} {
		checkTimeline(t, readTimeline(t, filepath.Join(outDir, name)), 4)
	}
}

// A single-view file has no stereo track, so the real loader reports the
// input as absent.
func TestMonoInputIsAbsent(t *testing.T) {
	skipWithoutFFmpeg(t)

	dir := t.TempDir()
	mono := filepath.Join(dir, "mono_sideBySide.mp4")
	if _, err := newConverter(stereoshow.NewConfigBuilder().WithDepth(false).Build(), syntheticLoader(3, 0)).
		SideBySide(context.Background(), "mono.mov", dir); err != nil {
		t.Fatalf("preparing input failed: %v", err)
	}

	log := logger.NewNoop()
	conv := newConverter(stereoshow.DefaultConfig(), ffmpegsource.NewLoader("", log))

	_, err := conv.SideBySide(context.Background(), mono, t.TempDir())
	if err == nil {
		t.Fatal("expected error for mono input")
	}
	if kind := pipeline.KindOf(err); kind != pipeline.KindInputAbsent {
		t.Errorf("expected input-absent, got %s", kind)
	}
}
