package composite

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/user/stereoshow/pkg/adapters/ggrenderer"
	"github.com/user/stereoshow/pkg/adapters/logger"
	"github.com/user/stereoshow/pkg/mocks"
	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
)

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func sequence(name pipeline.ViewName, n, w, h int, c color.Color) *pipeline.ViewSequence {
	seq := pipeline.NewViewSequence(name)
	for i := 0; i < n; i++ {
		seq.Append(mocks.SolidImage(w, h, c))
	}
	return seq
}

func drain(t *testing.T, frames pipeline.FrameStream) []image.Image {
	t.Helper()
	var out []image.Image
	for {
		img, ok := frames.Next()
		if !ok {
			break
		}
		out = append(out, img)
	}
	if err := frames.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	return out
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func TestStage_Execute_SideBySide(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:   sequence(pipeline.ViewLeft, 4, 8, 6, red),
		Right:  sequence(pipeline.ViewRight, 4, 8, 6, blue),
		Policy: pipeline.LayoutSideBySide,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Frames.Len() != 4 {
		t.Errorf("expected stream length 4, got %d", result.Frames.Len())
	}
	frames := drain(t, result.Frames)
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Bounds().Dx() != 16 || f.Bounds().Dy() != 6 {
			t.Errorf("frame %d: expected 16x6, got %v", i, f.Bounds())
		}
	}
}

func TestStage_Execute_RedBlueWithRenderer(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	stage := NewStage(ggrenderer.New(), sink, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:   sequence(pipeline.ViewLeft, 3, 10, 10, red),
		Right:  sequence(pipeline.ViewRight, 3, 10, 10, blue),
		Policy: pipeline.LayoutSideBySide,
		Name:   "clip",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := drain(t, result.Frames)
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Bounds().Dx() != 20 || f.Bounds().Dy() != 10 {
			t.Errorf("frame %d: expected 20x10, got %v", i, f.Bounds())
		}
		if c := rgba(f.At(5, 5)); c != red {
			t.Errorf("frame %d: expected red at (5,5), got %v", i, c)
		}
		if c := rgba(f.At(15, 5)); c != blue {
			t.Errorf("frame %d: expected blue at (15,5), got %v", i, c)
		}
	}
	if len(sink.ComposedFrames["clip"]) != 3 {
		t.Errorf("expected 3 debug frames, got %d", len(sink.ComposedFrames["clip"]))
	}
}

func TestStage_Execute_DebugSinkError(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	sink.SaveErr = errors.New("disk full")
	var buf bytes.Buffer
	stage := NewStage(&mocks.Renderer{}, sink, logger.NewConsoleWriter(ports.LevelWarn, &buf))

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:   sequence(pipeline.ViewLeft, 2, 4, 4, red),
		Right:  sequence(pipeline.ViewRight, 2, 4, 4, blue),
		Policy: pipeline.LayoutSideBySide,
		Name:   "clip",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if frames := drain(t, result.Frames); len(frames) != 2 {
		t.Fatalf("debug failures must not drop frames, got %d", len(frames))
	}
	if n := strings.Count(buf.String(), "disk full"); n != 2 {
		t.Errorf("expected 2 warnings, got %d in %q", n, buf.String())
	}
}

func TestStage_Execute_Overlay(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:   sequence(pipeline.ViewLeft, 2, 10, 10, red),
		Right:  sequence(pipeline.ViewRight, 2, 10, 10, blue),
		Policy: pipeline.LayoutOverlay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := drain(t, result.Frames)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Bounds().Dx() != 10 {
		t.Errorf("expected 10 wide overlay canvas, got %v", frames[0].Bounds())
	}
	for _, d := range renderer.Canvases[0].Draws {
		if d.Alpha != pipeline.OverlayAlpha || d.X != 0 || d.Y != 0 {
			t.Errorf("unexpected overlay draw %+v", d)
		}
	}
	c := rgba(frames[0].At(5, 5))
	if c.R == 0 || c.B == 0 {
		t.Errorf("expected both views to contribute, got %v", c)
	}
}

func TestStage_Execute_SizeMismatch(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewDebugSink(false), logger.NewNoop())

	for _, policy := range []pipeline.LayoutPolicy{pipeline.LayoutSideBySide, pipeline.LayoutOverlay} {
		left := sequence(pipeline.ViewLeft, 5, 4, 4, red)
		right := sequence(pipeline.ViewRight, 4, 4, 4, blue)

		result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
			Left: left, Right: right, Policy: policy,
		})

		var mismatch *pipeline.SizeMismatchError
		if !errors.As(err, &mismatch) {
			t.Fatalf("%s: expected SizeMismatchError, got %v", policy, err)
		}
		if mismatch.Left != 5 || mismatch.Right != 4 {
			t.Errorf("%s: unexpected counts %+v", policy, mismatch)
		}
		if result.Frames != nil {
			t.Errorf("%s: expected no frames", policy)
		}
		if left.Len() != 5 {
			t.Errorf("%s: expected views left intact", policy)
		}
	}
	if len(renderer.Canvases) != 0 {
		t.Errorf("expected nothing composed, got %d canvases", len(renderer.Canvases))
	}
}

func TestStage_Execute_EmptyView(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewDebugSink(false), logger.NewNoop())

	_, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:   sequence(pipeline.ViewLeft, 2, 4, 4, red),
		Right:  pipeline.NewViewSequence(pipeline.ViewRight),
		Policy: pipeline.LayoutSideBySide,
	})

	var empty *pipeline.EmptyViewError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyViewError, got %v", err)
	}
	if empty.View != pipeline.ViewRight {
		t.Errorf("expected right view, got %s", empty.View)
	}
}

func TestStage_Execute_Orientation(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:        sequence(pipeline.ViewLeft, 1, 8, 4, red),
		Right:       sequence(pipeline.ViewRight, 1, 8, 4, blue),
		Policy:      pipeline.LayoutSideBySide,
		Orientation: pipeline.OrientationRight,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Layout.Canvas.Width != 8 || result.Layout.Canvas.Height != 8 {
		t.Errorf("expected 8x8 canvas, got %+v", result.Layout.Canvas)
	}

	drain(t, result.Frames)
	if len(renderer.RotateCalls) != 2 || renderer.RotateCalls[0] != 90 {
		t.Errorf("expected two 90 degree rotations, got %v", renderer.RotateCalls)
	}
}

func TestFrameStream_SinglePass(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:   sequence(pipeline.ViewLeft, 2, 2, 2, red),
		Right:  sequence(pipeline.ViewRight, 2, 2, 2, blue),
		Policy: pipeline.LayoutSideBySide,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := len(drain(t, result.Frames)); n != 2 {
		t.Fatalf("expected 2 frames, got %d", n)
	}
	if _, ok := result.Frames.Next(); ok {
		t.Error("expected exhausted stream to stay exhausted")
	}
}

func TestStage_Execute_RotateError(t *testing.T) {
	renderer := &mocks.Renderer{
		RotateFunc: func(img image.Image, degrees int) (image.Image, error) {
			return nil, errors.New("unsupported")
		},
	}
	stage := NewStage(renderer, mocks.NewDebugSink(false), logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.CompositeInput{
		Left:        sequence(pipeline.ViewLeft, 1, 2, 2, red),
		Right:       sequence(pipeline.ViewRight, 1, 2, 2, blue),
		Policy:      pipeline.LayoutSideBySide,
		Orientation: pipeline.OrientationDown,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := result.Frames.Next(); ok {
		t.Error("expected stream to stop")
	}
	if result.Frames.Err() == nil {
		t.Error("expected stream error")
	}
}
