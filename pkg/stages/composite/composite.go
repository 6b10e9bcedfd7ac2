// Package composite implements the frame composition stage.
package composite

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
	"github.com/user/stereoshow/pkg/stages/layout"
)

// Stage combines paired left/right view frames into single output frames.
type Stage struct {
	renderer ports.Renderer
	sink     ports.DebugSink
	logger   ports.Logger
}

// NewStage creates a new composite stage.
func NewStage(renderer ports.Renderer, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		sink:     sink,
		logger:   logger.WithComponent("composite"),
	}
}

// Execute validates the paired views and returns a lazy stream of composed
// frames. Nothing is composed when validation fails. On success the view
// sequences are drained into the stream.
func (s *Stage) Execute(ctx context.Context, input pipeline.CompositeInput) (pipeline.CompositeResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.CompositeResult{}, err
	}

	if err := Validate(input.Left, input.Right); err != nil {
		return pipeline.CompositeResult{}, err
	}

	first := input.Left.At(0).Bounds()
	desc, err := layout.ComputeLayout(pipeline.LayoutInput{
		View:        pipeline.Dimension{Width: first.Dx(), Height: first.Dy()},
		Policy:      input.Policy,
		Orientation: input.Orientation,
	})
	if err != nil {
		return pipeline.CompositeResult{}, err
	}

	bg := input.Background
	if bg == nil {
		bg = color.Black
	}

	n := input.Left.Len()
	s.logger.Debug("Compositing %d frame pairs (%s, %dx%d)", n, desc.Policy, desc.Canvas.Width, desc.Canvas.Height)

	return pipeline.CompositeResult{
		Layout: desc,
		Frames: &FrameStream{
			stage:       s,
			layout:      desc,
			orientation: input.Orientation,
			background:  bg,
			name:        input.Name,
			left:        input.Left.Drain(),
			right:       input.Right.Drain(),
			total:       n,
		},
	}, nil
}

// Validate checks that both views are non-empty and of equal length.
func Validate(left, right *pipeline.ViewSequence) error {
	if left.Len() == 0 {
		return &pipeline.EmptyViewError{View: pipeline.ViewLeft}
	}
	if right.Len() == 0 {
		return &pipeline.EmptyViewError{View: pipeline.ViewRight}
	}
	if left.Len() != right.Len() {
		return &pipeline.SizeMismatchError{Left: left.Len(), Right: right.Len()}
	}
	return nil
}

// FrameStream composes frame i on the i-th call to Next.
// It is single pass: once exhausted it keeps returning false.
type FrameStream struct {
	stage       *Stage
	layout      pipeline.LayoutDescriptor
	orientation pipeline.Orientation
	background  color.Color
	name        string
	left        *pipeline.SequenceIterator
	right       *pipeline.SequenceIterator
	total       int
	index       int
	err         error
}

// Next composes and returns the next frame.
func (f *FrameStream) Next() (image.Image, bool) {
	if f.err != nil || f.index >= f.total {
		return nil, false
	}

	l, okL := f.left.Next()
	r, okR := f.right.Next()
	if !okL || !okR {
		f.err = fmt.Errorf("composite: view ended at frame %d of %d", f.index, f.total)
		return nil, false
	}

	frame, err := f.stage.composeFrame(f.layout, f.orientation, f.background, l, r)
	if err != nil {
		f.err = fmt.Errorf("compose frame %d: %w", f.index, err)
		return nil, false
	}

	if f.stage.sink.Enabled() {
		if err := f.stage.sink.SaveComposedFrame(f.name, f.index, frame); err != nil {
			f.stage.logger.Warn("Failed to save debug output: %v", err)
		}
	}

	f.index++
	return frame, true
}

// Len returns the number of frames the stream yields in total.
func (f *FrameStream) Len() int {
	return f.total
}

// Err returns the error that ended the stream early, if any.
func (f *FrameStream) Err() error {
	return f.err
}

// composeFrame draws one pair of view frames according to the layout.
func (s *Stage) composeFrame(desc pipeline.LayoutDescriptor, orientation pipeline.Orientation, bg color.Color, left, right image.Image) (image.Image, error) {
	views := map[pipeline.ViewName]image.Image{
		pipeline.ViewLeft:  left,
		pipeline.ViewRight: right,
	}

	if deg := orientation.Degrees(); deg != 0 {
		for name, img := range views {
			rotated, err := s.renderer.Rotate(img, deg)
			if err != nil {
				return nil, fmt.Errorf("rotate %s view: %w", name, err)
			}
			views[name] = rotated
		}
	}

	canvas := s.renderer.CreateCanvas(desc.Canvas.Width, desc.Canvas.Height, bg)
	for _, p := range desc.Placements {
		img := views[p.View]
		if p.Alpha >= 1 {
			canvas.DrawImage(img, p.Offset.X, p.Offset.Y)
		} else {
			canvas.DrawImageAlpha(img, p.Offset.X, p.Offset.Y, p.Alpha)
		}
	}

	return canvas.ToImage(), nil
}

var _ pipeline.Stage[pipeline.CompositeInput, pipeline.CompositeResult] = (*Stage)(nil)
var _ pipeline.FrameStream = (*FrameStream)(nil)
