// Package layout implements the output geometry calculation stage.
package layout

import (
	"context"
	"fmt"
	"image"

	"github.com/user/stereoshow/pkg/pipeline"
)

// Stage calculates where each view is placed on the output canvas.
// This is a pure function with no external dependencies.
type Stage struct{}

// NewStage creates a new layout stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute calculates the layout based on the input parameters.
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.LayoutDescriptor, error) {
	return ComputeLayout(input)
}

// ComputeLayout performs the layout calculation.
// This is exposed as a standalone function for testing and reuse.
//
// Side-by-side places the left view at the origin and the right view one
// view-width to the right on a (2w, h) canvas. Overlay stacks both views at
// the origin of a (w, h) canvas at OverlayAlpha.
func ComputeLayout(input pipeline.LayoutInput) (pipeline.LayoutDescriptor, error) {
	if input.View.Width <= 0 || input.View.Height <= 0 {
		return pipeline.LayoutDescriptor{}, fmt.Errorf("layout: invalid view extent %dx%d", input.View.Width, input.View.Height)
	}

	orientation := input.Orientation
	if orientation == "" {
		orientation = pipeline.OrientationNone
	}
	if _, err := pipeline.ParseOrientation(string(orientation)); err != nil {
		return pipeline.LayoutDescriptor{}, fmt.Errorf("layout: %w", err)
	}

	view := input.View
	if orientation.SwapsAxes() {
		view = pipeline.Dimension{Width: input.View.Height, Height: input.View.Width}
	}

	switch input.Policy {
	case pipeline.LayoutSideBySide:
		return pipeline.LayoutDescriptor{
			Policy: input.Policy,
			View:   view,
			Canvas: pipeline.Dimension{Width: view.Width * 2, Height: view.Height},
			Placements: []pipeline.Placement{
				{View: pipeline.ViewLeft, Alpha: 1},
				{View: pipeline.ViewRight, Offset: image.Pt(view.Width, 0), Alpha: 1},
			},
		}, nil

	case pipeline.LayoutOverlay:
		return pipeline.LayoutDescriptor{
			Policy: input.Policy,
			View:   view,
			Canvas: view,
			Placements: []pipeline.Placement{
				{View: pipeline.ViewLeft, Alpha: pipeline.OverlayAlpha},
				{View: pipeline.ViewRight, Alpha: pipeline.OverlayAlpha},
			},
		}, nil

	default:
		return pipeline.LayoutDescriptor{}, fmt.Errorf("layout: unknown policy %q", input.Policy)
	}
}
