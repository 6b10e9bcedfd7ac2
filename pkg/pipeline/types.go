package pipeline

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/stereoshow/pkg/ports"
)

// =============================================================================
// Common Types
// =============================================================================

// Dimension represents width and height.
type Dimension struct {
	Width  int
	Height int
}

// =============================================================================
// Demux Stage Types
// =============================================================================

// TagMatch decides whether a sample's tags belong to a view.
type TagMatch func(tags ports.TagSet) bool

// HasTag returns a TagMatch that requires tag.
func HasTag(tag ports.Tag) TagMatch {
	return func(tags ports.TagSet) bool {
		return tags.Has(tag)
	}
}

// ViewPredicate routes matching samples to a named view.
type ViewPredicate struct {
	View  ViewName
	Match TagMatch
}

// DefaultStereoPredicates returns the left-eye then right-eye predicates.
func DefaultStereoPredicates() []ViewPredicate {
	return []ViewPredicate{
		{View: ViewLeft, Match: HasTag(ports.TagStereoLeft)},
		{View: ViewRight, Match: HasTag(ports.TagStereoRight)},
	}
}

// DefaultDepthPredicates returns the single depth predicate.
func DefaultDepthPredicates() []ViewPredicate {
	return []ViewPredicate{
		{View: ViewDepth, Match: HasTag(ports.TagDepth)},
	}
}

// DemuxInput contains the source to drain and the predicates in priority order.
type DemuxInput struct {
	Source     ports.FrameSource
	Predicates []ViewPredicate
	Name       string // Keys debug output; the input's base name
}

// DemuxResult contains one sequence per registered view.
type DemuxResult struct {
	Views   map[ViewName]*ViewSequence
	Samples int // Samples read from the source
	Dropped int // Pixel samples that matched no predicate
	Skipped int // Opaque samples that were ignored
}

// =============================================================================
// Layout Stage Types
// =============================================================================

// LayoutPolicy selects how two views are combined.
type LayoutPolicy string

const (
	LayoutSideBySide LayoutPolicy = "side-by-side"
	LayoutOverlay    LayoutPolicy = "overlay"
)

// ParseLayoutPolicy parses a layout policy name.
func ParseLayoutPolicy(s string) (LayoutPolicy, error) {
	switch LayoutPolicy(s) {
	case LayoutSideBySide, LayoutOverlay:
		return LayoutPolicy(s), nil
	case "sbs", "sidebyside":
		return LayoutSideBySide, nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

// OverlayAlpha is the opacity multiplier applied to both views in overlay layout.
const OverlayAlpha = 0.5

// Orientation is a fixed rotation applied to decoded view images before placement.
type Orientation string

const (
	OrientationNone  Orientation = "none"
	OrientationRight Orientation = "right" // 90 degrees clockwise
	OrientationDown  Orientation = "down"  // 180 degrees
	OrientationLeft  Orientation = "left"  // 90 degrees counter-clockwise
)

// ParseOrientation parses an orientation name. The empty string means none.
func ParseOrientation(s string) (Orientation, error) {
	switch Orientation(s) {
	case "", OrientationNone:
		return OrientationNone, nil
	case OrientationRight, OrientationDown, OrientationLeft:
		return Orientation(s), nil
	}
	return "", fmt.Errorf("unknown orientation %q", s)
}

// Degrees returns the clockwise rotation in degrees.
func (o Orientation) Degrees() int {
	switch o {
	case OrientationRight:
		return 90
	case OrientationDown:
		return 180
	case OrientationLeft:
		return 270
	default:
		return 0
	}
}

// SwapsAxes reports whether the rotation exchanges width and height.
func (o Orientation) SwapsAxes() bool {
	return o == OrientationRight || o == OrientationLeft
}

// LayoutInput contains parameters for layout calculation.
type LayoutInput struct {
	View        Dimension // Decoded per-view extent, before orientation correction
	Policy      LayoutPolicy
	Orientation Orientation
}

// Placement positions one view on the output canvas.
type Placement struct {
	View   ViewName
	Offset image.Point
	Alpha  float64
}

// LayoutDescriptor is the derived output geometry.
type LayoutDescriptor struct {
	Policy     LayoutPolicy
	View       Dimension // Per-view extent after orientation correction
	Canvas     Dimension
	Placements []Placement // In drawing order
}

// =============================================================================
// Composite Stage Types
// =============================================================================

// CompositeInput contains the paired view sequences to combine.
type CompositeInput struct {
	Left        *ViewSequence
	Right       *ViewSequence
	Policy      LayoutPolicy
	Orientation Orientation
	Background  color.Color // Canvas fill; nil means black
	Name        string      // Keys debug output; the input's base name
}

// FrameStream is a lazy, finite, single-pass sequence of frames.
type FrameStream interface {
	FrameIterator
	Len() int
}

// CompositeResult contains the layout and the lazily composed frames.
type CompositeResult struct {
	Layout LayoutDescriptor
	Frames FrameStream
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeInput contains parameters for writing one output file.
type EncodeInput struct {
	OutputPath    string
	Width         int
	Height        int
	FrameDuration ports.MediaTime
	Frames        FrameIterator
}

// EncodeResult describes a written output file.
type EncodeResult struct {
	OutputPath    string
	FramesWritten int
	FramesSkipped int
	Duration      ports.MediaTime // FrameDuration times the number of frames submitted
}
