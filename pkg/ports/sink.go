package ports

import (
	"image"
)

// DebugSink abstracts debug output for intermediate results.
// It allows saving intermediate processing results for debugging purposes.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveLayoutJSON saves the computed layout descriptor as JSON.
	SaveLayoutJSON(name string, data []byte) error

	// SaveViewFrame saves a demultiplexed frame of one view. Frames are
	// keyed by name so concurrent conversions never share a path.
	SaveViewFrame(name, view string, index int, img image.Image) error

	// SaveComposedFrame saves a composed frame of the named conversion.
	SaveComposedFrame(name string, index int, img image.Image) error
}
