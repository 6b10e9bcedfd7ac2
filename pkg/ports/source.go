// Package ports defines the interfaces between the conversion pipeline and
// its external collaborators: decoders, encoders, filesystem, rendering and logging.
package ports

import (
	"fmt"
	"image"
)

// Tag identifies the logical view a decoded buffer belongs to.
type Tag string

// Well-known view tags attached by frame sources.
const (
	TagStereoLeft  Tag = "stereo-left"
	TagStereoRight Tag = "stereo-right"
	TagDepth       Tag = "depth"
)

// LayerTag returns the tag for the n-th video layer of a multiview track.
func LayerTag(n int) Tag {
	return Tag(fmt.Sprintf("layer-%d", n))
}

// TagSet is the set of tags carried by one sample.
type TagSet []Tag

// Has reports whether the set contains tag.
func (s TagSet) Has(tag Tag) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// Payload is the content of a decoded sample.
// The set of implementations is closed: PixelPayload and OpaquePayload.
type Payload interface {
	isPayload()
}

// PixelPayload carries a decoded image.
type PixelPayload struct {
	Image image.Image
}

// OpaquePayload carries a sample that has no pixel data, such as a
// non-video buffer or a truncated frame.
type OpaquePayload struct {
	Kind string
	Data []byte
}

func (PixelPayload) isPayload()  {}
func (OpaquePayload) isPayload() {}

// Sample is one decoded buffer with its view tags.
type Sample struct {
	Ordinal int // Position in the source stream, starting at 0
	Payload Payload
	Tags    TagSet
}

// FrameSource yields decoded samples of one track in stream order.
type FrameSource interface {
	// Next returns the next sample. It returns false once the stream is exhausted.
	Next() (Sample, bool, error)

	// Close releases decoder resources.
	Close() error
}
