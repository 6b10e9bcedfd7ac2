package pipeline

import (
	"image"
)

// ViewName names a logical view of a multiview track.
type ViewName string

const (
	ViewLeft  ViewName = "left"
	ViewRight ViewName = "right"
	ViewDepth ViewName = "depth"
)

// FrameIterator yields images in order. It is single pass.
// Err reports the error that ended iteration early, if any.
type FrameIterator interface {
	Next() (image.Image, bool)
	Err() error
}

// ViewSequence is an ordered, append-only sequence of images of one view.
// It is owned by the demux call that filled it until Drain hands the
// images to a consumer.
type ViewSequence struct {
	name    ViewName
	frames  []image.Image
	drained bool
}

// NewViewSequence creates an empty sequence for the named view.
func NewViewSequence(name ViewName) *ViewSequence {
	return &ViewSequence{name: name}
}

// Name returns the view name.
func (s *ViewSequence) Name() ViewName {
	return s.name
}

// Append adds an image at the end of the sequence.
// Appending to a drained sequence panics.
func (s *ViewSequence) Append(img image.Image) {
	if s.drained {
		panic("pipeline: append to drained view sequence " + string(s.name))
	}
	s.frames = append(s.frames, img)
}

// Len returns the number of images.
func (s *ViewSequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.frames)
}

// At returns the image at index i.
func (s *ViewSequence) At(i int) image.Image {
	return s.frames[i]
}

// Drain transfers the images to a single-pass iterator and leaves the
// sequence empty. Each image is released by the iterator once yielded.
func (s *ViewSequence) Drain() *SequenceIterator {
	frames := s.frames
	s.frames = nil
	s.drained = true
	return &SequenceIterator{frames: frames}
}

// Take transfers the images out of the sequence as a slice.
func (s *ViewSequence) Take() []image.Image {
	frames := s.frames
	s.frames = nil
	s.drained = true
	return frames
}

// SequenceIterator iterates over drained view images.
type SequenceIterator struct {
	frames []image.Image
	pos    int
}

// Next returns the next image.
func (it *SequenceIterator) Next() (image.Image, bool) {
	if it.pos >= len(it.frames) {
		return nil, false
	}
	img := it.frames[it.pos]
	it.frames[it.pos] = nil
	it.pos++
	return img, true
}

// Err always returns nil; a drained sequence cannot fail.
func (it *SequenceIterator) Err() error {
	return nil
}

// Len returns the total number of images the iterator was created with.
func (it *SequenceIterator) Len() int {
	return len(it.frames)
}
