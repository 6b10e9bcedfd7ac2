package ffmpegsource

import (
	"errors"
	"image"
	"io"

	"github.com/user/stereoshow/pkg/ports"
)

// PayloadTruncated is the opaque payload kind of a partial trailing frame.
const PayloadTruncated = "truncated"

// frameReader splits a raw RGBA byte stream into frames.
type frameReader struct {
	r      io.Reader
	width  int
	height int
}

func newFrameReader(r io.Reader, width, height int) *frameReader {
	return &frameReader{r: r, width: width, height: height}
}

// next reads one frame. A partial frame at the end of the stream is
// returned as an opaque payload; the following call returns io.EOF.
func (f *frameReader) next() (ports.Payload, error) {
	buf := make([]byte, f.width*f.height*4)
	n, err := io.ReadFull(f.r, buf)
	switch {
	case err == nil:
		img := &image.RGBA{
			Pix:    buf,
			Stride: f.width * 4,
			Rect:   image.Rect(0, 0, f.width, f.height),
		}
		return ports.PixelPayload{Image: img}, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ports.OpaquePayload{Kind: PayloadTruncated, Data: buf[:n]}, nil
	default:
		return nil, err
	}
}
