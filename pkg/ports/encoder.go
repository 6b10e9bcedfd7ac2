package ports

import (
	"image"
)

// PixelBuffer is a writable frame buffer owned by an encoder session's pool.
type PixelBuffer struct {
	Image *image.RGBA
}

// PixelBufferPool is a bounded set of reusable buffers supplied by an encoder session.
type PixelBufferPool interface {
	// Acquire returns a free buffer without blocking.
	// It returns an error when every buffer is in use.
	Acquire() (*PixelBuffer, error)

	// Release returns a buffer to the pool.
	Release(buf *PixelBuffer)

	// Capacity returns the maximum number of buffers.
	Capacity() int
}

// EncoderSession is an encoder bound to one output file.
type EncoderSession interface {
	// Pool returns the session's pixel buffer pool.
	Pool() PixelBufferPool

	// ReadyForMoreData reports whether Append can accept a buffer now.
	ReadyForMoreData() bool

	// Append submits a buffer at the given presentation time.
	// Ownership of buf passes to the session.
	Append(buf *PixelBuffer, pts MediaTime) error

	// FinishWriting signals end of input. The returned channel receives the
	// terminal error (nil on success) once the output is flushed.
	FinishWriting() <-chan error

	// Err returns the error that failed the session, if any.
	Err() error
}

// VideoEncoder opens encoder sessions.
type VideoEncoder interface {
	// Open creates the output file at path and starts an encoding session.
	Open(path string, width, height int, opts EncoderOptions) (EncoderSession, error)
}

// EncoderOptions configures an encoder session.
type EncoderOptions struct {
	FrameDuration MediaTime // Fixed frame duration; its timescale is the output timescale
	Quality       int       // CRF: 0-63 (lower is higher quality)
	Bitrate       int       // Target bitrate in kbps (0 = CRF only)
	PoolSize      int       // Pixel buffer pool capacity
	QueueDepth    int       // Buffers accepted before ReadyForMoreData turns false
}
