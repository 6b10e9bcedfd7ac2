package encode

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
)

// Sink state errors.
var (
	ErrSinkNotWriting = errors.New("encode: sink is not accepting frames")
	ErrSinkOpened     = errors.New("encode: sink already opened")
	ErrSinkClosed     = errors.New("encode: sink already finalized")
	ErrOutOfOrder     = errors.New("encode: frame index not strictly increasing")
)

// Default readiness polling parameters.
const (
	DefaultPollInterval = 10 * time.Millisecond
	DefaultReadyTimeout = 30 * time.Second
)

// SinkState is the lifecycle state of a Sink.
type SinkState int

const (
	StateUnopened SinkState = iota
	StateWriting
	StateFinalizing
	StateClosed
)

// String returns the string representation of the state.
func (s SinkState) String() string {
	switch s {
	case StateWriting:
		return "writing"
	case StateFinalizing:
		return "finalizing"
	case StateClosed:
		return "closed"
	default:
		return "unopened"
	}
}

// SinkOptions configures a Sink.
type SinkOptions struct {
	Encoder      ports.EncoderOptions // FrameDuration is set by Open
	PollInterval time.Duration        // Sleep between readiness polls
	ReadyTimeout time.Duration        // Longest wait for the encoder to accept a frame
}

// SinkStats reports what a Sink did with submitted frames.
type SinkStats struct {
	Written int
	Skipped []pipeline.BufferExhaustedError
}

// Sink writes frames to one output file through an encoder session.
// A Sink is used once: Open, Append for each frame, then Finalize.
type Sink struct {
	encoder  ports.VideoEncoder
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
	opts     SinkOptions

	state         SinkState
	path          string
	session       ports.EncoderSession
	frameDuration ports.MediaTime
	lastIndex     int
	stats         SinkStats
}

// NewSink creates a new unopened sink.
func NewSink(encoder ports.VideoEncoder, fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger, opts SinkOptions) *Sink {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = DefaultReadyTimeout
	}
	return &Sink{
		encoder:  encoder,
		fs:       fs,
		renderer: renderer,
		logger:   logger,
		opts:     opts,
	}
}

// State returns the current lifecycle state.
func (s *Sink) State() SinkState {
	return s.state
}

// Stats returns the frame counts so far.
func (s *Sink) Stats() SinkStats {
	return s.stats
}

// Open replaces any existing file at path and starts an encoder session
// whose timeline begins at zero.
func (s *Sink) Open(path string, width, height int, frameDuration ports.MediaTime) error {
	if s.state != StateUnopened {
		return ErrSinkOpened
	}
	if !frameDuration.IsValid() || frameDuration.Value <= 0 {
		return fmt.Errorf("encode: invalid frame duration %s", frameDuration)
	}

	exists, err := s.fs.Exists(path)
	if err != nil {
		return fmt.Errorf("check output %s: %w", path, err)
	}
	if exists {
		s.logger.Debug("Removing existing output %s", path)
		if err := s.fs.Remove(path); err != nil {
			return fmt.Errorf("remove existing output %s: %w", path, err)
		}
	}

	opts := s.opts.Encoder
	opts.FrameDuration = frameDuration
	session, err := s.encoder.Open(path, width, height, opts)
	if err != nil {
		return fmt.Errorf("open encoder for %s: %w", path, err)
	}

	s.path = path
	s.session = session
	s.frameDuration = frameDuration
	s.lastIndex = -1
	s.state = StateWriting
	s.logger.Debug("Opened %s (%dx%d, frame duration %s)", path, width, height, frameDuration)
	return nil
}

// Append submits img as frame index. Indices must be strictly increasing.
// A frame that cannot get a pixel buffer is skipped and recorded in Stats
// without failing the call.
func (s *Sink) Append(img image.Image, index int) error {
	if s.state != StateWriting {
		return ErrSinkNotWriting
	}
	if index <= s.lastIndex {
		return fmt.Errorf("%w: %d after %d", ErrOutOfOrder, index, s.lastIndex)
	}
	s.lastIndex = index

	pool := s.session.Pool()
	buf, err := pool.Acquire()
	if err != nil {
		skip := pipeline.BufferExhaustedError{Index: index}
		s.stats.Skipped = append(s.stats.Skipped, skip)
		s.logger.Warn("Skipping frame %d: %v", index, &skip)
		return nil
	}

	s.renderer.RenderInto(buf.Image, img)

	if err := s.waitReady(); err != nil {
		pool.Release(buf)
		return err
	}

	if err := s.session.Append(buf, s.frameDuration.Mul(int64(index))); err != nil {
		return &pipeline.EncoderTerminalError{Path: s.path, Err: err}
	}
	s.stats.Written++
	return nil
}

// waitReady polls the session until it accepts more data, it fails, or the
// ready timeout elapses.
func (s *Sink) waitReady() error {
	deadline := time.Now().Add(s.opts.ReadyTimeout)
	for !s.session.ReadyForMoreData() {
		if err := s.session.Err(); err != nil {
			return &pipeline.EncoderTerminalError{Path: s.path, Err: err}
		}
		if time.Now().After(deadline) {
			return &pipeline.EncoderTerminalError{
				Path: s.path,
				Err:  fmt.Errorf("encoder not ready after %s", s.opts.ReadyTimeout),
			}
		}
		time.Sleep(s.opts.PollInterval)
	}
	return nil
}

// Finalize ends input and waits for the encoder to flush the file.
// A failed encode leaves whatever was written on disk.
func (s *Sink) Finalize() error {
	switch s.state {
	case StateUnopened:
		return ErrSinkNotWriting
	case StateFinalizing, StateClosed:
		return ErrSinkClosed
	}

	s.state = StateFinalizing
	err := <-s.session.FinishWriting()
	s.state = StateClosed

	if err != nil {
		s.logger.Error("Encoding %s failed: %v", s.path, err)
		return &pipeline.EncoderTerminalError{Path: s.path, Err: err}
	}
	s.logger.Debug("Finalized %s (%d frames written, %d skipped)", s.path, s.stats.Written, len(s.stats.Skipped))
	return nil
}
