// Package h264encoder provides H.264 video encoding through an external
// ffmpeg process, muxed into fragmented MP4 with mp4ff.
package h264encoder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/stereoshow/pkg/ports"
)

// Default session sizing.
const (
	DefaultQueueDepth = 4
)

// Encoder implements ports.VideoEncoder using ffmpeg and libx264.
type Encoder struct {
	ffmpegPath string
	logger     ports.Logger
}

// New creates a new H.264 encoder. An empty ffmpegPath searches
// FFMPEG_PATH, PATH and common install locations.
func New(ffmpegPath string, logger ports.Logger) *Encoder {
	return &Encoder{
		ffmpegPath: ffmpegPath,
		logger:     logger.WithComponent("h264encoder"),
	}
}

// Open creates the output file and starts an encoding session.
// Odd extents are rounded up to even values for yuv420p.
func (e *Encoder) Open(path string, width, height int, opts ports.EncoderOptions) (ports.EncoderSession, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("h264encoder: invalid size %dx%d", width, height)
	}
	if !opts.FrameDuration.IsValid() || opts.FrameDuration.Value <= 0 {
		return nil, fmt.Errorf("h264encoder: invalid frame duration %s", opts.FrameDuration)
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = DefaultQueueDepth
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = opts.QueueDepth + 2
	}

	ffmpegPath, err := FindFFmpeg(e.ffmpegPath)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w, h := evenUp(width), evenUp(height)
	s := &session{
		path:       path,
		width:      w,
		height:     h,
		opts:       opts,
		logger:     e.logger,
		file:       file,
		pool:       newBufferPool(w, h, opts.PoolSize),
		queue:      make(chan submission, opts.QueueDepth),
		writerDone: make(chan struct{}),
		finished:   make(chan struct{}),
	}

	if err := s.start(ffmpegPath); err != nil {
		file.Close()
		return nil, err
	}

	e.logger.Debug("Started ffmpeg for %s (%dx%d, queue %d, pool %d)", path, w, h, opts.QueueDepth, opts.PoolSize)
	return s, nil
}

func evenUp(n int) int {
	return (n + 1) &^ 1
}

// Ensure Encoder implements ports.VideoEncoder
var _ ports.VideoEncoder = (*Encoder)(nil)
