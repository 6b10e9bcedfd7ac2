package h264encoder

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg executable can be located.
	ErrFFmpegNotFound = errors.New("h264encoder: ffmpeg not found")

	// ErrPoolExhausted is returned by Acquire when every pixel buffer is in use.
	ErrPoolExhausted = errors.New("h264encoder: pixel buffer pool exhausted")

	// ErrQueueFull is returned by Append when the session is not ready for more data.
	ErrQueueFull = errors.New("h264encoder: submit queue full")

	// ErrSessionFinished is returned by Append after FinishWriting.
	ErrSessionFinished = errors.New("h264encoder: session finished")

	// ErrTimescaleMismatch is returned when a PTS does not use the session timescale.
	ErrTimescaleMismatch = errors.New("h264encoder: presentation time timescale mismatch")

	// ErrNoFrames is returned when trying to build MP4 with no frames.
	ErrNoFrames = errors.New("h264encoder: no frames to encode")

	// ErrFrameCountMismatch is returned when the encoder emitted a different
	// number of access units than frames were submitted.
	ErrFrameCountMismatch = errors.New("h264encoder: access unit count does not match submitted frames")
)
