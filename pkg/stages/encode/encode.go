// Package encode implements the video encoding stage.
package encode

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
)

// Stage encodes a frame sequence into a single-view video file.
type Stage struct {
	encoder  ports.VideoEncoder
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
	opts     SinkOptions
}

// NewStage creates a new encode stage.
func NewStage(encoder ports.VideoEncoder, fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger, opts SinkOptions) *Stage {
	return &Stage{
		encoder:  encoder,
		fs:       fs,
		renderer: renderer,
		logger:   logger.WithComponent("encode"),
		opts:     opts,
	}
}

// Execute writes every frame of input.Frames to input.OutputPath.
// Frame i is presented at i times the frame duration.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	result := pipeline.EncodeResult{OutputPath: input.OutputPath}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if input.Frames == nil {
		return result, fmt.Errorf("no frames to encode")
	}
	if sized, ok := input.Frames.(interface{ Len() int }); ok && sized.Len() == 0 {
		return result, fmt.Errorf("no frames to encode")
	}

	s.logger.Debug("Encoding %s at %dx%d", input.OutputPath, input.Width, input.Height)

	sink := NewSink(s.encoder, s.fs, s.renderer, s.logger, s.opts)
	if err := sink.Open(input.OutputPath, input.Width, input.Height, input.FrameDuration); err != nil {
		return result, err
	}

	var appendErr error
	submitted := 0
	for {
		img, ok := input.Frames.Next()
		if !ok {
			break
		}
		if err := sink.Append(img, submitted); err != nil {
			appendErr = fmt.Errorf("append frame %d: %w", submitted, err)
			break
		}
		submitted++
	}
	if appendErr == nil {
		if err := input.Frames.Err(); err != nil {
			appendErr = err
		}
	}

	// Always finalize so the session releases its pool and process.
	finalizeErr := sink.Finalize()

	stats := sink.Stats()
	result.FramesWritten = stats.Written
	result.FramesSkipped = len(stats.Skipped)
	result.Duration = input.FrameDuration.Mul(int64(submitted))

	if appendErr != nil {
		return result, appendErr
	}
	if finalizeErr != nil {
		return result, finalizeErr
	}
	if result.FramesWritten == 0 {
		return result, errors.New("no frames were written")
	}

	s.logger.Debug("Encoded %d frames to %s", result.FramesWritten, input.OutputPath)
	return result, nil
}

var _ pipeline.Stage[pipeline.EncodeInput, pipeline.EncodeResult] = (*Stage)(nil)
