// Package stereoshow provides a high-level API for converting stereo video.
package stereoshow

import (
	"image/color"
	"time"

	"github.com/user/stereoshow/pkg/pipeline"
)

// Config represents the configuration for stereo video conversion.
type Config struct {
	// Composition
	Layout      pipeline.LayoutPolicy
	Orientation pipeline.Orientation
	Background  color.Color // Canvas background color
	Depth       bool        // Also write the depth track when present

	// Batch
	Workers int // Files converted at once

	// Encoding
	Quality      int // 0-63, lower is better
	Bitrate      int // kbps, 0 = quality-driven
	PoolSize     int // Pixel buffers per encoder session, 0 = queue depth + 2
	QueueDepth   int // Frames queued ahead of the encoder
	PollInterval time.Duration
	ReadyTimeout time.Duration
	FFmpegPath   string // Empty searches FFMPEG_PATH, PATH and common locations

	// Debug
	Debug    bool
	DebugDir string
}

// ConfigBuilder provides a fluent interface for building Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Layout:      pipeline.LayoutSideBySide,
		Orientation: pipeline.OrientationNone,
		Background:  color.Black,
		Depth:       true,

		Workers: 2,

		Quality:      25,
		QueueDepth:   4,
		PollInterval: 10 * time.Millisecond,
		ReadyTimeout: 30 * time.Second,

		DebugDir: "./debug",
	}
}

// Build returns the final Config, applying constraints.
func (b *ConfigBuilder) Build() Config {
	cfg := b.config

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Quality < 0 {
		cfg.Quality = 0
	}
	if cfg.Quality > 63 {
		cfg.Quality = 63
	}
	if cfg.Background == nil {
		cfg.Background = color.Black
	}
	if cfg.Orientation == "" {
		cfg.Orientation = pipeline.OrientationNone
	}

	return cfg
}

// WithLayout sets the layout policy.
func (b *ConfigBuilder) WithLayout(policy pipeline.LayoutPolicy) *ConfigBuilder {
	b.config.Layout = policy
	return b
}

// WithOrientation sets the orientation correction applied to each view.
func (b *ConfigBuilder) WithOrientation(orientation pipeline.Orientation) *ConfigBuilder {
	b.config.Orientation = orientation
	return b
}

// WithBackground sets the canvas background color.
func (b *ConfigBuilder) WithBackground(c color.Color) *ConfigBuilder {
	b.config.Background = c
	return b
}

// WithDepth enables or disables the depth output.
func (b *ConfigBuilder) WithDepth(enabled bool) *ConfigBuilder {
	b.config.Depth = enabled
	return b
}

// WithWorkers sets the number of files converted at once.
// Values below 1 will be forced to 1.
func (b *ConfigBuilder) WithWorkers(workers int) *ConfigBuilder {
	b.config.Workers = workers
	return b
}

// WithQuality sets the encoder quality (0-63, lower is better).
func (b *ConfigBuilder) WithQuality(quality int) *ConfigBuilder {
	b.config.Quality = quality
	return b
}

// WithBitrate sets the target bitrate in kbps.
func (b *ConfigBuilder) WithBitrate(kbps int) *ConfigBuilder {
	b.config.Bitrate = kbps
	return b
}

// WithBuffering sets the pixel buffer pool size and submit queue depth.
// Zero keeps the current value.
func (b *ConfigBuilder) WithBuffering(poolSize, queueDepth int) *ConfigBuilder {
	if poolSize > 0 {
		b.config.PoolSize = poolSize
	}
	if queueDepth > 0 {
		b.config.QueueDepth = queueDepth
	}
	return b
}

// WithPolling sets the encoder readiness poll interval and timeout.
// Zero keeps the current value.
func (b *ConfigBuilder) WithPolling(interval, timeout time.Duration) *ConfigBuilder {
	if interval > 0 {
		b.config.PollInterval = interval
	}
	if timeout > 0 {
		b.config.ReadyTimeout = timeout
	}
	return b
}

// WithFFmpegPath sets the ffmpeg executable.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithDebug enables debug output into dir.
func (b *ConfigBuilder) WithDebug(enabled bool, dir string) *ConfigBuilder {
	b.config.Debug = enabled
	if dir != "" {
		b.config.DebugDir = dir
	}
	return b
}
