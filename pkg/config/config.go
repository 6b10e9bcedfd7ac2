// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/stereoshow/pkg/pipeline"
	"github.com/user/stereoshow/pkg/ports"
	"github.com/user/stereoshow/pkg/stereoshow"
)

// Config represents the full configuration file for stereoshow.
type Config struct {
	// Input/Output
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`

	// Composition
	Layout          string `yaml:"layout"`
	Orientation     string `yaml:"orientation"`
	BackgroundColor string `yaml:"background_color"`
	Depth           bool   `yaml:"depth"`

	// Batch
	Workers int `yaml:"workers"`

	// Encoding
	Quality        int    `yaml:"quality"`
	Bitrate        int    `yaml:"bitrate"`
	PoolSize       int    `yaml:"pool_size"`
	QueueDepth     int    `yaml:"queue_depth"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
	ReadyTimeoutMs int    `yaml:"ready_timeout_ms"`
	FFmpegPath     string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		InputDir:  "input",
		OutputDir: "output",

		Layout:          string(pipeline.LayoutSideBySide),
		Orientation:     string(pipeline.OrientationNone),
		BackgroundColor: "#000000",
		Depth:           true,

		Workers: 2,

		Quality:        25,
		QueueDepth:     4,
		PollIntervalMs: 10,
		ReadyTimeoutMs: 30000,

		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys missing from
// the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every value is usable.
func (c Config) Validate() error {
	if _, err := pipeline.ParseLayoutPolicy(c.Layout); err != nil {
		return err
	}
	if _, err := pipeline.ParseOrientation(c.Orientation); err != nil {
		return err
	}
	if _, err := ParseColor(c.BackgroundColor); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Quality < 0 || c.Quality > 63 {
		return fmt.Errorf("quality must be between 0 and 63, got %d", c.Quality)
	}
	if c.Bitrate < 0 || c.PoolSize < 0 || c.QueueDepth < 0 {
		return fmt.Errorf("bitrate, pool_size and queue_depth must not be negative")
	}
	if c.PoolSize > 0 && c.QueueDepth > 0 && c.PoolSize <= c.QueueDepth {
		return fmt.Errorf("pool_size (%d) must exceed queue_depth (%d)", c.PoolSize, c.QueueDepth)
	}
	if c.PollIntervalMs < 0 || c.ReadyTimeoutMs < 0 {
		return fmt.Errorf("poll_interval_ms and ready_timeout_ms must not be negative")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error", "quiet":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa". An empty string is black.
func ParseColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if s == "" {
		return color.RGBA{A: 255}, nil
	}

	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", hex)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// ToStereoshowConfig converts Config to stereoshow.Config. Invalid values
// fall back to defaults; call Validate first to report them.
func (c Config) ToStereoshowConfig() stereoshow.Config {
	b := stereoshow.NewConfigBuilder()

	if policy, err := pipeline.ParseLayoutPolicy(c.Layout); err == nil {
		b.WithLayout(policy)
	}
	if orientation, err := pipeline.ParseOrientation(c.Orientation); err == nil {
		b.WithOrientation(orientation)
	}
	if bg, err := ParseColor(c.BackgroundColor); err == nil {
		b.WithBackground(bg)
	}

	return b.
		WithDepth(c.Depth).
		WithWorkers(c.Workers).
		WithQuality(c.Quality).
		WithBitrate(c.Bitrate).
		WithBuffering(c.PoolSize, c.QueueDepth).
		WithPolling(time.Duration(c.PollIntervalMs)*time.Millisecond, time.Duration(c.ReadyTimeoutMs)*time.Millisecond).
		WithFFmpegPath(c.FFmpegPath).
		WithDebug(c.Debug, c.DebugDir).
		Build()
}
