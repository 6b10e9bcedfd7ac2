// Package main provides the CLI entry point for stereoshow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/stereoshow/pkg/adapters/logger"
	"github.com/user/stereoshow/pkg/config"
	"github.com/user/stereoshow/pkg/ports"
)

var version = "dev"

// Flag categories
const (
	categoryOutput      = "Output"
	categoryComposition = "Composition"
	categoryVideo       = "Video and Quality"
	categoryDebug       = "Debug"
	categoryLogging     = "Logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "stereoshow",
		Usage:       l10n.T("Convert stereo video into single-view H.264 MP4"),
		Description: l10n.T("stereoshow turns MV-HEVC stereo recordings into side-by-side, overlay or per-eye H.264 videos."),
		Version:     version,
		Commands: []*cli.Command{
			convertCommand(),
			splitCommand(),
			batchCommand(),
			inspectCommand(),
			versionCommand(),
		},
	}
}

// commonFlags returns the flags shared by every converting command.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "config",
			Aliases:  []string{"c"},
			Usage:    l10n.T("YAML configuration file (flags override its values)"),
			Category: l10n.T(categoryOutput),
		},
		&cli.StringFlag{
			Name:     "layout",
			Usage:    l10n.T("Composite layout (side-by-side, overlay)"),
			Category: l10n.T(categoryComposition),
		},
		&cli.StringFlag{
			Name:     "orientation",
			Usage:    l10n.T("Rotation applied to each view (none, right, down, left)"),
			Category: l10n.T(categoryComposition),
		},
		&cli.StringFlag{
			Name:     "background",
			Usage:    l10n.T("Canvas background color (hex, e.g., #000000)"),
			Category: l10n.T(categoryComposition),
		},
		&cli.BoolFlag{
			Name:     "no-depth",
			Usage:    l10n.T("Do not write the depth track"),
			Category: l10n.T(categoryOutput),
		},
		&cli.IntFlag{
			Name:     "quality",
			Aliases:  []string{"q"},
			Usage:    l10n.T("Video quality (CRF 0-63, lower is better)"),
			Category: l10n.T(categoryVideo),
		},
		&cli.IntFlag{
			Name:     "bitrate",
			Usage:    l10n.T("Target bitrate in kbps (0 = quality-driven)"),
			Category: l10n.T(categoryVideo),
		},
		&cli.StringFlag{
			Name:     "ffmpeg",
			Usage:    l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"),
			Category: l10n.T(categoryVideo),
		},
		&cli.BoolFlag{
			Name:     "debug",
			Aliases:  []string{"d"},
			Usage:    l10n.T("Enable debug output"),
			Category: l10n.T(categoryDebug),
		},
		&cli.StringFlag{
			Name:     "debug-dir",
			Usage:    l10n.T("Directory for debug output"),
			Category: l10n.T(categoryDebug),
		},
		&cli.StringFlag{
			Name:     "log-level",
			Aliases:  []string{"l"},
			Usage:    l10n.T("Log level (debug, info, warn, error)"),
			Category: l10n.T(categoryLogging),
		},
		&cli.BoolFlag{
			Name:     "quiet",
			Aliases:  []string{"Q"},
			Usage:    l10n.T("Suppress all log output"),
			Category: l10n.T(categoryLogging),
		},
	}
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if c.IsSet("layout") {
		cfg.Layout = c.String("layout")
	}
	if c.IsSet("orientation") {
		cfg.Orientation = c.String("orientation")
	}
	if c.IsSet("background") {
		cfg.BackgroundColor = c.String("background")
	}
	if c.Bool("no-depth") {
		cfg.Depth = false
	}
	if c.IsSet("quality") {
		cfg.Quality = c.Int("quality")
	}
	if c.IsSet("bitrate") {
		cfg.Bitrate = c.Int("bitrate")
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpegPath = c.String("ffmpeg")
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = "quiet"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates the console logger for the configured level.
func newLogger(cfg config.Config) ports.Logger {
	level := cfg.Level()
	if level == ports.LevelQuiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(level)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
