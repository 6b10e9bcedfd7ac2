package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/stereoshow/pkg/adapters/mp4probe"
	"github.com/user/stereoshow/pkg/batch"
	"github.com/user/stereoshow/pkg/config"
	"github.com/user/stereoshow/pkg/orchestrator"
	"github.com/user/stereoshow/pkg/stereoshow"
	"github.com/user/stereoshow/pkg/summarizer"
)

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     l10n.T("Composite the stereo views of one file into a single video"),
		ArgsUsage: "<input>",
		Flags: append(commonFlags(), &cli.StringFlag{
			Name:     "output-dir",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Output directory (default: next to the input)"),
			Category: l10n.T(categoryOutput),
		}),
		Action: runConvert,
	}
}

func splitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     l10n.T("Write the left, right and depth views of one file to separate videos"),
		ArgsUsage: "<input>",
		Flags: append(commonFlags(), &cli.StringFlag{
			Name:     "output-dir",
			Aliases:  []string{"o"},
			Usage:    l10n.T("Output directory (default: next to the input)"),
			Category: l10n.T(categoryOutput),
		}),
		Action: runSplit,
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: l10n.T("Convert every video in a directory"),
		Flags: append(commonFlags(),
			&cli.StringFlag{
				Name:     "input-dir",
				Aliases:  []string{"i"},
				Usage:    l10n.T("Directory of input videos (default: input)"),
				Category: l10n.T(categoryOutput),
			},
			&cli.StringFlag{
				Name:     "output-dir",
				Aliases:  []string{"o"},
				Usage:    l10n.T("Directory for converted videos (default: output)"),
				Category: l10n.T(categoryOutput),
			},
			&cli.IntFlag{
				Name:     "workers",
				Aliases:  []string{"w"},
				Usage:    l10n.T("Files converted at once"),
				Category: l10n.T(categoryOutput),
			},
			&cli.BoolFlag{
				Name:     "split",
				Usage:    l10n.T("Write per-view files instead of a composite"),
				Category: l10n.T(categoryOutput),
			},
			&cli.StringFlag{
				Name:     "summary",
				Usage:    l10n.T("Write a Markdown summary to this path"),
				Category: l10n.T(categoryOutput),
			},
		),
		Action: runBatch,
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Show the video tracks of an MP4 or QuickTime file"),
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "timeline",
				Usage: l10n.T("Also print the sample timeline of the first video track"),
			},
		},
		Action: runInspect,
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("stereoshow version %s", version))
			return nil
		},
	}
}

func singleInput(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", errors.New(l10n.F("%s requires exactly one input file", c.Command.Name))
	}
	return c.Args().First(), nil
}

func runConvert(c *cli.Context) error {
	input, err := singleInput(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	result, err := stereoshow.SideBySide(ctx, input, c.String("output-dir"), cfg.ToStereoshowConfig(), log)
	if err != nil {
		return err
	}
	printResult(c.App.Writer, result)
	return nil
}

func runSplit(c *cli.Context) error {
	input, err := singleInput(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	result, err := stereoshow.Split(ctx, input, c.String("output-dir"), cfg.ToStereoshowConfig(), log)
	if err != nil {
		return err
	}
	printResult(c.App.Writer, result)
	return nil
}

func runBatch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("input-dir") {
		cfg.InputDir = c.String("input-dir")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	log := newLogger(cfg)

	ctx, cancel := signalContext(log)
	defer cancel()

	sc := cfg.ToStereoshowConfig()
	adapters, err := stereoshow.DefaultAdapters(sc, log)
	if err != nil {
		return err
	}

	split := c.Bool("split")
	report, err := stereoshow.NewConverter(sc, adapters, log).Batch(ctx, cfg.InputDir, cfg.OutputDir, split)
	if err != nil {
		return err
	}

	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithDirs(cfg.InputDir, cfg.OutputDir).
			WithSettings(settings(cfg, split)).
			WithReport(report).
			Build()
		writer := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), adapters.FileSystem)
		if err := writer.Write(path, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("Summary written to %s", path)
	}

	printReport(c.App.Writer, report)
	if n := report.Failed() + report.Cancelled(); n > 0 {
		return errors.New(l10n.F("%d of %d files were not converted", n, len(report.Files)))
	}
	return nil
}

func settings(cfg config.Config, split bool) summarizer.Settings {
	mode := "composite"
	if split {
		mode = "split"
	}
	sc := cfg.ToStereoshowConfig()
	return summarizer.Settings{
		Mode:        mode,
		Layout:      string(sc.Layout),
		Orientation: string(sc.Orientation),
		Depth:       sc.Depth,
		Workers:     sc.Workers,
		Quality:     sc.Quality,
		Bitrate:     sc.Bitrate,
	}
}

func runInspect(c *cli.Context) error {
	path, err := singleInput(c)
	if err != nil {
		return err
	}

	probe, err := mp4probe.ProbeFile(path)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintln(w, l10n.F("File: %s (fragmented: %t)", probe.Path, probe.Fragmented))
	for _, t := range probe.Tracks {
		fmt.Fprintln(w, l10n.F("Track %d: %s %s %dx%d, %d samples, frame duration %s",
			t.ID, t.Kind, t.Codec, t.Width, t.Height, t.SampleCount, t.FrameDuration))
		if len(t.ViewTags) > 0 {
			fmt.Fprintln(w, l10n.F("  Views: %v", t.ViewTags))
		}
	}

	if !c.Bool("timeline") {
		return nil
	}

	tl, err := mp4probe.ReadTimeline(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, l10n.F("Timeline of track %d (timescale %d):", tl.TrackID, tl.Timescale))
	for i, s := range tl.Samples {
		sync := ""
		if s.Sync {
			sync = " sync"
		}
		fmt.Fprintf(w, "  %5d  %10d  %6d%s\n", i, s.DecodeTime, s.Duration, sync)
	}
	return nil
}

func printResult(w io.Writer, result orchestrator.Result) {
	for _, out := range result.Outputs {
		fmt.Fprintln(w, l10n.F("Wrote %s (%d frames, %s)", out.OutputPath, out.FramesWritten, out.Duration.Duration()))
	}
	if result.DepthAbsent {
		fmt.Fprintln(w, l10n.F("No depth track in %s", result.InputPath))
	}
}

func printReport(w io.Writer, report *batch.Report) {
	for _, f := range report.Files {
		name := filepath.Base(f.InputPath)
		if f.Err != nil {
			fmt.Fprintf(w, "%-10s %s: %v\n", l10n.T(f.Status.String()), name, f.Err)
			continue
		}
		fmt.Fprintf(w, "%-10s %s\n", l10n.T(f.Status.String()), name)
	}
	fmt.Fprintln(w, l10n.F("Batch finished: %d succeeded, %d failed, %d cancelled",
		report.Succeeded(), report.Failed(), report.Cancelled()))
}
