package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/stereoshow/pkg/config"
)

func TestVersionCommand(t *testing.T) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out

	if err := app.Run([]string{"stereoshow", "version"}); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("expected version in output, got %q", out.String())
	}
}

// runWithConfig runs a command carrying the common flags and returns the
// configuration it resolved.
func runWithConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()

	var (
		cfg    config.Config
		cfgErr error
	)
	app := &cli.App{
		Name: "stereoshow",
		Commands: []*cli.Command{{
			Name:  "probe",
			Flags: commonFlags(),
			Action: func(c *cli.Context) error {
				cfg, cfgErr = loadConfig(c)
				return nil
			},
		}},
	}
	if err := app.Run(append([]string{"stereoshow", "probe"}, args...)); err != nil {
		t.Fatalf("app failed: %v", err)
	}
	return cfg, cfgErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := runWithConfig(t)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg != config.Defaults() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereoshow.yaml")
	if err := os.WriteFile(path, []byte("layout: overlay\nquality: 40\nworkers: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := runWithConfig(t, "--config", path, "--quality", "20", "--no-depth", "--quiet")
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Layout != "overlay" || cfg.Workers != 3 {
		t.Errorf("expected file values kept, got %+v", cfg)
	}
	if cfg.Quality != 20 || cfg.Depth || cfg.LogLevel != "quiet" {
		t.Errorf("expected flag overrides, got %+v", cfg)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := runWithConfig(t, "--layout", "top-bottom"); err == nil {
		t.Error("expected error for unknown layout")
	}
	if _, err := runWithConfig(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConvert_RequiresInput(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}

	if err := app.Run([]string{"stereoshow", "convert"}); err == nil {
		t.Error("expected error without input file")
	}
}
