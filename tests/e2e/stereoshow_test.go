// Package e2e contains end-to-end tests for the stereoshow CLI.
// The tests build the binary, or use STEREOSHOW_BINARY when set.
package e2e

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getBinaryName returns the test binary name with platform-specific extension
func getBinaryName() string {
	if runtime.GOOS == "windows" {
		return "stereoshow-test.exe"
	}
	return "stereoshow-test"
}

// getBinaryPath returns the path to execute the test binary
// If STEREOSHOW_BINARY env var is set, use that instead (for CI with pre-built binaries)
func getBinaryPath(t *testing.T) string {
	if path := os.Getenv("STEREOSHOW_BINARY"); path != "" {
		return path
	}
	return filepath.Join(getProjectRoot(t), getBinaryName())
}

// setup skips unless E2E tests are enabled and builds the CLI when needed.
func setup(t *testing.T) {
	t.Helper()
	if os.Getenv("STEREOSHOW_E2E") != "1" {
		t.Skip("Skipping E2E test (set STEREOSHOW_E2E=1 to run)")
	}
	if os.Getenv("STEREOSHOW_BINARY") != "" {
		return
	}

	root := getProjectRoot(t)
	buildCmd := exec.Command("go", "build", "-o", getBinaryName(), "./cmd/stereoshow")
	buildCmd.Dir = root
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build CLI: %v\n%s", err, out)
	}
	t.Cleanup(func() { os.Remove(filepath.Join(root, getBinaryName())) })
}

// stereoSample returns the MV-HEVC clip named by STEREOSHOW_SAMPLE.
func stereoSample(t *testing.T) string {
	t.Helper()
	path := os.Getenv("STEREOSHOW_SAMPLE")
	if path == "" {
		t.Skip("Skipping stereo conversion (set STEREOSHOW_SAMPLE to an MV-HEVC file)")
	}
	return path
}

// run executes the CLI with English messages.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command(getBinaryPath(t), args...)
	cmd.Env = append(os.Environ(), "LANG=en_US.UTF-8", "LC_ALL=en_US.UTF-8")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// monoClip writes a short single-view H.264 file with ffmpeg.
func monoClip(t *testing.T) string {
	t.Helper()
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	path := filepath.Join(t.TempDir(), "mono.mp4")
	cmd := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x48:rate=30",
		"-frames:v", "10", "-c:v", "libx264", "-pix_fmt", "yuv420p", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to create test clip: %v\n%s", err, out)
	}
	return path
}

func verifyMP4(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Output file not found: %v", err)
	}
	if len(data) < 8 || string(data[4:8]) != "ftyp" {
		t.Errorf("Invalid MP4 file: %s", path)
	}
}

// TestVersionCommand tests the version flag and subcommand
func TestVersionCommand(t *testing.T) {
	setup(t)

	for _, args := range [][]string{{"--version"}, {"version"}} {
		out, _, err := run(t, args...)
		if err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
		if !strings.Contains(out, "stereoshow version") {
			t.Errorf("Unexpected version output for %v: %s", args, out)
		}
	}
}

// TestInspectCommand lists the tracks of a single-view file
func TestInspectCommand(t *testing.T) {
	setup(t)
	clip := monoClip(t)

	out, stderr, err := run(t, "inspect", "--timeline", clip)
	if err != nil {
		t.Fatalf("inspect failed: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(out, "Track 1: mono") {
		t.Errorf("Expected mono track in output: %s", out)
	}
	if !strings.Contains(out, "Timeline of track 1") {
		t.Errorf("Expected timeline in output: %s", out)
	}
}

// TestConvertMonoInputFails checks the exit status for a file without stereo views
func TestConvertMonoInputFails(t *testing.T) {
	setup(t)
	clip := monoClip(t)

	_, stderr, err := run(t, "convert", "--quiet", "-o", t.TempDir(), clip)
	if err == nil {
		t.Fatal("Expected convert to fail for a mono file")
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("Expected error message, got: %s", stderr)
	}
}

// TestConvertCommand converts a stereo sample side by side
func TestConvertCommand(t *testing.T) {
	setup(t)
	sample := stereoSample(t)
	outDir := t.TempDir()

	_, stderr, err := run(t, "convert", "--no-depth", "-o", outDir, sample)
	if err != nil {
		t.Fatalf("convert failed: %v\nstderr: %s", err, stderr)
	}

	base := strings.TrimSuffix(filepath.Base(sample), filepath.Ext(sample))
	verifyMP4(t, filepath.Join(outDir, base+"_sideBySide.mp4"))
}

// TestSplitCommand writes one file per eye
func TestSplitCommand(t *testing.T) {
	setup(t)
	sample := stereoSample(t)
	outDir := t.TempDir()

	_, stderr, err := run(t, "split", "-o", outDir, sample)
	if err != nil {
		t.Fatalf("split failed: %v\nstderr: %s", err, stderr)
	}

	base := strings.TrimSuffix(filepath.Base(sample), filepath.Ext(sample))
	verifyMP4(t, filepath.Join(outDir, base+"_left.mp4"))
	verifyMP4(t, filepath.Join(outDir, base+"_right.mp4"))
}

// TestBatchCommand converts a directory and writes a summary
func TestBatchCommand(t *testing.T) {
	setup(t)
	sample := stereoSample(t)

	inDir := t.TempDir()
	outDir := t.TempDir()
	copyFile(t, sample, filepath.Join(inDir, "clip.mov"))
	summary := filepath.Join(outDir, "summary.md")

	_, stderr, err := run(t, "batch", "--input-dir", inDir, "--output-dir", outDir,
		"--workers", "1", "--no-depth", "--summary", summary)
	if err != nil {
		t.Fatalf("batch failed: %v\nstderr: %s", err, stderr)
	}

	verifyMP4(t, filepath.Join(outDir, "clip_sideBySide.mp4"))
	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("Summary not written: %v", err)
	}
	if !strings.Contains(string(data), "# Conversion Summary") {
		t.Errorf("Unexpected summary: %s", data)
	}
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	in, err := os.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		t.Fatal(err)
	}
}

func getProjectRoot(t *testing.T) string {
	// Start from current working directory and find go.mod
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod)")
		}
		dir = parent
	}
}
