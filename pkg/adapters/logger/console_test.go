package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/user/stereoshow/pkg/ports"
)

func TestConsoleLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleWriter(ports.LevelWarn, &buf)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	want := []string{"WARN  warn 3", "ERROR error 4"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), buf.String())
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleWriter(ports.LevelQuiet, &buf)
	log.Error("boom")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestConsoleLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsoleWriter(ports.LevelDebug, &buf).WithComponent("demux")

	log.Debug("View %s: %d frames", "left", 3)

	if got := strings.TrimSpace(buf.String()); got != "[demux] View left: 3 frames" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestConsoleLogger_ConcurrentLines(t *testing.T) {
	var buf bytes.Buffer
	root := NewConsoleWriter(ports.LevelInfo, &buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log := root.WithComponent("batch")
			for j := 0; j < 50; j++ {
				log.Info("Converted %s in %s", "clip.mov", "1s")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 400 {
		t.Fatalf("expected 400 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if line != "[batch] Converted clip.mov in 1s" {
			t.Fatalf("interleaved line %q", line)
		}
	}
}
