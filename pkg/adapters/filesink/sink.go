// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/stereoshow/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveLayoutJSON saves a layout descriptor as <name>.layout.json.
func (s *Sink) SaveLayoutJSON(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	path := filepath.Join(s.baseDir, name+".layout.json")
	return s.fs.WriteFile(path, data)
}

// SaveViewFrame saves a demultiplexed frame under frames/<name>/<view>.
func (s *Sink) SaveViewFrame(name, view string, index int, img image.Image) error {
	return s.savePNG(filepath.Join("frames", name, view), index, img)
}

// SaveComposedFrame saves a composed frame under frames/<name>/composed.
func (s *Sink) SaveComposedFrame(name string, index int, img image.Image) error {
	return s.savePNG(filepath.Join("frames", name, "composed"), index, img)
}

func (s *Sink) savePNG(subdir string, index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, subdir)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", filepath.Base(subdir), err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%04d.png", index))
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
