package mocks

import (
	"image"
	"sync"

	"github.com/user/stereoshow/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	// SaveErr is returned by the frame savers when set.
	SaveErr error

	LayoutJSON map[string][]byte
	// ViewFrames is keyed by "<name>/<view>", ComposedFrames by name.
	ViewFrames     map[string]map[int]image.Image
	ComposedFrames map[string]map[int]image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:        enabled,
		LayoutJSON:     make(map[string][]byte),
		ViewFrames:     make(map[string]map[int]image.Image),
		ComposedFrames: make(map[string]map[int]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveLayoutJSON(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayoutJSON[name] = data
	return nil
}

func (m *DebugSink) SaveViewFrame(name, view string, index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	key := name + "/" + view
	if m.ViewFrames[key] == nil {
		m.ViewFrames[key] = make(map[int]image.Image)
	}
	m.ViewFrames[key][index] = img
	return nil
}

func (m *DebugSink) SaveComposedFrame(name string, index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if m.ComposedFrames[name] == nil {
		m.ComposedFrames[name] = make(map[int]image.Image)
	}
	m.ComposedFrames[name][index] = img
	return nil
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool                                                     { return false }
func (m *NullSink) SaveLayoutJSON(name string, data []byte) error                     { return nil }
func (m *NullSink) SaveViewFrame(name, view string, index int, img image.Image) error { return nil }
func (m *NullSink) SaveComposedFrame(name string, index int, img image.Image) error   { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
