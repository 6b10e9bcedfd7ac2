package mocks

import (
	"errors"
	"image"
	"sync"

	"github.com/user/stereoshow/pkg/ports"
)

// ErrPoolEmpty is returned by BufferPool.Acquire when every buffer is in use.
var ErrPoolEmpty = errors.New("mocks: pool empty")

// VideoEncoder is a mock implementation of ports.VideoEncoder.
// Each Open returns a new EncoderSession recorded in Sessions.
type VideoEncoder struct {
	mu sync.Mutex

	OpenFunc func(path string, width, height int, opts ports.EncoderOptions) (ports.EncoderSession, error)

	// NewSession customizes the sessions created by the default Open.
	NewSession func(path string, width, height int, opts ports.EncoderOptions) *EncoderSession

	// Recorded calls for verification
	OpenCalls []OpenCall
	Sessions  []*EncoderSession
}

// OpenCall records a call to Open.
type OpenCall struct {
	Path   string
	Width  int
	Height int
	Opts   ports.EncoderOptions
}

func (m *VideoEncoder) Open(path string, width, height int, opts ports.EncoderOptions) (ports.EncoderSession, error) {
	m.mu.Lock()
	m.OpenCalls = append(m.OpenCalls, OpenCall{Path: path, Width: width, Height: height, Opts: opts})
	m.mu.Unlock()
	if m.OpenFunc != nil {
		return m.OpenFunc(path, width, height, opts)
	}
	var s *EncoderSession
	if m.NewSession != nil {
		s = m.NewSession(path, width, height, opts)
	} else {
		s = NewEncoderSession(width, height, 4)
	}
	m.mu.Lock()
	m.Sessions = append(m.Sessions, s)
	m.mu.Unlock()
	return s, nil
}

// Paths returns the paths passed to Open, in order.
func (m *VideoEncoder) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, len(m.OpenCalls))
	for i, c := range m.OpenCalls {
		paths[i] = c.Path
	}
	return paths
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)

// EncoderSession is a mock implementation of ports.EncoderSession.
// Appended buffers are released back to the pool immediately.
type EncoderSession struct {
	mu sync.Mutex

	BufferPool *BufferPool

	// ReadyFunc overrides ReadyForMoreData.
	ReadyFunc func() bool
	// AppendFunc overrides Append.
	AppendFunc func(buf *ports.PixelBuffer, pts ports.MediaTime) error
	// FinishErr is delivered on the FinishWriting channel.
	FinishErr error
	// SessionErr is returned by Err.
	SessionErr error

	// Recorded calls for verification
	PTS          []ports.MediaTime
	ReadyPolls   int
	FinishCalled int
}

// NewEncoderSession creates a session with a pool of capacity buffers.
func NewEncoderSession(width, height, capacity int) *EncoderSession {
	return &EncoderSession{BufferPool: NewBufferPool(width, height, capacity)}
}

func (m *EncoderSession) Pool() ports.PixelBufferPool {
	return m.BufferPool
}

func (m *EncoderSession) ReadyForMoreData() bool {
	m.mu.Lock()
	m.ReadyPolls++
	m.mu.Unlock()
	if m.ReadyFunc != nil {
		return m.ReadyFunc()
	}
	return true
}

func (m *EncoderSession) Append(buf *ports.PixelBuffer, pts ports.MediaTime) error {
	if m.AppendFunc != nil {
		if err := m.AppendFunc(buf, pts); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.PTS = append(m.PTS, pts)
	m.mu.Unlock()
	m.BufferPool.Release(buf)
	return nil
}

func (m *EncoderSession) FinishWriting() <-chan error {
	m.mu.Lock()
	m.FinishCalled++
	m.mu.Unlock()
	done := make(chan error, 1)
	done <- m.FinishErr
	return done
}

func (m *EncoderSession) Err() error {
	return m.SessionErr
}

var _ ports.EncoderSession = (*EncoderSession)(nil)

// BufferPool is a mock implementation of ports.PixelBufferPool.
type BufferPool struct {
	mu       sync.Mutex
	width    int
	height   int
	capacity int
	inUse    int

	// AcquireFunc overrides Acquire.
	AcquireFunc func() (*ports.PixelBuffer, error)

	// Recorded calls for verification
	Acquired int
	Released int
}

// NewBufferPool creates a pool of capacity buffers of the given extent.
func NewBufferPool(width, height, capacity int) *BufferPool {
	return &BufferPool{width: width, height: height, capacity: capacity}
}

func (m *BufferPool) Acquire() (*ports.PixelBuffer, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inUse >= m.capacity {
		return nil, ErrPoolEmpty
	}
	m.inUse++
	m.Acquired++
	return &ports.PixelBuffer{Image: image.NewRGBA(image.Rect(0, 0, m.width, m.height))}, nil
}

func (m *BufferPool) Release(buf *ports.PixelBuffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inUse > 0 {
		m.inUse--
	}
	m.Released++
}

func (m *BufferPool) Capacity() int {
	return m.capacity
}

var _ ports.PixelBufferPool = (*BufferPool)(nil)
