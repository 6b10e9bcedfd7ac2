package h264encoder

import (
	"image"
	"sync"

	"github.com/user/stereoshow/pkg/ports"
)

// bufferPool is a bounded pool of RGBA buffers allocated on demand.
type bufferPool struct {
	mu        sync.Mutex
	free      chan *ports.PixelBuffer
	width     int
	height    int
	capacity  int
	allocated int
}

func newBufferPool(width, height, capacity int) *bufferPool {
	return &bufferPool{
		free:     make(chan *ports.PixelBuffer, capacity),
		width:    width,
		height:   height,
		capacity: capacity,
	}
}

// Acquire returns a free buffer, allocating one while under capacity.
func (p *bufferPool) Acquire() (*ports.PixelBuffer, error) {
	select {
	case buf := <-p.free:
		return buf, nil
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.allocated >= p.capacity {
		return nil, ErrPoolExhausted
	}
	p.allocated++
	return &ports.PixelBuffer{Image: image.NewRGBA(image.Rect(0, 0, p.width, p.height))}, nil
}

// Release returns buf to the pool.
func (p *bufferPool) Release(buf *ports.PixelBuffer) {
	if buf == nil {
		return
	}
	select {
	case p.free <- buf:
	default:
	}
}

// Capacity returns the maximum number of buffers.
func (p *bufferPool) Capacity() int {
	return p.capacity
}

var _ ports.PixelBufferPool = (*bufferPool)(nil)
