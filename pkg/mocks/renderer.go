package mocks

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/user/stereoshow/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
// By default it composes with image/draw so tests can inspect pixels.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error)
	RotateFunc       func(img image.Image, degrees int) (image.Image, error)
	RenderIntoFunc   func(dst *image.RGBA, src image.Image)

	// Recorded calls for verification
	Canvases    []*Canvas
	RotateCalls []int
	RenderCalls int
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := NewCanvas(width, height, bg)
	m.Canvases = append(m.Canvases, c)
	return c
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format, quality)
	}
	return []byte{}, nil
}

func (m *Renderer) Rotate(img image.Image, degrees int) (image.Image, error) {
	m.RotateCalls = append(m.RotateCalls, degrees)
	if m.RotateFunc != nil {
		return m.RotateFunc(img, degrees)
	}
	if degrees%180 == 0 {
		return img, nil
	}
	b := img.Bounds()
	return image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx())), nil
}

func (m *Renderer) RenderInto(dst *image.RGBA, src image.Image) {
	m.RenderCalls++
	if m.RenderIntoFunc != nil {
		m.RenderIntoFunc(dst, src)
		return
	}
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
}

var _ ports.Renderer = (*Renderer)(nil)

// Canvas is a mock implementation of ports.Canvas backed by an RGBA image.
type Canvas struct {
	img *image.RGBA

	// Recorded calls for verification
	Draws []DrawCall
}

// DrawCall records a draw operation on the canvas.
type DrawCall struct {
	X, Y  int
	Alpha float64
}

// NewCanvas creates a canvas filled with bg (transparent when nil).
func NewCanvas(width, height int, bg color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if bg != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	return &Canvas{img: img}
}

func (m *Canvas) DrawImage(img image.Image, x, y int) {
	m.DrawImageAlpha(img, x, y, 1)
}

func (m *Canvas) DrawImageAlpha(img image.Image, x, y int, alpha float64) {
	m.Draws = append(m.Draws, DrawCall{X: x, Y: y, Alpha: alpha})
	b := img.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(m.img, r, img, b.Min, mask, image.Point{}, draw.Over)
}

func (m *Canvas) ToImage() image.Image {
	return m.img
}

var _ ports.Canvas = (*Canvas)(nil)
