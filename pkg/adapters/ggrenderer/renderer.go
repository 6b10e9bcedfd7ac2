// Package ggrenderer provides a renderer implementation using the gg library.
package ggrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/user/stereoshow/pkg/ports"
)

// Renderer implements ports.Renderer using the gg library.
type Renderer struct{}

// New creates a new Renderer.
func New() *Renderer {
	return &Renderer{}
}

// CreateCanvas creates a new drawing canvas filled with bg.
func (r *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	dc := gg.NewContext(width, height)
	if bg != nil {
		dc.SetColor(bg)
		dc.Clear()
	}
	return &Canvas{dc: dc}
}

// EncodeImage encodes an image to the specified format.
func (r *Renderer) EncodeImage(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.FormatJPEG:
		opts := &jpeg.Options{Quality: quality}
		if err := jpeg.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	case ports.FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %d", format)
	}

	return buf.Bytes(), nil
}

// Rotate returns img rotated clockwise by degrees, a multiple of 90.
// The result always has its origin at (0, 0).
func (r *Renderer) Rotate(img image.Image, degrees int) (image.Image, error) {
	deg := ((degrees % 360) + 360) % 360
	if deg == 0 {
		return img, nil
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	x0, y0 := float64(b.Min.X), float64(b.Min.Y)

	var (
		dst *image.RGBA
		m   f64.Aff3
	)
	switch deg {
	case 90:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		m = f64.Aff3{0, -1, h + y0, 1, 0, -x0}
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		m = f64.Aff3{-1, 0, w + x0, 0, -1, h + y0}
	case 270:
		dst = image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		m = f64.Aff3{0, 1, -y0, -1, 0, w + x0}
	default:
		return nil, fmt.Errorf("unsupported rotation: %d degrees", degrees)
	}

	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst, nil
}

// RenderInto draws src into dst at dst's origin. src is scaled with
// Catmull-Rom when it does not fit; otherwise it is copied and the
// uncovered edge of dst is cleared.
func (r *Renderer) RenderInto(dst *image.RGBA, src image.Image) {
	db, sb := dst.Bounds(), src.Bounds()

	if sb.Dx() > db.Dx() || sb.Dy() > db.Dy() {
		draw.CatmullRom.Scale(dst, db, src, sb, draw.Src, nil)
		return
	}

	if sb.Dx() != db.Dx() || sb.Dy() != db.Dy() {
		draw.Draw(dst, db, image.Transparent, image.Point{}, draw.Src)
	}
	draw.Draw(dst, image.Rectangle{Min: db.Min, Max: db.Min.Add(sb.Size())}, src, sb.Min, draw.Src)
}

// Ensure Renderer implements ports.Renderer
var _ ports.Renderer = (*Renderer)(nil)

// Canvas implements ports.Canvas using gg.Context.
type Canvas struct {
	dc *gg.Context
}

// DrawImage draws an image at the specified position.
func (c *Canvas) DrawImage(img image.Image, x, y int) {
	c.dc.DrawImage(img, x, y)
}

// DrawImageAlpha draws an image over the canvas with a uniform opacity.
// gg has no global alpha, so the image is composited through a uniform
// mask directly onto the context's backing image.
func (c *Canvas) DrawImageAlpha(img image.Image, x, y int, alpha float64) {
	if alpha >= 1 {
		c.DrawImage(img, x, y)
		return
	}
	if alpha <= 0 {
		return
	}

	dst, ok := c.dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	sb := img.Bounds()
	r := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+sb.Dx(), y+sb.Dy())}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + 0.5)})
	draw.DrawMask(dst, r, img, sb.Min, mask, image.Point{}, draw.Over)
}

// ToImage returns the canvas as an image.Image.
func (c *Canvas) ToImage() image.Image {
	return c.dc.Image()
}

// Ensure Canvas implements ports.Canvas
var _ ports.Canvas = (*Canvas)(nil)
