package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image processing operations.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified dimensions and background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// Rotate returns img rotated clockwise by the given number of degrees.
	// Only multiples of 90 are supported; 0 returns img unchanged.
	Rotate(img image.Image, degrees int) (image.Image, error)

	// RenderInto draws src into dst starting at dst's origin.
	// src is scaled to dst's extent when it is larger than dst.
	RenderInto(dst *image.RGBA, src image.Image)
}

// Canvas provides drawing operations for compositing images.
type Canvas interface {
	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawImageAlpha draws an image at the specified position with a
	// uniform opacity multiplier in [0, 1].
	DrawImageAlpha(img image.Image, x, y int, alpha float64)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
