// Package glrender holds the pixel buffers shader renders are written to and
// their conversions to standard library images.
package glrender

import (
	"errors"
	"fmt"
)

// Channels is the number of float32 values stored per pixel (RGBA).
const Channels = 4

var errBadDims = errors.New("color buffer dimensions must be positive")

// ColorBuffer is a width×height RGBA image stored row-major as 4 consecutive
// float32 channels per pixel, nominally in [0,1]. Row 0 is the first stored row.
type ColorBuffer struct {
	Width  int
	Height int
	Pixels []float32
}

// NewColorBuffer allocates a zeroed buffer of the given size.
func NewColorBuffer(width, height int) (*ColorBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", errBadDims, width, height)
	}
	return &ColorBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]float32, width*height*Channels),
	}, nil
}

// Validate checks the pixel slice length matches the dimensions.
func (cb *ColorBuffer) Validate() error {
	if cb.Width <= 0 || cb.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", errBadDims, cb.Width, cb.Height)
	}
	if len(cb.Pixels) != cb.Width*cb.Height*Channels {
		return fmt.Errorf("color buffer %dx%d needs %d floats, got %d", cb.Width, cb.Height, cb.Width*cb.Height*Channels, len(cb.Pixels))
	}
	return nil
}

// Resize changes the dimensions of the buffer reusing its storage when possible.
// Contents are zeroed.
func (cb *ColorBuffer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: got %dx%d", errBadDims, width, height)
	}
	n := width * height * Channels
	if cap(cb.Pixels) < n {
		cb.Pixels = make([]float32, n)
	} else {
		cb.Pixels = cb.Pixels[:n]
		clear(cb.Pixels)
	}
	cb.Width, cb.Height = width, height
	return nil
}

// Row returns the channels of stored row y.
func (cb *ColorBuffer) Row(y int) []float32 {
	stride := cb.Width * Channels
	return cb.Pixels[y*stride : (y+1)*stride]
}

// Pixel returns the RGBA channels of the pixel at column x of stored row y.
func (cb *ColorBuffer) Pixel(x, y int) [4]float32 {
	off := (y*cb.Width + x) * Channels
	return [4]float32(cb.Pixels[off : off+Channels])
}

// SetPixel overwrites the pixel at column x of stored row y.
func (cb *ColorBuffer) SetPixel(x, y int, c [4]float32) {
	off := (y*cb.Width + x) * Channels
	copy(cb.Pixels[off:off+Channels], c[:])
}

// Fill sets every pixel to c.
func (cb *ColorBuffer) Fill(c [4]float32) {
	for off := 0; off+Channels <= len(cb.Pixels); off += Channels {
		copy(cb.Pixels[off:off+Channels], c[:])
	}
}

// Equal reports whether both buffers have the same size and bit-identical contents.
// NaN channels compare equal to NaN channels with the same bits.
func (cb *ColorBuffer) Equal(other *ColorBuffer) bool {
	if cb.Width != other.Width || cb.Height != other.Height || len(cb.Pixels) != len(other.Pixels) {
		return false
	}
	for i, v := range cb.Pixels {
		if !sameBits(v, other.Pixels[i]) {
			return false
		}
	}
	return true
}
