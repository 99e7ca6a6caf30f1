package glrender

import (
	"image"
	"image/color"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

type setImage = interface {
	image.Image
	Set(x, y int, c color.Color)
}

var _ image.Image = (*ColorBuffer)(nil)

// ColorModel implements [image.Image]. Channels are not premultiplied.
func (cb *ColorBuffer) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements [image.Image].
func (cb *ColorBuffer) Bounds() image.Rectangle { return image.Rect(0, 0, cb.Width, cb.Height) }

// At implements [image.Image]. Image row y is stored row y.
func (cb *ColorBuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(cb.Bounds()) {
		return color.NRGBA{}
	}
	c := cb.Pixel(x, y)
	return color.NRGBA{R: ToU8(c[0]), G: ToU8(c[1]), B: ToU8(c[2]), A: ToU8(c[3])}
}

// NRGBA converts the buffer to an 8 bit image.
func (cb *ColorBuffer) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(cb.Bounds())
	img.Pix = cb.AppendRGBA8(img.Pix[:0])
	return img
}

// DrawTo sets every pixel of img within both bounds from the buffer.
// Pixel (x,y) of the buffer is written at img.Bounds().Min+(x,y).
func (cb *ColorBuffer) DrawTo(img setImage) {
	bb := img.Bounds()
	w := min(bb.Dx(), cb.Width)
	h := min(bb.Dy(), cb.Height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(bb.Min.X+x, bb.Min.Y+y, cb.At(x, y))
		}
	}
}

// AppendRGBA8 appends the buffer contents as packed 8 bit RGBA, the layout
// OpenGL expects for GL_RGBA/GL_UNSIGNED_BYTE textures.
func (cb *ColorBuffer) AppendRGBA8(dst []byte) []byte {
	for _, v := range cb.Pixels {
		dst = append(dst, ToU8(v))
	}
	return dst
}

// ToU8 maps a channel in [0,1] to [0,255] with rounding. Values outside the
// range are clamped and NaN maps to 0.
func ToU8(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	return uint8(ms1.Clamp(v, 0, 1)*255 + 0.5)
}

func sameBits(a, b float32) bool {
	return math.Float32bits(a) == math.Float32bits(b)
}
