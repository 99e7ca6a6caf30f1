package glrender_test

import (
	"image/color"
	"math"
	"testing"

	"github.com/soypat/shaderz/glrender"
)

func TestNewColorBuffer(t *testing.T) {
	cb, err := glrender.NewColorBuffer(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(cb.Pixels) != 3*2*glrender.Channels {
		t.Fatalf("got %d floats, want %d", len(cb.Pixels), 3*2*glrender.Channels)
	}
	if err := cb.Validate(); err != nil {
		t.Error(err)
	}
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 4}} {
		_, err := glrender.NewColorBuffer(dims[0], dims[1])
		if err == nil {
			t.Errorf("expected error for %v", dims)
		}
	}
	cb.Pixels = cb.Pixels[:5]
	if cb.Validate() == nil {
		t.Error("expected error for short pixel slice")
	}
}

func TestColorBufferPixels(t *testing.T) {
	cb, _ := glrender.NewColorBuffer(4, 3)
	want := [4]float32{0.1, 0.2, 0.3, 0.4}
	cb.SetPixel(2, 1, want)
	if got := cb.Pixel(2, 1); got != want {
		t.Errorf("Pixel(2,1)=%v, want %v", got, want)
	}
	row := cb.Row(1)
	if len(row) != 4*glrender.Channels || row[2*4] != 0.1 {
		t.Errorf("bad row contents %v", row)
	}
	if got := cb.Pixel(1, 1); got != ([4]float32{}) {
		t.Errorf("neighbour modified: %v", got)
	}
	cb.Fill([4]float32{1, 1, 1, 1})
	for i, v := range cb.Pixels {
		if v != 1 {
			t.Fatalf("Fill left index %d at %v", i, v)
		}
	}
	err := cb.Resize(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if cb.Width != 2 || cb.Height != 2 || len(cb.Pixels) != 16 || cb.Pixels[0] != 0 {
		t.Errorf("bad resize: %dx%d len=%d first=%v", cb.Width, cb.Height, len(cb.Pixels), cb.Pixels[0])
	}
}

func TestColorBufferEqual(t *testing.T) {
	a, _ := glrender.NewColorBuffer(2, 2)
	b, _ := glrender.NewColorBuffer(2, 2)
	if !a.Equal(b) {
		t.Error("zero buffers differ")
	}
	nan := float32(math.NaN())
	a.Pixels[3], b.Pixels[3] = nan, nan
	if !a.Equal(b) {
		t.Error("identical NaN bits should compare equal")
	}
	b.Pixels[0] = 0.5
	if a.Equal(b) {
		t.Error("different buffers compare equal")
	}
	c, _ := glrender.NewColorBuffer(4, 1)
	if a.Equal(c) {
		t.Error("different sizes compare equal")
	}
}

func TestToU8(t *testing.T) {
	for _, tc := range []struct {
		in   float32
		want uint8
	}{
		{0, 0},
		{1, 255},
		{0.5, 128},
		{-3, 0},
		{7, 255},
		{float32(math.NaN()), 0},
	} {
		if got := glrender.ToU8(tc.in); got != tc.want {
			t.Errorf("ToU8(%v)=%d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestColorBufferImage(t *testing.T) {
	cb, _ := glrender.NewColorBuffer(2, 2)
	cb.SetPixel(1, 0, [4]float32{1, 0, 0, 1})
	img := cb.NRGBA()
	if img.Bounds() != cb.Bounds() {
		t.Fatalf("bounds mismatch %v != %v", img.Bounds(), cb.Bounds())
	}
	want := color.NRGBA{R: 255, A: 255}
	if got := img.NRGBAAt(1, 0); got != want {
		t.Errorf("NRGBAAt(1,0)=%v, want %v", got, want)
	}
	if got := cb.At(1, 0); got != want {
		t.Errorf("At(1,0)=%v, want %v", got, want)
	}
	if got := cb.At(5, 5); got != (color.NRGBA{}) {
		t.Errorf("out of bounds At=%v", got)
	}
	packed := cb.AppendRGBA8(nil)
	if len(packed) != 16 || packed[4] != 255 || packed[7] != 255 || packed[5] != 0 {
		t.Errorf("bad packed RGBA8 %v", packed)
	}
}
