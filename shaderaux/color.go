package shaderaux

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/math/ms1"
	"github.com/soypat/shaderz"
)

// A great portion of logic in this file taken from Esme Lamb's (@dedelala)
// excellent color manipulation work presented at Gophercon AU 2024.
// https://github.com/dedelala/disco/tree/main/color

// ShiftHue returns v with its hue rotated by dh turns, so dh=1 leaves the
// colour unchanged. Saturation, brightness and alpha are preserved.
// Only Float3 (RGB) and Float4 (RGBA) values are colours; other kinds return false.
func ShiftHue(v shaderz.Value, dh float32) (shaderz.Value, bool) {
	switch v.Kind() {
	case shaderz.KindFloat3:
		c, _ := v.Vec3()
		h, s, b := rgbToHSV(c.X, c.Y, c.Z)
		r, g, bl := hsvToRGB(wrapHue(h+dh), s, b)
		return shaderz.NewFloat3(ms3.Vec{X: r, Y: g, Z: bl}), true
	case shaderz.KindFloat4:
		c, _ := v.Vec4()
		h, s, b := HSV(c)
		return shaderz.NewFloat4(FromHSV(h+dh, s, b, c.W)), true
	}
	return v, false
}

// HSV returns the hue, saturation and brightness of the RGB components of c,
// all on the range 0.0 to 1.0. Components are clamped to 0..1 first.
func HSV(c shaderz.Vec4) (h, s, v float32) {
	return rgbToHSV(c.X, c.Y, c.Z)
}

// FromHSV returns the RGBA colour of the given hue, saturation, brightness and alpha.
// Hue wraps around so any value is accepted.
func FromHSV(h, s, v, alpha float32) shaderz.Vec4 {
	r, g, b := hsvToRGB(wrapHue(h), ms1.Clamp(s, 0, 1), ms1.Clamp(v, 0, 1))
	return shaderz.Vec4{X: r, Y: g, Z: b, W: alpha}
}

// InterpHSV interpolates between c0 and c1 through the shortest hue path.
// Alpha is interpolated linearly.
func InterpHSV(c0, c1 shaderz.Vec4, t float32) shaderz.Vec4 {
	h0, s0, v0 := HSV(c0)
	h1, s1, v1 := HSV(c1)
	h, s, v := interpHSV(h0, s0, v0, h1, s1, v1, t)
	return FromHSV(h, s, v, ms1.Interp(c0.W, c1.W, t))
}

func wrapHue(h float32) float32 {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	return h
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	switch {
	case h1-h0 > 0.5:
		h0 += 1.0
	case h1-h0 < -0.5:
		h1 += 1.0
	}
	h = ms1.Interp(h0, h1, t)
	s = ms1.Interp(s0, s1, t)
	v = ms1.Interp(v0, v1, t)
	return h, s, v
}

// hsvToRGB converts hue, saturation and brightness values on the range of 0.0
// to 1.0 to RGB floating point values on the range of 0.0 to 1.0
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	var (
		c = s * v
		x = c * (1 - math.Abs(math.Mod(h*6, 2)-1))
		m = v - c
	)

	switch {
	case h >= 0 && h <= 1.0/6:
		r, g, b = c, x, 0
	case h > 1.0/6 && h <= 2.0/6:
		r, g, b = x, c, 0
	case h > 2.0/6 && h <= 3.0/6:
		r, g, b = 0, c, x
	case h > 3.0/6 && h <= 4.0/6:
		r, g, b = 0, x, c
	case h > 4.0/6 && h <= 5.0/6:
		r, g, b = x, 0, c
	case h > 5.0/6 && h <= 1.0:
		r, g, b = c, 0, x
	}

	r, g, b = r+m, g+m, b+m
	return r, g, b
}

// rgbToHSV converts red, green, and blue floating point values on the range
// 0.0 to 1.0 to hue, saturation and brightness values on the range 0.0 to 1.0
func rgbToHSV(r, g, b float32) (h, s, v float32) {
	r, g, b = ms1.Clamp(r, 0, 1), ms1.Clamp(g, 0, 1), ms1.Clamp(b, 0, 1)
	var (
		xmax = max(r, g, b)
		xmin = min(r, g, b)
		c    = xmax - xmin
	)
	v = xmax
	switch {
	case c == 0:
		h = 0
	case v == r:
		h = (g - b) / (c * 6)
	case v == g:
		h = 1.0/3 + (b-r)/(c*6)
	case v == b:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h += 1
	}
	if xmax > 0 {
		s = c / xmax
	}
	return
}
