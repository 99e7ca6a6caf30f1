package shaderaux

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

type LabelConfig struct {
	// TTF is the TrueType font blob. Defaults to Go Regular.
	TTF []byte
	// Size in points. Defaults to 12.
	Size float64
	// DPI defaults to 72, making one point one pixel.
	DPI float64
	// Padding in pixels around the text. Defaults to 4.
	Padding int
	// Foreground and Background colours. Default to white over translucent black.
	Foreground, Background color.Color
}

// Labeler draws single lines of text over images. It is safe for concurrent use.
type Labeler struct {
	mu      sync.Mutex
	face    font.Face
	padding int
	fg, bg  *image.Uniform
}

// NewLabeler parses the configured font and returns a Labeler ready to draw.
func NewLabeler(cfg LabelConfig) (*Labeler, error) {
	if cfg.Size < 0 || cfg.DPI < 0 || cfg.Padding < 0 {
		return nil, errors.New("negative label size, DPI or padding")
	}
	if cfg.TTF == nil {
		cfg.TTF = goregular.TTF
	}
	if cfg.Size == 0 {
		cfg.Size = 12
	}
	if cfg.DPI == 0 {
		cfg.DPI = 72
	}
	if cfg.Padding == 0 {
		cfg.Padding = 4
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.White
	}
	if cfg.Background == nil {
		cfg.Background = color.NRGBA{A: 160}
	}
	ttf, err := truetype.Parse(cfg.TTF)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    cfg.Size,
		DPI:     cfg.DPI,
		Hinting: font.HintingFull,
	})
	return &Labeler{
		face:    face,
		padding: cfg.Padding,
		fg:      image.NewUniform(cfg.Foreground),
		bg:      image.NewUniform(cfg.Background),
	}, nil
}

// Bounds returns the rectangle covered by a label of text drawn at the origin,
// padding included.
func (l *Labeler) Bounds(text string) image.Rectangle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bounds(text)
}

func (l *Labeler) bounds(text string) image.Rectangle {
	m := l.face.Metrics()
	w := font.MeasureString(l.face, text).Ceil()
	h := m.Ascent.Ceil() + m.Descent.Ceil()
	return image.Rect(0, 0, w+2*l.padding, h+2*l.padding)
}

// Draw draws text over a background box with its top left corner at pt.
// The label is clipped to dst's bounds.
func (l *Labeler) Draw(dst draw.Image, pt image.Point, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	box := l.bounds(text).Add(pt)
	draw.Draw(dst, box, l.bg, image.Point{}, draw.Over)
	d := font.Drawer{
		Dst:  dst,
		Src:  l.fg,
		Face: l.face,
		Dot:  fixed.P(pt.X+l.padding, pt.Y+l.padding+l.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

var defaultLabeler = sync.OnceValues(func() (*Labeler, error) {
	return NewLabeler(LabelConfig{})
})

// DrawLabel draws text on the top left corner of dst with the default label style.
func DrawLabel(dst draw.Image, text string) error {
	l, err := defaultLabeler()
	if err != nil {
		return err
	}
	l.Draw(dst, dst.Bounds().Min, text)
	return nil
}
