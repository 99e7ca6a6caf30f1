// Package shaderaux provides helpers to get shader projects on screen quickly:
// PNG rendering with an optional label, colour editing helpers and an
// interactive preview window. Applications with specific needs should build
// their own on top of [shaderz.Renderer] and [glbuild.Programmer].
package shaderaux

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"github.com/soypat/shaderz"
	"github.com/soypat/shaderz/glrender"
)

type RenderConfig struct {
	// Width and Height of the output image in pixels. Both default to 512.
	Width, Height int
	// Renderer evaluates the shader. If nil [shaderz.DefaultRenderer] is used.
	Renderer *shaderz.Renderer
	// Label draws the node name and render time on the top left corner.
	Label bool
	// Silent disables progress messages on standard output.
	Silent bool
}

func (cfg *RenderConfig) defaults() error {
	if cfg.Width < 0 || cfg.Height < 0 {
		return errors.New("negative image dimension")
	}
	if cfg.Width == 0 {
		cfg.Width = 512
	}
	if cfg.Height == 0 {
		cfg.Height = 512
	}
	if cfg.Renderer == nil {
		cfg.Renderer = shaderz.DefaultRenderer()
	}
	return nil
}

// RenderImage renders the node of the object into a new image. A nil nodeID
// renders the uv gradient. An error is returned if the project has no such object.
func RenderImage(p *shaderz.Project, objectID shaderz.ID, nodeID *shaderz.ID, cfg RenderConfig) (*image.NRGBA, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, err
	}
	obj := p.Object(objectID)
	if obj == nil {
		return nil, fmt.Errorf("project has no object %s", objectID)
	}
	log := func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	buf, err := glrender.NewColorBuffer(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	name := "uv gradient"
	if nodeID != nil {
		if node := obj.Node(*nodeID); node != nil {
			name = node.Name
		}
	}
	cfg.Renderer.Render(p, buf, objectID, nodeID)
	elapsed := cfg.Renderer.LastDuration()
	log("rendered", name, fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "with", cfg.Renderer.Workers(), "workers in", elapsed)
	img := buf.NRGBA()
	if cfg.Label {
		watch := stopwatch()
		err = DrawLabel(img, name+"  "+elapsed.Round(time.Microsecond).String())
		if err != nil {
			return nil, err
		}
		log("drew label in", watch())
	}
	return img, nil
}

// RenderPNG renders the node of the object and writes it to w as PNG. See [RenderImage].
func RenderPNG(w io.Writer, p *shaderz.Project, objectID shaderz.ID, nodeID *shaderz.ID, cfg RenderConfig) error {
	img, err := RenderImage(p, objectID, nodeID, cfg)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// RenderPNGFile renders the node of the object and saves the result to a PNG
// file with said filename.
func RenderPNGFile(filename string, p *shaderz.Project, objectID shaderz.ID, nodeID *shaderz.ID, cfg RenderConfig) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	bw := bufio.NewWriter(fp)
	err = RenderPNG(bw, p, objectID, nodeID, cfg)
	if err != nil {
		return err
	}
	err = bw.Flush()
	if err != nil {
		return err
	}
	return fp.Sync()
}

type UIConfig struct {
	// Width and Height of the window. Both default to 512.
	Width, Height int
	// ObjectID selects the object previewed. Zero selects the first object of the project.
	ObjectID shaderz.ID
	// UseGPU evaluates shaders on the GPU with programs generated by glbuild.
	// Otherwise frames are rendered on the CPU and uploaded as a texture.
	UseGPU bool
	// Renderer evaluates shaders on the CPU path. If nil [shaderz.DefaultRenderer] is used.
	Renderer *shaderz.Renderer
	// Context cancels the preview loop when done.
	Context context.Context
}

// UI opens a window previewing the project's object. Left click cycles the
// previewed node, finishing with none (the uv gradient) before starting over.
// Scrolling shifts the hue of the previewed node's literal colour.
// UI must be called from the main goroutine and requires cgo.
func UI(p *shaderz.Project, cfg UIConfig) error {
	if cfg.Width < 0 || cfg.Height < 0 {
		return errors.New("negative window dimension")
	}
	if cfg.Width == 0 {
		cfg.Width = 512
	}
	if cfg.Height == 0 {
		cfg.Height = 512
	}
	if cfg.ObjectID == shaderz.NilID {
		if len(p.Objects) == 0 {
			return errors.New("project has no objects to preview")
		}
		cfg.ObjectID = p.Objects[0].ID
	} else if p.Object(cfg.ObjectID) == nil {
		return fmt.Errorf("project has no object %s", cfg.ObjectID)
	}
	if cfg.Renderer == nil {
		cfg.Renderer = shaderz.DefaultRenderer()
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	return ui(p, cfg)
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
