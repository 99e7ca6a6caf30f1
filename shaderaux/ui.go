//go:build !tinygo && cgo

package shaderaux

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/shaderz"
	"github.com/soypat/shaderz/glbuild"
	"github.com/soypat/shaderz/glrender"
)

const vertexSource = `#version 460
in vec2 aPos;
out vec2 vTexCoord;
void main() {
    vTexCoord = aPos * 0.5 + 0.5;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
` + "\x00"

// textureSource draws the CPU rendered buffer. Buffer row 0 is the top of the window.
const textureSource = `#version 460
in vec2 vTexCoord;
out vec4 fragColor;
uniform sampler2D uTex;
void main() {
    fragColor = texture(uTex, vec2(vTexCoord.x, 1.0 - vTexCoord.y));
}
` + "\x00"

// gradientSource draws the uv gradient shown when no node is selected.
const gradientSource = `#version 460
uniform vec2 uResolution;
out vec4 fragColor;
void main() {
    vec2 uv = vec2(floor(gl_FragCoord.x), floor(gl_FragCoord.y)+1.) / uResolution;
    fragColor = vec4(uv, 0., 1.);
}
` + "\x00"

func ui(p *shaderz.Project, cfg UIConfig) error {
	window, term, err := startGLFW(cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	defer term()
	log := shaderz.Logger()
	sel := NewSelection(p, cfg.ObjectID)

	// Define a quad covering the screen
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)

	var view previewer
	if cfg.UseGPU {
		view, err = newGPUPreview()
	} else {
		view, err = newCPUPreview(cfg.Renderer, cfg.Width, cfg.Height)
	}
	if err != nil {
		return err
	}
	defer view.Delete()

	refresh := true
	flagEdit := func() { refresh = true }
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft && action == glfw.Press {
			sel.Next()
			flagEdit()
		}
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		if sel.ShiftHue(float32(yoff) / 36) {
			flagEdit()
		}
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		flagEdit()
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	ctx := cfg.Context
	for !window.ShouldClose() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if refresh {
			refresh = false
			width, height := window.GetFramebufferSize()
			gl.Viewport(0, 0, int32(width), int32(height))
			gl.ClearColor(0.0, 0.0, 0.0, 1.0)
			gl.Clear(gl.COLOR_BUFFER_BIT)
			watch := stopwatch()
			err = view.Draw(p, sel, width, height)
			if err != nil {
				// Keep previewing so the user may select another node.
				log.Error("preview draw", slog.String("node", sel.Name()), slog.String("err", err.Error()))
			}
			gl.BindVertexArray(vao)
			gl.DrawArrays(gl.TRIANGLES, 0, 6)
			window.SwapBuffers()
			window.SetTitle(fmt.Sprintf("shaderz preview: %s (%s)", sel.Name(), watch().Round(time.Microsecond)))
		}
		// Limit frame rate
		time.Sleep(time.Second / 60)
		glfw.PollEvents()
	}
	return nil
}

// previewer draws the selected node of a project on the bound quad.
type previewer interface {
	Draw(p *shaderz.Project, sel *Selection, width, height int) error
	Delete()
}

type cpuPreview struct {
	renderer *shaderz.Renderer
	buf      *glrender.ColorBuffer
	prog     glgl.Program
	tex      uint32
}

func newCPUPreview(r *shaderz.Renderer, width, height int) (*cpuPreview, error) {
	buf, err := glrender.NewColorBuffer(width, height)
	if err != nil {
		return nil, err
	}
	prog, err := compileQuadProgram(textureSource)
	if err != nil {
		return nil, err
	}
	cp := &cpuPreview{renderer: r, buf: buf, prog: prog}
	gl.GenTextures(1, &cp.tex)
	gl.BindTexture(gl.TEXTURE_2D, cp.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return cp, nil
}

func (cp *cpuPreview) Draw(p *shaderz.Project, sel *Selection, width, height int) error {
	if width != cp.buf.Width || height != cp.buf.Height {
		err := cp.buf.Resize(width, height)
		if err != nil {
			return err
		}
	}
	cp.renderer.Render(p, cp.buf, sel.ObjectID(), sel.NodeID())
	cp.prog.Bind()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, cp.tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(cp.buf.Pixels))
	texUniform, err := cp.prog.UniformLocation("uTex\x00")
	if err != nil {
		return err
	}
	gl.Uniform1i(texUniform, 0)
	return nil
}

func (cp *cpuPreview) Delete() {
	gl.DeleteTextures(1, &cp.tex)
	cp.prog.Delete()
}

type gpuPreview struct {
	programmer *glbuild.Programmer
	source     bytes.Buffer
	prog       glgl.Program
	compiled   bool
}

func newGPUPreview() (*gpuPreview, error) {
	gp := &gpuPreview{programmer: glbuild.NewDefaultProgrammer()}
	err := gp.programmer.Configure(glbuild.ProgrammerConfig{Header: "#version 460"})
	if err != nil {
		return nil, err
	}
	return gp, nil
}

func (gp *gpuPreview) Draw(p *shaderz.Project, sel *Selection, width, height int) error {
	// Programs are rebuilt on every draw since edits change literals.
	gp.Delete()
	src := gradientSource
	if node := sel.Node(); node != nil {
		gp.source.Reset()
		_, err := gp.programmer.WriteFragmentShader(&gp.source, node)
		if err != nil {
			return err
		}
		gp.source.WriteByte(0)
		src = gp.source.String()
	}
	prog, err := compileQuadProgram(src)
	if err != nil {
		return err
	}
	gp.prog, gp.compiled = prog, true
	resUniform, err := prog.UniformLocation(glbuild.ResolutionUniform + "\x00")
	if err != nil {
		return err
	}
	gl.Uniform2f(resUniform, float32(width), float32(height))
	return nil
}

func (gp *gpuPreview) Delete() {
	if gp.compiled {
		gp.prog.Delete()
		gp.compiled = false
	}
}

func compileQuadProgram(fragSrc string) (glgl.Program, error) {
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertexSource,
		Fragment: fragSrc,
	})
	if err != nil {
		return prog, fmt.Errorf("%s\n\n%w", fragSrc, err)
	}
	prog.Bind()
	// Specify the layout of the vertex data
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		return prog, err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	return prog, nil
}

func startGLFW(width, height int) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(width, height, "shaderz preview", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return window, glfw.Terminate, nil
}
