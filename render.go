package shaderz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/shaderz/glrender"
	"github.com/soypat/shaderz/internal/parallel"
)

// RendererConfig configures a [Renderer]. The zero value is valid.
type RendererConfig struct {
	// Workers is the number of goroutines evaluating pixels. Zero selects GOMAXPROCS.
	Workers int
	// ChunkRows is the number of buffer rows in a single work item.
	// Zero splits the buffer into four items per worker.
	ChunkRows int
}

// Renderer evaluates shader nodes over every pixel of a [glrender.ColorBuffer]
// in parallel. Work is split in disjoint row chunks so workers never share output.
//
// A Renderer is safe for concurrent use but concurrent renders share its workers.
type Renderer struct {
	mu    sync.RWMutex
	cfg   RendererConfig
	pool  *parallel.WorkerPool
	evals sync.Pool
	last  atomic.Int64
}

// NewRenderer returns a Renderer with its worker pool started.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{}
	r.evals.New = func() any { return new(Evaluator) }
	err := r.Configure(cfg)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Configure applies cfg, restarting the worker pool if the worker count changes
// or the renderer was closed.
func (r *Renderer) Configure(cfg RendererConfig) error {
	if cfg.Workers < 0 {
		return errors.New("negative renderer workers")
	} else if cfg.ChunkRows < 0 {
		return errors.New("negative renderer chunk rows")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pool == nil || !r.pool.IsRunning() || r.cfg.Workers != cfg.Workers {
		if r.pool != nil {
			r.pool.Close()
		}
		r.pool = parallel.NewWorkerPool(cfg.Workers)
	}
	r.cfg = cfg
	return nil
}

// Workers returns the number of goroutines the renderer evaluates pixels on.
func (r *Renderer) Workers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.Workers()
}

// Running reports whether the renderer's workers are started. A closed
// renderer is started again by [Renderer.Configure].
func (r *Renderer) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pool.IsRunning()
}

// LastDuration returns the wall clock time taken by the last completed render.
func (r *Renderer) LastDuration() time.Duration {
	return time.Duration(r.last.Load())
}

// Close stops the renderer's workers. Rendering after Close runs on the caller's goroutine.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.Close()
}

// Render fills buf with the shader of the node identified by nodeID on the
// object identified by objectID. If the object does not exist buf is left
// untouched. If nodeID is nil or names no node of the object every pixel gets
// the uv gradient (uv.x, uv.y, 0, 1). Render never fails: nodes that cannot be
// evaluated produce transparent black.
//
// Rows are visited from the last stored row towards the first and pixels left
// to right. Stored row 0 maps to uv.y = 1 and stored row H-1 to uv.y = 1/H.
func (r *Renderer) Render(p *Project, buf *glrender.ColorBuffer, objectID ID, nodeID *ID) {
	if buf == nil || buf.Validate() != nil {
		return
	}
	start := time.Now()
	obj := p.Object(objectID)
	if obj == nil {
		r.finish(start, buf, objectID, nodeID, false)
		return
	}
	var node *Node
	if nodeID != nil {
		node = obj.Node(*nodeID)
	}
	r.mu.RLock()
	chunks := 4 * r.pool.Workers()
	if r.cfg.ChunkRows > 0 {
		chunks = (buf.Height + r.cfg.ChunkRows - 1) / r.cfg.ChunkRows
	}
	r.pool.For(buf.Height, chunks, func(jstart, jend int) {
		ev := r.evals.Get().(*Evaluator)
		renderRows(ev, node, buf, jstart, jend)
		r.evals.Put(ev)
	})
	r.mu.RUnlock()
	r.finish(start, buf, objectID, nodeID, true)
}

func (r *Renderer) finish(start time.Time, buf *glrender.ColorBuffer, objectID ID, nodeID *ID, found bool) {
	elapsed := time.Since(start)
	r.last.Store(int64(elapsed))
	log := Logger()
	if !log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	node := "none"
	if nodeID != nil {
		node = nodeID.String()
	}
	log.Debug("render object", slog.String("object", objectID.String()), slog.String("node", node),
		slog.Int("width", buf.Width), slog.Int("height", buf.Height), slog.Bool("found", found),
		slog.Duration("elapsed", elapsed))
}

// renderRows evaluates the rows enumerated [jstart, jend) counting from the
// last stored row. node may be nil.
func renderRows(ev *Evaluator, node *Node, buf *glrender.ColorBuffer, jstart, jend int) {
	w, h := float32(buf.Width), float32(buf.Height)
	screen := ms2.Vec{X: w, Y: h}
	for j := jstart; j < jend; j++ {
		row := buf.Row(buf.Height - 1 - j)
		uvy := float32(j+1) / h
		for x := 0; x < buf.Width; x++ {
			uv := ms2.Vec{X: float32(x) / w, Y: uvy}
			color := Vec4{X: uv.X, Y: uv.Y, Z: 0, W: 1}
			if node != nil {
				color = node.ResolveShaderWith(ev, uv, screen)
			}
			c := color.Array()
			copy(row[x*glrender.Channels:], c[:])
		}
	}
}

var defaultRenderer = sync.OnceValue(func() *Renderer {
	r, err := NewRenderer(RendererConfig{})
	if err != nil {
		panic(err)
	}
	return r
})

// DefaultRenderer returns the renderer used by [Project.RenderObject].
func DefaultRenderer() *Renderer { return defaultRenderer() }

// RenderObject renders with [DefaultRenderer]. See [Renderer.Render].
func (p *Project) RenderObject(buf *glrender.ColorBuffer, objectID ID, nodeID *ID) {
	DefaultRenderer().Render(p, buf, objectID, nodeID)
}
