// Package shaderz implements the syntax model and CPU evaluation engine of a
// node based shader authoring tool.
//
// A [Project] owns [Object]s, which own shader [Node]s. A Node is made of
// [Block]s holding [Variable]s and [Line]s; each Line assigns the result of
// [Expression]s, themselves chains of [Function] trees, to a Variable.
// [Project.RenderObject] evaluates a node at every pixel of a buffer in parallel.
package shaderz

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// ID is the process unique identity carried by every syntax entity.
// Entities are always addressed and compared by ID, never structurally.
type ID = uuid.UUID

// NilID is the zero ID. No constructor ever returns it.
var NilID ID

// NewID mints a new random 128 bit identifier.
func NewID() ID { return uuid.New() }

// nopHandler discards all records. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by shaderz. By default nothing is logged.
// Passing nil restores the silent default. Safe for concurrent use.
//
// Render sweep timings are logged at [slog.LevelDebug].
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

func absf(a float32) float32 { return math32.Abs(a) }
func sinf(a float32) float32 { return math32.Sin(a) }
func cosf(a float32) float32 { return math32.Cos(a) }
