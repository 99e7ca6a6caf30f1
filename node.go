package shaderz

import (
	"github.com/soypat/geometry/ms2"
)

// NodeType is the kind of unit a [Node] represents.
type NodeType uint8

const (
	NodeShader NodeType = iota
)

func (nt NodeType) String() string {
	if nt == NodeShader {
		return "shader"
	}
	return "NodeType(?)"
}

// Node is a shader unit: a named container of blocks, one of which should be
// the [BlockMainFunction] entry point.
type Node struct {
	ID     ID       `json:"id"`
	Name   string   `json:"name"`
	Type   NodeType `json:"type"`
	Blocks []Block  `json:"blocks"`
}

// NewNode returns an empty node.
func NewNode(name string, nt NodeType) Node {
	return Node{ID: NewID(), Name: name, Type: nt}
}

// MainBlock returns the first block of type [BlockMainFunction], or nil.
func (n *Node) MainBlock() *Block {
	for i := range n.Blocks {
		if n.Blocks[i].Type == BlockMainFunction {
			return &n.Blocks[i]
		}
	}
	return nil
}

// AddBlock appends b to the node.
func (n *Node) AddBlock(b Block) {
	n.Blocks = append(n.Blocks, b)
}

// ResolveShader evaluates the node for a single pixel and returns its colour.
// uv is the normalized pixel coordinate and screen the buffer size in pixels.
// It never fails: a node without a main block, without a "color" variable,
// with a colour of the wrong variant or whose evaluation fails yields (0,0,0,0).
func (n *Node) ResolveShader(uv, screen ms2.Vec) Vec4 {
	var ev Evaluator
	return n.ResolveShaderWith(&ev, uv, screen)
}

// ResolveShaderWith is [Node.ResolveShader] reusing ev's storage.
func (n *Node) ResolveShaderWith(ev *Evaluator, uv, screen ms2.Vec) Vec4 {
	main := n.MainBlock()
	if main == nil {
		return Vec4{}
	}
	color, ok := main.Lookup(VarColor)
	if !ok {
		return Vec4{}
	}
	if len(main.Lines) == 0 && len(main.Arguments) == 0 && color.Value != nil {
		// Static colour, nothing to evaluate.
		return vec4OrZero(*color.Value)
	}
	_ = ev.RunBlock(main, uv, screen) // Failed lines leave their targets untouched.
	v, err := ev.Resolve(color.ID)
	if err != nil {
		return Vec4{}
	}
	return vec4OrZero(v)
}

func vec4OrZero(v Value) Vec4 {
	c, ok := v.Vec4()
	if !ok {
		return Vec4{}
	}
	return c
}
