package shaderaux

import (
	"github.com/soypat/shaderz"
)

// Selection tracks the node previewed for an object of a project. The
// selection cycles through every node of the object and then none, which
// previews the uv gradient.
type Selection struct {
	project  *shaderz.Project
	objectID shaderz.ID
	// index of the selected node. len(Nodes) means none.
	index int
}

// NewSelection returns a selection on the first node of the object, or none
// if the object has no nodes.
func NewSelection(p *shaderz.Project, objectID shaderz.ID) *Selection {
	return &Selection{project: p, objectID: objectID}
}

func (s *Selection) object() *shaderz.Object {
	return s.project.Object(s.objectID)
}

// ObjectID returns the ID of the object the selection is on.
func (s *Selection) ObjectID() shaderz.ID { return s.objectID }

// Next selects the following node, wrapping around through none.
func (s *Selection) Next() {
	obj := s.object()
	if obj == nil {
		return
	}
	s.index = (s.index + 1) % (len(obj.Nodes) + 1)
}

// Node returns the selected node or nil when none is selected.
func (s *Selection) Node() *shaderz.Node {
	obj := s.object()
	if obj == nil || s.index >= len(obj.Nodes) {
		return nil
	}
	return &obj.Nodes[s.index]
}

// NodeID returns the ID of the selected node or nil when none is selected.
func (s *Selection) NodeID() *shaderz.ID {
	node := s.Node()
	if node == nil {
		return nil
	}
	id := node.ID
	return &id
}

// Name returns the selected node's name or "none".
func (s *Selection) Name() string {
	node := s.Node()
	if node == nil {
		return "none"
	}
	return node.Name
}

// ShiftHue rotates the hue of the literal colour held by the selected node's
// main block by dh turns. It returns false if there is nothing to edit: no
// node selected, or its colour is not a literal Float3 or Float4.
func (s *Selection) ShiftHue(dh float32) bool {
	node := s.Node()
	if node == nil {
		return false
	}
	main := node.MainBlock()
	if main == nil {
		return false
	}
	color, ok := main.Lookup(shaderz.VarColor)
	if !ok {
		return false
	}
	lit, ok := color.Literal()
	if !ok {
		return false
	}
	shifted, ok := ShiftHue(lit, dh)
	if !ok {
		return false
	}
	color.Set(shifted)
	if _, isLocal := main.Variables[shaderz.VarColor]; isLocal {
		main.SetVariable(shaderz.VarColor, color)
	} else {
		main.SetArgument(shaderz.VarColor, color)
	}
	return true
}
