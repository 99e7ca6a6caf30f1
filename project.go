package shaderz

// Object is a collection of nodes addressable by ID.
type Object struct {
	ID    ID     `json:"id"`
	Nodes []Node `json:"nodes"`
}

// NewObject returns an empty object.
func NewObject() Object {
	return Object{ID: NewID()}
}

// Node returns the node with the given ID or nil if the object does not own it.
// The returned pointer is invalidated by AddNode and RemoveNode.
func (o *Object) Node(id ID) *Node {
	for i := range o.Nodes {
		if o.Nodes[i].ID == id {
			return &o.Nodes[i]
		}
	}
	return nil
}

// AddNode appends n to the object and returns its ID.
func (o *Object) AddNode(n Node) ID {
	o.Nodes = append(o.Nodes, n)
	return n.ID
}

// RemoveNode removes the node with the given ID together with its blocks.
func (o *Object) RemoveNode(id ID) bool {
	for i := range o.Nodes {
		if o.Nodes[i].ID == id {
			o.Nodes = append(o.Nodes[:i], o.Nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Project is the top level collection of objects and the unit of persistence.
//
// A Project must not be edited while [Project.RenderObject] runs; the render
// sweep reads the tree from several goroutines without locking.
type Project struct {
	ID      ID       `json:"id"`
	Objects []Object `json:"objects"`
}

// NewProject returns an empty project.
func NewProject() *Project {
	return &Project{ID: NewID()}
}

// NewDefaultShaderProject returns a project holding the default shader. See [Project.GenDefaultShaderProject].
func NewDefaultShaderProject() *Project {
	p := NewProject()
	p.GenDefaultShaderProject()
	return p
}

// GenDefaultShaderProject replaces the project's contents with a single object
// holding a single "Shader" node whose main block "color" declares a local
// variable "color" with the literal value (1,0,0,1).
func (p *Project) GenDefaultShaderProject() {
	block := NewBlock("color", BlockMainFunction)
	block.SetVariable(VarColor, NewVariable(NewFloat4(Vec4{X: 1, W: 1})))
	node := NewNode("Shader", NodeShader)
	node.AddBlock(block)
	obj := NewObject()
	obj.AddNode(node)
	p.Objects = []Object{obj}
}

// Object returns the object with the given ID or nil if it does not exist.
// The returned pointer is invalidated by AddObject and RemoveObject.
func (p *Project) Object(id ID) *Object {
	for i := range p.Objects {
		if p.Objects[i].ID == id {
			return &p.Objects[i]
		}
	}
	return nil
}

// AddObject appends o to the project and returns its ID.
func (p *Project) AddObject(o Object) ID {
	p.Objects = append(p.Objects, o)
	return o.ID
}

// RemoveObject removes the object with the given ID together with its nodes.
func (p *Project) RemoveObject(id ID) bool {
	for i := range p.Objects {
		if p.Objects[i].ID == id {
			p.Objects = append(p.Objects[:i], p.Objects[i+1:]...)
			return true
		}
	}
	return false
}

// FindNode searches every object for the node with the given ID and returns
// it with its owning object. Both are nil when not found.
func (p *Project) FindNode(id ID) (*Object, *Node) {
	for i := range p.Objects {
		if n := p.Objects[i].Node(id); n != nil {
			return &p.Objects[i], n
		}
	}
	return nil, nil
}
