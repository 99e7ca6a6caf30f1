package shaderz

import (
	"sort"
	"strconv"
)

// BlockType distinguishes the entry block of a node from ordinary function blocks.
type BlockType uint8

const (
	BlockMainFunction BlockType = iota
	BlockFunction
)

func (bt BlockType) String() string {
	switch bt {
	case BlockMainFunction:
		return "main"
	case BlockFunction:
		return "function"
	default:
		return "BlockType(?)"
	}
}

// Names of the variables with special meaning inside a main block.
const (
	// VarColor is the output colour read by [Node.ResolveShader].
	VarColor = "color"
	// ArgUV is bound to the normalized pixel coordinate during evaluation.
	ArgUV = "uv"
	// ArgScreen is bound to the buffer dimensions in pixels during evaluation.
	ArgScreen = "screen"
)

// Line assigns the result of its expressions to a variable. When Variable is a
// reference the referenced block variable is the target, otherwise the line's
// own variable is. With several expressions the last result is kept.
type Line struct {
	ID          ID           `json:"id"`
	Variable    Variable     `json:"variable"`
	Expressions []Expression `json:"expressions"`
}

// NewLine returns an empty line with an uninitialized target variable.
func NewLine() Line {
	return Line{ID: NewID(), Variable: NewEmptyVariable()}
}

// NewAssignment returns a line storing the result of exprs into the variable identified by target.
func NewAssignment(target ID, exprs ...Expression) Line {
	return Line{ID: NewID(), Variable: NewReference(target), Expressions: exprs}
}

// Target returns the ID of the variable the line writes to.
func (l *Line) Target() ID {
	if l.Variable.Reference != nil {
		return *l.Variable.Reference
	}
	return l.Variable.ID
}

// Block is a named scope owning argument and local variables and an ordered list of lines.
type Block struct {
	ID        ID                  `json:"id"`
	Name      string              `json:"name"`
	Type      BlockType           `json:"type"`
	Arguments map[string]Variable `json:"arguments"`
	Variables map[string]Variable `json:"variables"`
	Lines     []Line              `json:"lines"`
}

// NewBlock returns an empty block.
func NewBlock(name string, bt BlockType) Block {
	return Block{
		ID:        NewID(),
		Name:      name,
		Type:      bt,
		Arguments: make(map[string]Variable),
		Variables: make(map[string]Variable),
	}
}

// Lookup returns the variable with the given name, searching locals before arguments.
func (b *Block) Lookup(name string) (Variable, bool) {
	if v, ok := b.Variables[name]; ok {
		return v, true
	}
	v, ok := b.Arguments[name]
	return v, ok
}

// SetVariable stores v as the local called name, replacing any previous one.
func (b *Block) SetVariable(name string, v Variable) {
	if b.Variables == nil {
		b.Variables = make(map[string]Variable)
	}
	b.Variables[name] = v
}

// SetArgument stores v as the argument called name, replacing any previous one.
func (b *Block) SetArgument(name string, v Variable) {
	if b.Arguments == nil {
		b.Arguments = make(map[string]Variable)
	}
	b.Arguments[name] = v
}

// AddLine appends l to the block.
func (b *Block) AddLine(l Line) {
	b.Lines = append(b.Lines, l)
}

// RemoveLine removes the line with the given ID and reports whether it was found.
func (b *Block) RemoveLine(id ID) bool {
	for i := range b.Lines {
		if b.Lines[i].ID == id {
			b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// VariableByID finds a variable owned by the block: an argument, a local or a line target.
func (b *Block) VariableByID(id ID) (Variable, bool) {
	var found Variable
	ok := false
	b.forEachVariable(func(_ string, v *Variable) {
		if !ok && v.ID == id {
			found, ok = *v, true
		}
	})
	return found, ok
}

// forEachVariable visits arguments and locals in name order, then line variables
// in line order. where locates the variable within the block, i.e: `arguments["uv"]`.
func (b *Block) forEachVariable(fn func(where string, v *Variable)) {
	for _, table := range [2]struct {
		field string
		m     map[string]Variable
	}{{"arguments", b.Arguments}, {"variables", b.Variables}} {
		for _, name := range sortedKeys(table.m) {
			v := table.m[name]
			fn(table.field+"["+strconv.Quote(name)+"]", &v)
		}
	}
	for i := range b.Lines {
		fn("lines["+strconv.Itoa(i)+"].variable", &b.Lines[i].Variable)
	}
}

func sortedKeys(m map[string]Variable) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
