package shaderz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ValidationError is a structural defect found in a project, such as a
// duplicated ID or a dangling reference.
type ValidationError struct {
	ID      ID     // entity with the defect
	Path    string // location of the entity in the project tree
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid project at " + e.Path + " (" + shortID(e.ID) + "): " + e.Message
}

// Save writes p as indented JSON. IDs are written verbatim so references
// survive a round trip.
func (p *Project) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(p)
}

// LoadProject decodes a project written by [Project.Save] and validates it.
// A malformed project is never returned: any defect fails the whole load,
// including repeated object keys which would otherwise drop variables silently.
func LoadProject(r io.Reader) (*Project, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	err = checkDuplicateKeys(data)
	if err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var p Project
	err = dec.Decode(&p)
	if err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	err = p.Validate()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the structural invariants of the project tree. All defects
// found are returned joined as [*ValidationError]s:
//   - IDs are unique across the whole tree.
//   - No variable holds both a value and a reference.
//   - References and variable reads resolve within the owning block and do not cycle.
//   - Functions hold a number of arguments their tag accepts.
//   - Expressions hold one operator less than functions and operators are known.
func (p *Project) Validate() error {
	v := validator{seen: make(map[ID]string)}
	v.id(p.ID, "project")
	for i := range p.Objects {
		obj := &p.Objects[i]
		path := "objects[" + strconv.Itoa(i) + "]"
		v.id(obj.ID, path)
		for j := range obj.Nodes {
			v.node(&obj.Nodes[j], path+".nodes["+strconv.Itoa(j)+"]")
		}
	}
	return errors.Join(v.errs...)
}

type validator struct {
	seen map[ID]string
	errs []error
}

func (v *validator) errorf(id ID, path, format string, args ...any) {
	v.errs = append(v.errs, &ValidationError{ID: id, Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) id(id ID, path string) {
	if id == NilID {
		v.errorf(id, path, "missing id")
		return
	}
	if prev, dup := v.seen[id]; dup {
		v.errorf(id, path, "duplicate id, first used at %s", prev)
		return
	}
	v.seen[id] = path
}

func (v *validator) node(n *Node, path string) {
	v.id(n.ID, path)
	if n.Type != NodeShader {
		v.errorf(n.ID, path, "unknown node type %d", n.Type)
	}
	for i := range n.Blocks {
		v.block(&n.Blocks[i], path+".blocks["+strconv.Itoa(i)+"]")
	}
}

func (v *validator) block(b *Block, path string) {
	v.id(b.ID, path)
	if b.Type != BlockMainFunction && b.Type != BlockFunction {
		v.errorf(b.ID, path, "unknown block type %d", b.Type)
	}
	// Variables the block owns, by ID, and their paths in visiting order.
	owned := make(map[ID]Variable)
	var paths []string
	var order []ID
	b.forEachVariable(func(where string, vr *Variable) {
		vpath := path + "." + where
		v.id(vr.ID, vpath)
		if vr.Value != nil && vr.Reference != nil {
			v.errorf(vr.ID, vpath, "variable holds both a value and a reference")
		}
		owned[vr.ID] = *vr
		order = append(order, vr.ID)
		paths = append(paths, vpath)
	})
	for i, id := range order {
		ref := owned[id].Reference
		if ref == nil {
			continue
		}
		if _, ok := owned[*ref]; !ok {
			v.errorf(id, paths[i], "reference to %s outside block %q", shortID(*ref), b.Name)
		} else if cyclic(owned, id) {
			v.errorf(id, paths[i], "reference cycle")
		}
	}
	for i := range b.Lines {
		line := &b.Lines[i]
		lpath := path + ".lines[" + strconv.Itoa(i) + "]"
		v.id(line.ID, lpath)
		for j := range line.Expressions {
			v.expression(&line.Expressions[j], lpath+".expressions["+strconv.Itoa(j)+"]", owned)
		}
	}
}

// cyclic reports whether following references from start revisits a variable.
func cyclic(owned map[ID]Variable, start ID) bool {
	visited := make(map[ID]bool)
	cur := start
	for {
		if visited[cur] {
			return true
		}
		visited[cur] = true
		vr, ok := owned[cur]
		if !ok || vr.Reference == nil {
			return false
		}
		cur = *vr.Reference
	}
}

func (v *validator) expression(e *Expression, path string, owned map[ID]Variable) {
	v.id(e.ID, path)
	err := e.validate()
	if err != nil {
		v.errorf(e.ID, path, "%v", err)
	}
	for i := range e.Functions {
		v.function(&e.Functions[i], path+".functions["+strconv.Itoa(i)+"]", owned)
	}
}

func (v *validator) function(f *Function, path string, owned map[ID]Variable) {
	v.id(f.ID, path)
	if f.Name >= funcNameEnd {
		v.errorf(f.ID, path, "%v", ErrUnknownFunction)
		return
	}
	min, max := f.Name.Arity()
	if len(f.Args) < min || len(f.Args) > max {
		v.errorf(f.ID, path, "%s holds %d arguments, accepts [%d,%d]", f.Name, len(f.Args), min, max)
	}
	switch f.Name {
	case FuncVar:
		if f.Var == nil {
			v.errorf(f.ID, path, "var function without variable")
		} else if _, ok := owned[*f.Var]; !ok {
			v.errorf(f.ID, path, "reads variable %s outside its block", shortID(*f.Var))
		}
	case FuncConst:
		if f.Const == nil || !f.Const.IsValid() {
			v.errorf(f.ID, path, "const function without value")
		}
	}
	if f.Name != FuncVar && f.Var != nil {
		v.errorf(f.ID, path, "%s function holds a variable", f.Name)
	}
	if f.Name != FuncConst && f.Const != nil {
		v.errorf(f.ID, path, "%s function holds a literal", f.Name)
	}
	for i := range f.Args {
		v.function(&f.Args[i], path+".args["+strconv.Itoa(i)+"]", owned)
	}
}

// checkDuplicateKeys walks the first JSON value of data and fails on any
// object holding the same key twice.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return walkKeys(dec, "$")
}

func walkKeys(dec *json.Decoder, path string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			tok, err = dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("object key at %s is not a string", path)
			}
			if seen[key] {
				return fmt.Errorf("duplicate key %q at %s", key, path)
			}
			seen[key] = true
			err = walkKeys(dec, path+"."+key)
			if err != nil {
				return err
			}
		}
	case '[':
		for i := 0; dec.More(); i++ {
			err = walkKeys(dec, path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return err
			}
		}
	}
	_, err = dec.Token() // Closing delimiter.
	return err
}
