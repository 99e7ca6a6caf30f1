package glbuild

import (
	"fmt"
	"sort"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/shaderz"
)

// typeInfo is the result of the static type pass over a block. GLSL variables
// have a single type so every assignment to a variable must agree.
type typeInfo struct {
	kinds map[shaderz.ID]shaderz.ValueKind
	refs  map[shaderz.ID]shaderz.ID
	owned map[shaderz.ID]bool
}

func (ti *typeInfo) reset() {
	if ti.kinds == nil {
		ti.kinds = make(map[shaderz.ID]shaderz.ValueKind)
		ti.refs = make(map[shaderz.ID]shaderz.ID)
		ti.owned = make(map[shaderz.ID]bool)
		return
	}
	clear(ti.kinds)
	clear(ti.refs)
	clear(ti.owned)
}

func (ti *typeInfo) declare(v shaderz.Variable) {
	ti.owned[v.ID] = true
	switch {
	case v.Value != nil:
		ti.kinds[v.ID] = v.Value.Kind()
	case v.Reference != nil:
		ti.refs[v.ID] = *v.Reference
	}
}

// resolve follows references from id. It must be called after infer succeeds.
func (ti *typeInfo) resolve(id shaderz.ID) shaderz.ID {
	for steps := 0; steps <= len(ti.refs); steps++ {
		next, ok := ti.refs[id]
		if !ok {
			return id
		}
		id = next
	}
	return id
}

func (ti *typeInfo) checkReference(id shaderz.ID) error {
	cur := id
	for steps := 0; steps <= len(ti.refs); steps++ {
		next, ok := ti.refs[cur]
		if !ok {
			return nil
		}
		if !ti.owned[next] {
			return fmt.Errorf("%w: variable %s references a variable outside the block", shaderz.ErrUnresolvedReference, id)
		}
		cur = next
	}
	return fmt.Errorf("%w: reference cycle through %s", shaderz.ErrUnresolvedReference, id)
}

// infer computes the kind of every variable of block in line order.
func (ti *typeInfo) infer(block *shaderz.Block) error {
	ti.reset()
	for name, v := range block.Arguments {
		if name == shaderz.ArgUV || name == shaderz.ArgScreen {
			ti.owned[v.ID] = true
			ti.kinds[v.ID] = shaderz.KindFloat2
			continue
		}
		ti.declare(v)
	}
	for _, v := range block.Variables {
		ti.declare(v)
	}
	for i := range block.Lines {
		ti.declare(block.Lines[i].Variable)
	}
	for id := range ti.refs {
		err := ti.checkReference(id)
		if err != nil {
			return err
		}
	}
	for i := range block.Lines {
		line := &block.Lines[i]
		if len(line.Expressions) == 0 {
			continue
		}
		var kind shaderz.ValueKind
		for j := range line.Expressions {
			k, err := ti.expression(&line.Expressions[j])
			if err != nil {
				return fmt.Errorf("line %d: %w", i, err)
			}
			kind = k
		}
		target := line.Target()
		if _, isAlias := ti.refs[target]; isAlias {
			return fmt.Errorf("line %d: assignment to a reference variable is not supported", i)
		}
		if prev := ti.kinds[target]; prev != 0 && prev != kind {
			return fmt.Errorf("line %d: %w: assigning %s to %s variable", i, shaderz.ErrOperandMismatch, kind, prev)
		}
		ti.kinds[target] = kind
	}
	return nil
}

func (ti *typeInfo) expression(e *shaderz.Expression) (shaderz.ValueKind, error) {
	if len(e.Functions) == 0 || len(e.Operators) != len(e.Functions)-1 {
		return 0, fmt.Errorf("%w: %d functions with %d operators", shaderz.ErrArity, len(e.Functions), len(e.Operators))
	}
	acc, err := ti.function(&e.Functions[0])
	if err != nil {
		return 0, err
	}
	for i, op := range e.Operators {
		if !op.IsValid() {
			return 0, fmt.Errorf("%w %q", shaderz.ErrUnknownOperator, rune(op))
		}
		rhs, err := ti.function(&e.Functions[i+1])
		if err != nil {
			return 0, err
		}
		if rhs != acc {
			return 0, fmt.Errorf("%w: %s %s %s", shaderz.ErrOperandMismatch, acc, op, rhs)
		}
	}
	return acc, nil
}

func (ti *typeInfo) function(f *shaderz.Function) (shaderz.ValueKind, error) {
	switch f.Name {
	case shaderz.FuncEmpty:
		return 0, shaderz.ErrUnfilledArgument
	case shaderz.FuncConst:
		if f.Const == nil || !f.Const.IsValid() {
			return 0, shaderz.ErrUnfilledArgument
		}
		return f.Const.Kind(), nil
	case shaderz.FuncVar:
		if f.Var == nil {
			return 0, shaderz.ErrUnfilledArgument
		}
		if !ti.owned[*f.Var] {
			return 0, fmt.Errorf("%w: read of variable %s outside the block", shaderz.ErrUnresolvedReference, *f.Var)
		}
		kind := ti.kinds[ti.resolve(*f.Var)]
		if kind == 0 {
			return 0, fmt.Errorf("%w: read of variable %s before assignment", shaderz.ErrUnresolvedReference, *f.Var)
		}
		return kind, nil
	case shaderz.FuncAbs, shaderz.FuncSin, shaderz.FuncCos:
		if len(f.Args) != 1 {
			return 0, fmt.Errorf("%w: %s takes 1 argument, got %d", shaderz.ErrArity, f.Name, len(f.Args))
		}
		return ti.function(&f.Args[0])
	case shaderz.FuncF4:
		n := 0
		for i := range f.Args {
			k, err := ti.function(&f.Args[i])
			if err != nil {
				return 0, err
			}
			n += k.Components()
		}
		if n == 4 || (n == 1 && len(f.Args) == 1) {
			return shaderz.KindFloat4, nil
		}
		return 0, fmt.Errorf("%w: vec4 from %d components", shaderz.ErrArity, n)
	}
	return 0, shaderz.ErrUnknownFunction
}

func zeroValue(k shaderz.ValueKind) shaderz.Value {
	switch k {
	case shaderz.KindFloat:
		return shaderz.NewFloat(0)
	case shaderz.KindFloat2:
		return shaderz.NewFloat2(ms2.Vec{})
	case shaderz.KindFloat3:
		return shaderz.NewFloat3(ms3.Vec{})
	}
	return shaderz.NewFloat4(shaderz.Vec4{})
}

func sortedNames(m map[string]shaderz.Variable) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
