package shaderz

import (
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
)

var (
	// ErrUnresolvedReference is returned when a variable reference chain does not
	// end in a literal value, either because a link is missing or because it cycles.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrUnfilledArgument is returned when evaluating an empty placeholder function.
	ErrUnfilledArgument = errors.New("unfilled argument")
	// ErrOperandMismatch is returned when a binary operator joins values of different variants.
	ErrOperandMismatch = errors.New("operand type mismatch")
	// ErrArity is returned when a function or expression holds the wrong number of arguments.
	ErrArity = errors.New("arity violation")
	// ErrUnknownOperator is returned for operators other than + - * /.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrUnknownFunction is returned for function tags outside the known set.
	ErrUnknownFunction = errors.New("unknown function")
)

// EvalError describes where evaluation of a syntax entity failed.
// It wraps one of the package's sentinel errors.
type EvalError struct {
	ID  ID     // entity that failed to evaluate
	Op  string // what was being evaluated, i.e: "line", "expression", "function sin"
	Err error
}

func (e *EvalError) Error() string {
	return e.Op + " " + shortID(e.ID) + ": " + e.Err.Error()
}

func (e *EvalError) Unwrap() error { return e.Err }

func shortID(id ID) string { return id.String()[:8] }

// Evaluator evaluates the syntax of a single block. Its context maps variable
// IDs to literal values and to the IDs they reference; it is rebuilt by
// [Evaluator.Bind] and reuses its storage between calls.
//
// The zero value is ready to use. An Evaluator is not safe for concurrent use.
type Evaluator struct {
	values map[ID]Value
	refs   map[ID]ID
	known  int
}

// Bind resets the evaluation context to the variables owned by b:
// its arguments, its locals and the variables of its lines.
func (ev *Evaluator) Bind(b *Block) {
	if ev.values == nil {
		ev.values = make(map[ID]Value)
		ev.refs = make(map[ID]ID)
	} else {
		clear(ev.values)
		clear(ev.refs)
	}
	ev.known = 0
	for _, v := range b.Arguments {
		ev.bind(v)
	}
	for _, v := range b.Variables {
		ev.bind(v)
	}
	for i := range b.Lines {
		ev.bind(b.Lines[i].Variable)
	}
}

func (ev *Evaluator) bind(v Variable) {
	ev.known++
	switch {
	case v.Value != nil:
		ev.values[v.ID] = *v.Value
	case v.Reference != nil:
		ev.refs[v.ID] = *v.Reference
	}
}

// Set stores v in the variable identified by id, replacing a reference if it held one.
func (ev *Evaluator) Set(id ID, v Value) {
	if ev.values == nil {
		ev.values = make(map[ID]Value)
		ev.refs = make(map[ID]ID)
	}
	ev.values[id] = v
	delete(ev.refs, id)
}

// Resolve returns the literal value of the variable identified by id, following
// references. Chains longer than the number of bound variables are cycles.
func (ev *Evaluator) Resolve(id ID) (Value, error) {
	cur := id
	for steps := 0; steps <= ev.known; steps++ {
		if v, ok := ev.values[cur]; ok {
			return v, nil
		}
		next, ok := ev.refs[cur]
		if !ok {
			return Value{}, &EvalError{ID: id, Op: "variable", Err: ErrUnresolvedReference}
		}
		cur = next
	}
	return Value{}, &EvalError{ID: id, Op: "variable", Err: fmt.Errorf("%w: reference cycle", ErrUnresolvedReference)}
}

// RunBlock binds b, assigns uv and screen to the block's "uv" and "screen"
// arguments if present, then runs every line in order. A failing line leaves its
// target untouched and does not stop the remaining lines; all failures are returned joined.
func (ev *Evaluator) RunBlock(b *Block, uv, screen ms2.Vec) error {
	ev.Bind(b)
	if arg, ok := b.Arguments[ArgUV]; ok {
		ev.Set(arg.ID, NewFloat2(uv))
	}
	if arg, ok := b.Arguments[ArgScreen]; ok {
		ev.Set(arg.ID, NewFloat2(screen))
	}
	var errs []error
	for i := range b.Lines {
		err := ev.Line(&b.Lines[i])
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Line evaluates the expressions of l in order and stores the last result in
// the line's target. Lines without expressions are no-ops.
func (ev *Evaluator) Line(l *Line) error {
	if len(l.Expressions) == 0 {
		return nil
	}
	var result Value
	for i := range l.Expressions {
		v, err := ev.Expression(&l.Expressions[i])
		if err != nil {
			return &EvalError{ID: l.ID, Op: "line", Err: err}
		}
		result = v
	}
	ev.Set(l.Target(), result)
	return nil
}

// Expression folds the functions of e left to right with its operators.
// Operands must share a variant.
func (ev *Evaluator) Expression(e *Expression) (Value, error) {
	if len(e.Functions) == 0 || len(e.Operators) != len(e.Functions)-1 {
		return Value{}, &EvalError{ID: e.ID, Op: "expression", Err: fmt.Errorf("%w: %d functions with %d operators", ErrArity, len(e.Functions), len(e.Operators))}
	}
	acc, err := ev.Function(&e.Functions[0])
	if err != nil {
		return Value{}, err
	}
	for i, op := range e.Operators {
		rhs, err := ev.Function(&e.Functions[i+1])
		if err != nil {
			return Value{}, err
		}
		acc, err = applyOperator(op, acc, rhs)
		if err != nil {
			return Value{}, &EvalError{ID: e.ID, Op: "expression", Err: err}
		}
	}
	return acc, nil
}

// Function evaluates the tree rooted at f.
func (ev *Evaluator) Function(f *Function) (Value, error) {
	switch f.Name {
	case FuncEmpty:
		return Value{}, f.errorf(ErrUnfilledArgument)
	case FuncConst:
		if f.Const == nil || !f.Const.IsValid() {
			return Value{}, f.errorf(ErrUnfilledArgument)
		}
		return *f.Const, nil
	case FuncVar:
		if f.Var == nil {
			return Value{}, f.errorf(ErrUnfilledArgument)
		}
		return ev.Resolve(*f.Var)
	case FuncAbs, FuncSin, FuncCos:
		if len(f.Args) != 1 {
			return Value{}, f.errorf(fmt.Errorf("%w: want 1 argument, got %d", ErrArity, len(f.Args)))
		}
		arg, err := ev.Function(&f.Args[0])
		if err != nil {
			return Value{}, err
		}
		switch f.Name {
		case FuncAbs:
			return arg.Map(absf), nil
		case FuncSin:
			return arg.Map(sinf), nil
		default:
			return arg.Map(cosf), nil
		}
	case FuncF4:
		return ev.vec4(f)
	}
	return Value{}, f.errorf(ErrUnknownFunction)
}

// vec4 concatenates the components of f's arguments into a 4-vector.
// A lone scalar argument is broadcast to all four components.
func (ev *Evaluator) vec4(f *Function) (Value, error) {
	var comps [4]float32
	n := 0
	for i := range f.Args {
		v, err := ev.Function(&f.Args[i])
		if err != nil {
			return Value{}, err
		}
		if n+v.Components() > 4 {
			return Value{}, f.errorf(fmt.Errorf("%w: more than 4 components", ErrArity))
		}
		for j := 0; j < v.Components(); j++ {
			comps[n] = v.v[j]
			n++
		}
	}
	if n == 1 && len(f.Args) == 1 {
		comps = [4]float32{comps[0], comps[0], comps[0], comps[0]}
		n = 4
	}
	if n != 4 {
		return Value{}, f.errorf(fmt.Errorf("%w: got %d components, want 4", ErrArity, n))
	}
	return Value{kind: KindFloat4, v: comps}, nil
}

func (f *Function) errorf(err error) error {
	return &EvalError{ID: f.ID, Op: "function " + f.Name.String(), Err: err}
}

func applyOperator(op Operator, a, b Value) (Value, error) {
	if !op.IsValid() {
		return Value{}, fmt.Errorf("%w %q", ErrUnknownOperator, rune(op))
	}
	if !a.VariantEq(b) || !a.IsValid() {
		return Value{}, fmt.Errorf("%w: %s %s %s", ErrOperandMismatch, a.kind, op, b.kind)
	}
	out := Value{kind: a.kind}
	for i := 0; i < a.Components(); i++ {
		x, y := a.v[i], b.v[i]
		switch op {
		case OpAdd:
			out.v[i] = x + y
		case OpSub:
			out.v[i] = x - y
		case OpMul:
			out.v[i] = x * y
		case OpDiv:
			out.v[i] = x / y
		}
	}
	return out, nil
}
