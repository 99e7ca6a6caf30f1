package shaderz

import (
	"errors"
	"fmt"
	"strconv"
)

// FunctionName is the operation tag of a [Function].
type FunctionName uint8

const (
	// FuncEmpty is a placeholder for an unfilled argument.
	FuncEmpty FunctionName = iota
	// FuncF4 builds a 4-vector from its arguments.
	FuncF4
	FuncAbs
	FuncSin
	FuncCos
	// FuncVar reads a variable of the enclosing block.
	FuncVar
	// FuncConst is a literal leaf.
	FuncConst
	funcNameEnd
)

var funcNames = [funcNameEnd]string{
	FuncEmpty: "empty",
	FuncF4:    "vec4",
	FuncAbs:   "abs",
	FuncSin:   "sin",
	FuncCos:   "cos",
	FuncVar:   "var",
	FuncConst: "const",
}

func (fn FunctionName) String() string {
	if fn >= funcNameEnd {
		return "FunctionName(" + strconv.Itoa(int(fn)) + ")"
	}
	return funcNames[fn]
}

// MarshalText implements [encoding.TextMarshaler].
func (fn FunctionName) MarshalText() ([]byte, error) {
	if fn >= funcNameEnd {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFunction, fn)
	}
	return []byte(funcNames[fn]), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (fn *FunctionName) UnmarshalText(b []byte) error {
	for i, name := range funcNames {
		if name == string(b) {
			*fn = FunctionName(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFunction, b)
}

// Arity returns the argument count range accepted by fn.
// Fixed arity tags have min == max.
func (fn FunctionName) Arity() (min, max int) {
	switch fn {
	case FuncAbs, FuncSin, FuncCos:
		return 1, 1
	case FuncF4:
		return 0, 4
	default:
		return 0, 0
	}
}

// IsFixedArity reports whether fn always holds the same number of arguments.
func (fn FunctionName) IsFixedArity() bool {
	min, max := fn.Arity()
	return min == max
}

// Function is a node of an expression tree: a named operation over an ordered
// list of argument Functions. Unary operations always hold exactly one argument,
// initially an [FuncEmpty] placeholder.
type Function struct {
	ID   ID           `json:"id"`
	Name FunctionName `json:"name"`
	Args []Function   `json:"args,omitempty"`
	// Var is the variable read by a FuncVar leaf.
	Var *ID `json:"var,omitempty"`
	// Const is the literal of a FuncConst leaf.
	Const *Value `json:"const,omitempty"`
}

var errFixedArity = errors.New("function has fixed arity")

// NewFunction returns a Function of the given tag honoring its arity:
// unary tags get one empty argument, all other tags start with none.
func NewFunction(name FunctionName) Function {
	f := Function{ID: NewID(), Name: name}
	min, _ := name.Arity()
	for i := 0; i < min; i++ {
		f.Args = append(f.Args, Function{ID: NewID(), Name: FuncEmpty})
	}
	return f
}

// NewVarFunction returns a leaf reading the variable identified by id.
func NewVarFunction(id ID) Function {
	f := NewFunction(FuncVar)
	f.Var = &id
	return f
}

// NewConstFunction returns a literal leaf.
func NewConstFunction(v Value) Function {
	f := NewFunction(FuncConst)
	f.Const = &v
	return f
}

// CreateFunction is the textual factory of functions. Unrecognized names
// return false; this is not an error.
func CreateFunction(name string) (Function, bool) {
	switch name {
	case "abs":
		return NewFunction(FuncAbs), true
	case "sin":
		return NewFunction(FuncSin), true
	case "cos":
		return NewFunction(FuncCos), true
	case "vec4":
		return NewFunction(FuncF4), true
	}
	return Function{}, false
}

// SetArg replaces the i'th argument of f. Arity is unchanged.
func (f *Function) SetArg(i int, arg Function) error {
	if i < 0 || i >= len(f.Args) {
		return fmt.Errorf("%s argument index %d out of range [0,%d)", f.Name, i, len(f.Args))
	}
	f.Args[i] = arg
	return nil
}

// AppendArg adds an argument to a variadic function.
func (f *Function) AppendArg(arg Function) error {
	if f.Name.IsFixedArity() {
		return fmt.Errorf("append to %s: %w", f.Name, errFixedArity)
	}
	_, max := f.Name.Arity()
	if len(f.Args) >= max {
		return fmt.Errorf("append to %s: %w: at most %d arguments", f.Name, ErrArity, max)
	}
	f.Args = append(f.Args, arg)
	return nil
}

// RemoveArg removes the i'th argument of a variadic function.
func (f *Function) RemoveArg(i int) error {
	if f.Name.IsFixedArity() {
		return fmt.Errorf("remove from %s: %w", f.Name, errFixedArity)
	}
	if i < 0 || i >= len(f.Args) {
		return fmt.Errorf("%s argument index %d out of range [0,%d)", f.Name, i, len(f.Args))
	}
	f.Args = append(f.Args[:i], f.Args[i+1:]...)
	return nil
}
