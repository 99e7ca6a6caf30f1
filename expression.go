package shaderz

import (
	"fmt"
	"strconv"
)

// Operator is a binary infix operator joining consecutive functions of an [Expression].
type Operator rune

const (
	OpAdd Operator = '+'
	OpSub Operator = '-'
	OpMul Operator = '*'
	OpDiv Operator = '/'
)

// IsValid reports whether op is a known operator.
func (op Operator) IsValid() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

func (op Operator) String() string {
	if !op.IsValid() {
		return "Operator(" + strconv.QuoteRune(rune(op)) + ")"
	}
	return string(rune(op))
}

// MarshalText implements [encoding.TextMarshaler].
func (op Operator) MarshalText() ([]byte, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownOperator, rune(op))
	}
	return []byte(string(rune(op))), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (op *Operator) UnmarshalText(b []byte) error {
	r := []rune(string(b))
	if len(r) != 1 || !Operator(r[0]).IsValid() {
		return fmt.Errorf("%w %q", ErrUnknownOperator, b)
	}
	*op = Operator(r[0])
	return nil
}

// Expression is an infix chain of Function trees: Functions[0] Operators[0] Functions[1] ...
// A well formed expression holds len(Functions)-1 operators.
type Expression struct {
	ID        ID         `json:"id"`
	Functions []Function `json:"functions"`
	Operators []Operator `json:"operators"`
}

// NewExpression returns an expression over fns joined by ops. It fails if the
// operator count is not len(fns)-1 or an operator is unknown.
func NewExpression(fns []Function, ops []Operator) (Expression, error) {
	e := Expression{ID: NewID(), Functions: fns, Operators: ops}
	err := e.validate()
	if err != nil {
		return Expression{}, err
	}
	return e, nil
}

// Append extends the chain with op and f. The operator is ignored for the first function.
func (e *Expression) Append(op Operator, f Function) error {
	if len(e.Functions) == 0 {
		e.Functions = append(e.Functions, f)
		return nil
	}
	if !op.IsValid() {
		return fmt.Errorf("%w %q", ErrUnknownOperator, rune(op))
	}
	e.Operators = append(e.Operators, op)
	e.Functions = append(e.Functions, f)
	return nil
}

func (e *Expression) validate() error {
	want := len(e.Functions) - 1
	if want < 0 {
		want = 0
	}
	if len(e.Operators) != want {
		return fmt.Errorf("expression with %d functions needs %d operators, got %d", len(e.Functions), want, len(e.Operators))
	}
	for _, op := range e.Operators {
		if !op.IsValid() {
			return fmt.Errorf("%w %q", ErrUnknownOperator, rune(op))
		}
	}
	return nil
}
