package shaderz

// Variable is a storage cell holding either a literal [Value] or a reference
// to another Variable by ID. With neither set the variable is uninitialized.
// References are non-owning and resolved through the owning [Block].
type Variable struct {
	ID        ID     `json:"id"`
	Value     *Value `json:"value,omitempty"`
	Reference *ID    `json:"reference,omitempty"`
}

// NewEmptyVariable returns an uninitialized variable with a fresh ID.
func NewEmptyVariable() Variable {
	return Variable{ID: NewID()}
}

// NewVariable returns a variable holding the literal v.
func NewVariable(v Value) Variable {
	return Variable{ID: NewID(), Value: &v}
}

// NewReference returns a variable redirected to the variable identified by target.
func NewReference(target ID) Variable {
	return Variable{ID: NewID(), Reference: &target}
}

// Set assigns a literal, dropping any reference.
func (vr *Variable) Set(v Value) {
	vr.Value = &v
	vr.Reference = nil
}

// Redirect makes vr a reference to target, dropping any literal.
func (vr *Variable) Redirect(target ID) {
	vr.Reference = &target
	vr.Value = nil
}

// IsEmpty reports whether vr holds neither a literal nor a reference.
func (vr Variable) IsEmpty() bool { return vr.Value == nil && vr.Reference == nil }

// Literal returns the literal value held by vr, if any.
func (vr Variable) Literal() (Value, bool) {
	if vr.Value == nil {
		return Value{}, false
	}
	return *vr.Value, true
}
