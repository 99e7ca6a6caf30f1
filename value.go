package shaderz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// ValueKind is the variant tag of a [Value].
type ValueKind uint8

const (
	kindInvalid ValueKind = iota
	KindFloat             // scalar
	KindFloat2            // 2-vector
	KindFloat3            // 3-vector
	KindFloat4            // 4-vector
)

func (k ValueKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindFloat2:
		return "float2"
	case KindFloat3:
		return "float3"
	case KindFloat4:
		return "float4"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Components returns the number of float32 components of the kind, or 0 for an invalid kind.
func (k ValueKind) Components() int {
	if k < KindFloat || k > KindFloat4 {
		return 0
	}
	return int(k)
}

func parseValueKind(s string) (ValueKind, error) {
	for k := KindFloat; k <= KindFloat4; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return kindInvalid, fmt.Errorf("unknown value kind %q", s)
}

// Vec4 is a 4 component float32 vector, usually an RGBA colour in [0,1].
type Vec4 struct {
	X, Y, Z, W float32
}

// Array returns the components of v in order.
func (v Vec4) Array() [4]float32 { return [4]float32{v.X, v.Y, v.Z, v.W} }

// Value is an immutable tagged numeric payload: a scalar or a 2, 3 or 4 component vector.
// The zero Value is invalid and has no kind.
type Value struct {
	kind ValueKind
	v    [4]float32
}

// NewFloat returns a scalar Value.
func NewFloat(f float32) Value {
	return Value{kind: KindFloat, v: [4]float32{f}}
}

// NewFloat2 returns a 2-vector Value.
func NewFloat2(v ms2.Vec) Value {
	return Value{kind: KindFloat2, v: [4]float32{v.X, v.Y}}
}

// NewFloat3 returns a 3-vector Value.
func NewFloat3(v ms3.Vec) Value {
	return Value{kind: KindFloat3, v: [4]float32{v.X, v.Y, v.Z}}
}

// NewFloat4 returns a 4-vector Value.
func NewFloat4(v Vec4) Value {
	return Value{kind: KindFloat4, v: v.Array()}
}

// newValue builds a Value of kind k from the first k.Components() elements of comps.
func newValue(k ValueKind, comps []float32) Value {
	val := Value{kind: k}
	copy(val.v[:k.Components()], comps)
	return val
}

// Kind returns the variant tag of v.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether v holds one of the known variants.
func (v Value) IsValid() bool { return v.kind.Components() > 0 }

// IsFloat reports whether v is a floating point variant. True for every valid
// variant today; reserved for future non numeric variants.
func (v Value) IsFloat() bool {
	switch v.kind {
	case KindFloat, KindFloat2, KindFloat3, KindFloat4:
		return true
	default:
		return false
	}
}

// VariantEq reports whether v and other share a variant, ignoring payloads.
func (v Value) VariantEq(other Value) bool { return v.kind == other.kind }

// Components returns the number of components held by v.
func (v Value) Components() int { return v.kind.Components() }

// Comp returns the i'th component of v. It panics if i is out of range for the variant.
func (v Value) Comp(i int) float32 {
	if i < 0 || i >= v.kind.Components() {
		panic("shaderz: value component index out of range")
	}
	return v.v[i]
}

// Map applies fn to every component of v and returns the result with v's variant.
func (v Value) Map(fn func(float32) float32) Value {
	n := v.kind.Components()
	out := Value{kind: v.kind}
	for i := 0; i < n; i++ {
		out.v[i] = fn(v.v[i])
	}
	return out
}

// Float returns the scalar payload if v is a [KindFloat].
func (v Value) Float() (float32, bool) {
	return v.v[0], v.kind == KindFloat
}

// Vec2 returns the payload if v is a [KindFloat2].
func (v Value) Vec2() (ms2.Vec, bool) {
	return ms2.Vec{X: v.v[0], Y: v.v[1]}, v.kind == KindFloat2
}

// Vec3 returns the payload if v is a [KindFloat3].
func (v Value) Vec3() (ms3.Vec, bool) {
	return ms3.Vec{X: v.v[0], Y: v.v[1], Z: v.v[2]}, v.kind == KindFloat3
}

// Vec4 returns the payload if v is a [KindFloat4].
func (v Value) Vec4() (Vec4, bool) {
	return Vec4{X: v.v[0], Y: v.v[1], Z: v.v[2], W: v.v[3]}, v.kind == KindFloat4
}

func (v Value) String() string {
	if !v.IsValid() {
		return "<invalid>"
	}
	b := append([]byte(v.kind.String()), '(')
	for i := 0; i < v.Components(); i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendFloat(b, float64(v.v[i]), 'g', -1, 32)
	}
	return string(append(b, ')'))
}

type valueJSON struct {
	Kind string    `json:"kind"`
	Data []float32 `json:"data"`
}

var errInvalidValue = errors.New("invalid value")

// MarshalJSON implements [json.Marshaler].
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.IsValid() {
		return nil, errInvalidValue
	}
	return json.Marshal(valueJSON{Kind: v.kind.String(), Data: v.v[:v.Components()]})
}

// UnmarshalJSON implements [json.Unmarshaler].
func (v *Value) UnmarshalJSON(b []byte) error {
	var aux valueJSON
	err := json.Unmarshal(b, &aux)
	if err != nil {
		return err
	}
	k, err := parseValueKind(aux.Kind)
	if err != nil {
		return err
	}
	if len(aux.Data) != k.Components() {
		return fmt.Errorf("%s value needs %d components, got %d", k, k.Components(), len(aux.Data))
	}
	*v = newValue(k, aux.Data)
	return nil
}
