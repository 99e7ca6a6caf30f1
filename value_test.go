package shaderz_test

import (
	"encoding/json"
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/shaderz"
)

func TestValueKinds(t *testing.T) {
	for _, tc := range []struct {
		v     shaderz.Value
		kind  shaderz.ValueKind
		comps []float32
	}{
		{v: shaderz.NewFloat(2), kind: shaderz.KindFloat, comps: []float32{2}},
		{v: shaderz.NewFloat2(ms2.Vec{X: 1, Y: 2}), kind: shaderz.KindFloat2, comps: []float32{1, 2}},
		{v: shaderz.NewFloat3(ms3.Vec{X: 1, Y: 2, Z: 3}), kind: shaderz.KindFloat3, comps: []float32{1, 2, 3}},
		{v: shaderz.NewFloat4(shaderz.Vec4{X: 1, Y: 2, Z: 3, W: 4}), kind: shaderz.KindFloat4, comps: []float32{1, 2, 3, 4}},
	} {
		if tc.v.Kind() != tc.kind {
			t.Errorf("%v: got kind %s, want %s", tc.v, tc.v.Kind(), tc.kind)
		}
		if !tc.v.IsValid() || !tc.v.IsFloat() {
			t.Errorf("%v: expected valid float value", tc.v)
		}
		if tc.v.Components() != len(tc.comps) {
			t.Fatalf("%v: got %d components, want %d", tc.v, tc.v.Components(), len(tc.comps))
		}
		for i, want := range tc.comps {
			if got := tc.v.Comp(i); got != want {
				t.Errorf("%v: component %d is %v, want %v", tc.v, i, got, want)
			}
		}
	}
	var zero shaderz.Value
	if zero.IsValid() || zero.IsFloat() || zero.Components() != 0 {
		t.Error("zero value should be invalid")
	}
	if !shaderz.NewFloat(1).VariantEq(shaderz.NewFloat(-5)) {
		t.Error("same variant with different payloads should be VariantEq")
	}
	if shaderz.NewFloat(1).VariantEq(shaderz.NewFloat2(ms2.Vec{X: 1})) {
		t.Error("float and float2 should not be VariantEq")
	}
}

func TestValueCompPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic indexing past the variant")
		}
	}()
	shaderz.NewFloat2(ms2.Vec{}).Comp(2)
}

func TestValueAccessors(t *testing.T) {
	v := shaderz.NewFloat3(ms3.Vec{X: 1, Y: -2, Z: 3})
	if got, ok := v.Vec3(); !ok || got != (ms3.Vec{X: 1, Y: -2, Z: 3}) {
		t.Errorf("Vec3()=%v,%v", got, ok)
	}
	if _, ok := v.Vec4(); ok {
		t.Error("Vec4() of a float3 should fail")
	}
	if _, ok := v.Float(); ok {
		t.Error("Float() of a float3 should fail")
	}
	mapped := v.Map(func(f float32) float32 { return f * 2 })
	if got, _ := mapped.Vec3(); got != (ms3.Vec{X: 2, Y: -4, Z: 6}) {
		t.Errorf("Map result %v", got)
	}
	if mapped.Kind() != shaderz.KindFloat3 {
		t.Errorf("Map changed kind to %s", mapped.Kind())
	}
	if s := shaderz.NewFloat2(ms2.Vec{X: 0.5, Y: 1}).String(); s != "float2(0.5,1)" {
		t.Errorf("String()=%q", s)
	}
}

func TestValueJSON(t *testing.T) {
	v := shaderz.NewFloat4(shaderz.Vec4{X: 1, Y: 0.25, Z: 0, W: 1})
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	const want = `{"kind":"float4","data":[1,0.25,0,1]}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
	var got shaderz.Value
	err = json.Unmarshal(b, &got)
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("round trip got %v, want %v", got, v)
	}
	for _, bad := range []string{
		`{"kind":"float2","data":[1]}`,
		`{"kind":"float9","data":[]}`,
		`{"kind":"float","data":[1,2]}`,
		`[1,2]`,
	} {
		err = json.Unmarshal([]byte(bad), &got)
		if err == nil {
			t.Errorf("expected error decoding %s", bad)
		}
	}
	_, err = json.Marshal(shaderz.Value{})
	if err == nil {
		t.Error("expected error encoding invalid value")
	}
}

func TestVariable(t *testing.T) {
	empty := shaderz.NewEmptyVariable()
	if !empty.IsEmpty() {
		t.Error("new empty variable is not empty")
	}
	v := shaderz.NewVariable(shaderz.NewFloat(3))
	if lit, ok := v.Literal(); !ok || lit != shaderz.NewFloat(3) {
		t.Errorf("Literal()=%v,%v", lit, ok)
	}
	v.Redirect(empty.ID)
	if v.Value != nil || v.Reference == nil || *v.Reference != empty.ID {
		t.Error("Redirect should drop the literal and set the reference")
	}
	v.Set(shaderz.NewFloat(1))
	if v.Reference != nil || v.Value == nil {
		t.Error("Set should drop the reference and set the literal")
	}
	if a, b := shaderz.NewEmptyVariable(), shaderz.NewEmptyVariable(); a.ID == b.ID || a.ID == shaderz.NilID {
		t.Error("constructors must mint fresh non-nil IDs")
	}
}
