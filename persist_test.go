package shaderz_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/soypat/shaderz"
)

func roundTrip(t *testing.T, p *shaderz.Project) (*shaderz.Project, error) {
	t.Helper()
	var buf bytes.Buffer
	err := p.Save(&buf)
	if err != nil {
		t.Fatal(err)
	}
	return shaderz.LoadProject(&buf)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p, objID, nodeID := stripesProject(t)
	p.Objects[0].AddNode(shaderz.NewDefaultShaderProject().Objects[0].Nodes[0])
	err := p.Validate()
	if err != nil {
		t.Fatal(err)
	}
	got, err := roundTrip(t, p)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatal("loaded project differs from saved project")
	}
	// References survive: rendering both yields identical output.
	want := newBuffer(t, 16, 16)
	loaded := newBuffer(t, 16, 16)
	p.RenderObject(want, objID, &nodeID)
	got.RenderObject(loaded, objID, &nodeID)
	if !want.Equal(loaded) {
		t.Error("loaded project renders differently")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(p *shaderz.Project)
		msg    string
	}{
		{
			name: "duplicate node",
			mutate: func(p *shaderz.Project) {
				p.Objects[0].Nodes = append(p.Objects[0].Nodes, p.Objects[0].Nodes[0])
			},
			msg: "duplicate id",
		},
		{
			name: "value and reference",
			mutate: func(p *shaderz.Project) {
				b := &p.Objects[0].Nodes[0].Blocks[0]
				v := b.Variables[shaderz.VarColor]
				other := shaderz.NewVariable(shaderz.NewFloat(1))
				b.SetVariable("other", other)
				v.Reference = &other.ID
				b.SetVariable(shaderz.VarColor, v)
			},
			msg: "both a value and a reference",
		},
		{
			name: "dangling reference",
			mutate: func(p *shaderz.Project) {
				b := &p.Objects[0].Nodes[0].Blocks[0]
				b.SetVariable("ghost", shaderz.NewReference(shaderz.NewID()))
			},
			msg: "outside block",
		},
		{
			name: "reference cycle",
			mutate: func(p *shaderz.Project) {
				b := &p.Objects[0].Nodes[0].Blocks[0]
				a := shaderz.NewEmptyVariable()
				c := shaderz.NewReference(a.ID)
				a.Redirect(c.ID)
				b.SetVariable("a", a)
				b.SetVariable("c", c)
			},
			msg: "reference cycle",
		},
		{
			name: "arity",
			mutate: func(p *shaderz.Project) {
				b := &p.Objects[0].Nodes[0].Blocks[0]
				abs := shaderz.NewFunction(shaderz.FuncAbs)
				abs.Args = nil
				b.AddLine(shaderz.Line{
					ID:          shaderz.NewID(),
					Variable:    shaderz.NewEmptyVariable(),
					Expressions: []shaderz.Expression{{ID: shaderz.NewID(), Functions: []shaderz.Function{abs}}},
				})
			},
			msg: "holds 0 arguments",
		},
		{
			name: "operator count",
			mutate: func(p *shaderz.Project) {
				b := &p.Objects[0].Nodes[0].Blocks[0]
				b.AddLine(shaderz.Line{
					ID:       shaderz.NewID(),
					Variable: shaderz.NewEmptyVariable(),
					Expressions: []shaderz.Expression{{
						ID:        shaderz.NewID(),
						Functions: []shaderz.Function{constf(1), constf(2)},
					}},
				})
			},
			msg: "needs 1 operators",
		},
		{
			name: "var outside block",
			mutate: func(p *shaderz.Project) {
				b := &p.Objects[0].Nodes[0].Blocks[0]
				b.AddLine(shaderz.NewAssignment(b.Variables[shaderz.VarColor].ID, shaderz.Expression{
					ID:        shaderz.NewID(),
					Functions: []shaderz.Function{shaderz.NewVarFunction(shaderz.NewID())},
				}))
			},
			msg: "outside its block",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := shaderz.NewDefaultShaderProject()
			tc.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *shaderz.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %T, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Errorf("error %q does not mention %q", err, tc.msg)
			}
			loaded, err := roundTrip(t, p)
			if err == nil || loaded != nil {
				t.Error("malformed project loaded")
			}
		})
	}
}

func TestLoadRejectsDuplicateKeys(t *testing.T) {
	p := shaderz.NewDefaultShaderProject()
	p.Objects[0].Nodes[0].Blocks[0].SetArgument("scale", shaderz.NewVariable(shaderz.NewFloat(2)))
	var buf bytes.Buffer
	err := p.Save(&buf)
	if err != nil {
		t.Fatal(err)
	}
	saved := buf.String()
	extra := `"color": {"id": "` + shaderz.NewID().String() + `"},`
	for _, tc := range []struct {
		name, old, new string
	}{
		{name: "variables", old: `"variables": {`, new: `"variables": {` + extra},
		{name: "arguments", old: `"arguments": {`, new: `"arguments": {"scale": {"id": "` + shaderz.NewID().String() + `"},`},
		{name: "project id", old: `"objects": [`, new: `"id": "` + shaderz.NewID().String() + `", "objects": [`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if !strings.Contains(saved, tc.old) {
				t.Fatalf("saved project lacks %q", tc.old)
			}
			input := strings.Replace(saved, tc.old, tc.new, 1)
			_, err := shaderz.LoadProject(strings.NewReader(input))
			if err == nil || !strings.Contains(err.Error(), "duplicate key") {
				t.Errorf("got %v, want duplicate key error", err)
			}
		})
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	for _, input := range []string{
		`{`,
		`{"id":"not-a-uuid","objects":[]}`,
		`{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","objects":[],"extra":1}`,
		`{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","objects":[{"id":"6ba7b811-9dad-11d1-80b4-00c04fd430c8","nodes":[{"id":"6ba7b812-9dad-11d1-80b4-00c04fd430c8","name":"n","type":0,"blocks":[{"id":"6ba7b813-9dad-11d1-80b4-00c04fd430c8","name":"b","type":0,"arguments":{},"variables":{},"lines":[{"id":"6ba7b814-9dad-11d1-80b4-00c04fd430c8","variable":{"id":"6ba7b815-9dad-11d1-80b4-00c04fd430c8"},"expressions":[{"id":"6ba7b816-9dad-11d1-80b4-00c04fd430c8","functions":[{"id":"6ba7b817-9dad-11d1-80b4-00c04fd430c8","name":"tan"}],"operators":null}]}]}]}]}]}`,
	} {
		_, err := shaderz.LoadProject(strings.NewReader(input))
		if err == nil {
			t.Errorf("expected error loading %.40s", input)
		}
	}
	const minimal = `{"id":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","objects":[]}`
	p, err := shaderz.LoadProject(strings.NewReader(minimal))
	if err != nil {
		t.Fatal(err)
	}
	if p.ID.String() != "6ba7b810-9dad-11d1-80b4-00c04fd430c8" {
		t.Errorf("ID not preserved: %s", p.ID)
	}
}
