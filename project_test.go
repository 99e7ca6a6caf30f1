package shaderz_test

import (
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/shaderz"
)

func TestGenDefaultShaderProject(t *testing.T) {
	p := shaderz.NewProject()
	p.AddObject(shaderz.NewObject())
	p.AddObject(shaderz.NewObject())
	p.GenDefaultShaderProject()
	if len(p.Objects) != 1 {
		t.Fatalf("want exactly one object, got %d", len(p.Objects))
	}
	obj := p.Objects[0]
	if len(obj.Nodes) != 1 {
		t.Fatalf("want exactly one node, got %d", len(obj.Nodes))
	}
	node := obj.Nodes[0]
	if node.Name != "Shader" || node.Type != shaderz.NodeShader {
		t.Errorf("unexpected node %q of type %s", node.Name, node.Type)
	}
	if len(node.Blocks) != 1 {
		t.Fatalf("want exactly one block, got %d", len(node.Blocks))
	}
	block := node.Blocks[0]
	if block.Type != shaderz.BlockMainFunction || block.Name != "color" {
		t.Errorf("unexpected block %q of type %s", block.Name, block.Type)
	}
	color, ok := block.Lookup(shaderz.VarColor)
	if !ok {
		t.Fatal("main block has no color variable")
	}
	lit, ok := color.Literal()
	want := shaderz.NewFloat4(shaderz.Vec4{X: 1, Y: 0, Z: 0, W: 1})
	if !ok || lit != want {
		t.Errorf("color is %v, want %v", lit, want)
	}
}

func TestResolveShader(t *testing.T) {
	p := shaderz.NewDefaultShaderProject()
	node := &p.Objects[0].Nodes[0]
	uv, screen := ms2.Vec{X: 0.3, Y: 0.6}, ms2.Vec{X: 10, Y: 10}
	if got := node.ResolveShader(uv, screen); got != (shaderz.Vec4{X: 1, W: 1}) {
		t.Errorf("default node resolved to %v, want red", got)
	}

	dynamic := shaderz.NewNode("uv", shaderz.NodeShader)
	dynamic.AddBlock(uvBlock(t))
	if got := dynamic.ResolveShader(uv, screen); got != (shaderz.Vec4{X: uv.X, Y: uv.Y, W: 1}) {
		t.Errorf("uv node resolved to %v", got)
	}

	// Fallbacks: all yield transparent black.
	noMain := shaderz.NewNode("nomain", shaderz.NodeShader)
	noMain.AddBlock(shaderz.NewBlock("helper", shaderz.BlockFunction))

	noColor := shaderz.NewNode("nocolor", shaderz.NodeShader)
	noColor.AddBlock(shaderz.NewBlock("main", shaderz.BlockMainFunction))

	wrongKind := shaderz.NewNode("wrongkind", shaderz.NodeShader)
	wk := shaderz.NewBlock("main", shaderz.BlockMainFunction)
	wk.SetVariable(shaderz.VarColor, shaderz.NewVariable(shaderz.NewFloat3(ms3.Vec{X: 1, Y: 1, Z: 1})))
	wrongKind.AddBlock(wk)

	failing := shaderz.NewNode("failing", shaderz.NodeShader)
	fb := shaderz.NewBlock("main", shaderz.BlockMainFunction)
	color := shaderz.NewEmptyVariable()
	fb.SetVariable(shaderz.VarColor, color)
	fb.AddLine(shaderz.NewAssignment(color.ID, mustExpr(t, []shaderz.Function{shaderz.NewFunction(shaderz.FuncAbs)})))
	failing.AddBlock(fb)

	for _, n := range []shaderz.Node{noMain, noColor, wrongKind, failing} {
		if got := n.ResolveShader(uv, screen); got != (shaderz.Vec4{}) {
			t.Errorf("%s: got %v, want zero", n.Name, got)
		}
	}
}

func TestProjectLookup(t *testing.T) {
	p := shaderz.NewProject()
	obj := shaderz.NewObject()
	n1 := shaderz.NewNode("a", shaderz.NodeShader)
	n2 := shaderz.NewNode("b", shaderz.NodeShader)
	obj.AddNode(n1)
	obj.AddNode(n2)
	objID := p.AddObject(obj)

	got := p.Object(objID)
	if got == nil || got.ID != objID {
		t.Fatal("object lookup failed")
	}
	if p.Object(shaderz.NewID()) != nil {
		t.Error("lookup of unknown object should return nil")
	}
	if n := got.Node(n2.ID); n == nil || n.Name != "b" {
		t.Error("node lookup failed")
	}
	if got.Node(shaderz.NewID()) != nil {
		t.Error("lookup of unknown node should return nil")
	}
	// Mutation through lookup is visible in the project.
	got.Node(n1.ID).Name = "renamed"
	if p.Objects[0].Nodes[0].Name != "renamed" {
		t.Error("edit through lookup not visible")
	}
	owner, n := p.FindNode(n2.ID)
	if owner == nil || owner.ID != objID || n == nil || n.ID != n2.ID {
		t.Error("FindNode failed")
	}
	if owner, n := p.FindNode(shaderz.NewID()); owner != nil || n != nil {
		t.Error("FindNode of unknown id should return nils")
	}

	if !got.RemoveNode(n1.ID) || len(got.Nodes) != 1 || got.Nodes[0].ID != n2.ID {
		t.Error("RemoveNode failed")
	}
	if got.RemoveNode(n1.ID) {
		t.Error("removing twice should report false")
	}
	if !p.RemoveObject(objID) || len(p.Objects) != 0 {
		t.Error("RemoveObject failed")
	}
	if p.RemoveObject(objID) {
		t.Error("removing twice should report false")
	}
}

func TestBlockEditing(t *testing.T) {
	b := shaderz.NewBlock("main", shaderz.BlockMainFunction)
	arg := shaderz.NewEmptyVariable()
	local := shaderz.NewVariable(shaderz.NewFloat(1))
	b.SetArgument("x", arg)
	b.SetVariable("x", local)
	if v, _ := b.Lookup("x"); v.ID != local.ID {
		t.Error("locals should shadow arguments")
	}
	line := shaderz.NewAssignment(local.ID)
	b.AddLine(line)
	for _, id := range []shaderz.ID{arg.ID, local.ID, line.Variable.ID} {
		if _, ok := b.VariableByID(id); !ok {
			t.Errorf("VariableByID(%s) not found", id)
		}
	}
	if !b.RemoveLine(line.ID) || len(b.Lines) != 0 {
		t.Error("RemoveLine failed")
	}
	if b.RemoveLine(line.ID) {
		t.Error("removing twice should report false")
	}
	if line.Target() != local.ID {
		t.Error("assignment should target the referenced variable")
	}
}
