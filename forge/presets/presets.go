// Package presets provides ready made shader nodes to start projects from.
package presets

import (
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/shaderz"
)

// NewProject returns a project with a single object holding nodes.
func NewProject(nodes ...shaderz.Node) *shaderz.Project {
	p := shaderz.NewProject()
	obj := shaderz.NewObject()
	for _, n := range nodes {
		obj.AddNode(n)
	}
	p.AddObject(obj)
	return p
}

// Solid returns a node painting every pixel with c.
func Solid(name string, c shaderz.Vec4) shaderz.Node {
	block := shaderz.NewBlock("color", shaderz.BlockMainFunction)
	block.SetVariable(shaderz.VarColor, shaderz.NewVariable(shaderz.NewFloat4(c)))
	return newShader(name, block)
}

// Gradient returns a node painting vec4(uv, 0.5, 1).
func Gradient(name string) shaderz.Node {
	block, uv, color := uvBlock()
	f4 := vec4(shaderz.NewVarFunction(uv), constf(0.5), constf(1))
	block.AddLine(assign(color, expr(f4)))
	return newShader(name, block)
}

// Stripes returns a node painting vec4(abs(sin(uv*freq)), 0.25, 1), vertical
// and horizontal stripes of freq/π periods across the screen.
func Stripes(name string, freq float32) shaderz.Node {
	block, uv, color := uvBlock()
	scaled := shaderz.NewLine()
	scaled.Expressions = []shaderz.Expression{
		expr(shaderz.NewVarFunction(uv), shaderz.OpMul, shaderz.NewConstFunction(shaderz.NewFloat2(ms2.Vec{X: freq, Y: freq}))),
	}
	block.AddLine(scaled)
	wave := shaderz.NewLine()
	wave.Expressions = []shaderz.Expression{
		expr(unary(shaderz.FuncAbs, unary(shaderz.FuncSin, shaderz.NewVarFunction(scaled.Variable.ID)))),
	}
	block.AddLine(wave)
	f4 := vec4(shaderz.NewVarFunction(wave.Variable.ID), constf(0.25), constf(1))
	block.AddLine(assign(color, expr(f4)))
	return newShader(name, block)
}

// Pulse returns a node painting c scaled by vec4(abs(cos(uv*screen/period)), 1, 1),
// a grid of bands period pixels apart.
func Pulse(name string, c shaderz.Vec4, period float32) shaderz.Node {
	block, uv, color := uvBlock()
	screen := shaderz.NewEmptyVariable()
	block.SetArgument(shaderz.ArgScreen, screen)
	pixels := shaderz.NewLine()
	pixels.Expressions = []shaderz.Expression{
		expr(shaderz.NewVarFunction(uv), shaderz.OpMul, shaderz.NewVarFunction(screen.ID),
			shaderz.OpDiv, shaderz.NewConstFunction(shaderz.NewFloat2(ms2.Vec{X: period, Y: period}))),
	}
	block.AddLine(pixels)
	band := unary(shaderz.FuncAbs, unary(shaderz.FuncCos, shaderz.NewVarFunction(pixels.Variable.ID)))
	block.AddLine(assign(color, expr(vec4(band, constf(1), constf(1)), shaderz.OpMul, shaderz.NewConstFunction(shaderz.NewFloat4(c)))))
	return newShader(name, block)
}

func newShader(name string, main shaderz.Block) shaderz.Node {
	n := shaderz.NewNode(name, shaderz.NodeShader)
	n.AddBlock(main)
	return n
}

// uvBlock returns a main block taking the uv argument with an empty colour local.
func uvBlock() (block shaderz.Block, uv, color shaderz.ID) {
	block = shaderz.NewBlock("color", shaderz.BlockMainFunction)
	uvArg := shaderz.NewEmptyVariable()
	block.SetArgument(shaderz.ArgUV, uvArg)
	colorVar := shaderz.NewEmptyVariable()
	block.SetVariable(shaderz.VarColor, colorVar)
	return block, uvArg.ID, colorVar.ID
}

func assign(target shaderz.ID, e shaderz.Expression) shaderz.Line {
	return shaderz.NewAssignment(target, e)
}

// expr builds an expression from alternating functions and operators:
// f0, op0, f1, op1, f2...
func expr(first shaderz.Function, rest ...any) shaderz.Expression {
	fns := []shaderz.Function{first}
	var ops []shaderz.Operator
	for i := 0; i+1 < len(rest); i += 2 {
		ops = append(ops, rest[i].(shaderz.Operator))
		fns = append(fns, rest[i+1].(shaderz.Function))
	}
	e, err := shaderz.NewExpression(fns, ops)
	if err != nil {
		panic(err)
	}
	return e
}

func unary(name shaderz.FunctionName, arg shaderz.Function) shaderz.Function {
	f := shaderz.NewFunction(name)
	err := f.SetArg(0, arg)
	if err != nil {
		panic(err)
	}
	return f
}

func vec4(args ...shaderz.Function) shaderz.Function {
	f := shaderz.NewFunction(shaderz.FuncF4)
	for _, arg := range args {
		err := f.AppendArg(arg)
		if err != nil {
			panic(err)
		}
	}
	return f
}

func constf(v float32) shaderz.Function {
	return shaderz.NewConstFunction(shaderz.NewFloat(v))
}
