// Package glbuild generates GLSL fragment programs from shader nodes so they
// can be previewed on the GPU or pasted in shader visualizers.
package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/shaderz"
)

const VersionStr = "#version 430\n"

// ResolutionUniform is the vec2 uniform holding the viewport size in pixels.
const ResolutionUniform = "uResolution"

// FragColorOutput is the vec4 output written by generated fragment programs.
const FragColorOutput = "fragColor"

// ProgrammerConfig configures generated programs. The zero value selects defaults.
type ProgrammerConfig struct {
	// Header is written first, usually the #version directive. Defaults to [VersionStr].
	Header string
	// OmitIO omits the uniform and output declarations and emits
	//  vec4 shade(vec2 fragCoord, vec2 uResolution)
	// instead of main, for embedding in other programs.
	OmitIO bool
}

// Programmer implements GLSL generation for [shaderz.Node]s. It reuses its
// scratch buffers between calls and is not safe for concurrent use.
type Programmer struct {
	cfg     ProgrammerConfig
	scratch []byte
	types   typeInfo
	names   map[shaderz.ID]string
}

// NewDefaultProgrammer returns a Programmer writing "#version 430" fragment programs.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		cfg:     ProgrammerConfig{Header: VersionStr},
		scratch: make([]byte, 0, 1024),
		names:   make(map[shaderz.ID]string),
	}
}

// Configure applies cfg to the programmer.
func (p *Programmer) Configure(cfg ProgrammerConfig) error {
	if cfg.Header == "" {
		cfg.Header = VersionStr
	}
	if !bytes.HasPrefix([]byte(cfg.Header), []byte("#version")) {
		return errors.New("program header must start with #version directive")
	}
	if cfg.Header[len(cfg.Header)-1] != '\n' {
		cfg.Header += "\n"
	}
	p.cfg = cfg
	return nil
}

// WriteFragmentShader writes a fragment program computing the colour of node
// for each fragment and returns the number of bytes written. The "uv" argument
// follows the CPU renderer's mapping: bottom row of the viewport maps to uv.y = 1/H
// and top row to uv.y = 1. The "screen" argument is the viewport size.
//
// Types are checked statically, so an error is returned for nodes the CPU
// evaluator would only fail on at render time.
func (p *Programmer) WriteFragmentShader(w io.Writer, node *shaderz.Node) (int, error) {
	main := node.MainBlock()
	if main == nil {
		return 0, fmt.Errorf("node %q has no main block", node.Name)
	}
	b, err := p.AppendBlock(p.scratch[:0], main)
	if err != nil {
		return 0, err
	}
	p.scratch = b
	return w.Write(b)
}

// AppendBlock appends the fragment program for a main block to dst.
func (p *Programmer) AppendBlock(dst []byte, block *shaderz.Block) ([]byte, error) {
	err := p.types.infer(block)
	if err != nil {
		return dst, fmt.Errorf("block %q: %w", block.Name, err)
	}
	p.nameVariables(block)
	dst = append(dst, p.cfg.Header...)
	if p.cfg.OmitIO {
		dst = append(dst, "\nvec4 shade(vec2 fragCoord, vec2 "+ResolutionUniform+") {\n"...)
	} else {
		dst = append(dst, "\nuniform vec2 "+ResolutionUniform+";\nout vec4 "+FragColorOutput+";\n\nvoid main() {\n\tvec2 fragCoord = gl_FragCoord.xy;\n"...)
	}
	for _, arg := range sortedNames(block.Arguments) {
		v := block.Arguments[arg]
		switch {
		case arg == shaderz.ArgUV:
			dst = append(dst, "\tvec2 "+p.names[v.ID]+" = vec2(floor(fragCoord.x), floor(fragCoord.y)+1.) / "+ResolutionUniform+";\n"...)
		case arg == shaderz.ArgScreen:
			dst = append(dst, "\tvec2 "+p.names[v.ID]+" = "+ResolutionUniform+";\n"...)
		case v.Reference == nil:
			dst = append(dst, '\t')
			dst = p.appendVariableDecl(dst, v)
		}
	}
	for _, name := range sortedNames(block.Variables) {
		v := block.Variables[name]
		if v.Reference != nil {
			continue // Aliases read their target directly.
		}
		dst = append(dst, '\t')
		dst = p.appendVariableDecl(dst, v)
	}
	for i := range block.Lines {
		line := &block.Lines[i]
		if line.Variable.Reference == nil && len(line.Expressions) > 0 {
			dst = append(dst, '\t')
			dst = p.appendVariableDecl(dst, line.Variable)
		}
	}
	for i := range block.Lines {
		dst, err = p.appendLine(dst, &block.Lines[i])
		if err != nil {
			return dst, fmt.Errorf("line %d: %w", i, err)
		}
	}
	dst = append(dst, '\t')
	if p.cfg.OmitIO {
		dst = append(dst, "return "...)
	} else {
		dst = append(dst, FragColorOutput+" = "...)
	}
	color, ok := block.Lookup(shaderz.VarColor)
	if ok && p.types.kinds[p.types.resolve(color.ID)] == shaderz.KindFloat4 {
		dst = append(dst, p.names[color.ID]...)
	} else {
		dst = append(dst, "vec4(0.)"...)
	}
	dst = append(dst, ";\n}\n"...)
	return dst, nil
}

// appendVariableDecl declares v initialised to its literal or to zero.
func (p *Programmer) appendVariableDecl(dst []byte, v shaderz.Variable) []byte {
	kind := p.types.kinds[v.ID]
	name := p.names[v.ID]
	if kind == 0 {
		// Never written nor read.
		return append(dst, "// unused "+name+"\n"...)
	}
	lit, ok := v.Literal()
	if !ok {
		lit = zeroValue(kind)
	}
	switch kind {
	case shaderz.KindFloat:
		f, _ := lit.Float()
		return AppendFloatDecl(dst, name, f)
	case shaderz.KindFloat2:
		v2, _ := lit.Vec2()
		return AppendVec2Decl(dst, name, v2)
	case shaderz.KindFloat3:
		v3, _ := lit.Vec3()
		return AppendVec3Decl(dst, name, v3)
	default:
		v4, _ := lit.Vec4()
		return AppendVec4Decl(dst, name, v4)
	}
}

func (p *Programmer) appendLine(dst []byte, line *shaderz.Line) ([]byte, error) {
	if len(line.Expressions) == 0 {
		return dst, nil
	}
	// Only the last expression's value is kept.
	last := &line.Expressions[len(line.Expressions)-1]
	dst = append(dst, '\t')
	dst = append(dst, p.names[line.Target()]...)
	dst = append(dst, " = "...)
	dst, err := p.appendExpression(dst, last)
	if err != nil {
		return dst, err
	}
	return append(dst, ";\n"...), nil
}

func (p *Programmer) appendExpression(dst []byte, e *shaderz.Expression) ([]byte, error) {
	if len(e.Functions) == 0 || len(e.Operators) != len(e.Functions)-1 {
		return dst, shaderz.ErrArity
	}
	for range e.Operators {
		dst = append(dst, '(')
	}
	var err error
	dst, err = p.appendFunction(dst, &e.Functions[0])
	if err != nil {
		return dst, err
	}
	for i, op := range e.Operators {
		dst = append(dst, byte(op))
		dst, err = p.appendFunction(dst, &e.Functions[i+1])
		if err != nil {
			return dst, err
		}
		dst = append(dst, ')')
	}
	return dst, nil
}

func (p *Programmer) appendFunction(dst []byte, f *shaderz.Function) ([]byte, error) {
	switch f.Name {
	case shaderz.FuncConst:
		return AppendValue(dst, *f.Const), nil
	case shaderz.FuncVar:
		return append(dst, p.names[*f.Var]...), nil
	case shaderz.FuncAbs, shaderz.FuncSin, shaderz.FuncCos, shaderz.FuncF4:
		dst = append(dst, f.Name.String()...)
		dst = append(dst, '(')
		var err error
		for i := range f.Args {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst, err = p.appendFunction(dst, &f.Args[i])
			if err != nil {
				return dst, err
			}
		}
		return append(dst, ')'), nil
	case shaderz.FuncEmpty:
		return dst, shaderz.ErrUnfilledArgument
	}
	return dst, shaderz.ErrUnknownFunction
}

// nameVariables assigns GLSL identifiers to the variables of block. References
// share the identifier of the variable they resolve to.
func (p *Programmer) nameVariables(block *shaderz.Block) {
	clear(p.names)
	n := 0
	name := func(prefix, label string) string {
		n++
		return string(appendIdent(append([]byte(prefix), strconv.Itoa(n)...), label))
	}
	for _, arg := range sortedNames(block.Arguments) {
		v := block.Arguments[arg]
		if arg == shaderz.ArgUV || arg == shaderz.ArgScreen {
			p.names[v.ID] = arg
		} else {
			p.names[v.ID] = name("a", arg)
		}
	}
	for _, local := range sortedNames(block.Variables) {
		v := block.Variables[local]
		p.names[v.ID] = name("v", local)
	}
	for i := range block.Lines {
		v := block.Lines[i].Variable
		p.names[v.ID] = name("t", "")
	}
	// Resolve aliases once every variable has a name.
	for id := range p.names {
		p.names[id] = p.names[p.types.resolve(id)]
	}
}

// appendIdent appends label to b keeping only GLSL identifier characters.
// Runs of other characters become a single underscore since GLSL reserves "__".
func appendIdent(b []byte, label string) []byte {
	if label == "" {
		return b
	}
	b = append(b, '_')
	for _, c := range []byte(label) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b = append(b, c)
		case b[len(b)-1] != '_':
			b = append(b, '_')
		}
	}
	return b
}

// AppendValue appends v as a GLSL literal of the matching type.
func AppendValue(b []byte, v shaderz.Value) []byte {
	switch v.Kind() {
	case shaderz.KindFloat:
		f, _ := v.Float()
		return AppendFloat(b, '-', '.', f)
	case shaderz.KindFloat2:
		b = append(b, "vec2("...)
	case shaderz.KindFloat3:
		b = append(b, "vec3("...)
	case shaderz.KindFloat4:
		b = append(b, "vec4("...)
	default:
		return append(b, "/*invalid*/0."...)
	}
	for i := 0; i < v.Components(); i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = AppendFloat(b, '-', '.', v.Comp(i))
	}
	return append(b, ')')
}

func AppendVec4Decl(b []byte, vec4Varname string, v shaderz.Vec4) []byte {
	b = append(b, "vec4 "...)
	b = append(b, vec4Varname...)
	b = append(b, "=vec4("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	b = append(b, ')', ';', '\n')
	return b
}

func AppendVec3Decl(b []byte, vec3Varname string, v ms3.Vec) []byte {
	b = append(b, "vec3 "...)
	b = append(b, vec3Varname...)
	b = append(b, "=vec3("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	b = append(b, ')', ';', '\n')
	return b
}

func AppendVec2Decl(b []byte, vec2Varname string, v ms2.Vec) []byte {
	b = append(b, "vec2 "...)
	b = append(b, vec2Varname...)
	b = append(b, "=vec2("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	b = append(b, ')', ';', '\n')
	return b
}

func AppendFloatDecl(b []byte, floatVarname string, v float32) []byte {
	b = append(b, "float "...)
	b = append(b, floatVarname...)
	b = append(b, '=')
	b = AppendFloat(b, '-', '.', v)
	b = append(b, ';', '\n')
	return b
}

const decimalDigits = 9

// AppendFloat appends v in fixed point notation with trailing zeroes trimmed.
// neg and decimal replace the minus sign and decimal point.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

// AppendFloats appends s separated by sep. See [AppendFloat].
func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}
