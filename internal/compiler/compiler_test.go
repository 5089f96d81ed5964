package compiler

import (
	"errors"
	"hilal/internal/ast"
	"hilal/internal/code"
	"hilal/internal/object"
	"hilal/internal/parser"
	"testing"
)

type builtinMap map[string]*object.Builtin

func (m builtinMap) Lookup(name string) (*object.Builtin, bool) {
	b, ok := m[name]
	return b, ok
}

func noop(ctx *object.CallContext, args ...object.Object) (object.Object, error) {
	return object.NONE, nil
}

var testBuiltins = builtinMap{
	"print": {Name: "print", Arity: -1, Fn: noop},
	"max":   {Name: "max", Arity: 2, Fn: noop},
}

func compileSource(t *testing.T, c *Compiler, input string) *code.Bytecode {
	t.Helper()
	program, err := parser.ParseSource(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	bc, err := c.Compile(program)
	if err != nil {
		t.Fatalf("compile %q: %v", input, err)
	}
	return bc
}

func assertInstructions(t *testing.T, input string, got, want []code.Instruction) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%q: got %d instructions %v, want %v", input, len(got), got, want)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("%q: instruction %d = %s, want %s", input, i, got[i], want[i])
		}
	}
}

func TestCompilerScenarios(t *testing.T) {
	tests := []struct {
		input        string
		instructions []code.Instruction
		constants    []interface{}
	}{
		{
			input:        "5 + 3",
			instructions: []code.Instruction{code.LoadConstant(0), code.LoadConstant(1), code.BinaryOp("+")},
			constants:    []interface{}{5.0, 3.0},
		},
		{
			input:        "'a' ۩ 'b' - 1",
			instructions: []code.Instruction{code.LoadConstant(0), code.LoadConstant(1), code.BinaryOp("+"), code.LoadConstant(2), code.BinaryOp("-")},
			constants:    []interface{}{"a", "b", 1.0},
		},
		{
			input:        "if 0:\n    1",
			instructions: []code.Instruction{code.LoadConstant(0), code.LoadConstant(1), code.JumpIfFalse(4), code.LoadConstant(2)},
			constants:    []interface{}{nil, 0.0, 1.0},
		},
		{
			input: "if 1:\n    2\nelse:\n    3",
			instructions: []code.Instruction{
				code.LoadConstant(0),
				code.JumpIfFalse(4),
				code.LoadConstant(1),
				code.Jump(5),
				code.LoadConstant(2),
			},
			constants: []interface{}{1.0, 2.0, 3.0},
		},
		{
			input:        "print(5)",
			instructions: []code.Instruction{code.LoadConstant(0), code.Print()},
			constants:    []interface{}{5.0},
		},
		{
			input:        "x ♡ 2",
			instructions: []code.Instruction{code.LoadName("x"), code.LoadConstant(0), code.BinaryOp("♡")},
			constants:    []interface{}{2.0},
		},
	}

	for _, tt := range tests {
		bc := compileSource(t, New(nil), tt.input)
		assertInstructions(t, tt.input, bc.Instructions, tt.instructions)
		if len(bc.Constants) != len(tt.constants) {
			t.Fatalf("%q: got %d constants, want %d", tt.input, len(bc.Constants), len(tt.constants))
		}
		for i, want := range tt.constants {
			switch want := want.(type) {
			case nil:
				if bc.Constants[i] != object.NONE {
					t.Errorf("%q: constant %d = %s, want None", tt.input, i, bc.Constants[i].Inspect())
				}
			case float64:
				if n, ok := bc.Constants[i].(*object.Number); !ok || n.Value != want {
					t.Errorf("%q: constant %d = %s, want %g", tt.input, i, bc.Constants[i].Inspect(), want)
				}
			case string:
				if s, ok := bc.Constants[i].(*object.String); !ok || s.Value != want {
					t.Errorf("%q: constant %d = %s, want %q", tt.input, i, bc.Constants[i].Inspect(), want)
				}
			}
		}
	}
}

func TestJumpIfFalseTargetsInstructionAfterThenBranch(t *testing.T) {
	input := "if 0:\n    1 + 2 + 3\n4"
	bc := compileSource(t, New(nil), input)
	// 0 None, 1 cond, 2 JumpIfFalse, 3..7 then branch, 8 LoadConstant(4)
	if bc.Instructions[2].Op != code.OpJumpIfFalse || bc.Instructions[2].Operand != 8 {
		t.Fatalf("JumpIfFalse = %s, want target 8\n%s", bc.Instructions[2], bc.Disassemble())
	}
	if bc.Constants[bc.Instructions[0].Operand] != object.NONE {
		t.Errorf("instruction 0 = %s, want a load of None", bc.Instructions[0])
	}
}

func TestNestedIfPatchesEveryJump(t *testing.T) {
	input := "if 1:\n    if 0:\n        1\n    else:\n        2\nelse:\n    if 1:\n        3\n4"
	bc := compileSource(t, New(nil), input)
	for i, ins := range bc.Instructions {
		if ins.Op != code.OpJump && ins.Op != code.OpJumpIfFalse {
			continue
		}
		if ins.Operand <= i || ins.Operand > len(bc.Instructions) {
			t.Errorf("instruction %d %s has target outside (%d, %d]", i, ins, i, len(bc.Instructions))
		}
	}
}

func TestTrailingFunctionDefYieldsNone(t *testing.T) {
	bc := compileSource(t, New(nil), "def add(a, b):\n    a + b")
	assertInstructions(t, "definition", bc.Instructions, []code.Instruction{code.LoadConstant(1)})
	if bc.Constants[1] != object.NONE {
		t.Errorf("constant 1 = %s, want None", bc.Constants[1].Inspect())
	}
	fn, ok := bc.Constants[0].(*object.Function)
	if !ok || fn.Name != "add" || len(fn.Parameters) != 2 {
		t.Fatalf("constant 0 = %v, want function add(a, b)", bc.Constants[0])
	}
	body, ok := bc.Functions[0]
	if !ok {
		t.Fatalf("no compiled body for constant 0")
	}
	assertInstructions(t, "body", body.Instructions, []code.Instruction{
		code.LoadName("a"), code.LoadName("b"), code.BinaryOp("+"),
	})
}

func TestCallsResolveThroughSymbolTable(t *testing.T) {
	input := "def add(a, b):\n    a + b\nadd(1, 2)\nadd"
	bc := compileSource(t, New(nil), input)
	assertInstructions(t, input, bc.Instructions, []code.Instruction{
		code.LoadConstant(1),
		code.LoadConstant(2),
		code.Call(0, 2),
		code.LoadConstant(0),
	})
}

func TestBuiltinCalls(t *testing.T) {
	input := "max(1, 2)\nmax(3, 4)\nprint(1, 2)"
	bc := compileSource(t, New(testBuiltins), input)
	// each builtin enters the constant pool once
	assertInstructions(t, input, bc.Instructions, []code.Instruction{
		code.LoadConstant(1), code.LoadConstant(2), code.Call(0, 2),
		code.LoadConstant(3), code.LoadConstant(4), code.Call(0, 2),
		code.LoadConstant(6), code.LoadConstant(7), code.Call(5, 2),
	})
	if b, ok := bc.Constants[0].(*object.Builtin); !ok || b.Name != "max" {
		t.Errorf("constant 0 = %v, want builtin max", bc.Constants[0])
	}
}

func TestUserDefinedPrintIsCalled(t *testing.T) {
	input := "def print(x):\n    x\nprint(1)"
	bc := compileSource(t, New(testBuiltins), input)
	assertInstructions(t, input, bc.Instructions, []code.Instruction{
		code.LoadConstant(1), code.Call(0, 1),
	})
}

func TestBlocksEndingInDefinitionsYieldNone(t *testing.T) {
	input := "def f(x):\n    x\n    def g(y):\n        y"
	bc := compileSource(t, New(nil), input)
	body := bc.Functions[0]
	assertInstructions(t, "body of f", body.Instructions, []code.Instruction{
		code.LoadName("x"), code.LoadConstant(1),
	})
	if body.Constants[1] != object.NONE {
		t.Errorf("body constant 1 = %s, want None", body.Constants[1].Inspect())
	}
}

func TestParametersHideBuiltins(t *testing.T) {
	tests := []string{
		"def f(print):\n    print(1)",
		"def f(max):\n    max(1, 2)",
	}

	for _, input := range tests {
		program, err := parser.ParseSource(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		_, err = New(testBuiltins).Compile(program)
		var compileErr *CompileError
		if !errors.As(err, &compileErr) || !errors.Is(err, ErrUnresolvedFunction) {
			t.Fatalf("%q: error = %v, want unresolved function", input, err)
		}
		if compileErr.Line != 2 {
			t.Errorf("%q: error line = %d, want 2", input, compileErr.Line)
		}
	}
}

func TestGlobalsHideBuiltins(t *testing.T) {
	hostMax := &object.Builtin{Name: "max", Arity: 2, Fn: noop}
	c := New(testBuiltins)
	c.SetGlobals(map[string]object.Object{
		"print": &object.Number{Value: 1},
		"max":   hostMax,
	})

	program, _ := parser.ParseSource("print(1)")
	if _, err := c.Compile(program); !errors.Is(err, ErrUnresolvedFunction) {
		t.Errorf("print(1) with a global number: error = %v", err)
	}

	bc := compileSource(t, c, "max(1, 2)")
	last := bc.Instructions[len(bc.Instructions)-1]
	if last.Op != code.OpCall {
		t.Fatalf("last instruction = %s, want Call", last)
	}
	if bc.Constants[last.Operand] != hostMax {
		t.Errorf("call target = %v, want the global builtin", bc.Constants[last.Operand])
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  error
	}{
		{"g(1)", ErrUnresolvedFunction},
		{"def g():\n    1\ndef f():\n    g()", ErrUnresolvedFunction},
		{"if 1:\n    missing()", ErrUnresolvedFunction},
	}

	for _, tt := range tests {
		program, err := parser.ParseSource(tt.input)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.input, err)
		}
		bc, err := Compile(program)
		if !errors.Is(err, tt.kind) {
			t.Errorf("%q: error = %v, want %v", tt.input, err, tt.kind)
		}
		if bc != nil {
			t.Errorf("%q: bytecode returned with error", tt.input)
		}
	}
}

type unknownNode struct{}

func (unknownNode) TokenLiteral() string { return "" }
func (unknownNode) String() string       { return "?" }

func TestUnsupportedNode(t *testing.T) {
	program := &ast.Program{Statements: []ast.Node{unknownNode{}}}
	_, err := Compile(program)
	var compileErr *CompileError
	if !errors.As(err, &compileErr) || !errors.Is(err, ErrUnsupportedNode) {
		t.Fatalf("expected unsupported node error, got %v", err)
	}
}

func TestStatePersistsAcrossInputs(t *testing.T) {
	c := New(nil)
	compileSource(t, c, "def twice(n):\n    n + n")
	bc := compileSource(t, c, "twice(4)")
	// constant 1 is the None the definition left behind
	assertInstructions(t, "twice(4)", bc.Instructions, []code.Instruction{
		code.LoadConstant(2), code.Call(0, 1),
	})
	if _, ok := bc.Functions[0]; !ok {
		t.Errorf("function unit from the earlier input is missing")
	}
}

func TestFailedDefinitionLeavesNoSymbol(t *testing.T) {
	c := New(nil)
	program, _ := parser.ParseSource("def broken():\n    nowhere()")
	if _, err := c.Compile(program); err == nil {
		t.Fatal("expected compile error")
	}
	program, _ = parser.ParseSource("broken()")
	if _, err := c.Compile(program); !errors.Is(err, ErrUnresolvedFunction) {
		t.Errorf("broken() resolved after its definition failed: %v", err)
	}
}
