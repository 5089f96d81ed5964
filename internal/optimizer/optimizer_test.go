package optimizer

import (
	"hilal/internal/ast"
	"hilal/internal/parser"
	"hilal/internal/token"
	"testing"
)

func optimizeSource(t *testing.T, input string) (*ast.Program, *ast.Program) {
	t.Helper()
	program, err := parser.ParseSource(input)
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return program, Optimize(program)
}

func TestConstantFolding(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2", "3"},
		{"10 - 4 - 3", "3"},
		{"2 ♡ 2", "1"},
		{"2 ♡ 3", "0"},
		{"'ab' + 'cd'", "\"abcd\""},
		{"x + 1 + 2", "((x + 1) + 2)"},
		{"x + (1 + 2)", "(x + 3)"},
		{"1 + 'a'", "(1 + \"a\")"},
		{"f(1 + 1, y - 0)", "f(2, (y - 0))"},
	}

	for _, tt := range tests {
		_, optimized := optimizeSource(t, tt.input)
		if got := optimized.String(); got != tt.expected {
			t.Errorf("%q: optimized = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFoldingSkipsNonFiniteResults(t *testing.T) {
	tok := token.Token{Type: token.OPERATOR, Literal: "/", Line: 1, Column: 3}
	tests := []struct {
		op    string
		left  float64
		right float64
	}{
		{"/", 1, 0},
		{"/", 0, 0},
		{"*", 1e308, 10},
	}

	for _, tt := range tests {
		expr := &ast.BinaryOp{
			Token:    tok,
			Operator: tt.op,
			Left:     &ast.NumberLiteral{Token: tok, Value: tt.left},
			Right:    &ast.NumberLiteral{Token: tok, Value: tt.right},
		}
		program := Optimize(&ast.Program{Statements: []ast.Node{expr}})
		if _, ok := program.Statements[0].(*ast.BinaryOp); !ok {
			t.Errorf("%g %s %g was folded to %s", tt.left, tt.op, tt.right, program.Statements[0])
		}
	}
}

func TestDeadBranchElimination(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"if 1:\n    10\nelse:\n    20", "10"},
		{"if 0:\n    10\nelse:\n    20", "20"},
		{"if 1 - 1:\n    10\nelse:\n    20\n    30", "20\n30"},
		{"if 0:\n    10", "if 0:\n    10"},
		{"if x:\n    1 + 1", "if x:\n    2"},
		{"'a'\nif 2:\n    'b'\n'c'", "\"a\"\n\"b\"\n\"c\""},
	}

	for _, tt := range tests {
		_, optimized := optimizeSource(t, tt.input)
		if got := optimized.String(); got != tt.expected {
			t.Errorf("%q: optimized = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFunctionBodiesAreOptimized(t *testing.T) {
	_, optimized := optimizeSource(t, "def f(a):\n    if 1:\n        a + (2 + 3)\nf(1)")
	def, ok := optimized.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("statement 0 = %T, want *ast.FunctionDef", optimized.Statements[0])
	}
	if got := def.Body.String(); got != "\n    (a + 5)" {
		t.Errorf("body = %q", got)
	}
}

func TestInputIsNotModified(t *testing.T) {
	input := "if 1:\n    1 + 2\ndef f(a):\n    a + (3 - 1)"
	program, _ := optimizeSource(t, input)
	fresh, _ := parser.ParseSource(input)
	if program.String() != fresh.String() {
		t.Errorf("input changed to %q, want %q", program.String(), fresh.String())
	}
}

func TestDisabledPass(t *testing.T) {
	program, _ := parser.ParseSource("if 1:\n    1 + 2")
	o := New()
	for _, p := range o.Passes {
		if p.Name == "dead_branch_elimination" {
			p.Enabled = false
		}
	}
	optimized := o.Optimize(program)
	if got := optimized.String(); got != "if 1:\n    3" {
		t.Errorf("optimized = %q", got)
	}
	if o.Rewrites()["constant_folding"] != 1 || o.Rewrites()["dead_branch_elimination"] != 0 {
		t.Errorf("rewrites = %v", o.Rewrites())
	}
}
