package compiler

import (
	"fmt"
	"hilal/internal/ast"
	"hilal/internal/code"
	"hilal/internal/object"
	"log/slog"
)

// placeholder marks a jump whose target is not known yet.
const placeholder = -1

// Compiler lowers an AST into a code.Bytecode unit. Constants, function
// units and the symbol table survive across Compile calls on the same
// Compiler, so an interactive session can call functions defined by
// earlier inputs. The instruction buffer starts empty on every call.
type Compiler struct {
	name   string
	params []string

	instructions []code.Instruction
	constants    []object.Object
	functions    map[int]*code.Bytecode

	// function name -> constant index
	symbols      map[string]int
	builtins     object.Builtins
	builtinIndex map[string]int
	noneIndex    int

	// globals are the names a host binds in the top-level frame
	globals map[string]object.Object
}

func New(builtins object.Builtins) *Compiler {
	return &Compiler{
		functions:    make(map[int]*code.Bytecode),
		symbols:      make(map[string]int),
		builtins:     builtins,
		builtinIndex: make(map[string]int),
		noneIndex:    -1,
	}
}

// SetGlobals tells the compiler which names the host binds in the top-level
// frame. A global that is not a builtin hides a builtin of the same name, so
// calling it is an error.
func (c *Compiler) SetGlobals(globals map[string]object.Object) {
	c.globals = globals
}

// Compile lowers node with a fresh Compiler and no builtins.
func Compile(node ast.Node) (*code.Bytecode, error) {
	return New(nil).Compile(node)
}

func (c *Compiler) Compile(node ast.Node) (*code.Bytecode, error) {
	c.instructions = []code.Instruction{}
	if err := c.compile(node); err != nil {
		return nil, err
	}

	slog.Debug("compiled unit",
		slog.String("name", c.name),
		slog.Int("instructions", len(c.instructions)),
		slog.Int("constants", len(c.constants)))
	return c.bytecode(), nil
}

func (c *Compiler) bytecode() *code.Bytecode {
	functions := make(map[int]*code.Bytecode, len(c.functions))
	for idx, fn := range c.functions {
		functions[idx] = fn
	}
	return &code.Bytecode{
		Name:         c.name,
		Parameters:   c.params,
		Instructions: c.instructions,
		Constants:    append([]object.Object(nil), c.constants...),
		Functions:    functions,
	}
}

func (c *Compiler) compile(node ast.Node) error {
	switch node := node.(type) {
	case *ast.Program:
		return c.compileStatements(node.Statements)

	case *ast.Block:
		return c.compileStatements(node.Statements)

	case *ast.FunctionDef:
		return c.compileFunctionDef(node)

	case *ast.IfStatement:
		return c.compileIfStatement(node)

	case *ast.BinaryOp:
		if err := c.compile(node.Left); err != nil {
			return err
		}
		if err := c.compile(node.Right); err != nil {
			return err
		}
		c.emit(code.BinaryOp(node.Operator), node.Token.Line)
		return nil

	case *ast.NumberLiteral:
		idx := c.addConstant(&object.Number{Value: node.Value})
		c.emit(code.LoadConstant(idx), node.Token.Line)
		return nil

	case *ast.StringLiteral:
		idx := c.addConstant(&object.String{Value: node.Value})
		c.emit(code.LoadConstant(idx), node.Token.Line)
		return nil

	case *ast.Identifier:
		if idx, ok := c.symbols[node.Value]; ok {
			c.emit(code.LoadConstant(idx), node.Token.Line)
		} else {
			c.emit(code.LoadName(node.Value), node.Token.Line)
		}
		return nil

	case *ast.Call:
		return c.compileCall(node)
	}

	return &CompileError{Kind: ErrUnsupportedNode, Message: fmt.Sprintf("%T", node)}
}

// compileStatements leaves the value of the last statement on top of the
// stack. A definition pushes nothing, so a block ending in one yields None.
func (c *Compiler) compileStatements(stmts []ast.Node) error {
	for _, s := range stmts {
		if err := c.compile(s); err != nil {
			return err
		}
	}
	if len(stmts) > 0 {
		if def, ok := stmts[len(stmts)-1].(*ast.FunctionDef); ok {
			c.emitNone(def.Token.Line)
		}
	}
	return nil
}

// compileFunctionDef adds the function descriptor to the constant pool and
// compiles its body into a separate unit. The body gets its own symbol
// table, the same way a call gets an environment without a parent.
func (c *Compiler) compileFunctionDef(node *ast.FunctionDef) error {
	params := node.ParameterNames()

	body := New(c.builtins)
	body.name = node.Name
	body.params = params
	unit, err := body.Compile(node.Body)
	if err != nil {
		return err
	}

	idx := c.addConstant(&object.Function{Name: node.Name, Parameters: params, Body: node.Body})
	c.symbols[node.Name] = idx
	c.functions[idx] = unit
	return nil
}

func (c *Compiler) compileIfStatement(node *ast.IfStatement) error {
	// without an else the false path must still leave a value
	if node.ElseBranch == nil {
		c.emitNone(node.Token.Line)
	}
	if err := c.compile(node.Condition); err != nil {
		return err
	}

	jumpIfFalse := c.emit(code.JumpIfFalse(placeholder), node.Token.Line)

	if err := c.compile(node.ThenBranch); err != nil {
		return err
	}

	if node.ElseBranch == nil {
		c.patch(jumpIfFalse, len(c.instructions))
		return nil
	}

	jump := c.emit(code.Jump(placeholder), node.Token.Line)
	c.patch(jumpIfFalse, len(c.instructions))

	if err := c.compile(node.ElseBranch); err != nil {
		return err
	}
	c.patch(jump, len(c.instructions))
	return nil
}

func (c *Compiler) compileCall(node *ast.Call) error {
	name := node.Function.Value
	_, userDefined := c.symbols[name]
	_, global := c.globals[name]

	if c.isParam(name) && !userDefined {
		return c.undefinedFunction(node)
	}

	// print(x) has its own instruction unless something else binds print
	if name == "print" && !userDefined && !global && len(node.Arguments) == 1 {
		if err := c.compile(node.Arguments[0]); err != nil {
			return err
		}
		c.emit(code.Print(), node.Token.Line)
		return nil
	}

	target, err := c.resolveFunction(node)
	if err != nil {
		return err
	}
	for _, a := range node.Arguments {
		if err := c.compile(a); err != nil {
			return err
		}
	}
	c.emit(code.Call(target, len(node.Arguments)), node.Token.Line)
	return nil
}

// resolveFunction finds the constant index of a call target. Functions
// defined by the program win over builtins.
func (c *Compiler) resolveFunction(node *ast.Call) (int, error) {
	name := node.Function.Value
	if idx, ok := c.symbols[name]; ok {
		return idx, nil
	}
	if g, ok := c.globals[name]; ok {
		b, callable := g.(*object.Builtin)
		if !callable {
			return 0, c.undefinedFunction(node)
		}
		return c.addConstant(b), nil
	}
	if idx, ok := c.builtinIndex[name]; ok {
		return idx, nil
	}
	if c.builtins != nil {
		if b, ok := c.builtins.Lookup(name); ok {
			idx := c.addConstant(b)
			c.builtinIndex[name] = idx
			return idx, nil
		}
	}
	return 0, c.undefinedFunction(node)
}

func (c *Compiler) undefinedFunction(node *ast.Call) error {
	return &CompileError{
		Kind:    ErrUnresolvedFunction,
		Message: fmt.Sprintf("Undefined function: %s", node.Function.Value),
		Line:    node.Token.Line,
		Column:  node.Token.Column,
	}
}

// isParam reports whether name is a parameter of the unit being compiled.
// A parameter hides builtins of the same name inside the body.
func (c *Compiler) isParam(name string) bool {
	for _, p := range c.params {
		if p == name {
			return true
		}
	}
	return false
}

func (c *Compiler) emitNone(line int) {
	if c.noneIndex < 0 {
		c.noneIndex = c.addConstant(object.NONE)
	}
	c.emit(code.LoadConstant(c.noneIndex), line)
}

func (c *Compiler) addConstant(obj object.Object) int {
	c.constants = append(c.constants, obj)
	return len(c.constants) - 1
}

// emit appends ins and returns its index.
func (c *Compiler) emit(ins code.Instruction, line int) int {
	ins.Line = line
	c.instructions = append(c.instructions, ins)
	return len(c.instructions) - 1
}

// patch sets the target of the already emitted jump at index i. Nothing is
// inserted or moved, so every other absolute target stays valid.
func (c *Compiler) patch(i, target int) {
	c.instructions[i].Operand = target
}
