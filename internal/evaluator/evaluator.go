package evaluator

import (
	"errors"
	"hilal/internal/ast"
	"hilal/internal/object"
	"hilal/internal/token"
	"io"
	"log/slog"
	"os"
)

// Evaluator walks the AST directly. Builtins is consulted for call names the
// program does not bind itself and may be nil.
type Evaluator struct {
	Builtins object.Builtins
	Out      io.Writer
}

func New(builtins object.Builtins, out io.Writer) *Evaluator {
	if out == nil {
		out = os.Stdout
	}
	return &Evaluator{Builtins: builtins, Out: out}
}

// Eval evaluates node in env without any builtins.
func Eval(node ast.Node, env *object.Environment) (object.Object, error) {
	return New(nil, nil).Eval(node, env)
}

func (e *Evaluator) Eval(node ast.Node, env *object.Environment) (object.Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return e.evalStatements(node.Statements, env)

	case *ast.Block:
		return e.evalStatements(node.Statements, env)

	case *ast.IfStatement:
		return e.evalIfStatement(node, env)

	case *ast.FunctionDef:
		env.Set(node.Name, &object.Function{
			Name:       node.Name,
			Parameters: node.ParameterNames(),
			Body:       node.Body,
		})
		return object.NONE, nil

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Identifier:
		if val, ok := env.Get(node.Value); ok {
			return val, nil
		}
		return nil, object.NewRuntimeError(object.ErrUndefinedVariable, "Undefined variable: %s", node.Value).At(node.Token)

	case *ast.BinaryOp:
		left, err := e.Eval(node.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(node.Right, env)
		if err != nil {
			return nil, err
		}
		result, err := object.BinaryOp(node.Operator, left, right)
		return result, at(err, node.Token)

	case *ast.Call:
		return e.evalCall(node, env)
	}

	return nil, object.NewRuntimeError(object.ErrUnsupportedNode, "Unsupported node: %T", node)
}

func (e *Evaluator) evalStatements(stmts []ast.Node, env *object.Environment) (object.Object, error) {
	var result object.Object = object.NONE
	for _, s := range stmts {
		val, err := e.Eval(s, env)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *object.Environment) (object.Object, error) {
	cond, err := e.Eval(node.Condition, env)
	if err != nil {
		return nil, err
	}
	if object.IsTruthy(cond) {
		return e.Eval(node.ThenBranch, env)
	}
	if node.ElseBranch != nil {
		return e.Eval(node.ElseBranch, env)
	}
	return object.NONE, nil
}

func (e *Evaluator) evalCall(node *ast.Call, env *object.Environment) (object.Object, error) {
	name := node.Function.Value

	callee, ok := env.Get(name)
	if !ok && e.Builtins != nil {
		if b, found := e.Builtins.Lookup(name); found {
			callee, ok = b, true
		}
	}
	if !ok {
		return nil, object.NewRuntimeError(object.ErrUndefinedFunction, "Undefined function: %s", name).At(node.Token)
	}

	// arguments are evaluated in the caller's environment, left to right
	args := make([]object.Object, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		val, err := e.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	switch fn := callee.(type) {
	case *object.Function:
		result, err := e.applyFunction(fn, args)
		return result, at(err, node.Token)
	case *object.Builtin:
		slog.Debug("builtin call", slog.String("name", name), slog.Int("args", len(args)))
		result, err := fn.Call(&object.CallContext{Out: e.Out}, args)
		return result, at(err, node.Token)
	}
	return nil, object.NewRuntimeError(object.ErrUndefinedFunction, "Undefined function: %s", name).At(node.Token)
}

// applyFunction runs fn in a fresh environment that has no parent. Only the
// parameters are visible inside the body.
func (e *Evaluator) applyFunction(fn *object.Function, args []object.Object) (object.Object, error) {
	if err := object.CheckArity(fn.Name, len(fn.Parameters), len(args)); err != nil {
		return nil, err
	}

	callEnv := object.NewEnvironment()
	for i, param := range fn.Parameters {
		callEnv.Set(param, args[i])
	}
	return e.Eval(fn.Body, callEnv)
}

func at(err error, tok token.Token) error {
	var rtErr *object.RuntimeError
	if errors.As(err, &rtErr) {
		rtErr.At(tok)
	}
	return err
}
