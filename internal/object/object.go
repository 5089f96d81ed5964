package object

import (
	"errors"
	"fmt"
	"hilal/internal/ast"
	"io"
	"strings"
)

const (
	NONE_OBJ     = "NONE"
	NUMBER_OBJ   = "NUMBER"
	STRING_OBJ   = "STRING"
	FUNCTION_OBJ = "FUNCTION"
	BUILTIN_OBJ  = "BUILTIN"
)

var NONE = &None{}

type ObjectType string

// Object is the runtime value shared by the interpreter and the VM.
type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return ast.FormatNumber(n.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type None struct{}

func (n *None) Type() ObjectType { return NONE_OBJ }
func (n *None) Inspect() string  { return "None" }

// Function keeps its parameter names and a shared reference to the body.
// It captures no scope: every call starts from an environment without a
// parent.
type Function struct {
	Name       string
	Parameters []string
	Body       *ast.Block
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	return fmt.Sprintf("<function %s(%s)>", f.Name, strings.Join(f.Parameters, ", "))
}

// CallContext is handed to builtins so they can reach the host.
type CallContext struct {
	Out io.Writer
}

type BuiltinFunction func(ctx *CallContext, args ...Object) (Object, error)

// Builtin is a host function. Arity -1 accepts any argument count.
type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return fmt.Sprintf("<builtin %s>", b.Name) }

// Call checks the argument count and runs the builtin. Plain errors coming
// back from the host are reported as ErrBuiltin.
func (b *Builtin) Call(ctx *CallContext, args []Object) (Object, error) {
	if b.Arity >= 0 {
		if err := CheckArity(b.Name, b.Arity, len(args)); err != nil {
			return nil, err
		}
	}
	result, err := b.Fn(ctx, args...)
	if err != nil {
		var rtErr *RuntimeError
		if errors.As(err, &rtErr) {
			return nil, err
		}
		return nil, &RuntimeError{Kind: ErrBuiltin, Message: fmt.Sprintf("%s: %v", b.Name, err), Cause: err}
	}
	if result == nil {
		return NONE, nil
	}
	return result, nil
}

// Builtins resolves names that are not bound by the program itself.
type Builtins interface {
	Lookup(name string) (*Builtin, bool)
}

func IsTruthy(obj Object) bool {
	n, ok := obj.(*Number)
	return ok && n.Value != 0
}
