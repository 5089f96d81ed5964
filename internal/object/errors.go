package object

import (
	"errors"
	"fmt"
	"hilal/internal/token"
)

var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrArity             = errors.New("arity mismatch")
	ErrType              = errors.New("type error")
	ErrUnsupportedNode   = errors.New("unsupported node")
	ErrBuiltin           = errors.New("builtin failed")
)

// RuntimeError is raised by either backend while executing a program.
// Line is zero when no source position is known.
type RuntimeError struct {
	Kind    error
	Message string
	Line    int
	Column  int
	Cause   error
}

func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%3d:%2d] %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *RuntimeError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func NewRuntimeError(kind error, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// At attaches the position of tok unless one is already set.
func (e *RuntimeError) At(tok token.Token) *RuntimeError {
	if e.Line == 0 {
		e.Line = tok.Line
		e.Column = tok.Column
	}
	return e
}

func CheckArity(name string, want, got int) error {
	if want != got {
		return NewRuntimeError(ErrArity, "Function %s expects %d arguments, got %d", name, want, got)
	}
	return nil
}
