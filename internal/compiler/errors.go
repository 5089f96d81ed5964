package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrUnresolvedFunction = errors.New("unresolved function")
	ErrUnsupportedNode    = errors.New("unsupported for compilation")
)

type CompileError struct {
	Kind    error
	Message string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[%3d:%2d] %s: %s", e.Line, e.Column, e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error { return e.Kind }
