package vm

import (
	"errors"
	"fmt"
	"hilal/internal/code"
)

var (
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrUnknownInstruction = errors.New("unknown instruction")
	ErrInvalidConstant    = errors.New("invalid constant index")
	ErrRuntime            = errors.New("runtime error")
)

// Error halts the machine. Cause holds the object.RuntimeError when the
// failure came from operator or call semantics.
type Error struct {
	Kind        error
	Message     string
	Unit        string
	IP          int
	Instruction code.Instruction
	Cause       error
}

func (e *Error) Error() string {
	unit := e.Unit
	if unit == "" {
		unit = "<main>"
	}
	return fmt.Sprintf("[%3d] %s: %s (%s ip %d %s)", e.Instruction.Line, e.Kind, e.Message, unit, e.IP, e.Instruction)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}
