package vm

import (
	"errors"
	"fmt"
	"hilal/internal/code"
	"hilal/internal/object"
	"io"
	"log/slog"
	"os"
)

// VM runs bytecode on a single operand stack. Globals outlive a Run and act
// as the locals of the top-level frame.
type VM struct {
	Globals map[string]object.Object
	Out     io.Writer
	Trace   bool

	stack []object.Object
}

func New(out io.Writer) *VM {
	if out == nil {
		out = os.Stdout
	}
	return &VM{
		Globals: make(map[string]object.Object),
		Out:     out,
		stack:   make([]object.Object, 0, 256),
	}
}

// Run executes bc as the top-level unit. The operand stack starts empty;
// whatever the program leaves on it stays there for Result and Stack.
func (vm *VM) Run(bc *code.Bytecode) error {
	vm.stack = vm.stack[:0]
	return vm.run(bc, vm.Globals)
}

// Stack returns the operands left by the last Run, bottom first.
func (vm *VM) Stack() []object.Object {
	return append([]object.Object(nil), vm.stack...)
}

// Result is the top of the stack after Run, or None for an empty stack.
func (vm *VM) Result() object.Object {
	if len(vm.stack) == 0 {
		return object.NONE
	}
	return vm.stack[len(vm.stack)-1]
}

func (vm *VM) run(bc *code.Bytecode, locals map[string]object.Object) error {
	ins := bc.Instructions
	for ip := 0; ip < len(ins); {
		in := ins[ip]
		if vm.Trace {
			slog.Debug("exec", slog.String("unit", bc.Name), slog.Int("ip", ip),
				slog.String("ins", in.String()), slog.Int("sp", len(vm.stack)))
		}
		next := ip + 1

		switch in.Op {
		case code.OpLoadConstant:
			if in.Operand < 0 || in.Operand >= len(bc.Constants) {
				return vm.fail(bc, ip, ErrInvalidConstant, "constant %d of %d", in.Operand, len(bc.Constants))
			}
			vm.push(bc.Constants[in.Operand])

		case code.OpLoadName:
			val, ok := locals[in.Name]
			if !ok {
				rtErr := object.NewRuntimeError(object.ErrUndefinedVariable, "Undefined variable: %s", in.Name)
				rtErr.Line = in.Line
				return vm.wrap(rtErr, bc, ip)
			}
			vm.push(val)

		case code.OpBinaryOp:
			if len(vm.stack) < 2 {
				return vm.fail(bc, ip, ErrStackUnderflow, "%s needs 2 operands, have %d", in.Operator, len(vm.stack))
			}
			right := vm.pop()
			left := vm.pop()
			result, err := object.BinaryOp(in.Operator, left, right)
			if err != nil {
				return vm.wrap(err, bc, ip)
			}
			vm.push(result)

		case code.OpJumpIfFalse:
			if len(vm.stack) < 1 {
				return vm.fail(bc, ip, ErrStackUnderflow, "no condition on the stack")
			}
			if !object.IsTruthy(vm.pop()) {
				next = in.Operand
			}

		case code.OpJump:
			next = in.Operand

		case code.OpCall:
			if in.Operand < 0 || in.Operand >= len(bc.Constants) {
				return vm.fail(bc, ip, ErrInvalidConstant, "call target %d of %d", in.Operand, len(bc.Constants))
			}
			if len(vm.stack) < in.Argc {
				return vm.fail(bc, ip, ErrStackUnderflow, "call needs %d arguments, have %d", in.Argc, len(vm.stack))
			}
			args := make([]object.Object, in.Argc)
			copy(args, vm.stack[len(vm.stack)-in.Argc:])
			vm.stack = vm.stack[:len(vm.stack)-in.Argc]

			result, err := vm.call(bc, in.Operand, args)
			if err != nil {
				var vmErr *Error
				switch {
				case errors.As(err, &vmErr):
					return err
				case errors.Is(err, ErrInvalidConstant):
					return vm.fail(bc, ip, ErrInvalidConstant, "%v", err)
				}
				return vm.wrap(err, bc, ip)
			}
			vm.push(result)

		case code.OpPrint:
			if len(vm.stack) < 1 {
				return vm.fail(bc, ip, ErrStackUnderflow, "nothing to print")
			}
			fmt.Fprintln(vm.Out, vm.pop().Inspect())
			vm.push(object.NONE)

		default:
			return vm.fail(bc, ip, ErrUnknownInstruction, "%s", in.Op)
		}

		if next < 0 || next > len(ins) {
			return vm.fail(bc, ip, ErrUnknownInstruction, "jump target %d outside 0..%d", next, len(ins))
		}
		ip = next
	}
	return nil
}

// call runs the function constant at index target with the given arguments
// and returns its value. A user function runs in a frame whose locals are
// just its parameters.
func (vm *VM) call(bc *code.Bytecode, target int, args []object.Object) (object.Object, error) {
	switch fn := bc.Constants[target].(type) {
	case *object.Builtin:
		return fn.Call(&object.CallContext{Out: vm.Out}, args)

	case *object.Function:
		if err := object.CheckArity(fn.Name, len(fn.Parameters), len(args)); err != nil {
			return nil, err
		}
		unit, ok := bc.Functions[target]
		if !ok {
			return nil, fmt.Errorf("%w: no compiled body for %s", ErrInvalidConstant, fn.Name)
		}
		locals := make(map[string]object.Object, len(args))
		for i, param := range fn.Parameters {
			locals[param] = args[i]
		}

		base := len(vm.stack)
		if err := vm.run(unit, locals); err != nil {
			return nil, err
		}
		result := object.Object(object.NONE)
		if len(vm.stack) > base {
			result = vm.stack[len(vm.stack)-1]
		}
		vm.stack = vm.stack[:base]
		return result, nil
	}
	return nil, fmt.Errorf("%w: constant %d is not callable", ErrInvalidConstant, target)
}

func (vm *VM) fail(bc *code.Bytecode, ip int, kind error, format string, a ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...), Unit: bc.Name, IP: ip, Instruction: bc.Instructions[ip]}
}

// wrap reports a failure of the shared language semantics, keeping the
// object.RuntimeError reachable through errors.As.
func (vm *VM) wrap(err error, bc *code.Bytecode, ip int) error {
	in := bc.Instructions[ip]
	message := err.Error()
	var rtErr *object.RuntimeError
	if errors.As(err, &rtErr) {
		message = rtErr.Message
		if rtErr.Line == 0 {
			rtErr.Line = in.Line
		}
	}
	return &Error{Kind: ErrRuntime, Message: message, Unit: bc.Name, IP: ip, Instruction: in, Cause: err}
}

func (vm *VM) push(obj object.Object) {
	vm.stack = append(vm.stack, obj)
}

func (vm *VM) pop() object.Object {
	obj := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return obj
}
