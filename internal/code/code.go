package code

import (
	"fmt"
	"hilal/internal/object"
)

// Opcode identifies an instruction variant.
type Opcode byte

const (
	OpLoadConstant Opcode = iota // push Constants[Operand]
	OpLoadName                   // push the frame local called Name
	OpBinaryOp                   // pop right, pop left, push left Operator right
	OpJumpIfFalse                // pop, jump to Operand when falsy
	OpJump                       // jump to Operand
	OpCall                       // pop Argc arguments, call Constants[Operand]
	OpPrint                      // pop, write display form and newline, push None
)

var opcodeNames = map[Opcode]string{
	OpLoadConstant: "LoadConstant",
	OpLoadName:     "LoadName",
	OpBinaryOp:     "BinaryOp",
	OpJumpIfFalse:  "JumpIfFalse",
	OpJump:         "Jump",
	OpCall:         "Call",
	OpPrint:        "Print",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// Instruction is one decoded instruction. Which fields are used depends on
// Op. Jump targets in Operand are absolute instruction indices.
type Instruction struct {
	Op       Opcode
	Operand  int
	Argc     int
	Name     string
	Operator string
	Line     int // source line, 0 when unknown
}

func LoadConstant(index int) Instruction { return Instruction{Op: OpLoadConstant, Operand: index} }
func LoadName(name string) Instruction   { return Instruction{Op: OpLoadName, Name: name} }
func BinaryOp(op string) Instruction     { return Instruction{Op: OpBinaryOp, Operator: op} }
func JumpIfFalse(target int) Instruction { return Instruction{Op: OpJumpIfFalse, Operand: target} }
func Jump(target int) Instruction        { return Instruction{Op: OpJump, Operand: target} }
func Print() Instruction                 { return Instruction{Op: OpPrint} }

func Call(target, argc int) Instruction {
	return Instruction{Op: OpCall, Operand: target, Argc: argc}
}

// Equal compares instructions ignoring source lines.
func (ins Instruction) Equal(o Instruction) bool {
	return ins.Op == o.Op && ins.Operand == o.Operand && ins.Argc == o.Argc &&
		ins.Name == o.Name && ins.Operator == o.Operator
}

func (ins Instruction) String() string {
	switch ins.Op {
	case OpLoadConstant, OpJumpIfFalse, OpJump:
		return fmt.Sprintf("%s(%d)", ins.Op, ins.Operand)
	case OpLoadName:
		return fmt.Sprintf("%s(%s)", ins.Op, ins.Name)
	case OpBinaryOp:
		return fmt.Sprintf("%s(%q)", ins.Op, ins.Operator)
	case OpCall:
		return fmt.Sprintf("%s(%d, %d)", ins.Op, ins.Operand, ins.Argc)
	}
	return ins.Op.String()
}

// Bytecode is one compilation unit. Functions holds the compiled body of
// every function constant, keyed by its constant index.
type Bytecode struct {
	Name         string
	Parameters   []string
	Instructions []Instruction
	Constants    []object.Object
	Functions    map[int]*Bytecode
}
