package code

import (
	"fmt"
	"hilal/internal/object"
	"sort"
	"strings"
)

// Disassemble returns a human-readable listing of the unit and every
// function unit it contains.
func (b *Bytecode) Disassemble() string {
	var sb strings.Builder
	b.disassemble(&sb)
	return sb.String()
}

func (b *Bytecode) disassemble(sb *strings.Builder) {
	name := b.Name
	if name == "" {
		name = "<main>"
	}
	sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	if len(b.Parameters) > 0 {
		sb.WriteString(fmt.Sprintf("; Parameters (%d): %s\n", len(b.Parameters), strings.Join(b.Parameters, ", ")))
	}

	if len(b.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, c := range b.Constants {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, describeConstant(c)))
		}
	}

	sb.WriteString("; Code:\n")
	for i, ins := range b.Instructions {
		line := ins.String()
		if ins.Op == OpLoadConstant && ins.Operand < len(b.Constants) {
			line = fmt.Sprintf("%-20s ; %s", line, describeConstant(b.Constants[ins.Operand]))
		}
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, line))
	}

	indexes := make([]int, 0, len(b.Functions))
	for idx := range b.Functions {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		sb.WriteString("\n")
		b.Functions[idx].disassemble(sb)
	}
}

func describeConstant(obj object.Object) string {
	display := obj.Inspect()
	if s, ok := obj.(*object.String); ok {
		display = s.Value
		if len(display) > 40 {
			display = display[:37] + "..."
		}
		display = fmt.Sprintf("%q", display)
	}
	return display
}
