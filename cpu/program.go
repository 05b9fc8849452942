package cpu

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Instruction is a single decoded line of assembly. Operands are kept as
// raw tokens and resolved when the instruction executes.
type Instruction struct {
	LineNo   int      // Source line number.
	Line     string   // Source line, comment stripped.
	Opcode   Opcode   // Decoded mnemonic.
	Operands []string // Raw operand tokens.
}

// String returns the canonical assembly text of the instruction.
func (ins Instruction) String() string {
	if len(ins.Operands) == 0 {
		return ins.Opcode.String()
	}
	return ins.Opcode.String() + " " + strings.Join(ins.Operands, " ")
}

// Program is an assembled program: its instructions in source order, and the
// instruction index each label refers to.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int
}

type Debug struct {
	*Instruction
	Labels []string // Labels referring to this instruction.
}

// Len returns the number of instructions.
func (prog *Program) Len() int {
	if prog == nil {
		return 0
	}
	return len(prog.Instructions)
}

// Label returns the instruction index of a label.
func (prog *Program) Label(label string) (index int, err error) {
	var ok bool
	if prog != nil {
		index, ok = prog.Labels[label]
	}
	if !ok {
		err = ErrLabelMissing(label)
	}
	return
}

// Debug returns the instruction at pc, and the labels that point to it.
func (prog *Program) Debug(pc int) (dbg Debug) {
	if pc < 0 || pc >= prog.Len() {
		return
	}

	dbg.Instruction = &prog.Instructions[pc]
	for _, label := range slices.Sorted(maps.Keys(prog.Labels)) {
		if prog.Labels[label] == pc {
			dbg.Labels = append(dbg.Labels, label)
		}
	}

	return
}

// LineNo returns the source line of the instruction at pc, or 0.
func (prog *Program) LineNo(pc int) int {
	if pc < 0 || pc >= prog.Len() {
		return 0
	}
	return prog.Instructions[pc].LineNo
}

// All iterates over the instructions by index.
func (prog *Program) All() iter.Seq2[int, Instruction] {
	return func(yield func(pc int, ins Instruction) bool) {
		if prog == nil {
			return
		}
		for pc, ins := range prog.Instructions {
			if !yield(pc, ins) {
				return
			}
		}
	}
}
