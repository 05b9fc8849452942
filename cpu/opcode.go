package cpu

import (
	"strings"
)

// Opcode is an instruction mnemonic.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_INICIAR    = Opcode(0)  // INICIAR
	OP_PARAR      = Opcode(1)  // PARAR
	OP_STATUS     = Opcode(2)  // STATUS
	OP_HALT       = Opcode(3)  // HALT
	OP_RET        = Opcode(4)  // RET
	OP_INC        = Opcode(5)  // INC
	OP_DEC        = Opcode(6)  // DEC
	OP_GOTO       = Opcode(7)  // GOTO
	OP_CALL       = Opcode(8)  // CALL
	OP_PUSH       = Opcode(9)  // PUSH
	OP_POP        = Opcode(10) // POP
	OP_JZ         = Opcode(11) // JZ
	OP_JNZ        = Opcode(12) // JNZ
	OP_JL         = Opcode(13) // JL
	OP_JG         = Opcode(14) // JG
	OP_NOT        = Opcode(15) // NOT
	OP_SET        = Opcode(16) // SET
	OP_ADD        = Opcode(17) // ADD
	OP_SUB        = Opcode(18) // SUB
	OP_MUL        = Opcode(19) // MUL
	OP_DIV        = Opcode(20) // DIV
	OP_DECJZ      = Opcode(21) // DECJZ
	OP_LOAD       = Opcode(22) // LOAD
	OP_STORE      = Opcode(23) // STORE
	OP_CMP        = Opcode(24) // CMP
	OP_AND        = Opcode(25) // AND
	OP_OR         = Opcode(26) // OR
	OP_XOR        = Opcode(27) // XOR
	OP_READSENSOR = Opcode(28) // READSENSOR
)

const OPCODE_COUNT = 29

// opcodeArity is the exact operand count of each opcode.
var opcodeArity = [OPCODE_COUNT]int{
	OP_INICIAR: 0, OP_PARAR: 0, OP_STATUS: 0, OP_HALT: 0, OP_RET: 0,
	OP_INC: 1, OP_DEC: 1, OP_GOTO: 1, OP_CALL: 1, OP_PUSH: 1, OP_POP: 1,
	OP_JZ: 1, OP_JNZ: 1, OP_JL: 1, OP_JG: 1, OP_NOT: 1,
	OP_SET: 2, OP_ADD: 2, OP_SUB: 2, OP_MUL: 2, OP_DIV: 2, OP_DECJZ: 2,
	OP_LOAD: 2, OP_STORE: 2, OP_CMP: 2, OP_AND: 2, OP_OR: 2, OP_XOR: 2,
	OP_READSENSOR: 2,
}

// opcodeMap maps the upper case mnemonics.
var opcodeMap = map[string]Opcode{}

func init() {
	for n := range OPCODE_COUNT {
		op := Opcode(n)
		opcodeMap[op.String()] = op
	}
}

// ParseOpcode returns the opcode for a case-insensitive mnemonic.
func ParseOpcode(word string) (op Opcode, ok bool) {
	op, ok = opcodeMap[strings.ToUpper(word)]
	return
}

// Valid returns true if the opcode is one of the defined mnemonics.
func (op Opcode) Valid() bool {
	return op >= 0 && op < OPCODE_COUNT
}

// Arity returns the number of operands the opcode requires, or -1 for
// an invalid opcode.
func (op Opcode) Arity() int {
	if !op.Valid() {
		return -1
	}
	return opcodeArity[op]
}

// Target returns the index of the operand naming a jump label, or -1.
func (op Opcode) Target() int {
	switch op {
	case OP_GOTO, OP_CALL, OP_JZ, OP_JNZ, OP_JL, OP_JG:
		return 0
	case OP_DECJZ:
		return 1
	}
	return -1
}

// Jumps returns true if the opcode may redirect the program counter.
func (op Opcode) Jumps() bool {
	switch op {
	case OP_GOTO, OP_CALL, OP_RET, OP_DECJZ, OP_JZ, OP_JNZ, OP_JL, OP_JG:
		return true
	}
	return false
}
