package cpu

import (
	"strconv"
)

// Register is one of the fixed machine registers.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_VELOCIDADE = Register(0) // VELOCIDADE
	REG_TEMPO      = Register(1) // TEMPO
	REG_INCLINACAO = Register(2) // INCLINACAO
	REG_R1         = Register(3) // R1
	REG_R2         = Register(4) // R2
	REG_SP         = Register(5) // SP
)

const (
	REGISTER_COUNT = 6 // Number of registers in the register file.

	NOT_MASK = 0xffff // NOT truncates its result to 16 bits.
)

// REG_ACC is the accumulator: written by CMP, tested by JZ/JNZ/JL/JG.
const REG_ACC = REG_R1

// registerMap maps the case-sensitive register names.
var registerMap = map[string]Register{}

func init() {
	for n := range REGISTER_COUNT {
		reg := Register(n)
		registerMap[reg.String()] = reg
	}
}

// ParseRegister returns the register named by word.
func ParseRegister(word string) (reg Register, ok bool) {
	reg, ok = registerMap[word]
	return
}

// parseLiteral parses an optionally negative decimal integer.
func parseLiteral(word string) (value int64, ok bool) {
	digits := word
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return
	}
	for _, ch := range digits {
		if ch < '0' || ch > '9' {
			return
		}
	}

	value, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		value = 0
		return
	}

	ok = true
	return
}
