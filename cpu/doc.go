// Package cpu implements the treadmill controller machine and its assembler.
//
// The machine has six registers (VELOCIDADE, TEMPO, INCLINACAO for the
// device, R1 and R2 for general use, SP reserved), 256 words of wrapping
// RAM, a single stack shared by PUSH/POP and CALL/RET, and a bank of
// read-only sensors. R1 doubles as the accumulator: CMP writes -1, 0 or 1
// into it, and the conditional jumps test it.
//
// The assembler translates line oriented source into a Program in two
// passes, so labels may be referenced before they are defined. It also
// supports .equ constants, $(...) compile-time expressions and macros.
package cpu
