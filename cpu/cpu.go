package cpu

import (
	"cmp"
	"fmt"
	"iter"
	"log"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/ezrec/treadmill/internal"
	"github.com/ezrec/treadmill/sensor"
)

var _cpu_defines = map[string]string{
	"RAM_SIZE": fmt.Sprintf("%d", RAM_SIZE),
	"NOT_MASK": fmt.Sprintf("%d", NOT_MASK),
	"LESS":     "-1", // CMP result when a < b
	"EQUAL":    "0",  // CMP result when a == b
	"GREATER":  "1",  // CMP result when a > b
}

// Cpu is the treadmill controller machine.
type Cpu struct {
	Verbose bool         // Set to enable verbose logging.
	Monitor Monitor      // Receives device control events, if set.
	Sensors *sensor.Bank // Sensors available to READSENSOR.

	Program  *Program              // Loaded program.
	Pc       int                   // Index of the next instruction.
	Register [REGISTER_COUNT]int64 // Register file.
	Ram      Ram                   // Memory. Preserved across Load.
	Stack    Stack                 // Shared data and return address stack.

	Running bool  // Treadmill belt is running.
	Halted  bool  // Execution has finished.
	Elapsed int64 // Steps executed while running.
	Steps   int   // Steps executed since load.
}

// NewCpu creates a machine with the standard treadmill sensors, seeded
// from the global random source.
func NewCpu() *Cpu {
	return NewCpuSeed(rand.Uint64())
}

// NewCpuSeed creates a machine with the standard treadmill sensors whose
// simulated measurements are reproducible for a given seed.
func NewCpuSeed(seed uint64) (cpu *Cpu) {
	cpu = &Cpu{
		Program: &Program{},
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x5eed_7ead_0000_0001))
	cpu.Sensors = sensor.NewTreadmill(cpu, rng)

	return
}

// ElapsedTime returns the elapsed running time.
func (cpu *Cpu) ElapsedTime() int64 {
	return cpu.Elapsed
}

// Speed returns the speed register.
func (cpu *Cpu) Speed() int64 {
	return cpu.Register[REG_VELOCIDADE]
}

// Incline returns the incline register.
func (cpu *Cpu) Incline() int64 {
	return cpu.Register[REG_INCLINACAO]
}

// Defines returns the assembler equates of the machine and its sensors.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	seqs := []iter.Seq2[string, string]{maps.All(_cpu_defines)}
	if cpu.Sensors != nil {
		seqs = append(seqs, cpu.Sensors.Defines())
	}
	return internal.IterSeq2Concat(seqs...)
}

// String returns the current machine state as a string.
func (cpu *Cpu) String() (text string) {
	for n := range REGISTER_COUNT {
		reg := Register(n)
		text += fmt.Sprintf("% 10s: %d\n", reg.String(), cpu.Register[reg])
	}

	top := "-"
	val, ok := cpu.Stack.Peek()
	if ok {
		top = fmt.Sprintf("%d", val)
	}

	text += fmt.Sprintf("% 10s: %v (%d)\n", "stack", top, cpu.Stack.Len())
	text += fmt.Sprintf("% 10s: %d\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 10s: %v\n", "running", cpu.Running)
	text += fmt.Sprintf("% 10s: %v\n", "halted", cpu.Halted)
	text += fmt.Sprintf("% 10s: %d\n", "elapsed", cpu.Elapsed)
	text += fmt.Sprintf("% 10s: %d\n", "steps", cpu.Steps)

	return
}

// resetExecution clears everything a program load replaces. RAM is kept.
func (cpu *Cpu) resetExecution() {
	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.Program = &Program{}
	cpu.Pc = 0
	cpu.Running = false
	cpu.Halted = false
	cpu.Elapsed = 0
	cpu.Steps = 0
}

// Reset clears the machine state, including RAM, and unloads the program.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.resetExecution()
	cpu.Ram.Reset()
}

// Load assembles source and makes it the current program.
//
// Registers, stack, program counter, flags and counters are reset; RAM
// keeps its contents from any previous program. On error the machine is
// left with an empty program.
func (cpu *Cpu) Load(source string) (err error) {
	asm := &Assembler{Verbose: cpu.Verbose}
	for equ, value := range cpu.Defines() {
		asm.Predefine(equ, value)
	}

	cpu.resetExecution()

	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	cpu.LoadProgram(prog)

	return
}

// LoadProgram makes an assembled program the current program, resetting
// the machine as Load does.
func (cpu *Cpu) LoadProgram(prog *Program) {
	cpu.resetExecution()
	cpu.Program = prog

	if cpu.Verbose {
		log.Printf("cpu: loaded %d instructions, %d labels", prog.Len(), len(prog.Labels))
	}
}

// Step executes a single instruction. Running off the end of the program
// halts the machine without error.
func (cpu *Cpu) Step() (err error) {
	if cpu.Halted {
		return
	}

	if cpu.Pc >= cpu.Program.Len() {
		cpu.Halted = true
		return
	}

	if cpu.Pc < 0 {
		err = &ErrExec{Pc: cpu.Pc, Opcode: Opcode(-1), Err: ErrPcInvalid(cpu.Pc)}
		return
	}

	ins := cpu.Program.Instructions[cpu.Pc]
	cpu.Steps++

	err = cpu.Execute(ins)
	if err != nil {
		return
	}

	if cpu.Running {
		cpu.Elapsed++
	}

	return
}

// Run steps until the machine halts. If maxSteps is positive, reaching
// maxSteps executed steps before halting is an error.
func (cpu *Cpu) Run(maxSteps int) (err error) {
	for !cpu.Halted {
		if maxSteps > 0 && cpu.Steps >= maxSteps {
			err = &ErrStepLimit{Limit: maxSteps, Pc: cpu.Pc}
			return
		}
		err = cpu.Step()
		if err != nil {
			return
		}
	}

	return
}

// getValue resolves an operand token to a register value or literal.
func (cpu *Cpu) getValue(word string) (value int64, err error) {
	reg, ok := ParseRegister(word)
	if ok {
		value = cpu.Register[reg]
		return
	}

	value, ok = parseLiteral(word)
	if !ok {
		err = ErrParseValue(word)
	}

	return
}

// getRegister resolves an operand token that must name a register.
func (cpu *Cpu) getRegister(word string) (reg Register, err error) {
	reg, ok := ParseRegister(word)
	if !ok {
		err = ErrParseRegister(word)
	}
	return
}

// getLabel resolves a jump target.
func (cpu *Cpu) getLabel(label string) (pc int, err error) {
	return cpu.Program.Label(label)
}

// notify sends a device event to the monitor.
func (cpu *Cpu) notify(event Event) {
	if cpu.Verbose {
		log.Printf("cpu: %v", event)
	}
	if cpu.Monitor != nil {
		cpu.Monitor.Notify(event, cpu)
	}
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int64) (q int64) {
	q = a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return
}

// doAlu performs a two operand arithmetic or logic operation.
func doAlu(op Opcode, input int64, value int64) (output int64, err error) {
	switch op {
	case OP_ADD:
		output = input + value
	case OP_SUB:
		output = input - value
	case OP_MUL:
		output = input * value
	case OP_DIV:
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		output = floorDiv(input, value)
	case OP_AND:
		output = input & value
	case OP_OR:
		output = input | value
	case OP_XOR:
		output = input ^ value
	default:
		err = ErrOpcodeInvalid
	}

	return
}

// Execute executes a single decoded instruction at the current pc.
// Machine state is only changed when the instruction succeeds.
func (cpu *Cpu) Execute(ins Instruction) (err error) {
	defer func() {
		if err != nil {
			err = &ErrExec{
				Pc:       cpu.Pc,
				Opcode:   ins.Opcode,
				Operands: slices.Clone(ins.Operands),
				Err:      err,
			}
		}
	}()

	if cpu.Verbose {
		log.Printf("cpu: %03d: %v", cpu.Pc, ins)
	}

	if !ins.Opcode.Valid() {
		err = ErrOpcodeInvalid
		return
	}

	args := ins.Operands
	if len(args) != ins.Opcode.Arity() {
		err = &ErrArity{Opcode: ins.Opcode, Expect: ins.Opcode.Arity(), Got: len(args)}
		return
	}

	next_pc := cpu.Pc + 1

	switch ins.Opcode {
	case OP_GOTO:
		next_pc, err = cpu.getLabel(args[0])
	case OP_DECJZ:
		var reg Register
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		if cpu.Register[reg] == 0 {
			next_pc, err = cpu.getLabel(args[1])
		} else {
			cpu.Register[reg]--
		}
	case OP_CALL:
		next_pc, err = cpu.getLabel(args[0])
		if err != nil {
			return
		}
		cpu.Stack.Push(int64(cpu.Pc + 1))
	case OP_RET:
		addr, ok := cpu.Stack.Peek()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		if addr < 0 {
			err = ErrAddressInvalid
			return
		}
		cpu.Stack.Pop()
		next_pc = int(addr)
	case OP_JZ, OP_JNZ, OP_JL, OP_JG:
		acc := cpu.Register[REG_ACC]
		var taken bool
		switch ins.Opcode {
		case OP_JZ:
			taken = acc == 0
		case OP_JNZ:
			taken = acc != 0
		case OP_JL:
			taken = acc < cpu.Register[REG_R2]
		case OP_JG:
			taken = acc > cpu.Register[REG_R2]
		}
		if taken {
			next_pc, err = cpu.getLabel(args[0])
		}
	case OP_SET:
		var reg Register
		var value int64
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		value, err = cpu.getValue(args[1])
		if err != nil {
			return
		}
		cpu.Register[reg] = value
	case OP_INC, OP_DEC, OP_NOT:
		var reg Register
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		switch ins.Opcode {
		case OP_INC:
			cpu.Register[reg]++
		case OP_DEC:
			cpu.Register[reg] = max(0, cpu.Register[reg]-1)
		case OP_NOT:
			cpu.Register[reg] = ^cpu.Register[reg] & NOT_MASK
		}
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_XOR:
		var reg Register
		var value int64
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		value, err = cpu.getValue(args[1])
		if err != nil {
			return
		}
		var output int64
		output, err = doAlu(ins.Opcode, cpu.Register[reg], value)
		if err != nil {
			return
		}
		cpu.Register[reg] = output
	case OP_PUSH:
		var value int64
		value, err = cpu.getValue(args[0])
		if err != nil {
			return
		}
		cpu.Stack.Push(value)
	case OP_POP:
		var reg Register
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		value, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackUnderflow
			return
		}
		cpu.Register[reg] = value
	case OP_LOAD:
		var reg Register
		var addr int64
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		addr, err = cpu.getValue(args[1])
		if err != nil {
			return
		}
		cpu.Register[reg] = cpu.Ram.Load(addr)
	case OP_STORE:
		var addr, value int64
		addr, err = cpu.getValue(args[1])
		if err != nil {
			return
		}
		value, err = cpu.getValue(args[0])
		if err != nil {
			return
		}
		cpu.Ram.Store(addr, value)
	case OP_CMP:
		var a, b int64
		a, err = cpu.getValue(args[0])
		if err != nil {
			return
		}
		b, err = cpu.getValue(args[1])
		if err != nil {
			return
		}
		// Compare rather than subtract, so the sign is right even
		// when a - b would overflow.
		cpu.Register[REG_ACC] = int64(cmp.Compare(a, b))
	case OP_READSENSOR:
		var reg Register
		var value int64
		reg, err = cpu.getRegister(args[0])
		if err != nil {
			return
		}
		if cpu.Sensors == nil {
			err = ErrSensorsDetached
			return
		}
		value, err = cpu.Sensors.Read(args[1])
		if err != nil {
			return
		}
		cpu.Register[reg] = value
	case OP_INICIAR:
		cpu.Running = true
		cpu.notify(EVENT_START)
	case OP_PARAR:
		cpu.Running = false
		cpu.notify(EVENT_STOP)
	case OP_STATUS:
		cpu.notify(EVENT_STATUS)
	case OP_HALT:
		cpu.Running = false
		cpu.Halted = true
		next_pc = cpu.Pc
		cpu.notify(EVENT_HALT)
	default:
		err = ErrOpcodeInvalid
	}

	if err != nil {
		return
	}

	cpu.Pc = next_pc

	return
}
