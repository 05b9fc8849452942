package cpu

import (
	"slices"
)

// State is a read-only copy of the full machine state.
type State struct {
	Registers   [REGISTER_COUNT]int64
	Ram         Ram
	Stack       []int64
	Pc          int
	Halted      bool
	Running     bool
	ElapsedTime int64
	Steps       int
}

// Snapshot returns a copy of the machine state. Later execution does not
// affect the returned State.
func (cpu *Cpu) Snapshot() (state State) {
	state = State{
		Registers:   cpu.Register,
		Ram:         cpu.Ram,
		Stack:       slices.Clone(cpu.Stack.Data),
		Pc:          cpu.Pc,
		Halted:      cpu.Halted,
		Running:     cpu.Running,
		ElapsedTime: cpu.Elapsed,
		Steps:       cpu.Steps,
	}

	if state.Stack == nil {
		state.Stack = []int64{}
	}

	return
}

// Register returns the value of a register in the state.
func (state State) Register(reg Register) int64 {
	return state.Registers[reg]
}

// RegisterMap returns the registers keyed by name.
func (state State) RegisterMap() (regs map[string]int64) {
	regs = make(map[string]int64, REGISTER_COUNT)
	for n, value := range state.Registers {
		regs[Register(n).String()] = value
	}
	return
}
