package cpu

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/treadmill/sensor"
)

// load creates a seeded machine with the program loaded.
func load(t *testing.T, program ...string) (cpu *Cpu) {
	cpu = NewCpuSeed(1)
	err := cpu.Load(strings.Join(program, "\n"))
	require.NoError(t, err)
	return
}

// monitorLog records device events.
type monitorLog struct {
	events []Event
	pcs    []int
}

func (ml *monitorLog) Notify(event Event, cpu *Cpu) {
	ml.events = append(ml.events, event)
	ml.pcs = append(ml.pcs, cpu.Pc)
}

func TestCpuEmpty(t *testing.T) {
	assert := assert.New(t)

	cpu := &Cpu{}
	assert.NoError(cpu.Step())
	assert.True(cpu.Halted)
	assert.Equal(0, cpu.Steps)

	cpu = NewCpu()
	assert.NoError(cpu.Load(""))
	assert.NoError(cpu.Run(10))
	assert.True(cpu.Halted)
	assert.Equal(0, cpu.Pc)
}

func TestCpuLoadError(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpuSeed(1)

	err := cpu.Load("loop:\nINC R1\nloop:\nHALT")
	assert.ErrorIs(err, ErrLabelDuplicate)

	err = cpu.Load("INICIAR\n  SET R1   ; missing value\nHALT")
	assert.ErrorIs(err, ErrOperandCount)
	var syntax *ErrSyntax
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(2, syntax.LineNo)
		assert.Equal("SET R1", syntax.Line)
	}

	err = cpu.Load("PULAR fim")
	var unknown ErrOpcodeUnknown
	assert.True(errors.As(err, &unknown))

	// A failed load leaves an empty program behind.
	assert.Equal(0, cpu.Program.Len())
	assert.NoError(cpu.Step())
	assert.True(cpu.Halted)
}

func TestCpuAdvance(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"INICIAR",
		"SET R1 5",
		"INC R1",
		"DEC R1",
		"ADD R1 2",
		"SUB R1 1",
		"MUL R1 3",
		"DIV R1 2",
		"PUSH R1",
		"POP R2",
		"LOAD R1 0",
		"STORE R1 1",
		"AND R1 7",
		"OR R1 8",
		"XOR R1 1",
		"NOT R1",
		"CMP R1 R2",
		"READSENSOR R1 tempo",
		"JZ nowhere",
		"STATUS",
		"PARAR",
	)

	// R1 is -1 at the JZ, so the missing label is never resolved.
	for pc := range cpu.Program.Len() {
		assert.Equal(pc, cpu.Pc)
		if pc == 18 {
			cpu.Register[REG_R1] = -1
		}
		err := cpu.Step()
		assert.NoError(err, cpu.Program.Instructions[pc].Line)
		assert.Equal(pc+1, cpu.Pc, cpu.Program.Instructions[pc].Line)
		assert.Equal(pc+1, cpu.Steps)
	}

	assert.False(cpu.Halted)
	assert.NoError(cpu.Step())
	assert.True(cpu.Halted)
	assert.Equal(cpu.Program.Len(), cpu.Steps)
}

func TestCpuArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program []string
		reg     Register
		value   int64
	}){
		{[]string{"SET R1 5", "ADD R1 -7"}, REG_R1, -2},
		{[]string{"SET R1 5", "SUB R1 7"}, REG_R1, -2},
		{[]string{"SET R1 -4", "MUL R1 6"}, REG_R1, -24},
		{[]string{"SET R1 7", "DIV R1 2"}, REG_R1, 3},
		{[]string{"SET R1 -7", "DIV R1 2"}, REG_R1, -4},
		{[]string{"SET R1 7", "DIV R1 -2"}, REG_R1, -4},
		{[]string{"SET R1 -7", "DIV R1 -2"}, REG_R1, 3},
		{[]string{"SET R1 -6", "DIV R1 3"}, REG_R1, -2},
		{[]string{"SET R1 12", "AND R1 10"}, REG_R1, 8},
		{[]string{"SET R1 12", "OR R1 3"}, REG_R1, 15},
		{[]string{"SET R1 12", "XOR R1 10"}, REG_R1, 6},
		{[]string{"SET R2 3", "SET R1 4", "ADD R1 R2"}, REG_R1, 7},
		{[]string{"SET TEMPO 0", "DEC TEMPO"}, REG_TEMPO, 0},
		{[]string{"SET TEMPO -5", "DEC TEMPO"}, REG_TEMPO, 0},
		{[]string{"SET TEMPO 5", "DEC TEMPO"}, REG_TEMPO, 4},
		{[]string{"SET SP 9223372036854775807", "INC SP"}, REG_SP, math.MinInt64},
		{[]string{"SET SP 9223372036854775807", "ADD SP 1"}, REG_SP, math.MinInt64},
		{[]string{"SET INCLINACAO -9223372036854775808"}, REG_INCLINACAO, math.MinInt64},
		{[]string{"SET VELOCIDADE VELOCIDADE", "INC VELOCIDADE"}, REG_VELOCIDADE, 1},
	}

	for _, entry := range table {
		name := strings.Join(entry.program, "; ")
		cpu := load(t, entry.program...)
		err := cpu.Run(100)
		if assert.NoError(err, name) {
			assert.Equal(entry.value, cpu.Register[entry.reg], name)
		}
	}
}

func TestCpuNot(t *testing.T) {
	assert := assert.New(t)

	table := []int64{0, 5, -1, 0xffff, 0x12345, math.MinInt64, math.MaxInt64}

	for _, value := range table {
		cpu := load(t,
			fmt.Sprintf("SET R1 %d", value),
			"NOT R1",
			"NOT R1",
		)

		require.NoError(t, cpu.Step())
		require.NoError(t, cpu.Step())
		once := cpu.Register[REG_R1]
		assert.Equal(^value&NOT_MASK, once, value)
		assert.True(once >= 0 && once <= NOT_MASK, value)

		require.NoError(t, cpu.Step())
		assert.Equal(value&NOT_MASK, cpu.Register[REG_R1], value)
	}
}

func TestCpuDecjz(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"SET R1 2",
		"loop:",
		"DECJZ R1 done",
		"GOTO loop",
		"done:",
		"HALT",
	)

	expect := [](struct {
		pc int
		r1 int64
	}){
		{1, 2}, // SET
		{2, 1}, // DECJZ, 2 -> 1
		{1, 1}, // GOTO
		{2, 0}, // DECJZ, 1 -> 0
		{1, 0}, // GOTO
		{3, 0}, // DECJZ, taken
		{3, 0}, // HALT
	}

	for n, entry := range expect {
		assert.NoError(cpu.Step(), n)
		assert.Equal(entry.pc, cpu.Pc, n)
		assert.Equal(entry.r1, cpu.Register[REG_R1], n)
	}
	assert.True(cpu.Halted)
	assert.Equal(7, cpu.Steps)

	cpu = load(t, "SET R1 -3", "DECJZ R1 done", "done:")
	assert.NoError(cpu.Run(10))
	assert.Equal(int64(-4), cpu.Register[REG_R1])
}

func TestCpuCompare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		a, b   int64
		expect int64
	}){
		{5, 3, 1},
		{3, 5, -1},
		{4, 4, 0},
		{-2, -7, 1},
		{-7, -2, -1},
		{0, 0, 0},
		{math.MaxInt64, -1, 1},
		{math.MinInt64, 1, -1},
		{math.MinInt64, math.MaxInt64, -1},
	}

	for _, entry := range table {
		name := fmt.Sprintf("CMP %d %d", entry.a, entry.b)
		cpu := load(t,
			"SET R2 0",
			name,
			"JZ zero",
			"JL less",
			"JG greater",
			"HALT",
			"zero:",
			"SET SP 0",
			"HALT",
			"less:",
			"SET SP -1",
			"HALT",
			"greater:",
			"SET SP 1",
			"HALT",
		)
		cpu.Register[REG_SP] = 99
		require.NoError(t, cpu.Run(100), name)
		assert.Equal(entry.expect, cpu.Register[REG_R1], name)
		assert.Equal(entry.expect, cpu.Register[REG_SP], name)

		cpu = load(t,
			fmt.Sprintf("CMP %d %d", entry.a, entry.b),
			"JNZ differ",
			"SET TEMPO 1",
			"HALT",
			"differ:",
			"SET TEMPO 2",
		)
		require.NoError(t, cpu.Run(100), name)
		if entry.expect == 0 {
			assert.Equal(int64(1), cpu.Register[REG_TEMPO], name)
		} else {
			assert.Equal(int64(2), cpu.Register[REG_TEMPO], name)
		}
	}
}

func TestCpuJumpRegisters(t *testing.T) {
	assert := assert.New(t)

	// JL and JG compare R1 against R2, not against zero.
	cpu := load(t,
		"SET R1 10",
		"SET R2 20",
		"JG wrong",
		"JL right",
		"wrong:",
		"SET TEMPO 1",
		"HALT",
		"right:",
		"SET TEMPO 2",
		"HALT",
	)
	assert.NoError(cpu.Run(100))
	assert.Equal(int64(2), cpu.Register[REG_TEMPO])
}

func TestCpuCallRet(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"CALL sub",
		"SET R2 7",
		"HALT",
		"sub:",
		"SET R1 1",
		"RET",
	)

	assert.NoError(cpu.Step())
	assert.Equal(3, cpu.Pc)
	assert.Equal([]int64{1}, cpu.Snapshot().Stack)

	assert.NoError(cpu.Step())
	assert.Equal(4, cpu.Pc)

	assert.NoError(cpu.Step())
	assert.Equal(1, cpu.Pc)
	assert.Equal([]int64{}, cpu.Snapshot().Stack)

	assert.NoError(cpu.Run(100))
	assert.True(cpu.Halted)
	assert.Equal(int64(1), cpu.Register[REG_R1])
	assert.Equal(int64(7), cpu.Register[REG_R2])
}

func TestCpuSharedStack(t *testing.T) {
	assert := assert.New(t)

	// A value pushed inside a subroutine is popped by RET as an address.
	cpu := load(t,
		"CALL sub",
		"HALT",
		"sub:",
		"PUSH 3",
		"RET",
	)

	assert.NoError(cpu.Run(100))
	assert.True(cpu.Halted)
	assert.Equal(1, cpu.Pc)
	assert.Equal(5, cpu.Steps)
	assert.Equal(0, cpu.Stack.Len())

	cpu = load(t, "PUSH 5", "PUSH -2", "POP R1", "POP R2")
	assert.NoError(cpu.Run(100))
	assert.Equal(int64(-2), cpu.Register[REG_R1])
	assert.Equal(int64(5), cpu.Register[REG_R2])
}

func TestCpuRam(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"SET R1 42",
		"STORE R1 260",
		"LOAD R2 4",
		"STORE -9 -1",
		"LOAD TEMPO 255",
		"SET SP 511",
		"STORE 1 SP",
	)

	assert.NoError(cpu.Run(100))
	assert.Equal(int64(42), cpu.Ram[4])
	assert.Equal(int64(42), cpu.Register[REG_R2])
	assert.Equal(int64(-9), cpu.Register[REG_TEMPO])

	// 511 and -1 both address the last word.
	state := cpu.Snapshot()
	assert.Equal(int64(1), state.Ram[255])
}

func TestCpuRamPersists(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t, "SET R1 7", "STORE R1 0", "PUSH 1", "INICIAR", "HALT")
	require.NoError(t, cpu.Run(100))

	require.NoError(t, cpu.Load("LOAD R2 0"))
	state := cpu.Snapshot()
	assert.Equal(int64(7), state.Ram[0])
	assert.Equal([REGISTER_COUNT]int64{}, state.Registers)
	assert.Equal([]int64{}, state.Stack)
	assert.Equal(0, state.Pc)
	assert.False(state.Halted)
	assert.False(state.Running)
	assert.Equal(int64(0), state.ElapsedTime)
	assert.Equal(0, state.Steps)

	require.NoError(t, cpu.Run(100))
	assert.Equal(int64(7), cpu.Register[REG_R2])

	cpu.Reset()
	assert.Equal(Ram{}, cpu.Ram)
	assert.Equal(0, cpu.Program.Len())
}

func TestCpuFactorial(t *testing.T) {
	assert := assert.New(t)

	factorial := func(n int) string {
		return strings.Join([]string{
			"INICIAR",
			fmt.Sprintf("SET R1 %d", n),
			"SET R2 1",
			"loop:",
			"DECJZ R1 end_loop",
			"SET TEMPO R2",
			"SET INCLINACAO R1",
			"mul_loop:",
			"DECJZ INCLINACAO end_mul",
			"ADD R2 TEMPO",
			"GOTO mul_loop",
			"end_mul:",
			"GOTO loop",
			"end_loop:",
			"STORE R2 0",
			"STATUS",
			"HALT",
		}, "\n")
	}

	table := [](struct {
		n      int
		expect int64
	}){
		{1, 1},
		{2, 2},
		{4, 24},
		{5, 120},
		{6, 720},
	}

	for _, entry := range table {
		cpu := NewCpuSeed(1)
		require.NoError(t, cpu.Load(factorial(entry.n)))
		err := cpu.Run(10000)
		assert.NoError(err, entry.n)
		assert.True(cpu.Halted, entry.n)
		assert.False(cpu.Running, entry.n)
		assert.Equal(entry.expect, cpu.Ram[0], entry.n)
		assert.Equal(entry.expect, cpu.Register[REG_R2], entry.n)
		// Everything but the final HALT ran with the belt on.
		assert.Equal(int64(cpu.Steps-1), cpu.Elapsed, entry.n)
	}
}

func TestCpuStepLimit(t *testing.T) {
	assert := assert.New(t)

	for _, limit := range []int{1, 2, 10, 137} {
		cpu := load(t, "loop:", "GOTO loop")
		err := cpu.Run(limit)

		var step_limit *ErrStepLimit
		if assert.True(errors.As(err, &step_limit), limit) {
			assert.Equal(limit, step_limit.Limit)
			assert.Equal(0, step_limit.Pc)
		}
		assert.Equal(limit, cpu.Steps)
		assert.False(cpu.Halted)

		// Stepping directly continues past the budget.
		assert.NoError(cpu.Step())
		assert.Equal(limit+1, cpu.Steps)
	}

	// A program that halts within the budget is not an error.
	cpu := load(t, "INC R1", "INC R1", "HALT")
	assert.NoError(cpu.Run(3))
	assert.True(cpu.Halted)
	assert.Equal(3, cpu.Steps)
}

func TestCpuElapsed(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"INC R1",
		"INICIAR",
		"STATUS",
		"INC R1",
		"PARAR",
		"INC R1",
		"READSENSOR R2 TEMPO",
		"HALT",
	)

	assert.NoError(cpu.Run(100))
	assert.Equal(int64(3), cpu.Elapsed)
	assert.Equal(int64(3), cpu.Register[REG_R2])
	assert.Equal(8, cpu.Steps)
}

func TestCpuHalt(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t, "INICIAR", "HALT", "INC R1")
	assert.NoError(cpu.Run(100))
	assert.True(cpu.Halted)
	assert.False(cpu.Running)
	assert.Equal(1, cpu.Pc)
	assert.Equal(2, cpu.Steps)

	// Halted machines do not resume.
	assert.NoError(cpu.Step())
	assert.Equal(1, cpu.Pc)
	assert.Equal(2, cpu.Steps)
	assert.Equal(int64(0), cpu.Register[REG_R1])
}

func TestCpuMonitor(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"STATUS",
		"INICIAR",
		"STATUS",
		"PARAR",
		"HALT",
	)
	monitor := &monitorLog{}
	cpu.Monitor = monitor

	assert.NoError(cpu.Run(100))
	assert.Equal([]Event{EVENT_STATUS, EVENT_START, EVENT_STATUS, EVENT_STOP, EVENT_HALT}, monitor.events)
	assert.Equal([]int{0, 1, 2, 3, 4}, monitor.pcs)

	assert.Equal("status", EVENT_STATUS.String())
}

func TestCpuSensors(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"SET VELOCIDADE 12",
		"SET INCLINACAO 3",
		"INICIAR",
		"READSENSOR R1 velocidade",
		"READSENSOR R2 INCLINACAO",
		"READSENSOR TEMPO Tempo",
		"READSENSOR SP peso",
		"READSENSOR VELOCIDADE peso",
		"READSENSOR INCLINACAO temperatura",
	)
	cpu.Sensors.Set(sensor.PESO, &sensor.Sequence{Values: []int64{70, 71}})
	cpu.Sensors.Set(sensor.TEMPERATURA, sensor.Constant(25))

	assert.NoError(cpu.Run(100))
	assert.Equal(int64(12), cpu.Register[REG_R1])
	assert.Equal(int64(3), cpu.Register[REG_R2])
	assert.Equal(int64(3), cpu.Register[REG_TEMPO])
	assert.Equal(int64(70), cpu.Register[REG_SP])
	assert.Equal(int64(71), cpu.Register[REG_VELOCIDADE])
	assert.Equal(int64(25), cpu.Register[REG_INCLINACAO])
}

func TestCpuSensorsRandom(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"READSENSOR R1 peso",
		"READSENSOR R2 temperatura",
		"READSENSOR TEMPO tensao",
	}

	first := load(t, program...)
	second := load(t, program...)

	for range 50 {
		require.NoError(t, first.Load(strings.Join(program, "\n")))
		require.NoError(t, second.Load(strings.Join(program, "\n")))
		require.NoError(t, first.Run(10))
		require.NoError(t, second.Run(10))

		assert.Equal(first.Register, second.Register)
		assert.True(first.Register[REG_R1] >= sensor.PESO_MIN && first.Register[REG_R1] <= sensor.PESO_MAX)
		assert.True(first.Register[REG_R2] >= sensor.TEMPERATURA_MIN && first.Register[REG_R2] <= sensor.TEMPERATURA_MAX)
		assert.True(first.Register[REG_TEMPO] >= sensor.TENSAO_MIN && first.Register[REG_TEMPO] <= sensor.TENSAO_MAX)
	}

	// Bounds are visible to programs as equates.
	cpu := load(t, "SET R1 PESO_MIN", "SET R2 TENSAO_MAX", "SET SP RAM_SIZE")
	assert.NoError(cpu.Run(10))
	assert.Equal(int64(sensor.PESO_MIN), cpu.Register[REG_R1])
	assert.Equal(int64(sensor.TENSAO_MAX), cpu.Register[REG_R2])
	assert.Equal(int64(RAM_SIZE), cpu.Register[REG_SP])
}

func TestCpuExecErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program []string
		pc      int
		opcode  Opcode
		err     error
	}){
		{[]string{"SET R1 10", "DIV R1 0"}, 1, OP_DIV, ErrDivideByZero},
		{[]string{"SET R1 10", "DIV R1 R2"}, 1, OP_DIV, ErrDivideByZero},
		{[]string{"RET"}, 0, OP_RET, ErrStackUnderflow},
		{[]string{"SET R1 1", "POP R1"}, 1, OP_POP, ErrStackUnderflow},
		{[]string{"PUSH -1", "RET"}, 1, OP_RET, ErrAddressInvalid},
		{[]string{"INC R9"}, 0, OP_INC, ErrParseRegister("R9")},
		{[]string{"SET r1 1"}, 0, OP_SET, ErrParseRegister("r1")},
		{[]string{"SET 5 R1"}, 0, OP_SET, ErrParseRegister("5")},
		{[]string{"POP 5"}, 0, OP_POP, ErrParseRegister("5")},
		{[]string{"SET R1 foo"}, 0, OP_SET, ErrParseValue("foo")},
		{[]string{"SET R1 +5"}, 0, OP_SET, ErrParseValue("+5")},
		{[]string{"PUSH 1.5"}, 0, OP_PUSH, ErrParseValue("1.5")},
		{[]string{"STORE R1 addr"}, 0, OP_STORE, ErrParseValue("addr")},
		{[]string{"CMP R1 x"}, 0, OP_CMP, ErrParseValue("x")},
		{[]string{"GOTO nowhere"}, 0, OP_GOTO, ErrLabelMissing("nowhere")},
		{[]string{"CALL nowhere"}, 0, OP_CALL, ErrLabelMissing("nowhere")},
		{[]string{"JZ nowhere"}, 0, OP_JZ, ErrLabelMissing("nowhere")},
		{[]string{"READSENSOR R1 altura"}, 0, OP_READSENSOR, sensor.ErrSensorUnknown("altura")},
		{[]string{"READSENSOR 7 peso"}, 0, OP_READSENSOR, ErrParseRegister("7")},
	}

	for _, entry := range table {
		name := strings.Join(entry.program, "; ")
		cpu := load(t, entry.program...)
		for range entry.pc {
			require.NoError(t, cpu.Step(), name)
		}
		before := cpu.Snapshot()

		err := cpu.Run(100)
		assert.ErrorIs(err, entry.err, name)

		var exec *ErrExec
		if assert.True(errors.As(err, &exec), name) {
			assert.Equal(entry.pc, exec.Pc, name)
			assert.Equal(entry.opcode, exec.Opcode, name)
			assert.Equal(cpu.Program.Instructions[entry.pc].Operands, exec.Operands, name)
		}

		// The failing instruction leaves the state inspectable and
		// unchanged, apart from the step counter.
		after := cpu.Snapshot()
		assert.Equal(before.Registers, after.Registers, name)
		assert.Equal(before.Stack, after.Stack, name)
		assert.Equal(before.Ram, after.Ram, name)
		assert.Equal(entry.pc, after.Pc, name)
		assert.Equal(entry.pc+1, after.Steps, name)
		assert.False(after.Halted, name)
	}
}

func TestCpuExecErrorText(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t, "SET R1 10", "DIV R1 0")
	err := cpu.Run(100)
	require.Error(t, err)
	assert.Contains(err.Error(), "DIV R1 0")
	assert.Contains(err.Error(), ErrDivideByZero.Error())
	assert.Equal(int64(10), cpu.Snapshot().Register(REG_R1))
}

func TestCpuExecute(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpuSeed(1)

	err := cpu.Execute(Instruction{Opcode: Opcode(99)})
	assert.ErrorIs(err, ErrOpcodeInvalid)

	err = cpu.Execute(Instruction{Opcode: OP_SET, Operands: []string{"R1"}})
	assert.ErrorIs(err, ErrOperandCount)

	err = cpu.Execute(Instruction{Opcode: OP_SET, Operands: []string{"R1", "3"}})
	assert.NoError(err)
	assert.Equal(int64(3), cpu.Register[REG_R1])
	assert.Equal(1, cpu.Pc)

	cpu.Sensors = nil
	err = cpu.Execute(Instruction{Opcode: OP_READSENSOR, Operands: []string{"R1", "peso"}})
	assert.ErrorIs(err, ErrSensorsDetached)

	cpu.Pc = -1
	cpu.Program = &Program{Instructions: []Instruction{{Opcode: OP_HALT, Operands: []string{}}}}
	err = cpu.Step()
	assert.ErrorIs(err, ErrPcInvalid(-1))
	var exec *ErrExec
	if assert.True(errors.As(err, &exec)) {
		assert.Equal(-1, exec.Pc)
		assert.False(exec.Opcode.Valid())
	}
	assert.Equal(0, cpu.Steps)
	assert.Equal(-1, cpu.Pc)
}

func TestCpuSnapshot(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t,
		"INICIAR",
		"SET R1 4",
		"PUSH R1",
		"STORE R1 9",
		"INC R1",
		"PUSH R1",
		"HALT",
	)

	for range 4 {
		require.NoError(t, cpu.Step())
	}

	state := cpu.Snapshot()
	assert.Equal(int64(4), state.Register(REG_R1))
	assert.Equal([]int64{4}, state.Stack)
	assert.Equal(int64(4), state.Ram[9])
	assert.Equal(4, state.Pc)
	assert.True(state.Running)
	assert.Equal(int64(4), state.ElapsedTime)
	assert.Equal(4, state.Steps)
	assert.Equal(map[string]int64{
		"VELOCIDADE": 0,
		"TEMPO":      0,
		"INCLINACAO": 0,
		"R1":         4,
		"R2":         0,
		"SP":         0,
	}, state.RegisterMap())

	// Mutating the snapshot does not touch the machine.
	state.Stack[0] = 99
	state.Ram[9] = 99
	assert.Equal(int64(4), cpu.Stack.Data[0])
	assert.Equal(int64(4), cpu.Ram[9])

	// Running the machine does not touch the snapshot.
	require.NoError(t, cpu.Run(100))
	assert.Equal(int64(5), cpu.Register[REG_R1])
	assert.Equal(int64(4), state.Register(REG_R1))
	assert.Len(state.Stack, 1)
	assert.Equal(4, state.Pc)
	assert.False(state.Halted)

	final := cpu.Snapshot()
	assert.Equal([]int64{4, 5}, final.Stack)
	assert.True(final.Halted)
	assert.False(final.Running)
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := load(t, "SET R1 3", "PUSH 8", "HALT")
	require.NoError(t, cpu.Run(10))

	text := cpu.String()
	assert.Contains(text, "R1: 3\n")
	assert.Contains(text, "stack: 8 (1)\n")
	assert.Contains(text, "halted: true\n")
}
