// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"strings"

	"github.com/ezrec/treadmill/cpu"
	"github.com/ezrec/treadmill/internal"
	"github.com/ezrec/treadmill/sensor"
	"github.com/ezrec/treadmill/translate"
)

const (
	DISPLAY_SCALE = 10 // Speed, time and incline registers hold tenths.
	DISPLAY_RAM   = 16 // RAM words shown by the status display.
)

var _emulator_defines = map[string]string{
	"DISPLAY_SCALE": fmt.Sprintf("%v", DISPLAY_SCALE),
}

// Emulator is the treadmill console: the machine plus its device display.
type Emulator struct {
	Verbose  bool      // If set, enables verbose logging.
	*cpu.Cpu           // Reference to the machine.
	Output   io.Writer // Device display. Discarded if nil.
}

var _ cpu.Monitor = (*Emulator)(nil)

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	return newEmulator(cpu.NewCpu())
}

// NewEmulatorSeed creates a new emulator with reproducible sensors.
func NewEmulatorSeed(seed uint64) (emu *Emulator) {
	return newEmulator(cpu.NewCpuSeed(seed))
}

func newEmulator(machine *cpu.Cpu) (emu *Emulator) {
	emu = &Emulator{
		Cpu: machine,
	}
	emu.Cpu.Monitor = emu

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

func (emu *Emulator) output() io.Writer {
	if emu.Output == nil {
		return io.Discard
	}
	return emu.Output
}

func (emu *Emulator) printf(format string, args ...any) {
	translate.Fprintf(emu.output(), format, args...)
}

// Load assembles source, with the emulator defines available, and loads
// it into the machine.
func (emu *Emulator) Load(source string) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		emu.Cpu.LoadProgram(&cpu.Program{})
		return
	}

	emu.Cpu.LoadProgram(prog)

	return
}

// Summary writes the size and labels of the loaded program.
func (emu *Emulator) Summary() {
	prog := emu.Cpu.Program
	labels := slices.Sorted(maps.Keys(prog.Labels))

	emu.printf("program loaded\n")
	emu.printf("instructions: %d\n", prog.Len())
	emu.printf("labels: %v\n", strings.Join(labels, ", "))
}

// LineNo returns the source line number of the next instruction.
func (emu *Emulator) LineNo() int {
	return emu.Cpu.Program.LineNo(emu.Cpu.Pc)
}

// Tick executes a single instruction. done is set once the machine halts.
func (emu *Emulator) Tick() (done bool, err error) {
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Step()
	if err != nil {
		return
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks until the machine halts. If maxSteps is positive, reaching
// maxSteps executed steps before halting is an error.
func (emu *Emulator) Run(maxSteps int) (err error) {
	if emu.Verbose {
		log.Printf("emulator: run %d instructions, limit %d", emu.Cpu.Program.Len(), maxSteps)
	}

	for done := emu.Cpu.Halted; !done; {
		if maxSteps > 0 && emu.Cpu.Steps >= maxSteps {
			err = &ErrRuntime{
				LineNo: emu.LineNo(),
				Err:    &cpu.ErrStepLimit{Limit: maxSteps, Pc: emu.Cpu.Pc},
			}
			return
		}
		done, err = emu.Tick()
		if err != nil {
			return
		}
	}

	return
}

// Notify displays the device control events of the program.
func (emu *Emulator) Notify(event cpu.Event, machine *cpu.Cpu) {
	switch event {
	case cpu.EVENT_START:
		emu.printf("treadmill started\n")
	case cpu.EVENT_STOP:
		emu.printf("treadmill stopped\n")
	case cpu.EVENT_HALT:
		emu.printf("program finished\n")
	case cpu.EVENT_STATUS:
		emu.Status()
	}
}

// readSensor samples a sensor for display.
func (emu *Emulator) readSensor(name string) string {
	if emu.Cpu.Sensors == nil {
		return "-"
	}
	value, err := emu.Cpu.Sensors.Read(name)
	if err != nil {
		return "-"
	}
	return f("%d", value)
}

// scaled formats a register holding tenths.
func scaled(value int64) float64 {
	return float64(value) / DISPLAY_SCALE
}

// Status writes the treadmill status display. The weight and
// temperature sensors are sampled, so random sensors advance.
func (emu *Emulator) Status() {
	machine := emu.Cpu

	state := f("stopped")
	if machine.Running {
		state = f("running")
	}

	ram := make([]string, DISPLAY_RAM)
	for n := range ram {
		ram[n] = f("%d", machine.Ram[n])
	}

	emu.printf("\n--- treadmill status ---\n")
	emu.printf("state: %v\n", state)
	emu.printf("speed: %.1f km/h\n", scaled(machine.Register[cpu.REG_VELOCIDADE]))
	emu.printf("time: %.1f s\n", scaled(machine.Register[cpu.REG_TEMPO]))
	emu.printf("incline: %.1f°\n", scaled(machine.Register[cpu.REG_INCLINACAO]))
	emu.printf("R1: %d, R2: %d\n", machine.Register[cpu.REG_R1], machine.Register[cpu.REG_R2])
	emu.printf("stack: %d items\n", machine.Stack.Len())
	emu.printf("ram: [%v] ...\n", strings.Join(ram, " "))
	emu.printf("sensors: %v=%v, %v=%v\n",
		sensor.PESO, emu.readSensor(sensor.PESO),
		sensor.TEMPERATURA, emu.readSensor(sensor.TEMPERATURA))
	emu.printf("elapsed: %ds\n", machine.Elapsed)
	emu.printf("next instruction: %d\n", machine.Pc)
	emu.printf("------------------------\n\n")
}
