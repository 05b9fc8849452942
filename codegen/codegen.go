// Package codegen writes treadmill assembly for a small structured
// language: variables, device assignments, if, while and for blocks, and
// binary arithmetic.
//
// Numbers in the source language have one decimal place. They are scaled
// by SCALE into integers, so "2.5" becomes 25, matching the tenths the
// device registers hold. Variables live in RAM from VAR_BASE upwards.
package codegen

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/treadmill/cpu"
	"github.com/ezrec/treadmill/sensor"
)

const (
	SCALE    = 10 // Fixed point scale of source numbers.
	VAR_BASE = 10 // RAM address of the first variable.
)

var reName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// devices maps the assignable device names to their registers.
var devices = map[string]cpu.Register{
	sensor.VELOCIDADE: cpu.REG_VELOCIDADE,
	sensor.INCLINACAO: cpu.REG_INCLINACAO,
	sensor.TEMPO:      cpu.REG_TEMPO,
}

// sensors are read with READSENSOR when named in an expression.
var sensors = []string{
	sensor.TEMPO, sensor.VELOCIDADE, sensor.INCLINACAO,
	sensor.PESO, sensor.TEMPERATURA, sensor.TENSAO,
}

// arithmetic operators, in the order they are searched for.
var arithmetic = []struct {
	token  string
	opcode cpu.Opcode
}{
	{"*", cpu.OP_MUL},
	{"/", cpu.OP_DIV},
	{"+", cpu.OP_ADD},
	{"-", cpu.OP_SUB},
}

type blockKind int

const (
	blockIf blockKind = iota
	blockWhile
	blockFor
)

type block struct {
	kind  blockKind
	label int
	addr  int   // for: loop variable address
	step  int64 // for: scaled increment
}

// Generator writes assembly to Output. The first write error is kept and
// returned by every later call.
type Generator struct {
	Output io.Writer

	labels int
	vars   map[string]int
	order  []string
	blocks []block
	err    error
}

// NewGenerator creates a generator and writes the program prologue.
func NewGenerator(output io.Writer) (gen *Generator) {
	gen = &Generator{
		Output: output,
		vars:   map[string]int{},
	}

	gen.emit("; compiled program")
	gen.emit("INICIAR")
	for _, reg := range []cpu.Register{cpu.REG_VELOCIDADE, cpu.REG_TEMPO, cpu.REG_INCLINACAO, cpu.REG_R1, cpu.REG_R2} {
		gen.emit("SET %v 0", reg)
	}
	gen.emit("")

	return
}

func (gen *Generator) emit(format string, args ...any) {
	if gen.err != nil {
		return
	}
	_, gen.err = fmt.Fprintf(gen.Output, format+"\n", args...)
}

func (gen *Generator) label() (n int) {
	n = gen.labels
	gen.labels++
	return
}

// Scale converts a source number to its fixed point value.
func Scale(number string) (value int64, ok bool) {
	if len(number) == 0 || strings.ContainsAny(number, "eExXnN_") {
		return
	}
	v, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsInf(v, 0) {
		return
	}
	scaled := math.Round(v * SCALE)
	if scaled < math.MinInt64 || scaled >= math.MaxInt64 {
		return
	}
	return int64(scaled), true
}

// checkName verifies a variable name. Registers and sensors are reserved.
func checkName(name string) (err error) {
	_, register := cpu.ParseRegister(name)
	if register || slices.Contains(sensors, name) || !reName.MatchString(name) {
		err = ErrName(name)
	}
	return
}

// variable returns the address of a variable, allocating it if needed.
func (gen *Generator) variable(name string) (addr int, err error) {
	err = checkName(name)
	if err != nil {
		return
	}

	addr, ok := gen.vars[name]
	if ok {
		return
	}

	addr = VAR_BASE + len(gen.order)
	if addr >= cpu.RAM_SIZE {
		err = ErrVariableLimit
		return
	}

	gen.vars[name] = addr
	gen.order = append(gen.order, name)

	return
}

// Comment writes a comment line.
func (gen *Generator) Comment(text string) error {
	for _, line := range strings.Split(text, "\n") {
		gen.emit("; %v", line)
	}
	return gen.err
}

// operand loads a number, sensor or variable into reg.
func (gen *Generator) operand(text string, reg cpu.Register) (err error) {
	text = strings.TrimSpace(text)

	value, ok := Scale(text)
	if ok {
		gen.emit("SET %v %d", reg, value)
		return
	}

	if slices.Contains(sensors, text) {
		gen.emit("READSENSOR %v %v", reg, text)
		return
	}

	addr, ok := gen.vars[text]
	if ok {
		gen.emit("LOAD %v %d", reg, addr)
		return
	}

	if reName.MatchString(text) {
		err = ErrVariableUnknown(text)
	} else {
		err = ErrExpression(text)
	}

	return
}

// expression compiles an operand, or two operands joined by one
// arithmetic operator, into R1. R2 is used as scratch.
func (gen *Generator) expression(expr string) (err error) {
	text := strings.TrimSpace(expr)
	if len(text) == 0 {
		err = ErrExpression(text)
		return
	}

	for _, op := range arithmetic {
		// Skip a leading sign, so "-2" and "-2 + x" parse.
		at := strings.Index(text[1:], op.token)
		if at < 0 {
			continue
		}
		at++

		err = gen.operand(text[:at], cpu.REG_R1)
		if err != nil {
			return
		}
		err = gen.operand(text[at+1:], cpu.REG_R2)
		if err != nil {
			return
		}
		switch op.opcode {
		case cpu.OP_MUL:
			// Both operands carry the scale.
			gen.emit("MUL R1 R2")
			gen.emit("DIV R1 %d", SCALE)
		case cpu.OP_DIV:
			gen.emit("MUL R1 %d", SCALE)
			gen.emit("DIV R1 R2")
		default:
			gen.emit("%v R1 R2", op.opcode)
		}
		return
	}

	return gen.operand(text, cpu.REG_R1)
}

// Declare declares a variable with an initial value.
func (gen *Generator) Declare(name string, expr string) (err error) {
	gen.emit("; var %v = %v", name, expr)
	return gen.store(name, expr)
}

// Assign assigns an expression to a variable or device.
func (gen *Generator) Assign(name string, expr string) (err error) {
	gen.emit("; %v = %v", name, expr)
	return gen.store(name, expr)
}

func (gen *Generator) store(name string, expr string) (err error) {
	err = gen.expression(expr)
	if err != nil {
		return
	}

	reg, device := devices[name]
	if device {
		gen.emit("SET %v R1", reg)
	} else {
		var addr int
		addr, err = gen.variable(name)
		if err != nil {
			return
		}
		gen.emit("STORE R1 %d", addr)
	}
	gen.emit("")

	return gen.err
}

// condition compiles a comparison, jumping to target when it is false.
func (gen *Generator) condition(cond string, target string) (err error) {
	comparisons := []string{"<=", ">=", "==", "!=", "<", ">"}

	for _, cmp := range comparisons {
		left, right, ok := strings.Cut(cond, cmp)
		if !ok {
			continue
		}

		err = gen.expression(left)
		if err != nil {
			return
		}
		err = gen.operand(right, cpu.REG_R2)
		if err != nil {
			return
		}

		here := gen.label()
		switch cmp {
		case "<":
			gen.emit("JL cond_%d", here)
			gen.emit("GOTO %v", target)
		case ">":
			gen.emit("JG cond_%d", here)
			gen.emit("GOTO %v", target)
		case "<=":
			gen.emit("JG %v", target)
		case ">=":
			gen.emit("JL %v", target)
		case "==":
			gen.emit("CMP R1 R2")
			gen.emit("JNZ %v", target)
		case "!=":
			gen.emit("CMP R1 R2")
			gen.emit("JZ %v", target)
		}
		gen.emit("cond_%d:", here)

		return gen.err
	}

	err = ErrCondition(cond)
	return
}

// If starts a block executed when the condition holds.
func (gen *Generator) If(cond string) (err error) {
	n := gen.label()
	gen.emit("; if %v", cond)
	err = gen.condition(cond, fmt.Sprintf("if_end_%d", n))
	if err != nil {
		return
	}
	gen.blocks = append(gen.blocks, block{kind: blockIf, label: n})
	return
}

// While starts a block repeated while the condition holds.
func (gen *Generator) While(cond string) (err error) {
	n := gen.label()
	gen.emit("; while %v", cond)
	gen.emit("while_test_%d:", n)
	err = gen.condition(cond, fmt.Sprintf("while_end_%d", n))
	if err != nil {
		return
	}
	gen.blocks = append(gen.blocks, block{kind: blockWhile, label: n})
	return
}

// For starts a block repeated with name running from start up to and
// including end. An empty step counts by one.
func (gen *Generator) For(name string, start string, end string, step string) (err error) {
	err = checkName(name)
	if err != nil {
		return
	}

	if len(strings.TrimSpace(step)) == 0 {
		step = "1"
	}
	increment, ok := Scale(strings.TrimSpace(step))
	if !ok || increment == 0 {
		err = ErrExpression(step)
		return
	}

	n := gen.label()
	gen.emit("; for %v = %v to %v step %v", name, start, end, step)

	err = gen.store(name, start)
	if err != nil {
		return
	}
	addr := gen.vars[name]

	gen.emit("for_test_%d:", n)
	gen.emit("LOAD R1 %d", addr)
	err = gen.operand(end, cpu.REG_R2)
	if err != nil {
		return
	}
	if increment < 0 {
		gen.emit("JL for_end_%d", n)
	} else {
		gen.emit("JG for_end_%d", n)
	}
	gen.emit("")

	gen.blocks = append(gen.blocks, block{kind: blockFor, label: n, addr: addr, step: increment})

	return gen.err
}

// End closes the innermost block.
func (gen *Generator) End() (err error) {
	if len(gen.blocks) == 0 {
		err = ErrBlockMismatch
		return
	}

	blk := gen.blocks[len(gen.blocks)-1]
	gen.blocks = gen.blocks[:len(gen.blocks)-1]

	switch blk.kind {
	case blockIf:
		gen.emit("if_end_%d:", blk.label)
	case blockWhile:
		gen.emit("GOTO while_test_%d", blk.label)
		gen.emit("while_end_%d:", blk.label)
	case blockFor:
		gen.emit("LOAD R1 %d", blk.addr)
		gen.emit("ADD R1 %d", blk.step)
		gen.emit("STORE R1 %d", blk.addr)
		gen.emit("GOTO for_test_%d", blk.label)
		gen.emit("for_end_%d:", blk.label)
	}
	gen.emit("")

	return gen.err
}

// Variables writes a comment listing each variable and its address.
func (gen *Generator) Variables() error {
	parts := make([]string, len(gen.order))
	for n, name := range gen.order {
		parts[n] = fmt.Sprintf("%v@%d", name, gen.vars[name])
	}
	gen.emit("; variables: %v", strings.Join(parts, " "))
	return gen.err
}

// Address returns the RAM address of a variable.
func (gen *Generator) Address(name string) (addr int, ok bool) {
	addr, ok = gen.vars[name]
	return
}

// Halt closes the program. All blocks must have been ended.
func (gen *Generator) Halt() (err error) {
	if len(gen.blocks) != 0 {
		err = ErrBlockOpen
		return
	}

	gen.emit("")
	gen.emit("; end of program")
	gen.emit("STATUS")
	gen.emit("HALT")

	return gen.err
}
