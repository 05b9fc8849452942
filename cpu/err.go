package cpu

import (
	"errors"
	"strings"

	"github.com/ezrec/treadmill/translate"
)

var f = translate.From

var (
	// Execution errors
	ErrStackUnderflow  = errors.New(f("stack underflow"))
	ErrDivideByZero    = errors.New(f("division by zero"))
	ErrAddressInvalid  = errors.New(f("return address invalid"))
	ErrOperandCount    = errors.New(f("operand count mismatch"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrSensorsDetached = errors.New(f("no sensor bank attached"))

	// Assembler errors
	ErrOpcodeMissing   = errors.New(f("opcode missing"))
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrMacroSyntax     = errors.New(f(".macro syntax"))
	ErrMacroNesting    = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate  = errors.New(f(".macro duplicated"))
	ErrMacroLonely     = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm = errors.New(f(".endm without .macro"))
	ErrMacroRecursion  = errors.New(f(".macro expansion too deep"))
)

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("invalid operand '%v' is not a value or register", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("invalid register '%v'", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrOpcodeUnknown string

func (err ErrOpcodeUnknown) Error() string {
	return f("unknown opcode %v", string(err))
}

// ErrPcInvalid is returned when the program counter was moved outside of
// the program from below.
type ErrPcInvalid int

func (err ErrPcInvalid) Error() string {
	return f("pc %d out of range", int(err))
}

// ErrArity reports an instruction with the wrong number of operands.
type ErrArity struct {
	Opcode Opcode
	Expect int
	Got    int
}

func (err *ErrArity) Error() string {
	return f("%v expects %d operands, got %d", err.Opcode, err.Expect, err.Got)
}

func (err *ErrArity) Unwrap() error {
	return ErrOperandCount
}

// ErrSyntax is a load error, locating the offending source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err *ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err *ErrMacro) Unwrap() error {
	return err.Err
}

// ErrExec is an execution error, carrying the failing instruction and
// the program counter it was fetched from.
type ErrExec struct {
	Pc       int
	Opcode   Opcode
	Operands []string
	Err      error
}

func (err *ErrExec) Error() string {
	if !err.Opcode.Valid() {
		return f("pc=%d: %v", err.Pc, err.Err)
	}
	text := err.Opcode.String()
	if len(err.Operands) > 0 {
		text += " " + strings.Join(err.Operands, " ")
	}
	return f("instruction %v (pc=%d): %v", text, err.Pc, err.Err)
}

func (err *ErrExec) Unwrap() error {
	return err.Err
}

// ErrStepLimit is returned by Run when the step budget is exhausted.
type ErrStepLimit struct {
	Limit int
	Pc    int
}

func (err *ErrStepLimit) Error() string {
	return f("step limit of %d reached (pc=%d)", err.Limit, err.Pc)
}
