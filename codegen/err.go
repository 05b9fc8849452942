package codegen

import (
	"errors"

	"github.com/ezrec/treadmill/translate"
)

var f = translate.From

var (
	ErrBlockMismatch = errors.New(f("block end without matching start"))
	ErrBlockOpen     = errors.New(f("block not closed"))
	ErrVariableLimit = errors.New(f("too many variables"))
)

// ErrVariableUnknown is returned when reading a variable never assigned.
type ErrVariableUnknown string

func (err ErrVariableUnknown) Error() string {
	return f("variable %v not declared", string(err))
}

// ErrName is returned for a variable name that is not an identifier, or
// that names a register.
type ErrName string

func (err ErrName) Error() string {
	return f("invalid variable name '%v'", string(err))
}

// ErrExpression is returned for an expression that cannot be compiled.
type ErrExpression string

func (err ErrExpression) Error() string {
	return f("invalid expression '%v'", string(err))
}

// ErrCondition is returned for a condition without a comparison.
type ErrCondition string

func (err ErrCondition) Error() string {
	return f("invalid condition '%v'", string(err))
}
