package isa

import (
	"errors"

	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	ErrFormatInvalid      = errors.New(f("format invalid"))
	ErrFieldRange         = errors.New(f("field out of range"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrImmediateAlign     = errors.New(f("immediate misaligned"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrOperatorInvalid    = errors.New(f("operator invalid"))
	ErrOperandCount       = errors.New(f("operand count"))
	ErrOperandKind        = errors.New(f("operand kind"))
	ErrOperandUnresolved  = errors.New(f("operand unresolved"))
	ErrInstructionUnknown = errors.New(f("instruction unknown"))
)

// ErrRange reports an immediate that does not fit its encoding field.
type ErrRange struct {
	Format Format
	Value  int64
	Min    int64
	Max    int64
}

func (err *ErrRange) Error() string {
	return f("%v-type immediate %d not in [%d, %d]", err.Format, err.Value, err.Min, err.Max)
}

func (err *ErrRange) Unwrap() error {
	return ErrImmediateRange
}

// ErrWord reports a machine word that decodes to no known instruction.
type ErrWord uint32

func (ew ErrWord) Error() string {
	return f("unknown instruction word 0x%08x", uint32(ew))
}

func (ew ErrWord) Is(err error) bool {
	return err == ErrInstructionUnknown
}
