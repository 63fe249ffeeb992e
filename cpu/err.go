package cpu

import (
	"errors"

	"github.com/ezrec/rvasm/isa"
	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	// Execution faults
	ErrOpcodeUnknown  = errors.New(f("opcode unknown"))
	ErrFetchBounds    = errors.New(f("fetch out of bounds"))
	ErrSyscallUnknown = errors.New(f("syscall unknown"))
	ErrJumpTarget     = errors.New(f("jump target misaligned"))
	ErrMisaligned     = errors.New(f("memory access misaligned"))
	ErrUnsupported    = errors.New(f("instruction not supported by the simulator"))

	// Host requests
	ErrNotWaiting   = errors.New(f("not waiting for input"))
	ErrInputInvalid = errors.New(f("input invalid"))
	ErrHistoryEmpty = errors.New(f("history empty"))
)

// ErrFault is a failed cycle, at the address of the faulting instruction.
type ErrFault struct {
	Pc  uint32
	Err error
}

func (err *ErrFault) Error() string {
	return f("fault at 0x%08x: %v", err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrSyscall is an ecall with an unknown service number in a7.
type ErrSyscall uint32

func (err ErrSyscall) Error() string {
	return f("syscall %d unknown", uint32(err))
}

func (err ErrSyscall) Is(target error) bool {
	return target == ErrSyscallUnknown
}

// ErrInstruction is an instruction word that does not decode.
type ErrInstruction uint32

func (err ErrInstruction) Error() string {
	return f("opcode unknown in 0x%08x", uint32(err))
}

func (err ErrInstruction) Is(target error) bool {
	return target == ErrOpcodeUnknown
}

// ErrOperator is an instruction the simulator does not execute.
type ErrOperator isa.Operator

func (err ErrOperator) Error() string {
	return f("%v not supported by the simulator", isa.Operator(err))
}

func (err ErrOperator) Is(target error) bool {
	return target == ErrUnsupported
}

// ErrInput is input that does not parse as the requested kind.
type ErrInput string

func (err ErrInput) Error() string {
	return f("input %q invalid", string(err))
}

func (err ErrInput) Is(target error) bool {
	return target == ErrInputInvalid
}
