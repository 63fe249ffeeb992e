package assembler

import (
	"errors"

	"github.com/ezrec/rvasm/translate"
)

var f = translate.From

var (
	ErrTextLimit = errors.New(f("text segment exceeds limit"))
	ErrDataLimit = errors.New(f("data segment exceeds limit"))
)

// ErrAssembly reports an error encoding the instruction at a source line.
type ErrAssembly struct {
	Line int
	Err  error
}

func (err *ErrAssembly) Error() string {
	return f("line %d: %v", err.Line, err.Err)
}

func (err *ErrAssembly) Unwrap() error {
	return err.Err
}
